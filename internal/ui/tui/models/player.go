package models

// player.go holds the player view state and its input handling.  Every playback decision is delegated to the
// playback controller; this model only turns keys, mouse movement and player events into controller calls.

import (
	"errors"

	"github.com/PizzaHomicide/shuchu/internal/log"
	"github.com/PizzaHomicide/shuchu/internal/playback"
	"github.com/PizzaHomicide/shuchu/internal/player"
	"github.com/PizzaHomicide/shuchu/internal/service"
	"github.com/PizzaHomicide/shuchu/internal/session"
	kb "github.com/PizzaHomicide/shuchu/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/components"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	seekStepSeconds = 10.0
	seekFineStep    = 0.01
	seekJumpStep    = 0.10
	volumeStep      = 5.0
	sidebarWidth    = 38
)

var errPlayerClosed = errors.New("player window was closed")

// PlayerModel is the player view of one protocol
type PlayerModel struct {
	width, height int
	controller    *playback.Controller
	player        player.VideoPlayer
	user          *session.UserProvider

	cursor      int
	filtered    []int // Module indexes shown in the sidebar
	searchMode  bool
	searchInput textinput.Model
	seekMode    bool

	playbackBar progress.Model
	courseBar   progress.Model

	widgetErr error
	closed    bool
}

// NewPlayerModel creates the view.  vp may be nil when no player could be created.
func NewPlayerModel(controller *playback.Controller, vp player.VideoPlayer, user *session.UserProvider) *PlayerModel {
	ti := textinput.New()
	ti.Placeholder = "Search modules..."
	ti.CharLimit = 100
	ti.Width = sidebarWidth - 8

	m := &PlayerModel{
		controller:  controller,
		player:      vp,
		user:        user,
		searchInput: ti,
		filtered:    service.FilterModules(controller.Course(), ""),
		playbackBar: components.NewProgressBar(1),
		courseBar:   components.NewProgressBar(1),
	}
	return m
}

func (m *PlayerModel) Init() tea.Cmd {
	return nil
}

// Start mounts the controller on the first module.  startErr is the outcome of starting the player.
func (m *PlayerModel) Start(startErr error) tea.Cmd {
	m.controller.Mount()
	if startErr != nil || m.player == nil {
		if startErr == nil {
			startErr = playback.ErrNoWidget
		}
		m.widgetErr = startErr
		m.closed = true
		m.controller.OnWidgetError(startErr)
		return nil
	}
	return listenForPlayerEvents(m.player)
}

// Stop unmounts the controller.  Timers and late player events are dropped afterwards.
func (m *PlayerModel) Stop() {
	m.controller.Unmount()
}

// listenForPlayerEvents blocks for the next player notification
func listenForPlayerEvents(vp player.VideoPlayer) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-vp.Events()
		if !ok {
			return PlayerEventMsg{Event: player.Event{Type: player.EventClosed}}
		}
		return PlayerEventMsg{Event: event}
	}
}

// Update handles messages
func (m *PlayerModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PlayerEventMsg:
		return m, m.handlePlayerEvent(msg.Event)

	case tea.MouseMsg:
		m.controller.Activity()
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			m.moveCursor(1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m, m.handleSearchModeKeyMsg(msg)
		}
		if m.seekMode {
			m.handleSeekModeKeyMsg(msg)
			return m, nil
		}
		return m, m.handleKeyPress(msg)
	}
	return m, nil
}

func (m *PlayerModel) handlePlayerEvent(event player.Event) tea.Cmd {
	c := m.controller
	switch event.Type {
	case player.EventReady:
		c.OnWidgetReady(m.player)
	case player.EventStateChanged:
		c.OnWidgetStateChange(event.State)
	case player.EventFullscreenChanged:
		c.OnFullscreenChange(event.Fullscreen)
	case player.EventError:
		m.widgetErr = event.Error
		c.OnWidgetError(event.Error)
	case player.EventClosed:
		log.Warn("Player closed while the view was open")
		m.closed = true
		m.widgetErr = errPlayerClosed
		c.OnWidgetError(errPlayerClosed)
		return nil
	}
	return listenForPlayerEvents(m.player)
}

func (m *PlayerModel) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	c := m.controller
	action := kb.GetActionByKey(msg, kb.ContextPlayer)
	if action == "" {
		return nil
	}
	// Play/pause reports its own activity
	if action != kb.ActionPlayPause {
		c.Activity()
	}

	switch action {
	case kb.ActionMoveUp:
		m.moveCursor(-1)
	case kb.ActionMoveDown:
		m.moveCursor(1)
	case kb.ActionPageUp:
		m.moveCursor(-m.pageSize())
	case kb.ActionPageDown:
		m.moveCursor(m.pageSize())
	case kb.ActionMoveTop:
		m.cursor = 0
	case kb.ActionMoveBottom:
		m.cursor = max(len(m.filtered)-1, 0)
	case kb.ActionSelectModule:
		if index, ok := m.cursorModule(); ok {
			m.selectModule(index)
		}
	case kb.ActionPlayPause:
		c.TogglePlayPause()
	case kb.ActionSeekBackward:
		m.seekBy(-seekStepSeconds)
	case kb.ActionSeekForward:
		m.seekBy(seekStepSeconds)
	case kb.ActionEnableSeek:
		if c.Session().DurationSeconds > 0 && !c.Session().Invalid {
			m.seekMode = true
			c.SeekBegin()
		}
	case kb.ActionVolumeUp:
		c.VolumeChange(c.Session().Volume + volumeStep)
	case kb.ActionVolumeDown:
		c.VolumeChange(c.Session().Volume - volumeStep)
	case kb.ActionToggleMute:
		c.ToggleMute()
	case kb.ActionFullscreen:
		c.ToggleFullscreen()
	case kb.ActionNextModule:
		m.navigate(playback.Next)
	case kb.ActionPrevModule:
		m.navigate(playback.Prev)
	case kb.ActionToggleComplete:
		c.ToggleComplete()
	case kb.ActionEnableSearch:
		m.searchMode = true
		return m.searchInput.Focus()
	}
	return nil
}

func (m *PlayerModel) handleSeekModeKeyMsg(msg tea.KeyMsg) {
	c := m.controller
	c.Activity()
	fraction := c.Session().PlayedFraction

	switch kb.GetActionByKey(msg, kb.ContextSeekMode) {
	case kb.ActionSeekStepBack:
		c.SeekPreview(fraction - seekFineStep)
	case kb.ActionSeekStepForward:
		c.SeekPreview(fraction + seekFineStep)
	case kb.ActionSeekJumpBack:
		c.SeekPreview(fraction - seekJumpStep)
	case kb.ActionSeekJumpForward:
		c.SeekPreview(fraction + seekJumpStep)
	case kb.ActionSeekCommit:
		m.seekMode = false
		c.SeekCommit(fraction)
	case kb.ActionBack:
		m.seekMode = false
		c.SeekEnd()
	}
}

func (m *PlayerModel) handleSearchModeKeyMsg(msg tea.KeyMsg) tea.Cmd {
	m.controller.Activity()
	switch kb.GetActionByKey(msg, kb.ContextSearchMode) {
	case kb.ActionBack:
		// Cancels search, clearing the filter
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applyFilter()
		return nil
	case kb.ActionSearchComplete:
		m.searchMode = false
		m.searchInput.Blur()
		m.applyFilter()
		return nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return cmd
}

// seekBy jumps relative to the current position
func (m *PlayerModel) seekBy(seconds float64) {
	s := m.controller.Session()
	if s.DurationSeconds <= 0 {
		return
	}
	m.controller.SeekCommit((s.ElapsedSeconds() + seconds) / s.DurationSeconds)
}

func (m *PlayerModel) navigate(dir playback.Direction) {
	m.controller.Navigate(dir)
	m.afterModuleChange()
}

func (m *PlayerModel) selectModule(index int) {
	m.controller.Select(index)
	m.afterModuleChange()
}

// afterModuleChange drops per-module UI state and follows the active module with the cursor when it is listed
func (m *PlayerModel) afterModuleChange() {
	m.seekMode = false
	if !m.closed {
		m.widgetErr = nil
	}
	active := m.controller.Session().ActiveVideoIndex
	for i, index := range m.filtered {
		if index == active {
			m.cursor = i
			return
		}
	}
}

func (m *PlayerModel) applyFilter() {
	m.filtered = service.FilterModules(m.controller.Course(), m.searchInput.Value())
	m.cursor = min(m.cursor, max(len(m.filtered)-1, 0))
}

func (m *PlayerModel) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.filtered)-1)
}

// cursorModule returns the module index under the sidebar cursor
func (m *PlayerModel) cursorModule() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return 0, false
	}
	return m.filtered[m.cursor], true
}

func (m *PlayerModel) pageSize() int {
	return max(m.listHeight(), 1)
}

// Resize updates the dimensions
func (m *PlayerModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.playbackBar.Width = max(m.mainWidth()-6, 10)
	m.courseBar.Width = max(sidebarWidth-6, 10)
}

// RefreshTheme rebuilds the theme dependent widgets
func (m *PlayerModel) RefreshTheme() {
	m.playbackBar = components.NewProgressBar(m.playbackBar.Width)
	m.courseBar = components.NewProgressBar(m.courseBar.Width)
}
