package models

import (
	"context"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/config"
	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/log"
	"github.com/PizzaHomicide/shuchu/internal/playback"
	"github.com/PizzaHomicide/shuchu/internal/player"
	"github.com/PizzaHomicide/shuchu/internal/service"
	"github.com/PizzaHomicide/shuchu/internal/session"
	kb "github.com/PizzaHomicide/shuchu/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	courseLoadTimeout  = 30 * time.Second
	playerStartTimeout = 15 * time.Second
)

// Dependencies are the collaborators the TUI is built from
type Dependencies struct {
	Config    *config.Config
	Courses   *service.CourseService
	User      *session.UserProvider
	Theme     *session.Theme
	Player    player.VideoPlayer
	Scheduler *playback.LoopScheduler
	// Protocol to open.  Empty resumes the first protocol with unfinished modules.
	CourseID string
}

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper.
type AppModel struct {
	deps          Dependencies
	activeView    View  // Track the current active 'main view'
	activeModal   Modal // Track the current active 'modal overlay' if any
	width, height int
	playerStarted bool

	loadingModel *LoadingModel
	errorModel   *ErrorModel
	helpModel    *HelpModel
	playerModel  *PlayerModel
}

// NewAppModel creates a new instance of the main application model
func NewAppModel(deps Dependencies) AppModel {
	if deps.Theme != nil {
		styles.SetTheme(string(deps.Theme.Current()))
	}

	return AppModel{
		deps:         deps,
		activeView:   ViewLoading,
		activeModal:  ModalNone,
		loadingModel: NewLoadingModel(deps.CourseID),
		errorModel:   NewErrorModel(),
		helpModel:    NewHelpModel(ViewLoading),
	}
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising Shuchu TUI", "course_id", m.deps.CourseID)
	return tea.Batch(
		m.loadingModel.Init(),
		loadCourse(m.deps.Courses, m.deps.CourseID),
		listenForTimers(m.deps.Scheduler),
	)
}

// loadCourse fetches the requested protocol, or the one to resume when id is empty
func loadCourse(courses *service.CourseService, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), courseLoadTimeout)
		defer cancel()

		var course *domain.Course
		var err error
		if id == "" {
			course, err = courses.ResumeCourse(ctx)
		} else {
			course, err = courses.GetCourse(ctx, id)
		}
		if err != nil {
			log.Error("Failed to load protocol", "course_id", id, "error", err)
			return CourseMsg{Error: err}
		}

		log.Info("Protocol loaded", "course_id", course.ID, "modules", len(course.Videos))
		return CourseMsg{Course: course}
	}
}

// startPlayer launches the video player process
func startPlayer(vp player.VideoPlayer) tea.Cmd {
	return func() tea.Msg {
		if vp == nil {
			return PlayerStartedMsg{Error: playback.ErrNoWidget}
		}
		ctx, cancel := context.WithTimeout(context.Background(), playerStartTimeout)
		defer cancel()
		return PlayerStartedMsg{Error: vp.Start(ctx)}
	}
}

// listenForTimers hands due controller timers back to the update loop
func listenForTimers(scheduler *playback.LoopScheduler) tea.Cmd {
	if scheduler == nil {
		return nil
	}
	return func() tea.Msg {
		return TimerFiredMsg{Fn: <-scheduler.Fired()}
	}
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextGlobal) {
		case kb.ActionQuit:
			log.Info("Quit command received.  Shutting down...")
			m.stopPlayerView()
			return m, tea.Quit
		case kb.ActionLogout:
			log.Info("Logging out.  Cleaning up token from config file...")
			if m.deps.User != nil {
				if err := m.deps.User.Logout(); err != nil {
					log.Warn("Failed to forget token", "error", err)
				}
			}
			m.stopPlayerView()
			return m, tea.Quit
		case kb.ActionToggleHelp:
			log.Debug("Help requested", "active_view", m.activeView)
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.helpModel.SetContext(m.activeView)
				m.activeModal = ModalHelp
			}
			return m, nil
		case kb.ActionToggleTheme:
			m.toggleTheme()
			return m, nil
		case kb.ActionBack:
			// Handle closing modal when esc is pressed if any is active
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		m.loadingModel.Resize(msg.Width, msg.Height)
		m.errorModel.Resize(msg.Width, msg.Height)
		m.helpModel.Resize(msg.Width, msg.Height)
		if m.playerModel != nil {
			m.playerModel.Resize(msg.Width, msg.Height)
		}
		return m, nil

	case TimerFiredMsg:
		if msg.Fn != nil {
			msg.Fn()
		}
		return m, listenForTimers(m.deps.Scheduler)

	case CourseMsg:
		if msg.Error != nil {
			m.errorModel.SetError(msg.Error)
			m.activeView = ViewError
			return m, nil
		}
		return m.openCourse(msg.Course)

	case PlayerStartedMsg:
		if msg.Error != nil {
			log.Error("Failed to start video player", "error", msg.Error)
		} else {
			m.playerStarted = true
		}
		if m.playerModel == nil {
			return m, nil
		}
		m.activeView = ViewPlayer
		return m, m.playerModel.Start(msg.Error)

	case RetryMsg:
		log.Info("Retrying protocol load", "course_id", m.deps.CourseID)
		m.activeView = ViewLoading
		m.loadingModel.Restart()
		return m, tea.Batch(m.loadingModel.Init(), loadCourse(m.deps.Courses, m.deps.CourseID))
	}

	// Input goes to the help modal while it is open, everything else still reaches the active view
	if m.activeModal == ModalHelp {
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
			model, cmd := m.helpModel.Update(msg)
			m.helpModel = model.(*HelpModel)
			return m, cmd
		}
	}

	// Delegate message processing to the active view
	switch m.activeView {
	case ViewLoading:
		model, cmd := m.loadingModel.Update(msg)
		m.loadingModel = model.(*LoadingModel)
		return m, cmd
	case ViewError:
		model, cmd := m.errorModel.Update(msg)
		m.errorModel = model.(*ErrorModel)
		return m, cmd
	case ViewPlayer:
		model, cmd := m.playerModel.Update(msg)
		m.playerModel = model.(*PlayerModel)
		return m, cmd
	}

	return m, nil
}

// openCourse builds the player view for course and starts the video player if it is not running yet
func (m AppModel) openCourse(course *domain.Course) (tea.Model, tea.Cmd) {
	opts := playback.Options{
		Loader:     m.deps.Player,
		Fullscreen: m.fullscreen(),
		Store:      m.deps.Courses,
		Scheduler:  m.scheduler(),
	}
	if m.deps.Config != nil {
		opts.PollInterval = m.deps.Config.PollInterval()
		opts.ControlsTimeout = m.deps.Config.ControlsTimeout()
	}
	controller := playback.NewController(course, opts)
	m.playerModel = NewPlayerModel(controller, m.deps.Player, m.deps.User)
	m.playerModel.Resize(m.width, m.height)

	if m.playerStarted {
		m.activeView = ViewPlayer
		return m, m.playerModel.Start(nil)
	}

	m.loadingModel.Advance(StageStartPlayer)
	return m, startPlayer(m.deps.Player)
}

func (m AppModel) fullscreen() playback.Fullscreen {
	if m.deps.Player == nil {
		return nil
	}
	return m.deps.Player.Fullscreen()
}

func (m AppModel) scheduler() playback.Scheduler {
	if m.deps.Scheduler == nil {
		return nil
	}
	return m.deps.Scheduler
}

func (m AppModel) toggleTheme() {
	if m.deps.Theme == nil {
		return
	}
	styles.SetTheme(string(m.deps.Theme.Toggle()))
	m.helpModel.RefreshTheme()
	if m.playerModel != nil {
		m.playerModel.RefreshTheme()
	}
}

func (m AppModel) stopPlayerView() {
	if m.playerModel != nil {
		m.playerModel.Stop()
	}
}

func (m AppModel) View() string {
	if m.activeModal == ModalHelp {
		return m.helpModel.View()
	}

	switch m.activeView {
	case ViewLoading:
		return m.loadingModel.View()
	case ViewError:
		return m.errorModel.View()
	case ViewPlayer:
		return m.playerModel.View()
	default:
		return "Unknown view\nPress ctrl+c to quit."
	}
}
