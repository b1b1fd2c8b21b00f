package models

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	kb "github.com/PizzaHomicide/shuchu/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel displays contextual help with scrolling
type HelpModel struct {
	width, height int
	context       View
	viewport      viewport.Model
}

// NewHelpModel creates a new help model for the given context
func NewHelpModel(context View) *HelpModel {
	return &HelpModel{
		context:  context,
		viewport: viewport.New(0, 0),
	}
}

// SetContext switches the view the help is shown for
func (m *HelpModel) SetContext(context View) {
	if m.context == context {
		return
	}
	m.context = context
	m.updateContent()
}

// Init initializes the model
func (m *HelpModel) Init() tea.Cmd {
	if m.width > 0 && m.height > 0 {
		m.updateContent()
	}
	return nil
}

// Update handles messages
func (m *HelpModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHelp) {
		case kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionPageUp, kb.ActionPageDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case kb.ActionMoveTop:
			m.viewport.GotoTop()
		case kb.ActionMoveBottom:
			m.viewport.GotoBottom()
		}
	}
	return m, cmd
}

// Resize updates the dimensions
func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Borders, header and footer
	m.viewport.Width = max(width-4, 1)
	m.viewport.Height = max(height-10, 1)

	m.updateContent()
}

// RefreshTheme re-renders the content in the active theme colours
func (m *HelpModel) RefreshTheme() {
	m.updateContent()
}

func (m *HelpModel) updateContent() {
	m.viewport.SetContent(m.generateHelpContent())
	m.viewport.GotoTop()
}

// View renders the help screen
func (m *HelpModel) View() string {
	header := styles.Header(m.width, "Help: "+m.getContextTitle())

	scrollText := "↑/↓: Scroll • PgUp/PgDn: Page scroll • Home/End: Goto top/bottom • ESC: Return"
	footer := styles.CenteredText(m.width, styles.Info.Render(scrollText))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		styles.ContentBox(m.width-2, m.viewport.View(), 1),
		"",
		footer,
	)
}

func (m *HelpModel) getContextTitle() string {
	switch m.context {
	case ViewPlayer:
		return "Player"
	case ViewError:
		return "Error"
	case ViewLoading:
		return "Loading"
	default:
		return "General"
	}
}

// keyText renders a binding's keys the way the help screen lists them
func keyText(binding kb.Binding) string {
	text := kb.DisplayKey(binding.KeyMap.Primary)
	if binding.KeyMap.Secondary != "" {
		text += " or " + kb.DisplayKey(binding.KeyMap.Secondary)
	}
	return text
}

// formatKeybindingSection formats a section of keybindings with aligned colons
func (m *HelpModel) formatKeybindingSection(title string, bindings []kb.Binding, skipActions map[kb.Action]bool) string {
	if len(bindings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")

	maxKeyWidth := 0
	for _, binding := range bindings {
		if skipActions[binding.Action] {
			continue
		}
		maxKeyWidth = max(maxKeyWidth, runewidth.StringWidth(keyText(binding)))
	}

	for _, binding := range bindings {
		if skipActions[binding.Action] {
			continue
		}
		text := keyText(binding)
		padding := strings.Repeat(" ", maxKeyWidth-runewidth.StringWidth(text))

		b.WriteString(fmt.Sprintf("• %s%s : %s\n",
			lipgloss.NewStyle().Bold(true).Render(text),
			padding,
			binding.KeyMap.Help))
	}

	return b.String()
}

// generateHelpContent builds the complete help content
func (m *HelpModel) generateHelpContent() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Current().Accent)

	b.WriteString(titleStyle.Render(m.getContextTitle()))
	b.WriteString("\n\n")
	b.WriteString(m.getContextDescription())
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Keybindings"))
	b.WriteString("\n\n")

	globalBindings := m.formatKeybindingSection("Global commands:", kb.ContextBindings[kb.ContextGlobal], nil)
	b.WriteString(globalBindings)

	globalActions := make(map[kb.Action]bool)
	for _, binding := range kb.ContextBindings[kb.ContextGlobal] {
		globalActions[binding.Action] = true
	}

	var contextName kb.ContextName
	switch m.context {
	case ViewPlayer:
		contextName = kb.ContextPlayer
	case ViewError:
		contextName = kb.ContextError
	}

	if contextName != "" {
		b.WriteString("\n")
		sectionTitle := fmt.Sprintf("%s commands:", m.getContextTitle())
		b.WriteString(m.formatKeybindingSection(sectionTitle, kb.ContextBindings[contextName], globalActions))
	}

	if m.context == ViewPlayer {
		b.WriteString("\n")
		b.WriteString(m.formatKeybindingSection("While scrubbing:", kb.ContextBindings[kb.ContextSeekMode], nil))
		b.WriteString("\n")
		b.WriteString(m.formatKeybindingSection("When in search mode:", kb.ContextBindings[kb.ContextSearchMode], nil))
	}

	return b.String()
}

func (m *HelpModel) getContextDescription() string {
	switch m.context {
	case ViewPlayer:
		return "The player screen plays the modules of a protocol one at a time in the mpv window.\n\n" +
			"The sidebar lists every module with a ✓ once it is completed.  A module is marked complete " +
			"automatically when it plays to the end, or by hand with the completion key.  " +
			"Controls hide after a few seconds without input and come back on any key or mouse movement."

	case ViewError:
		return "The protocol could not be loaded.  Check the API address and token in the config file, " +
			"then retry."

	default:
		return "Welcome to Shuchu, a focus mode player for your protocols."
	}
}
