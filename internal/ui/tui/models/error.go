package models

import (
	"errors"

	"github.com/PizzaHomicide/shuchu/internal/domain"
	kb "github.com/PizzaHomicide/shuchu/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/components"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RetryMsg asks the app to fetch the protocol again
type RetryMsg struct{}

// ErrorModel shows why the protocol could not be shown
type ErrorModel struct {
	width, height int
	err           error
}

func NewErrorModel() *ErrorModel {
	return &ErrorModel{}
}

func (m *ErrorModel) SetError(err error) {
	m.err = err
}

func (m *ErrorModel) Init() tea.Cmd {
	return nil
}

func (m *ErrorModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && kb.GetActionByKey(msg, kb.ContextError) == kb.ActionRetry {
		return m, func() tea.Msg { return RetryMsg{} }
	}
	return m, nil
}

// Headline is the one line summary shown for the error
func (m *ErrorModel) Headline() string {
	if errors.Is(m.err, domain.ErrCourseNotFound) {
		return "Protocol not found"
	}
	return "Could not load the protocol"
}

func (m *ErrorModel) View() string {
	detail := ""
	if m.err != nil {
		detail = m.err.Error()
	}

	boxWidth := min(max(m.width-20, 40), 80)
	body := lipgloss.JoinVertical(lipgloss.Center,
		styles.ErrorMsg.Render(m.Headline()),
		"",
		styles.Subtle.Width(boxWidth-6).Align(lipgloss.Center).Render(detail),
	)
	box := styles.ContentBox(boxWidth, body, 1)

	footer := components.Footer(m.width,
		components.HintFor(kb.ContextError, "Retry", kb.ActionRetry),
		components.HintFor(kb.ContextGlobal, "Quit", kb.ActionQuit),
	)

	return styles.CenteredView(m.width, m.height, lipgloss.JoinVertical(lipgloss.Center, box, "", footer))
}

func (m *ErrorModel) Resize(width, height int) {
	m.width = width
	m.height = height
}
