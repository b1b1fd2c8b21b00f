package models

import (
	"fmt"
	"strings"

	"github.com/PizzaHomicide/shuchu/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadStage is a step between launch and the first module being loaded
type LoadStage int

const (
	StageFetchCourse LoadStage = iota
	StageStartPlayer
	stageCount
)

var stageLabels = [stageCount]string{
	StageFetchCourse: "Fetching protocol",
	StageStartPlayer: "Starting mpv",
}

// LoadingModel shows which startup step is running for the protocol being opened
type LoadingModel struct {
	width, height int
	courseID      string // Empty when resuming
	stage         LoadStage
	attempt       int
	spinner       spinner.Model
}

func NewLoadingModel(courseID string) *LoadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &LoadingModel{courseID: courseID, attempt: 1, spinner: s}
}

// Headline names what is being opened
func (m *LoadingModel) Headline() string {
	if m.courseID == "" {
		return "Resuming your next protocol"
	}
	return "Opening protocol " + m.courseID
}

func (m *LoadingModel) Stage() LoadStage {
	return m.stage
}

// Advance moves to stage.  Stages never go backwards except through Restart.
func (m *LoadingModel) Advance(stage LoadStage) {
	if stage > m.stage && stage < stageCount {
		m.stage = stage
	}
}

// Restart begins a new attempt from the first stage
func (m *LoadingModel) Restart() {
	m.attempt++
	m.stage = StageFetchCourse
}

func (m *LoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *LoadingModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *LoadingModel) renderStages() string {
	rows := make([]string, 0, stageCount)
	for stage := LoadStage(0); stage < stageCount; stage++ {
		label := stageLabels[stage]
		switch {
		case stage < m.stage:
			rows = append(rows, styles.Success.Render("✓ "+label))
		case stage == m.stage:
			rows = append(rows, m.spinner.View()+" "+styles.Info.Bold(true).Render(label+"..."))
		default:
			rows = append(rows, styles.Subtle.Render("· "+label))
		}
	}
	return strings.Join(rows, "\n")
}

func (m *LoadingModel) View() string {
	boxWidth := min(max(m.width-20, 36), 64)
	inner := boxWidth - 6

	parts := []string{
		lipgloss.NewStyle().Bold(true).Width(inner).Align(lipgloss.Center).Render(m.Headline()),
		"",
		lipgloss.PlaceHorizontal(inner, lipgloss.Center, m.renderStages()),
	}
	if m.attempt > 1 {
		parts = append(parts, "", styles.Subtle.Italic(true).Width(inner).Align(lipgloss.Center).
			Render(fmt.Sprintf("Attempt %d", m.attempt)))
	}

	box := styles.ContentBox(boxWidth, lipgloss.JoinVertical(lipgloss.Left, parts...), 2)
	return styles.CenteredView(m.width, m.height,
		lipgloss.JoinVertical(lipgloss.Center, styles.Header(boxWidth, "集中 Shuchu"), box))
}

func (m *LoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}
