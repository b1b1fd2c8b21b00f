package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colours of one theme
type Palette struct {
	Name       string
	Accent     lipgloss.Color
	AccentSoft lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	OnAccent   lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

var (
	Dark = Palette{
		Name:       "dark",
		Accent:     lipgloss.Color("#7D56F4"),
		AccentSoft: lipgloss.Color("#9D86FF"),
		Text:       lipgloss.Color("#FAFAFA"),
		Muted:      lipgloss.Color("#AAAAAA"),
		Border:     lipgloss.Color("#555555"),
		OnAccent:   lipgloss.Color("#FFFFFF"),
		Success:    lipgloss.Color("#43BF6D"),
		Warning:    lipgloss.Color("#E5C07B"),
		Error:      lipgloss.Color("#FF5F87"),
	}

	Light = Palette{
		Name:       "light",
		Accent:     lipgloss.Color("#5A3FC0"),
		AccentSoft: lipgloss.Color("#7D56F4"),
		Text:       lipgloss.Color("#1A1A1A"),
		Muted:      lipgloss.Color("#666666"),
		Border:     lipgloss.Color("#BBBBBB"),
		OnAccent:   lipgloss.Color("#FFFFFF"),
		Success:    lipgloss.Color("#2E8B57"),
		Warning:    lipgloss.Color("#B8860B"),
		Error:      lipgloss.Color("#D7005F"),
	}
)

var (
	current = Dark

	// Text styles
	Title    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Key      lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	ErrorMsg lipgloss.Style
	Selected lipgloss.Style
)

func init() {
	SetTheme(Dark.Name)
}

// SetTheme rebuilds the shared styles for the named theme.  Unknown names fall back to dark.
func SetTheme(name string) {
	current = Dark
	if name == Light.Name {
		current = Light
	}

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(current.OnAccent).
		Background(current.Accent).
		Padding(0, 1)

	Info = lipgloss.NewStyle().
		Foreground(current.Text)

	Subtle = lipgloss.NewStyle().
		Foreground(current.Muted)

	Key = lipgloss.NewStyle().
		Foreground(current.Accent).
		Bold(true)

	Success = lipgloss.NewStyle().
		Foreground(current.Success)

	Warning = lipgloss.NewStyle().
		Foreground(current.Warning)

	ErrorMsg = lipgloss.NewStyle().
		Foreground(current.Error).
		Bold(true)

	Selected = lipgloss.NewStyle().
		Bold(true).
		Foreground(current.OnAccent).
		Background(current.Accent)
}

// Current returns the palette in use
func Current() Palette {
	return current
}

// Layout helpers
func Header(width int, title string) string {
	return Title.
		Width(width).
		Align(lipgloss.Center).
		Render(title)
}

func ContentBox(width int, content string, padding int) string {
	return lipgloss.NewStyle().
		Width(width).
		Padding(padding).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(current.Border).
		Render(content)
}

// Panel is a bordered box with a fixed outer size
func Panel(width, height int, content string, focused bool) string {
	border := current.Border
	if focused {
		border = current.AccentSoft
	}
	return lipgloss.NewStyle().
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(content)
}

func CenteredView(width int, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func CenteredText(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(text)
}
