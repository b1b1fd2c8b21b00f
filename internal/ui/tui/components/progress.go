package components

import (
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/progress"
)

// NewProgressBar builds a bar in the colours of the active theme
func NewProgressBar(width int) progress.Model {
	p := styles.Current()
	bar := progress.New(
		progress.WithGradient(string(p.Accent), string(p.AccentSoft)),
		progress.WithoutPercentage(),
		progress.WithWidth(max(width, 1)),
	)
	bar.EmptyColor = string(p.Border)
	return bar
}
