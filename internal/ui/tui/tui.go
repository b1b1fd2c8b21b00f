package tui

import (
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the player until the user quits.  All motion is reported so pointer movement reveals the controls.
func Run(deps models.Dependencies) error {
	p := tea.NewProgram(models.NewAppModel(deps), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
