package components

import (
	"strings"

	kb "github.com/PizzaHomicide/shuchu/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/shuchu/internal/ui/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

const hintSeparator = " • "

// Hint is one entry of a footer: the keys that trigger it and what it does
type Hint struct {
	Keys  []string
	Label string
}

var keyGlyphs = strings.NewReplacer("left", "←", "right", "→", "up", "↑", "down", "↓")

// HintFor resolves the primary keys of actions in a binding context.  Actions without a key are skipped.
func HintFor(context kb.ContextName, label string, actions ...kb.Action) Hint {
	bindings := kb.ContextBindings[context]
	hint := Hint{Label: label}
	for _, action := range actions {
		if key := kb.GetActionKey(action, bindings); key != "" {
			hint.Keys = append(hint.Keys, keyGlyphs.Replace(kb.DisplayKey(key)))
		}
	}
	return hint
}

func (h Hint) render() string {
	return styles.Key.Render(strings.Join(h.Keys, "/")) + ": " + h.Label
}

// Footer renders hints centered in width.  Hints are in priority order: trailing ones are dropped until the rest fit.
func Footer(width int, hints ...Hint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		if len(h.Keys) > 0 {
			parts = append(parts, h.render())
		}
	}

	for len(parts) > 1 && lipgloss.Width(strings.Join(parts, hintSeparator)) > width {
		parts = parts[:len(parts)-1]
	}
	return styles.CenteredText(width, styles.Info.Render(strings.Join(parts, hintSeparator)))
}
