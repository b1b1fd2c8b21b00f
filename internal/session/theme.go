package session

import (
	"sync"

	"github.com/PizzaHomicide/shuchu/internal/log"
)

type ThemeName string

const (
	ThemeDark  ThemeName = "dark"
	ThemeLight ThemeName = "light"
)

// ParseTheme falls back to dark for anything it does not recognise
func ParseTheme(s string) ThemeName {
	if ThemeName(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// Theme is the read/toggle capability for the colour theme
type Theme struct {
	mu      sync.RWMutex
	current ThemeName
	persist func(ThemeName) error
}

func NewTheme(initial string, persist func(ThemeName) error) *Theme {
	return &Theme{
		current: ParseTheme(initial),
		persist: persist,
	}
}

func (t *Theme) Current() ThemeName {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Toggle switches between dark and light.  A failure to persist is logged and the new theme is kept for this run.
func (t *Theme) Toggle() ThemeName {
	t.mu.Lock()
	if t.current == ThemeDark {
		t.current = ThemeLight
	} else {
		t.current = ThemeDark
	}
	next := t.current
	t.mu.Unlock()

	if t.persist != nil {
		if err := t.persist(next); err != nil {
			log.Warn("Failed to persist theme", "theme", next, "error", err)
		}
	}
	log.Debug("Theme toggled", "theme", next)
	return next
}
