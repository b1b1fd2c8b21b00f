package player

import (
	"context"

	"github.com/PizzaHomicide/shuchu/internal/playback"
)

// VideoPlayer defines the interface for media player implementations.  One player instance serves the whole
// player view and is reused for every module.
type VideoPlayer interface {
	playback.Loader
	playback.Widget

	// Start launches the player and connects to it
	Start(ctx context.Context) error

	// Fullscreen returns the fullscreen provider of the player window
	Fullscreen() playback.Fullscreen

	// Events returns the channel of player notifications.  It is closed after EventClosed.
	Events() <-chan Event

	// Cleanup stops the player and releases its resources
	Cleanup()
}
