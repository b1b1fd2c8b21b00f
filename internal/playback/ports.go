package playback

import (
	"context"
	"time"
)

// Widget is the embedded player of the active module.  Getters must not block.
type Widget interface {
	Play()
	Pause()
	SeekTo(seconds float64)
	CurrentTime() float64
	Duration() float64
	Volume() float64
	SetVolume(volume float64)
	Mute()
	Unmute()
	IsMuted() bool
}

// Loader asks the widget host to load a module.  Readiness is reported later through Controller.OnWidgetReady.
type Loader interface {
	Load(url string) error
}

// Fullscreen toggles fullscreen on the player.  Changes are reported through Controller.OnFullscreenChange.
type Fullscreen interface {
	Enabled() bool
	Toggle() error
}

// CompletionStore persists module completion flags remotely
type CompletionStore interface {
	PersistCompletion(ctx context.Context, courseID, videoID string, completed bool) error
}

// Scheduler runs f on the controller's goroutine once d has elapsed, unless cancelled first
type Scheduler interface {
	After(d time.Duration, f func()) (cancel func())
}
