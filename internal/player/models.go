package player

import "github.com/PizzaHomicide/shuchu/internal/playback"

// PlayerType defines the type of media player to use
type PlayerType string

const (
	// PlayerTypeMPV represents the MPV player
	PlayerTypeMPV PlayerType = "mpv"
)

// EventType represents the type of event reported by a video player
type EventType string

const (
	// EventReady indicates the loaded module can be controlled
	EventReady EventType = "ready"
	// EventStateChanged indicates a new playback state
	EventStateChanged EventType = "state"
	// EventFullscreenChanged indicates the player window entered or left fullscreen
	EventFullscreenChanged EventType = "fullscreen"
	// EventError indicates the module could not be loaded or played
	EventError EventType = "error"
	// EventClosed indicates the player went away
	EventClosed EventType = "closed"
)

// Event is a notification from the video player
type Event struct {
	Type       EventType
	State      playback.State // Set for EventStateChanged
	Fullscreen bool           // Set for EventFullscreenChanged
	Error      error          // Set for EventError
}
