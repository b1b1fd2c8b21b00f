package playback

// State is the playback state reported by the widget
type State int

const (
	StateUnstarted State = iota
	StatePlaying
	StatePaused
	StateBuffering
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Direction is a bounded step through a protocol's modules
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// MaxFraction is the upper bound of the seek control; a fraction of 1 would land past the end
const MaxFraction = 0.999999

// Session is the transient state of one player view
type Session struct {
	ActiveVideoIndex int
	Playing          bool
	Muted            bool
	Volume           float64
	PlayedFraction   float64
	DurationSeconds  float64
	Seeking          bool
	Fullscreen       bool
	ControlsVisible  bool

	State State
	// Set when the active module cannot be played
	Invalid bool
}

// ElapsedSeconds is the position implied by the played fraction
func (s Session) ElapsedSeconds() float64 {
	return s.PlayedFraction * s.DurationSeconds
}

func newSession() Session {
	return Session{
		Volume:          100,
		ControlsVisible: true,
	}
}

// resetForVideo clears everything tied to the previous module.  Volume, mute and fullscreen carry over.
func (s *Session) resetForVideo(index int) {
	s.ActiveVideoIndex = index
	s.Playing = false
	s.PlayedFraction = 0
	s.DurationSeconds = 0
	s.Seeking = false
	s.State = StateUnstarted
	s.Invalid = false
}
