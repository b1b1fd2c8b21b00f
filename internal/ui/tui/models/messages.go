package models

import (
	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/player"
)

// CourseMsg is sent when fetching the protocol finished
type CourseMsg struct {
	Course *domain.Course
	Error  error
}

// PlayerStartedMsg is sent once the video player process is up, or failed to come up
type PlayerStartedMsg struct {
	Error error
}

// PlayerEventMsg carries one notification from the video player
type PlayerEventMsg struct {
	Event player.Event
}

// TimerFiredMsg carries a due scheduler callback.  It must run on the UI goroutine.
type TimerFiredMsg struct {
	Fn func()
}
