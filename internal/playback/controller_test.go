package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	controller *Controller
	scheduler  *manualScheduler
	widget     *fakeWidget
	loader     *fakeLoader
	fullscreen *fakeFullscreen
	store      *fakeStore
}

func testCourse() *domain.Course {
	return &domain.Course{
		ID:    "c1",
		Title: "Focus",
		Videos: []domain.Video{
			{ID: "a", Title: "First", YoutubeID: "aaaaaaaaaaa", Type: domain.VideoTypeVideo, Duration: "00:30"},
			{ID: "b", Title: "Second", YoutubeID: "bbbbbbbbbbb", Type: domain.VideoTypeVideo, Duration: "01:00"},
			{ID: "c", Title: "Third", YoutubeID: "PLccc", Type: domain.VideoTypePlaylist},
		},
	}
}

func newHarness(t *testing.T, course *domain.Course) *harness {
	t.Helper()
	h := &harness{
		scheduler:  &manualScheduler{},
		widget:     &fakeWidget{duration: 100, volume: 80},
		loader:     &fakeLoader{},
		fullscreen: &fakeFullscreen{enabled: true},
		store:      &fakeStore{},
	}
	h.controller = NewController(course, Options{
		Loader:     h.loader,
		Fullscreen: h.fullscreen,
		Store:      h.store,
		Scheduler:  h.scheduler,
	})
	h.controller.Mount()
	return h
}

// ready reports the fake widget as loaded
func (h *harness) ready() {
	h.controller.OnWidgetReady(h.widget)
}

func (h *harness) play() {
	h.controller.OnWidgetStateChange(StatePlaying)
}

func TestMountLoadsFirstModule(t *testing.T) {
	h := newHarness(t, testCourse())

	session := h.controller.Session()
	assert.Equal(t, 0, session.ActiveVideoIndex)
	assert.True(t, session.ControlsVisible)
	assert.False(t, session.Invalid)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=aaaaaaaaaaa"}, h.loader.loads)
}

func TestWidgetReadyReadsInitialState(t *testing.T) {
	h := newHarness(t, testCourse())
	h.widget.muted = true
	h.ready()

	session := h.controller.Session()
	assert.Equal(t, 100.0, session.DurationSeconds)
	assert.Equal(t, 80.0, session.Volume)
	assert.True(t, session.Muted)
}

func TestSeekCommit(t *testing.T) {
	for _, fraction := range []float64{0, 0.1, 0.25, 0.5, 0.75, MaxFraction} {
		h := newHarness(t, testCourse())
		h.ready()
		h.play()

		h.controller.SeekBegin()
		h.controller.SeekPreview(fraction)
		h.controller.SeekCommit(fraction)

		session := h.controller.Session()
		require.Len(t, h.widget.seeks, 1)
		assert.InDelta(t, fraction*100, h.widget.seeks[0], 1e-9)
		assert.False(t, session.Seeking)
		assert.Equal(t, fraction, session.PlayedFraction)

		// Polling resumes after the commit
		h.widget.currentTime = 42
		h.scheduler.Advance(time.Second)
		assert.InDelta(t, 0.42, h.controller.Session().PlayedFraction, 1e-9, "fraction %v", fraction)
	}
}

func TestSeekClampsFraction(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()

	h.controller.SeekPreview(1.5)
	assert.Equal(t, MaxFraction, h.controller.Session().PlayedFraction)

	h.controller.SeekCommit(-1)
	assert.Equal(t, 0.0, h.controller.Session().PlayedFraction)
	assert.Equal(t, []float64{0}, h.widget.seeks)
}

func TestPollDoesNotOverwriteWhileSeeking(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.play()

	h.controller.SeekBegin()
	h.controller.SeekPreview(0.3)

	for i := 1; i <= 20; i++ {
		h.widget.currentTime = float64(i * 3)
		h.scheduler.Advance(time.Second)
		assert.Equal(t, 0.3, h.controller.Session().PlayedFraction)
	}
	assert.Empty(t, h.widget.seeks, "preview must not command the widget")

	h.controller.SeekEnd()
	h.scheduler.Advance(time.Second)
	assert.InDelta(t, 0.6, h.controller.Session().PlayedFraction, 1e-9)
}

func TestPollSkipsWithoutDuration(t *testing.T) {
	h := newHarness(t, testCourse())
	h.widget.duration = 0
	h.ready()
	h.play()

	h.widget.currentTime = 10
	h.scheduler.Advance(3 * time.Second)
	assert.Equal(t, 0.0, h.controller.Session().PlayedFraction)
}

func TestPollInterval(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.play()

	h.widget.currentTime = 50
	h.scheduler.Advance(999 * time.Millisecond)
	assert.Equal(t, 0.0, h.controller.Session().PlayedFraction)

	h.scheduler.Advance(time.Millisecond)
	assert.Equal(t, 0.5, h.controller.Session().PlayedFraction)
}

func TestNavigateBoundaries(t *testing.T) {
	h := newHarness(t, testCourse())

	h.controller.Navigate(Prev)
	assert.Equal(t, 0, h.controller.Session().ActiveVideoIndex)
	assert.Len(t, h.loader.loads, 1)

	h.controller.Navigate(Next)
	h.controller.Navigate(Next)
	assert.Equal(t, 2, h.controller.Session().ActiveVideoIndex)

	h.controller.Navigate(Next)
	assert.Equal(t, 2, h.controller.Session().ActiveVideoIndex)
	assert.Len(t, h.loader.loads, 3)
	assert.Equal(t, "https://www.youtube.com/playlist?list=PLccc", h.loader.loads[2])
}

func TestNavigateResetsSession(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.play()
	h.widget.currentTime = 50
	h.scheduler.Advance(time.Second)
	h.controller.VolumeChange(30)

	h.controller.Navigate(Next)

	session := h.controller.Session()
	assert.Equal(t, 1, session.ActiveVideoIndex)
	assert.Equal(t, 0.0, session.PlayedFraction)
	assert.Equal(t, 0.0, session.DurationSeconds)
	assert.False(t, session.Playing)
	assert.Equal(t, StateUnstarted, session.State)
	assert.Equal(t, 30.0, session.Volume)
	assert.Equal(t, 1, h.scheduler.Pending(), "only the controls countdown should remain")

	// The old widget is gone until the new module is ready
	h.controller.TogglePlayPause()
	assert.Equal(t, 0, h.widget.plays)
}

func TestSelect(t *testing.T) {
	h := newHarness(t, testCourse())

	h.controller.Select(2)
	assert.Equal(t, 2, h.controller.Session().ActiveVideoIndex)

	h.controller.Select(5)
	h.controller.Select(-1)
	h.controller.Select(2)
	assert.Equal(t, 2, h.controller.Session().ActiveVideoIndex)
	assert.Len(t, h.loader.loads, 2)
}

func TestSinglePollLoop(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.play()
	h.play()

	// One controls countdown plus one poll timer
	assert.Equal(t, 2, h.scheduler.Pending())

	for i := 1; i <= 5; i++ {
		h.scheduler.Advance(time.Second)
		assert.Equal(t, i, h.widget.timeQueries, "one poll per tick")
	}
}

func TestPollStopsWhenNotPlaying(t *testing.T) {
	for _, state := range []State{StatePaused, StateBuffering, StateUnstarted, StateEnded} {
		h := newHarness(t, testCourse())
		h.ready()
		h.play()
		h.controller.OnWidgetStateChange(state)

		assert.False(t, h.controller.Session().Playing)
		h.scheduler.Advance(5 * time.Second)
		assert.Zero(t, h.widget.timeQueries, "state %s", state)
	}
}

func TestControlsDebounce(t *testing.T) {
	h := newHarness(t, testCourse())

	h.scheduler.Advance(3 * time.Second)
	assert.False(t, h.controller.Session().ControlsVisible)

	h.controller.Activity()
	assert.True(t, h.controller.Session().ControlsVisible)

	// Signals spaced under the timeout keep the controls up
	for i := 0; i < 5; i++ {
		h.scheduler.Advance(2900 * time.Millisecond)
		assert.True(t, h.controller.Session().ControlsVisible)
		h.controller.Activity()
	}

	h.scheduler.Advance(2999 * time.Millisecond)
	assert.True(t, h.controller.Session().ControlsVisible)
	h.scheduler.Advance(time.Millisecond)
	assert.False(t, h.controller.Session().ControlsVisible)
}

func TestTogglePlayPause(t *testing.T) {
	h := newHarness(t, testCourse())

	h.controller.TogglePlayPause()
	assert.Zero(t, h.widget.plays, "no widget yet")

	h.ready()
	h.controller.TogglePlayPause()
	assert.Equal(t, 1, h.widget.plays)

	h.play()
	h.controller.TogglePlayPause()
	assert.Equal(t, 1, h.widget.pauses)
	assert.True(t, h.controller.Session().Playing, "playing only changes on widget events")
}

func TestTogglePlayPauseSignalsActivity(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.scheduler.Advance(3 * time.Second)
	require.False(t, h.controller.Session().ControlsVisible)

	h.controller.TogglePlayPause()
	assert.True(t, h.controller.Session().ControlsVisible)
}

func TestTogglePlayPauseWithoutWidgetStillSignalsActivity(t *testing.T) {
	h := newHarness(t, testCourse())
	h.scheduler.Advance(3 * time.Second)
	require.False(t, h.controller.Session().ControlsVisible)

	h.controller.TogglePlayPause()
	assert.True(t, h.controller.Session().ControlsVisible)
	assert.Zero(t, h.widget.plays)
}

func TestEndedMarksCompleteWithoutAdvancing(t *testing.T) {
	course := &domain.Course{
		ID: "c1",
		Videos: []domain.Video{
			{ID: "a", YoutubeID: "aaaaaaaaaaa", Duration: "00:30"},
			{ID: "b", YoutubeID: "bbbbbbbbbbb", Duration: "01:00"},
		},
	}
	h := newHarness(t, course)
	h.ready()
	h.play()

	h.controller.OnWidgetStateChange(StateEnded)

	assert.True(t, course.Videos[0].IsCompleted)
	assert.False(t, course.Videos[1].IsCompleted)
	assert.Equal(t, 0, h.controller.Session().ActiveVideoIndex)
	assert.Eventually(t, func() bool {
		return len(h.store.Calls()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, persistCall{"c1", "a", true}, h.store.Calls()[0])
}

func TestReplayAfterEnded(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.play()
	h.controller.OnWidgetStateChange(StateEnded)

	h.play()
	assert.True(t, h.controller.Session().Playing)
	h.scheduler.Advance(time.Second)
	assert.Equal(t, 1, h.widget.timeQueries)
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	course := testCourse()
	h := newHarness(t, course)

	h.controller.MarkComplete("b", true)
	h.controller.MarkComplete("b", true)
	h.controller.MarkComplete("missing", true)

	assert.True(t, course.Videos[1].IsCompleted)
	assert.Eventually(t, func() bool {
		return len(h.store.Calls()) == 1
	}, time.Second, 5*time.Millisecond)

	h.controller.MarkComplete("b", false)
	assert.False(t, course.Videos[1].IsCompleted)
	assert.Eventually(t, func() bool {
		return len(h.store.Calls()) == 2
	}, time.Second, 5*time.Millisecond)
}

// A failed write is only logged, so local and remote state can disagree afterwards
func TestRemoteFailureKeepsLocalState(t *testing.T) {
	course := testCourse()
	h := newHarness(t, course)
	h.store.err = errors.New("backend unavailable")

	h.controller.MarkComplete("a", true)

	assert.Eventually(t, func() bool {
		return len(h.store.Calls()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, course.Videos[0].IsCompleted, "local state is not rolled back")
}

func TestToggleComplete(t *testing.T) {
	course := testCourse()
	h := newHarness(t, course)

	h.controller.ToggleComplete()
	assert.True(t, course.Videos[0].IsCompleted)
	h.controller.ToggleComplete()
	assert.False(t, course.Videos[0].IsCompleted)
}

func TestVolumeChangeUnmutes(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()

	h.controller.ToggleMute()
	require.True(t, h.controller.Session().Muted)

	h.controller.VolumeChange(40)

	session := h.controller.Session()
	assert.False(t, session.Muted)
	assert.False(t, h.widget.muted)
	assert.Equal(t, 40.0, session.Volume)
	assert.Equal(t, []float64{40}, h.widget.volumes)
}

func TestVolumeZeroKeepsMute(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.controller.ToggleMute()

	h.controller.VolumeChange(0)
	assert.True(t, h.controller.Session().Muted)
	assert.Zero(t, h.widget.unmutes)

	h.controller.VolumeChange(250)
	assert.Equal(t, 100.0, h.controller.Session().Volume)
}

func TestToggleMuteReadsBack(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()

	h.controller.ToggleMute()
	assert.True(t, h.controller.Session().Muted)
	h.controller.ToggleMute()
	assert.False(t, h.controller.Session().Muted)
}

func TestFullscreenWaitsForProviderEvent(t *testing.T) {
	h := newHarness(t, testCourse())

	h.controller.ToggleFullscreen()
	assert.Equal(t, 1, h.fullscreen.toggles)
	assert.False(t, h.controller.Session().Fullscreen, "no optimistic update")

	h.controller.OnFullscreenChange(true)
	assert.True(t, h.controller.Session().Fullscreen)

	// Exited externally
	h.controller.OnFullscreenChange(false)
	assert.False(t, h.controller.Session().Fullscreen)
}

func TestFullscreenUnavailable(t *testing.T) {
	h := newHarness(t, testCourse())
	h.fullscreen.enabled = false

	h.controller.ToggleFullscreen()
	assert.Zero(t, h.fullscreen.toggles)

	controller := NewController(testCourse(), Options{Scheduler: &manualScheduler{}})
	controller.Mount()
	assert.NotPanics(t, controller.ToggleFullscreen)
}

func TestInvalidModule(t *testing.T) {
	course := &domain.Course{ID: "c1", Videos: []domain.Video{{ID: "x", URL: "https://example.com/video"}}}
	h := newHarness(t, course)

	assert.True(t, h.controller.Session().Invalid)
	assert.Empty(t, h.loader.loads)

	h.ready()
	h.controller.TogglePlayPause()
	assert.Zero(t, h.widget.plays)
}

func TestEmptyCourse(t *testing.T) {
	h := newHarness(t, &domain.Course{ID: "empty"})

	assert.True(t, h.controller.Session().Invalid)
	assert.Nil(t, h.controller.CurrentVideo())
	assert.NotPanics(t, func() {
		h.controller.Navigate(Next)
		h.controller.ToggleComplete()
	})
}

func TestWidgetInitFailure(t *testing.T) {
	t.Run("LoadError", func(t *testing.T) {
		course := testCourse()
		scheduler := &manualScheduler{}
		controller := NewController(course, Options{Loader: &fakeLoader{err: errors.New("mpv missing")}, Scheduler: scheduler})
		controller.Mount()

		assert.True(t, controller.Session().Invalid)
	})

	t.Run("NilHandle", func(t *testing.T) {
		h := newHarness(t, testCourse())
		h.controller.OnWidgetReady(nil)

		assert.True(t, h.controller.Session().Invalid)
		assert.NotPanics(t, h.controller.TogglePlayPause)
	})

	t.Run("NextModuleRecovers", func(t *testing.T) {
		h := newHarness(t, testCourse())
		h.controller.OnWidgetError(errors.New("boom"))
		require.True(t, h.controller.Session().Invalid)

		h.controller.Navigate(Next)
		assert.False(t, h.controller.Session().Invalid)
	})
}

func TestStateChangeBeforeReadyIgnored(t *testing.T) {
	h := newHarness(t, testCourse())

	h.play()
	assert.False(t, h.controller.Session().Playing)
	assert.Equal(t, 1, h.scheduler.Pending(), "no poll loop without a widget")
}

func TestUnmountReleasesTimers(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.play()
	require.Equal(t, 2, h.scheduler.Pending())

	h.controller.Unmount()
	assert.Zero(t, h.scheduler.Pending())

	// Late signals are dropped
	h.controller.OnWidgetStateChange(StatePlaying)
	h.controller.OnWidgetReady(h.widget)
	h.controller.Activity()
	h.scheduler.Advance(10 * time.Second)
	assert.Zero(t, h.scheduler.Pending())
	assert.Zero(t, h.widget.timeQueries)
}

func TestUnmountedSessionIgnoresSeekAndMute(t *testing.T) {
	h := newHarness(t, testCourse())
	h.ready()
	h.controller.SeekBegin()
	h.controller.Unmount()

	h.controller.SeekEnd()
	h.controller.ToggleMute()

	session := h.controller.Session()
	assert.True(t, session.Seeking, "session is frozen after unmount")
	assert.False(t, session.Muted)
	assert.False(t, h.widget.muted)
}

func TestRemountStartsFreshSession(t *testing.T) {
	h := newHarness(t, testCourse())
	h.controller.Navigate(Next)
	h.controller.Unmount()

	h.controller.Mount()
	assert.Equal(t, 0, h.controller.Session().ActiveVideoIndex)
	assert.True(t, h.controller.Mounted())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "ended", StateEnded.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestElapsedSeconds(t *testing.T) {
	assert.Equal(t, 25.0, Session{PlayedFraction: 0.25, DurationSeconds: 100}.ElapsedSeconds())
}
