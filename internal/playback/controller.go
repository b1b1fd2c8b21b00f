// Package playback drives a protocol's player view: widget commands, the progress poll,
// the controls countdown and module completion.  A Controller must only be used from one goroutine.
package playback

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/log"
	"github.com/PizzaHomicide/shuchu/internal/youtube"
)

const (
	DefaultPollInterval    = time.Second
	DefaultControlsTimeout = 3 * time.Second
	DefaultPersistTimeout  = 10 * time.Second
)

// ErrNoWidget is reported when the widget host signals readiness without a usable handle
var ErrNoWidget = errors.New("widget did not initialise")

type Options struct {
	Loader     Loader
	Fullscreen Fullscreen
	Store      CompletionStore
	Scheduler  Scheduler

	PollInterval    time.Duration
	ControlsTimeout time.Duration
	PersistTimeout  time.Duration
}

type Controller struct {
	course  *domain.Course
	session Session
	widget  Widget
	mounted bool

	loader     Loader
	fullscreen Fullscreen
	store      CompletionStore
	scheduler  Scheduler

	pollInterval    time.Duration
	controlsTimeout time.Duration
	persistTimeout  time.Duration

	cancelPoll     func()
	cancelControls func()
	// Incremented on every poll start so ticks of a replaced loop are dropped
	pollGeneration int
}

func NewController(course *domain.Course, opts Options) *Controller {
	c := &Controller{
		course:          course,
		session:         newSession(),
		loader:          opts.Loader,
		fullscreen:      opts.Fullscreen,
		store:           opts.Store,
		scheduler:       opts.Scheduler,
		pollInterval:    opts.PollInterval,
		controlsTimeout: opts.ControlsTimeout,
		persistTimeout:  opts.PersistTimeout,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.controlsTimeout <= 0 {
		c.controlsTimeout = DefaultControlsTimeout
	}
	if c.persistTimeout <= 0 {
		c.persistTimeout = DefaultPersistTimeout
	}
	return c
}

// Session returns a snapshot of the current session
func (c *Controller) Session() Session {
	return c.session
}

func (c *Controller) Course() *domain.Course {
	return c.course
}

// CurrentVideo returns the active module, or nil for a protocol without modules
func (c *Controller) CurrentVideo() *domain.Video {
	if c.session.ActiveVideoIndex < 0 || c.session.ActiveVideoIndex >= len(c.course.Videos) {
		return nil
	}
	return &c.course.Videos[c.session.ActiveVideoIndex]
}

func (c *Controller) Mounted() bool {
	return c.mounted
}

// Mount starts a fresh session on the first module and loads it
func (c *Controller) Mount() {
	if c.mounted {
		return
	}
	c.mounted = true
	c.session = newSession()
	c.session.resetForVideo(0)
	log.Info("Player view mounted", "course_id", c.course.ID, "modules", len(c.course.Videos))

	c.Activity()
	c.loadCurrent()
}

// Unmount releases every timer and the widget handle.  Signals arriving afterwards are ignored.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	c.stopPoll()
	if c.cancelControls != nil {
		c.cancelControls()
		c.cancelControls = nil
	}
	c.widget = nil
	c.mounted = false
	log.Info("Player view unmounted", "course_id", c.course.ID)
}

func (c *Controller) loadCurrent() {
	video := c.CurrentVideo()
	if video == nil {
		c.session.Invalid = true
		return
	}

	url := youtube.PlaybackURL(*video)
	if url == "" {
		log.Warn("Module has no playable identifier", "video_id", video.ID, "url", video.URL)
		c.session.Invalid = true
		return
	}
	if c.loader == nil {
		return
	}

	log.Debug("Loading module", "video_id", video.ID, "url", url, "playlist", youtube.IsPlaylist(*video))
	if err := c.loader.Load(url); err != nil {
		c.OnWidgetError(err)
	}
}

// OnWidgetReady captures the widget handle and reads its initial state
func (c *Controller) OnWidgetReady(w Widget) {
	if !c.mounted || c.session.Invalid {
		return
	}
	if w == nil {
		c.OnWidgetError(ErrNoWidget)
		return
	}

	c.widget = w
	c.session.DurationSeconds = w.Duration()
	c.session.Volume = clamp(w.Volume(), 0, 100)
	c.session.Muted = w.IsMuted()
	log.Debug("Widget ready", "duration", c.session.DurationSeconds, "volume", c.session.Volume, "muted", c.session.Muted)
}

// OnWidgetError puts the view into the invalid video state
func (c *Controller) OnWidgetError(err error) {
	if !c.mounted {
		return
	}
	log.Error("Widget failed", "error", err)
	c.stopPoll()
	c.widget = nil
	c.session.Playing = false
	c.session.Invalid = true
}

// OnWidgetStateChange applies a state reported by the widget.  States reported before the widget is ready are ignored.
func (c *Controller) OnWidgetStateChange(state State) {
	if !c.mounted || c.widget == nil {
		return
	}
	log.Trace("Widget state changed", "from", c.session.State.String(), "to", state.String())
	c.session.State = state

	if state == StatePlaying {
		c.session.Playing = true
		c.startPoll()
		return
	}

	c.session.Playing = false
	c.stopPoll()

	if state == StateEnded {
		if video := c.CurrentVideo(); video != nil {
			c.MarkComplete(video.ID, true)
		}
	}
}

// TogglePlayPause always counts as activity, but only commands a ready widget
func (c *Controller) TogglePlayPause() {
	c.Activity()
	if c.widget == nil {
		return
	}
	if c.session.Playing {
		c.widget.Pause()
	} else {
		c.widget.Play()
	}
}

// SeekPreview moves the displayed position without commanding the widget
func (c *Controller) SeekPreview(fraction float64) {
	if !c.mounted {
		return
	}
	c.session.PlayedFraction = clamp(fraction, 0, MaxFraction)
}

// SeekCommit seeks the widget to fraction of the duration and ends the seek gesture
func (c *Controller) SeekCommit(fraction float64) {
	if !c.mounted {
		return
	}
	fraction = clamp(fraction, 0, MaxFraction)
	c.session.Seeking = false
	c.session.PlayedFraction = fraction
	if c.widget != nil {
		c.widget.SeekTo(fraction * c.session.DurationSeconds)
	}
}

// SeekBegin suppresses progress updates until SeekCommit or SeekEnd
func (c *Controller) SeekBegin() {
	if c.mounted {
		c.session.Seeking = true
	}
}

func (c *Controller) SeekEnd() {
	if c.mounted {
		c.session.Seeking = false
	}
}

// VolumeChange sets the volume, unmuting when an audible volume is chosen
func (c *Controller) VolumeChange(volume float64) {
	if !c.mounted {
		return
	}
	volume = clamp(volume, 0, 100)
	c.session.Volume = volume
	if c.widget == nil {
		return
	}
	c.widget.SetVolume(volume)
	if volume > 0 && c.session.Muted {
		c.widget.Unmute()
		c.session.Muted = false
	}
}

func (c *Controller) ToggleMute() {
	if !c.mounted || c.widget == nil {
		return
	}
	if c.session.Muted {
		c.widget.Unmute()
	} else {
		c.widget.Mute()
	}
	c.session.Muted = c.widget.IsMuted()
}

// ToggleFullscreen asks the provider to toggle.  The flag itself only moves on OnFullscreenChange.
func (c *Controller) ToggleFullscreen() {
	if !c.mounted || c.fullscreen == nil || !c.fullscreen.Enabled() {
		return
	}
	if err := c.fullscreen.Toggle(); err != nil {
		log.Warn("Failed to toggle fullscreen", "error", err)
	}
}

func (c *Controller) OnFullscreenChange(fullscreen bool) {
	if c.mounted {
		c.session.Fullscreen = fullscreen
	}
}

// Navigate moves one module back or forward.  It does nothing at either end of the protocol.
func (c *Controller) Navigate(dir Direction) {
	c.Select(c.session.ActiveVideoIndex + int(dir))
}

// Select jumps to the module at index.  Out of range indexes and the active module are ignored.
func (c *Controller) Select(index int) {
	if !c.mounted || index < 0 || index >= len(c.course.Videos) || index == c.session.ActiveVideoIndex {
		return
	}

	c.stopPoll()
	c.widget = nil
	c.session.resetForVideo(index)
	log.Info("Switched module", "course_id", c.course.ID, "index", index, "video_id", c.course.Videos[index].ID)
	c.loadCurrent()
}

// MarkComplete sets a module's completion flag locally and persists it in the background.
// The local change is kept even if persisting fails.
func (c *Controller) MarkComplete(videoID string, completed bool) {
	i := c.course.VideoIndex(videoID)
	if i < 0 {
		log.Warn("Cannot mark unknown module", "video_id", videoID)
		return
	}
	if c.course.Videos[i].IsCompleted == completed {
		return
	}
	c.course.Videos[i].IsCompleted = completed
	log.Info("Module completion changed", "course_id", c.course.ID, "video_id", videoID, "completed", completed)

	if c.store == nil {
		return
	}
	courseID := c.course.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.persistTimeout)
		defer cancel()
		if err := c.store.PersistCompletion(ctx, courseID, videoID, completed); err != nil {
			log.Warn("Completion not persisted, local state kept", "course_id", courseID, "video_id", videoID, "error", err)
		}
	}()
}

// ToggleComplete flips the completion flag of the active module
func (c *Controller) ToggleComplete() {
	if video := c.CurrentVideo(); video != nil {
		c.MarkComplete(video.ID, !video.IsCompleted)
	}
}

// Activity shows the controls and restarts the inactivity countdown
func (c *Controller) Activity() {
	if !c.mounted {
		return
	}
	c.session.ControlsVisible = true
	if c.scheduler == nil {
		return
	}
	if c.cancelControls != nil {
		c.cancelControls()
	}
	c.cancelControls = c.scheduler.After(c.controlsTimeout, func() {
		c.cancelControls = nil
		if c.mounted {
			c.session.ControlsVisible = false
		}
	})
}

func (c *Controller) startPoll() {
	c.stopPoll()
	if c.scheduler == nil {
		return
	}
	c.pollGeneration++
	generation := c.pollGeneration

	var tick func()
	tick = func() {
		if !c.mounted || generation != c.pollGeneration {
			return
		}
		c.pollOnce()
		c.cancelPoll = c.scheduler.After(c.pollInterval, tick)
	}
	c.cancelPoll = c.scheduler.After(c.pollInterval, tick)
}

func (c *Controller) stopPoll() {
	c.pollGeneration++
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
}

func (c *Controller) pollOnce() {
	if c.session.Seeking || c.widget == nil {
		return
	}
	duration := c.widget.Duration()
	if duration <= 0 {
		return
	}
	c.session.DurationSeconds = duration
	c.session.PlayedFraction = clamp(c.widget.CurrentTime()/duration, 0, MaxFraction)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return min(max(v, lo), hi)
}
