package playback

import (
	"context"
	"sort"
	"sync"
	"time"
)

type manualTimer struct {
	at        time.Duration
	seq       int
	f         func()
	cancelled bool
	fired     bool
}

// manualScheduler runs timers synchronously as virtual time is advanced
type manualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

func (s *manualScheduler) After(d time.Duration, f func()) func() {
	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

func (s *manualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		var due []*manualTimer
		for _, t := range s.timers {
			if !t.cancelled && !t.fired && t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at == due[j].at {
				return due[i].seq < due[j].seq
			}
			return due[i].at < due[j].at
		})
		next := due[0]
		s.now = next.at
		next.fired = true
		next.f()
	}
	s.now = target
}

func (s *manualScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

type fakeWidget struct {
	currentTime float64
	duration    float64
	volume      float64
	muted       bool

	plays       int
	pauses      int
	seeks       []float64
	volumes     []float64
	unmutes     int
	timeQueries int
}

func (w *fakeWidget) Play()                { w.plays++ }
func (w *fakeWidget) Pause()               { w.pauses++ }
func (w *fakeWidget) SeekTo(s float64)     { w.seeks = append(w.seeks, s) }
func (w *fakeWidget) Duration() float64    { return w.duration }
func (w *fakeWidget) Volume() float64      { return w.volume }
func (w *fakeWidget) SetVolume(v float64)  { w.volume = v; w.volumes = append(w.volumes, v) }
func (w *fakeWidget) Mute()                { w.muted = true }
func (w *fakeWidget) Unmute()              { w.muted = false; w.unmutes++ }
func (w *fakeWidget) IsMuted() bool        { return w.muted }
func (w *fakeWidget) CurrentTime() float64 { w.timeQueries++; return w.currentTime }

type fakeLoader struct {
	loads []string
	err   error
}

func (l *fakeLoader) Load(url string) error {
	l.loads = append(l.loads, url)
	return l.err
}

type fakeFullscreen struct {
	enabled bool
	toggles int
}

func (f *fakeFullscreen) Enabled() bool { return f.enabled }
func (f *fakeFullscreen) Toggle() error {
	f.toggles++
	return nil
}

type persistCall struct {
	courseID  string
	videoID   string
	completed bool
}

type fakeStore struct {
	mu    sync.Mutex
	calls []persistCall
	err   error
}

func (s *fakeStore) PersistCompletion(_ context.Context, courseID, videoID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, persistCall{courseID, videoID, completed})
	return s.err
}

func (s *fakeStore) Calls() []persistCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]persistCall(nil), s.calls...)
}
