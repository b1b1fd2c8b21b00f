package models

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/PizzaHomicide/shuchu/internal/domain"
	"github.com/PizzaHomicide/shuchu/internal/playback"
	"github.com/PizzaHomicide/shuchu/internal/player"
	"github.com/PizzaHomicide/shuchu/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	mu       sync.Mutex
	loaded   []string
	seeks    []float64
	plays    int
	pauses   int
	muted    bool
	volume   float64
	duration float64
	started  bool
	events   chan player.Event
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{volume: 100, duration: 200, events: make(chan player.Event, 8)}
}

func (p *fakePlayer) Load(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = append(p.loaded, url)
	return nil
}

func (p *fakePlayer) Play()  { p.plays++ }
func (p *fakePlayer) Pause() { p.pauses++ }

func (p *fakePlayer) SeekTo(seconds float64) { p.seeks = append(p.seeks, seconds) }

func (p *fakePlayer) CurrentTime() float64     { return 0 }
func (p *fakePlayer) Duration() float64        { return p.duration }
func (p *fakePlayer) Volume() float64          { return p.volume }
func (p *fakePlayer) SetVolume(volume float64) { p.volume = volume }
func (p *fakePlayer) Mute()                    { p.muted = true }
func (p *fakePlayer) Unmute()                  { p.muted = false }
func (p *fakePlayer) IsMuted() bool            { return p.muted }

func (p *fakePlayer) Start(context.Context) error {
	p.started = true
	return nil
}

func (p *fakePlayer) Fullscreen() playback.Fullscreen { return nil }
func (p *fakePlayer) Events() <-chan player.Event     { return p.events }
func (p *fakePlayer) Cleanup()                        {}

func (p *fakePlayer) Loaded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.loaded...)
}

type fakeRepository struct {
	course *domain.Course
	err    error
}

func (r *fakeRepository) ListCourses(context.Context) ([]*domain.Course, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []*domain.Course{r.course}, nil
}

func (r *fakeRepository) GetCourse(_ context.Context, id string) (*domain.Course, error) {
	if r.err != nil {
		return nil, r.err
	}
	if id != r.course.ID {
		return nil, domain.ErrCourseNotFound
	}
	return r.course, nil
}

func (r *fakeRepository) UpdateVideoCompletion(context.Context, string, string, bool) error {
	return nil
}

func (r *fakeRepository) CreateCourse(context.Context, *domain.CreateCourseParams) (*domain.Course, error) {
	return nil, errors.New("not supported")
}

func testCourse() *domain.Course {
	return &domain.Course{
		ID:    "c1",
		Title: "Go in depth",
		Videos: []domain.Video{
			{ID: "v1", Title: "Intro", YoutubeID: "aaaaaaaaaaa", Duration: "03:20"},
			{ID: "v2", Title: "Goroutines", YoutubeID: "bbbbbbbbbbb", Duration: "10:00"},
			{ID: "v3", Title: "Channels", YoutubeID: "ccccccccccc", Duration: "12:00"},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newStartedPlayerModel(t *testing.T) (*PlayerModel, *fakePlayer) {
	t.Helper()
	fp := newFakePlayer()
	controller := playback.NewController(testCourse(), playback.Options{Loader: fp})
	m := NewPlayerModel(controller, fp, nil)
	m.Resize(120, 40)

	cmd := m.Start(nil)
	require.NotNil(t, cmd, "expected a listener for player events")
	require.Equal(t, []string{"https://www.youtube.com/watch?v=aaaaaaaaaaa"}, fp.Loaded())

	m.Update(PlayerEventMsg{Event: player.Event{Type: player.EventReady}})
	return m, fp
}

func TestPlayerModelPlayPauseAfterReady(t *testing.T) {
	m, fp := newStartedPlayerModel(t)

	m.Update(key(" "))
	assert.Equal(t, 1, fp.plays)

	m.Update(PlayerEventMsg{Event: player.Event{Type: player.EventStateChanged, State: playback.StatePlaying}})
	assert.True(t, m.controller.Session().Playing)

	m.Update(key(" "))
	assert.Equal(t, 1, fp.pauses)
}

func TestPlayerModelNextModuleLoadsIt(t *testing.T) {
	m, fp := newStartedPlayerModel(t)

	m.Update(key("n"))
	assert.Equal(t, 1, m.controller.Session().ActiveVideoIndex)
	assert.Equal(t, 1, m.cursor, "cursor follows the active module")
	assert.Equal(t, "https://www.youtube.com/watch?v=bbbbbbbbbbb", fp.Loaded()[1])

	m.Update(key("p"))
	m.Update(key("p"))
	assert.Equal(t, 0, m.controller.Session().ActiveVideoIndex)
	assert.Len(t, fp.Loaded(), 3, "previous from the first module is ignored")
}

func TestPlayerModelSidebarSelect(t *testing.T) {
	m, fp := newStartedPlayerModel(t)

	m.Update(key("j"))
	m.Update(key("j"))
	m.Update(key("enter"))
	assert.Equal(t, 2, m.controller.Session().ActiveVideoIndex)
	assert.Equal(t, "https://www.youtube.com/watch?v=ccccccccccc", fp.Loaded()[1])
}

func TestPlayerModelSearchFiltersModules(t *testing.T) {
	m, _ := newStartedPlayerModel(t)

	m.Update(key("/"))
	require.True(t, m.searchMode)
	for _, r := range "chan" {
		m.Update(key(string(r)))
	}
	assert.Equal(t, []int{2}, m.filtered)

	// Keys typed while searching never reach the player
	assert.Equal(t, 0, m.controller.Session().ActiveVideoIndex)

	m.Update(key("esc"))
	assert.False(t, m.searchMode)
	assert.Equal(t, service.FilterModules(m.controller.Course(), ""), m.filtered)
}

func TestPlayerModelScrubAndCommit(t *testing.T) {
	m, fp := newStartedPlayerModel(t)

	m.Update(key("s"))
	require.True(t, m.seekMode)
	assert.True(t, m.controller.Session().Seeking)

	for i := 0; i < 5; i++ {
		m.Update(key("right"))
	}
	assert.Empty(t, fp.seeks, "previewing does not seek")

	m.Update(key("enter"))
	assert.False(t, m.seekMode)
	assert.False(t, m.controller.Session().Seeking)
	require.Len(t, fp.seeks, 1)
	assert.InDelta(t, 0.05*200, fp.seeks[0], 1e-9)
}

func TestPlayerModelVolumeAndMute(t *testing.T) {
	m, fp := newStartedPlayerModel(t)

	m.Update(key("-"))
	assert.Equal(t, 95.0, fp.volume)

	m.Update(key("m"))
	assert.True(t, m.controller.Session().Muted)

	m.Update(key("+"))
	assert.Equal(t, 100.0, fp.volume)
	assert.False(t, m.controller.Session().Muted, "choosing an audible volume unmutes")
}

func TestPlayerModelClosedPlayerShowsInvalid(t *testing.T) {
	m, _ := newStartedPlayerModel(t)

	_, cmd := m.Update(PlayerEventMsg{Event: player.Event{Type: player.EventClosed}})
	assert.Nil(t, cmd, "no more listening after the player closed")
	assert.True(t, m.controller.Session().Invalid)
	assert.Contains(t, m.View(), "Invalid video")
}

func TestPlayerModelStartFailure(t *testing.T) {
	fp := newFakePlayer()
	controller := playback.NewController(testCourse(), playback.Options{Loader: fp})
	m := NewPlayerModel(controller, fp, nil)
	m.Resize(120, 40)

	cmd := m.Start(errors.New("mpv not found"))
	assert.Nil(t, cmd)
	assert.True(t, controller.Session().Invalid)
	assert.Contains(t, m.View(), "mpv not found")
}

func TestPlayerModelViewListsModules(t *testing.T) {
	m, _ := newStartedPlayerModel(t)
	m.controller.MarkComplete("v1", true)

	view := m.View()
	for _, want := range []string{"Go in depth", "Intro", "Goroutines", "Channels", "1/3 done", "Module 1 of 3"} {
		assert.True(t, strings.Contains(view, want), "view misses %q", want)
	}
}
