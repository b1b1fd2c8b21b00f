package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/PizzaHomicide/shuchu/internal/config"
	"github.com/PizzaHomicide/shuchu/internal/log"
	"github.com/PizzaHomicide/shuchu/internal/playback"
)

var errNotStarted = errors.New("mpv is not running")

// Observed property IDs
const (
	propPause = iota + 1
	propEOFReached
	propPausedForCache
	propTimePos
	propDuration
	propVolume
	propMute
	propFullscreen
)

var observedProperties = map[int]string{
	propPause:          "pause",
	propEOFReached:     "eof-reached",
	propPausedForCache: "paused-for-cache",
	propTimePos:        "time-pos",
	propDuration:       "duration",
	propVolume:         "volume",
	propMute:           "mute",
	propFullscreen:     "fullscreen",
}

// mpvProperties is the last known value of every observed property
type mpvProperties struct {
	paused     bool
	eof        bool
	buffering  bool
	timePos    float64
	duration   float64
	volume     float64
	muted      bool
	fullscreen bool
}

// deriveState maps mpv properties onto a playback state.  A module stays unstarted until it has played once.
func deriveState(p mpvProperties, started bool) playback.State {
	switch {
	case p.eof:
		return playback.StateEnded
	case p.buffering:
		return playback.StateBuffering
	case p.paused && !started:
		return playback.StateUnstarted
	case p.paused:
		return playback.StatePaused
	default:
		return playback.StatePlaying
	}
}

// MPVPlayer implements VideoPlayer with a single long-lived mpv window driven over IPC
type MPVPlayer struct {
	config     *config.Config
	ipcClient  *MPVIPCClient
	cmd        *exec.Cmd
	socketPath string
	events     chan Event
	done       chan struct{}
	closeOnce  sync.Once
	doneOnce   sync.Once

	mu       sync.Mutex
	props    mpvProperties
	state    playback.State
	loaded   bool
	started  bool
	readySet bool
}

// NewMPVPlayer creates a new MPV player instance
func NewMPVPlayer(cfg *config.Config) *MPVPlayer {
	socketPath := GetMPVSocketPath()
	return &MPVPlayer{
		config:     cfg,
		socketPath: socketPath,
		ipcClient:  NewMPVIPCClient(socketPath),
		events:     make(chan Event, 32),
		done:       make(chan struct{}),
		props:      mpvProperties{volume: 100, paused: true},
	}
}

func (p *MPVPlayer) buildArgs() []string {
	args := []string{
		"--no-terminal",
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--pause",
		"--input-ipc-server=" + p.socketPath,
	}
	if p.config.Player.Args != "" {
		args = append(args, ParseArgs(p.config.Player.Args)...)
	}
	return args
}

// Start launches mpv in idle mode and connects to its IPC socket
func (p *MPVPlayer) Start(ctx context.Context) error {
	mpvPath := p.config.Player.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}

	if err := removeStaleSocket(p.socketPath); err != nil {
		return fmt.Errorf("MPV socket path unusable: %w", err)
	}

	args := p.buildArgs()
	log.Info("Starting MPV", "path", mpvPath, "args", args)

	cmd := exec.Command(mpvPath, args...)
	detachFromTerminal(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start MPV: %w", err)
	}
	p.cmd = cmd
	go func() {
		err := cmd.Wait()
		log.Info("MPV process exited", "error", err)
	}()

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := p.ipcClient.WaitForConnection(connCtx, 20, 250*time.Millisecond); err != nil {
		p.kill()
		return fmt.Errorf("failed to connect to MPV: %w", err)
	}

	return p.attach()
}

// attach observes the properties the widget caches and starts translating mpv events
func (p *MPVPlayer) attach() error {
	for id := propPause; id <= propFullscreen; id++ {
		if err := p.ipcClient.ObserveProperty(id, observedProperties[id]); err != nil {
			return fmt.Errorf("failed to observe %s: %w", observedProperties[id], err)
		}
	}
	go p.watch()
	return nil
}

func (p *MPVPlayer) Events() <-chan Event {
	return p.events
}

func (p *MPVPlayer) emit(event Event) {
	select {
	case p.events <- event:
	case <-p.done:
	}
}

func (p *MPVPlayer) watch() {
	for event := range p.ipcClient.Events() {
		p.handleEvent(event)
	}
	log.Debug("MPV connection closed")
	p.emit(Event{Type: EventClosed})
	p.closeOnce.Do(func() { close(p.events) })
}

func (p *MPVPlayer) handleEvent(event MPVEvent) {
	switch event.Event {
	case "file-loaded":
		p.mu.Lock()
		p.loaded = true
		ready := p.markReadyLocked(false)
		p.mu.Unlock()
		log.Debug("MPV file loaded")
		if ready {
			p.emit(Event{Type: EventReady})
		}

	case "playback-restart":
		p.mu.Lock()
		ready := p.markReadyLocked(true)
		p.mu.Unlock()
		if ready {
			p.emit(Event{Type: EventReady})
		}

	case "end-file":
		if event.Reason == "error" {
			log.Warn("MPV could not play file", "error", event.FileError)
			p.emit(Event{Type: EventError, Error: fmt.Errorf("mpv: %s", orDefault(event.FileError, "playback failed"))})
		}

	case "property-change":
		p.handlePropertyChange(event)
	}
}

// markReadyLocked reports whether the loaded file just became controllable.  Ready needs the file loaded and
// either a known duration or a first rendered frame.
func (p *MPVPlayer) markReadyLocked(restarted bool) bool {
	if p.readySet || !p.loaded {
		return false
	}
	if p.props.duration <= 0 && !restarted {
		return false
	}
	p.readySet = true
	return true
}

func (p *MPVPlayer) handlePropertyChange(event MPVEvent) {
	p.mu.Lock()

	switch event.Name {
	case "pause":
		p.props.paused = decodeBool(event.Data)
		if !p.props.paused && p.loaded {
			p.started = true
		}
	case "eof-reached":
		p.props.eof = decodeBool(event.Data)
	case "paused-for-cache":
		p.props.buffering = decodeBool(event.Data)
	case "time-pos":
		p.props.timePos = decodeFloat(event.Data)
	case "duration":
		p.props.duration = decodeFloat(event.Data)
	case "volume":
		p.props.volume = decodeFloat(event.Data)
	case "mute":
		p.props.muted = decodeBool(event.Data)
	case "fullscreen":
		fullscreen := decodeBool(event.Data)
		changed := fullscreen != p.props.fullscreen
		p.props.fullscreen = fullscreen
		p.mu.Unlock()
		if changed {
			p.emit(Event{Type: EventFullscreenChanged, Fullscreen: fullscreen})
		}
		return
	}

	ready := event.Name == "duration" && p.markReadyLocked(false)

	var stateEvent *Event
	if p.readySet || ready {
		if state := deriveState(p.props, p.started); state != p.state {
			p.state = state
			stateEvent = &Event{Type: EventStateChanged, State: state}
		}
	}
	p.mu.Unlock()

	if ready {
		p.emit(Event{Type: EventReady})
	}
	if stateEvent != nil {
		log.Trace("MPV state derived", "state", stateEvent.State.String())
		p.emit(*stateEvent)
	}
}

func decodeBool(data json.RawMessage) bool {
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return false
	}
	return v
}

// decodeFloat treats missing values (mpv sends no data while a property is unavailable) as 0
func decodeFloat(data json.RawMessage) float64 {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Load replaces whatever is playing with url.  Readiness arrives later as EventReady.
func (p *MPVPlayer) Load(url string) error {
	if !p.ipcClient.Connected() {
		return errNotStarted
	}

	p.mu.Lock()
	p.loaded = false
	p.started = false
	p.readySet = false
	p.state = playback.StateUnstarted
	p.props.timePos = 0
	p.props.duration = 0
	p.props.eof = false
	p.mu.Unlock()

	log.Info("Loading into MPV", "url", url)
	if err := p.ipcClient.SendCommand("loadfile", url, "replace"); err != nil {
		return err
	}
	// Every module starts paused
	return p.ipcClient.SetProperty("pause", true)
}

func (p *MPVPlayer) command(args ...any) {
	if err := p.ipcClient.SendCommand(args...); err != nil {
		log.Warn("MPV command failed", "command", args[0], "error", err)
	}
}

func (p *MPVPlayer) Play() {
	p.mu.Lock()
	atEnd := p.props.eof
	p.mu.Unlock()
	if atEnd {
		p.command("seek", 0, "absolute")
	}
	p.command("set_property", "pause", false)
}

func (p *MPVPlayer) Pause() {
	p.command("set_property", "pause", true)
}

func (p *MPVPlayer) SeekTo(seconds float64) {
	p.command("seek", seconds, "absolute")
}

func (p *MPVPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.props.timePos
}

func (p *MPVPlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.props.duration
}

func (p *MPVPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.props.volume
}

func (p *MPVPlayer) SetVolume(volume float64) {
	p.mu.Lock()
	p.props.volume = volume
	p.mu.Unlock()
	p.command("set_property", "volume", volume)
}

func (p *MPVPlayer) Mute() {
	p.setMute(true)
}

func (p *MPVPlayer) Unmute() {
	p.setMute(false)
}

// setMute updates the cache straight away so IsMuted reads back the requested value
func (p *MPVPlayer) setMute(muted bool) {
	p.mu.Lock()
	p.props.muted = muted
	p.mu.Unlock()
	p.command("set_property", "mute", muted)
}

func (p *MPVPlayer) IsMuted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.props.muted
}

func (p *MPVPlayer) Fullscreen() playback.Fullscreen {
	return mpvFullscreen{p}
}

type mpvFullscreen struct {
	p *MPVPlayer
}

func (f mpvFullscreen) Enabled() bool {
	return f.p.ipcClient.Connected()
}

func (f mpvFullscreen) Toggle() error {
	return f.p.ipcClient.SendCommand("cycle", "fullscreen")
}

func (p *MPVPlayer) kill() {
	if p.cmd != nil && p.cmd.Process != nil {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			log.Warn("Failed to kill MPV", "error", err)
		}
	}
}

// Cleanup asks mpv to quit, then releases the connection, the process and the socket
func (p *MPVPlayer) Cleanup() {
	if p.ipcClient.Connected() {
		_ = p.ipcClient.SendCommand("quit")
		p.ipcClient.Close()
	}
	p.doneOnce.Do(func() { close(p.done) })
	p.kill()

	if err := removeStaleSocket(p.socketPath); err != nil {
		log.Warn("Failed to remove MPV socket file", "path", p.socketPath, "error", err)
	}
}
