// Package feed tracks the playback state of camera feed viewers.
package feed

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrNoFeed         = errors.New("camera has no feed configured")
	ErrUnknownCommand = errors.New("unknown feed command")
)

// State is the playback state of a viewer.
type State string

const (
	StatePlaying      State = "playing"
	StatePaused       State = "paused"
	StateReconnecting State = "reconnecting"
)

// Command is an operator or transport instruction.
type Command string

const (
	CommandPlay      Command = "play"
	CommandPause     Command = "pause"
	CommandToggle    Command = "toggle"
	CommandReconnect Command = "reconnect"
	// CommandConnected is sent by the transport once a reconnect completes.
	CommandConnected Command = "connected"
)

// Source describes the stream behind a viewer.
type Source struct {
	CameraID  string
	URL       string
	Username  string
	Protected bool
}

// Snapshot is the externally visible viewer state.
type Snapshot struct {
	CameraID  string    `json:"cameraId"`
	URL       string    `json:"feedUrl"`
	Username  string    `json:"feedUsername,omitempty"`
	Auth      string    `json:"auth"`
	State     State     `json:"state"`
	ChangedAt time.Time `json:"changedAt"`
}

// Next returns the state reached from s by cmd. Play, pause and toggle are
// ignored while reconnecting; reconnect is accepted from any state.
func Next(s State, cmd Command) (State, error) {
	switch cmd {
	case CommandPlay:
		if s == StatePaused {
			return StatePlaying, nil
		}
	case CommandPause:
		if s == StatePlaying {
			return StatePaused, nil
		}
	case CommandToggle:
		switch s {
		case StatePlaying:
			return StatePaused, nil
		case StatePaused:
			return StatePlaying, nil
		}
	case CommandReconnect:
		return StateReconnecting, nil
	case CommandConnected:
		if s == StateReconnecting {
			return StatePlaying, nil
		}
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return s, nil
}

type viewer struct {
	src     Source
	state   State
	changed time.Time
}

func (v *viewer) snapshot() Snapshot {
	auth := "Open"
	if v.src.Protected {
		auth = "Protected"
	}
	return Snapshot{
		CameraID:  v.src.CameraID,
		URL:       v.src.URL,
		Username:  v.src.Username,
		Auth:      auth,
		State:     v.state,
		ChangedAt: v.changed,
	}
}

// Manager holds one viewer per camera. New viewers start playing.
type Manager struct {
	mu      sync.Mutex
	viewers map[string]*viewer
	now     func() time.Time
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{viewers: make(map[string]*viewer), now: time.Now}
}

func (m *Manager) viewerLocked(src Source) (*viewer, error) {
	if src.URL == "" {
		delete(m.viewers, src.CameraID)
		return nil, ErrNoFeed
	}
	v, ok := m.viewers[src.CameraID]
	if !ok {
		v = &viewer{state: StatePlaying, changed: m.now().UTC()}
		m.viewers[src.CameraID] = v
	}
	if v.src.URL != "" && v.src.URL != src.URL {
		v.state = StatePlaying
		v.changed = m.now().UTC()
	}
	v.src = src
	return v, nil
}

// Get returns the viewer state for src, creating it when first seen.
func (m *Manager) Get(src Source) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.viewerLocked(src)
	if err != nil {
		return Snapshot{}, err
	}
	return v.snapshot(), nil
}

// Apply runs cmd against the viewer for src.
func (m *Manager) Apply(src Source, cmd Command) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.viewerLocked(src)
	if err != nil {
		return Snapshot{}, err
	}
	next, err := Next(v.state, cmd)
	if err != nil {
		return Snapshot{}, err
	}
	if next != v.state {
		v.state = next
		v.changed = m.now().UTC()
	}
	return v.snapshot(), nil
}

// Forget drops the viewer for a camera.
func (m *Manager) Forget(cameraID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.viewers, cameraID)
}
