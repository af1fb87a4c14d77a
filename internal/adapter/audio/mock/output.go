// Package mock provides a mock implementation of the AudioOutput interface.
// It simulates media playback in memory so services can be tested without a
// sound device.
package mock

import (
	"sync"
	"time"

	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

// DefaultDuration is the simulated length of every loaded source.
const DefaultDuration = 3 * time.Minute

// Output is a mock implementation of the AudioOutput interface.
//
// Thread-safety: all operations are guarded by an internal mutex.
type Output struct {
	sources    map[domain.MediaHandle]*mockSource
	nextHandle domain.MediaHandle
	mu         sync.RWMutex

	// Behavior configuration for error scenarios.
	failLoad bool
	failPlay bool

	// loadedKeys records every track key ever loaded, in order (for tests).
	loadedKeys []string
}

type mockSource struct {
	src      domain.MediaSource
	duration time.Duration
	position time.Duration
	volume   float64
	status   domain.PlaybackStatus
}

// NewOutput creates a new mock audio output.
func NewOutput() *Output {
	return &Output{
		sources:    make(map[domain.MediaHandle]*mockSource),
		nextHandle: 1,
	}
}

// SetFailLoad configures the mock to fail Load calls.
func (m *Output) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to fail Play calls.
func (m *Output) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// Load registers a simulated source and returns its handle.
func (m *Output) Load(src domain.MediaSource) (domain.MediaHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failLoad {
		return domain.InvalidMediaHandle, domain.NewAudioOutputError("load", src.Name, "mock load failed", nil)
	}
	if len(src.Data) == 0 && src.StreamURL == "" {
		return domain.InvalidMediaHandle, domain.NewAudioOutputError("load", src.Name, "empty media source", nil)
	}

	handle := m.nextHandle
	m.nextHandle++

	m.sources[handle] = &mockSource{
		src:      src,
		duration: DefaultDuration,
		volume:   1.0,
		status:   domain.StatusStopped,
	}
	m.loadedKeys = append(m.loadedKeys, src.TrackKey)

	return handle, nil
}

// Unload releases a previously loaded source.
func (m *Output) Unload(handle domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sources[handle]; !ok {
		return domain.ErrInvalidMediaHandle
	}
	delete(m.sources, handle)
	return nil
}

// Play starts or resumes simulated playback.
func (m *Output) Play(handle domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPlay {
		return domain.NewAudioOutputError("play", "", "mock play failed", nil)
	}
	src, ok := m.sources[handle]
	if !ok {
		return domain.ErrInvalidMediaHandle
	}

	if src.status == domain.StatusStopped {
		src.position = 0
	}
	src.status = domain.StatusPlaying
	return nil
}

// Pause pauses simulated playback, keeping the position.
func (m *Output) Pause(handle domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.sources[handle]
	if !ok {
		return domain.ErrInvalidMediaHandle
	}
	if src.status == domain.StatusPlaying {
		src.status = domain.StatusPaused
	}
	return nil
}

// Stop halts playback and rewinds without unloading.
func (m *Output) Stop(handle domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.sources[handle]
	if !ok {
		return domain.ErrInvalidMediaHandle
	}
	src.status = domain.StatusStopped
	src.position = 0
	return nil
}

// Status returns the simulated transport status.
func (m *Output) Status(handle domain.MediaHandle) (domain.PlaybackStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.sources[handle]
	if !ok {
		return domain.StatusStopped, domain.ErrInvalidMediaHandle
	}
	return src.status, nil
}

// Position returns the simulated position.
func (m *Output) Position(handle domain.MediaHandle) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.sources[handle]
	if !ok {
		return 0, domain.ErrInvalidMediaHandle
	}
	return src.position, nil
}

// Duration returns the simulated duration.
func (m *Output) Duration(handle domain.MediaHandle) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.sources[handle]
	if !ok {
		return 0, domain.ErrInvalidMediaHandle
	}
	return src.duration, nil
}

// Seek sets the simulated position.
func (m *Output) Seek(handle domain.MediaHandle, position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.sources[handle]
	if !ok {
		return domain.ErrInvalidMediaHandle
	}
	if position < 0 || position > src.duration {
		return domain.ErrInvalidPosition
	}
	src.position = position
	return nil
}

// SetVolume sets the simulated volume.
func (m *Output) SetVolume(handle domain.MediaHandle, volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.sources[handle]
	if !ok {
		return domain.ErrInvalidMediaHandle
	}
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}
	src.volume = volume
	return nil
}

// Close releases every loaded source.
func (m *Output) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = make(map[domain.MediaHandle]*mockSource)
	return nil
}

// Test helpers.

// SetDuration overrides the simulated duration for a loaded source.
func (m *Output) SetDuration(handle domain.MediaHandle, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.sources[handle]
	if !ok {
		return domain.ErrInvalidMediaHandle
	}
	src.duration = d
	return nil
}

// FinishTrack simulates the source reaching its natural end: playback
// stops with the position parked at the duration.
func (m *Output) FinishTrack(handle domain.MediaHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.sources[handle]
	if !ok {
		return domain.ErrInvalidMediaHandle
	}
	src.position = src.duration
	src.status = domain.StatusStopped
	return nil
}

// FinishCurrent finishes the single loaded source. Errors when zero or
// several sources are loaded, since "current" would be ambiguous.
func (m *Output) FinishCurrent() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sources) != 1 {
		return domain.ErrInvalidMediaHandle
	}
	for _, src := range m.sources {
		src.position = src.duration
		src.status = domain.StatusStopped
	}
	return nil
}

// LoadedCount returns the number of currently loaded sources.
func (m *Output) LoadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources)
}

// LoadedKeys returns every track key passed to Load, in order.
func (m *Output) LoadedKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, len(m.loadedKeys))
	copy(keys, m.loadedKeys)
	return keys
}

// Volume returns the volume applied to a loaded source.
func (m *Output) Volume(handle domain.MediaHandle) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.sources[handle]
	if !ok {
		return 0, domain.ErrInvalidMediaHandle
	}
	return src.volume, nil
}

// Verify that Output implements the AudioOutput interface.
var _ ports.AudioOutput = (*Output)(nil)
