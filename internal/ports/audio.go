// Package ports defines interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

import (
	"time"

	"github.com/lucverdier/minuet/internal/domain"
)

// AudioOutput is the interface for the audio-rendering primitive.
// It abstracts the underlying playback library and allows testing with mocks.
//
// The output plays exactly one media source at a time, referenced by an
// opaque handle. Loading a new source while another is attached is a caller
// error: the previous handle must be unloaded first so per-track resources
// (decoders, buffers) are released rather than accumulated.
//
// Implementations must be safe for use from multiple goroutines.
type AudioOutput interface {
	// Load decodes a media source and returns a handle to it.
	// The source stays loaded until Unload is called with the handle.
	Load(src domain.MediaSource) (domain.MediaHandle, error)

	// Unload releases all resources held for a previously loaded source.
	Unload(handle domain.MediaHandle) error

	// Play starts or resumes playback of the loaded source.
	Play(handle domain.MediaHandle) error

	// Pause pauses playback, preserving the position.
	Pause(handle domain.MediaHandle) error

	// Stop halts playback and rewinds to the start without unloading.
	Stop(handle domain.MediaHandle) error

	// Status returns the current transport status for the handle.
	Status(handle domain.MediaHandle) (domain.PlaybackStatus, error)

	// Position returns the current playback position.
	Position(handle domain.MediaHandle) (time.Duration, error)

	// Duration returns the total duration of the loaded source.
	Duration(handle domain.MediaHandle) (time.Duration, error)

	// Seek sets the playback position. Positions outside [0, Duration]
	// are rejected.
	Seek(handle domain.MediaHandle, position time.Duration) error

	// SetVolume sets the output volume, 0.0 (silent) to 1.0 (full).
	SetVolume(handle domain.MediaHandle, volume float64) error

	// Close shuts the output down and releases every loaded source.
	Close() error
}
