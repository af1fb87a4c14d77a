// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrSourceUnavailable is returned when a playable media source could not
	// be loaded or resolved. Playback state is left unchanged.
	ErrSourceUnavailable = errors.New("media source unavailable")

	// ErrNetworkUnavailable is returned when remote streaming is attempted
	// while no network connectivity is available.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrNoTrackLoaded is returned when a transport operation requires a
	// loaded track and none is present.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrInvalidVolume is returned when the volume is out of the [0,1] range.
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrInvalidIndex is returned when a playlist position is out of bounds.
	ErrInvalidIndex = errors.New("invalid track index")

	// ErrPlaylistNotFound is returned when a requested playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrTrackNotFound is returned when a requested track cannot be found.
	ErrTrackNotFound = errors.New("track not found")

	// ErrInvalidMediaHandle is returned when an invalid media handle is used.
	ErrInvalidMediaHandle = errors.New("invalid media handle")

	// ErrInvalidPosition is returned when seeking to an invalid position.
	ErrInvalidPosition = errors.New("invalid playback position")
)

// AudioOutputError wraps a failure of the audio-rendering primitive with
// the operation and source that failed.
type AudioOutputError struct {
	Op      string // operation that failed (e.g. "load", "play", "seek")
	Source  string // media source description (path or URL), if applicable
	Message string
	Err     error
}

func (e *AudioOutputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("audio output %s failed for %q: %s", e.Op, e.Source, e.Message)
	}
	return fmt.Sprintf("audio output %s failed: %s", e.Op, e.Message)
}

func (e *AudioOutputError) Unwrap() error {
	return e.Err
}

// NewAudioOutputError creates a new AudioOutputError.
func NewAudioOutputError(op, source, message string, err error) *AudioOutputError {
	return &AudioOutputError{Op: op, Source: source, Message: message, Err: err}
}

// RepositoryError wraps a persistence failure with the repository and
// operation that failed. Load/save failures are reported to the caller and
// never fatal to the process.
type RepositoryError struct {
	Op      string // operation that failed (e.g. "save", "load")
	Store   string // document name (e.g. "library", "playlists")
	Message string
	Err     error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Store, e.Op, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, store, message string, err error) *RepositoryError {
	return &RepositoryError{Op: op, Store: store, Message: message, Err: err}
}

// RemoteSourceError wraps a failure of the remote search/resolve/download
// backend. The message carries the tool's own error output when available.
type RemoteSourceError struct {
	Op      string // "search", "resolve", "download"
	VideoID string // remote id, if applicable
	Message string
	Err     error
}

func (e *RemoteSourceError) Error() string {
	if e.VideoID != "" {
		return fmt.Sprintf("remote source %s failed for %q: %s", e.Op, e.VideoID, e.Message)
	}
	return fmt.Sprintf("remote source %s failed: %s", e.Op, e.Message)
}

func (e *RemoteSourceError) Unwrap() error {
	return e.Err
}

// NewRemoteSourceError creates a new RemoteSourceError.
func NewRemoteSourceError(op, videoID, message string, err error) *RemoteSourceError {
	return &RemoteSourceError{Op: op, VideoID: videoID, Message: message, Err: err}
}
