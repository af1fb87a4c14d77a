package domain

import "time"

// PlaybackStatus represents the transport state of the player.
type PlaybackStatus int

const (
	// StatusStopped indicates no track is playing.
	StatusStopped PlaybackStatus = iota

	// StatusLoading indicates a media source is being resolved or fetched.
	StatusLoading

	// StatusPlaying indicates playback is active.
	StatusPlaying

	// StatusPaused indicates playback is paused.
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// RepeatMode controls what happens when a track reaches its natural end.
type RepeatMode int

const (
	// RepeatOff plays through the order once and stops at the end.
	RepeatOff RepeatMode = iota

	// RepeatAll wraps from the last track back to the first.
	RepeatAll

	// RepeatOne restarts the current track indefinitely.
	RepeatOne
)

// Next cycles off -> all -> one -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// String returns a human-readable representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// MediaHandle is an opaque identifier for a media source loaded into the
// audio output. Handle zero is never valid.
type MediaHandle int64

// InvalidMediaHandle represents an invalid or uninitialized media handle.
const InvalidMediaHandle MediaHandle = 0

// MediaSource is a resolved, playable input for the audio output.
// Exactly one of Data or StreamURL is set: local and downloaded tracks play
// from raw file bytes, streaming tracks from a resolved URL.
type MediaSource struct {
	// TrackKey is the identity of the track this source was resolved for.
	TrackKey string

	// Name is a human-readable source description used in errors (path or URL).
	Name string

	// Data holds the raw audio file bytes for file-backed tracks.
	Data []byte

	// StreamURL is the resolved streaming URL for remote stream tracks.
	StreamURL string
}

// PlaybackState is a point-in-time snapshot of the playback session.
// It is process-local and never persisted.
type PlaybackState struct {
	CurrentTrack *Track
	Status       PlaybackStatus
	Position     time.Duration
	Duration     time.Duration
	Volume       float64
	Shuffle      bool
	Repeat       RepeatMode

	// Order is the active play order next/previous operate over
	// (the shuffled permutation when Shuffle is on).
	Order []Track
}
