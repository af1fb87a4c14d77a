// Package domain defines events for the event-driven architecture.
// Events decouple the services from whatever UI layer binds to them.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
type Event interface {
	// Type returns the event type identifier.
	Type() EventType

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackLoaded    EventType = "track.loaded"
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackCompleted EventType = "track.completed"
	EventTrackProgress  EventType = "track.progress"
	EventTrackError     EventType = "track.error"

	// Playback mode events
	EventVolumeChanged  EventType = "volume.changed"
	EventShuffleToggled EventType = "shuffle.toggled"
	EventRepeatChanged  EventType = "repeat.changed"
	EventOrderChanged   EventType = "order.changed"

	// Collection events
	EventLibraryUpdated   EventType = "library.updated"
	EventPlaylistsUpdated EventType = "playlists.updated"
	EventDownloadsUpdated EventType = "downloads.updated"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
type baseEvent struct {
	timestamp time.Time
}

func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackLoadedEvent is published when a media source is attached to the output.
type TrackLoadedEvent struct {
	baseEvent
	Track    Track
	Duration time.Duration
}

func (e TrackLoadedEvent) Type() EventType { return EventTrackLoaded }

// NewTrackLoadedEvent creates a new TrackLoadedEvent.
func NewTrackLoadedEvent(track Track, duration time.Duration) TrackLoadedEvent {
	return TrackLoadedEvent{baseEvent: newBaseEvent(), Track: track, Duration: duration}
}

// TrackStartedEvent is published when playback starts or resumes.
type TrackStartedEvent struct {
	baseEvent
	Track Track
}

func (e TrackStartedEvent) Type() EventType { return EventTrackStarted }

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track) TrackStartedEvent {
	return TrackStartedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    Track
	Position time.Duration
}

func (e TrackPausedEvent) Type() EventType { return EventTrackPaused }

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track Track, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{baseEvent: newBaseEvent(), Track: track, Position: position}
}

// TrackStoppedEvent is published when playback stops and the session goes idle.
type TrackStoppedEvent struct {
	baseEvent
	Track Track
}

func (e TrackStoppedEvent) Type() EventType { return EventTrackStopped }

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(track Track) TrackStoppedEvent {
	return TrackStoppedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackCompletedEvent is published when a track finishes playing naturally.
type TrackCompletedEvent struct {
	baseEvent
	Track Track
}

func (e TrackCompletedEvent) Type() EventType { return EventTrackCompleted }

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(track Track) TrackCompletedEvent {
	return TrackCompletedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackProgressEvent is published periodically during playback.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

func (e TrackProgressEvent) Type() EventType { return EventTrackProgress }

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{baseEvent: newBaseEvent(), Position: position, Duration: duration}
}

// TrackErrorEvent is published when a media source fails to load or play.
// The UI layer is expected to surface these to the user.
type TrackErrorEvent struct {
	baseEvent
	Track Track
	Err   error
}

func (e TrackErrorEvent) Type() EventType { return EventTrackError }

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track Track, err error) TrackErrorEvent {
	return TrackErrorEvent{baseEvent: newBaseEvent(), Track: track, Err: err}
}

// VolumeChangedEvent is published when the output volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

func (e VolumeChangedEvent) Type() EventType { return EventVolumeChanged }

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{baseEvent: newBaseEvent(), Volume: volume}
}

// ShuffleToggledEvent is published when the shuffle flag flips.
type ShuffleToggledEvent struct {
	baseEvent
	Enabled bool
}

func (e ShuffleToggledEvent) Type() EventType { return EventShuffleToggled }

// NewShuffleToggledEvent creates a new ShuffleToggledEvent.
func NewShuffleToggledEvent(enabled bool) ShuffleToggledEvent {
	return ShuffleToggledEvent{baseEvent: newBaseEvent(), Enabled: enabled}
}

// RepeatChangedEvent is published when the repeat mode cycles.
type RepeatChangedEvent struct {
	baseEvent
	Mode RepeatMode
}

func (e RepeatChangedEvent) Type() EventType { return EventRepeatChanged }

// NewRepeatChangedEvent creates a new RepeatChangedEvent.
func NewRepeatChangedEvent(mode RepeatMode) RepeatChangedEvent {
	return RepeatChangedEvent{baseEvent: newBaseEvent(), Mode: mode}
}

// OrderChangedEvent is published when the active play order is replaced.
type OrderChangedEvent struct {
	baseEvent
	Order []Track
}

func (e OrderChangedEvent) Type() EventType { return EventOrderChanged }

// NewOrderChangedEvent creates a new OrderChangedEvent.
func NewOrderChangedEvent(order []Track) OrderChangedEvent {
	return OrderChangedEvent{baseEvent: newBaseEvent(), Order: order}
}

// LibraryUpdatedEvent is published after the library collection changes.
type LibraryUpdatedEvent struct {
	baseEvent
	Tracks []Track
}

func (e LibraryUpdatedEvent) Type() EventType { return EventLibraryUpdated }

// NewLibraryUpdatedEvent creates a new LibraryUpdatedEvent.
func NewLibraryUpdatedEvent(tracks []Track) LibraryUpdatedEvent {
	return LibraryUpdatedEvent{baseEvent: newBaseEvent(), Tracks: tracks}
}

// PlaylistsUpdatedEvent is published after the playlist collection changes.
type PlaylistsUpdatedEvent struct {
	baseEvent
	Playlists []Playlist
}

func (e PlaylistsUpdatedEvent) Type() EventType { return EventPlaylistsUpdated }

// NewPlaylistsUpdatedEvent creates a new PlaylistsUpdatedEvent.
func NewPlaylistsUpdatedEvent(playlists []Playlist) PlaylistsUpdatedEvent {
	return PlaylistsUpdatedEvent{baseEvent: newBaseEvent(), Playlists: playlists}
}

// DownloadsUpdatedEvent is published after the downloaded-remote set changes.
type DownloadsUpdatedEvent struct {
	baseEvent
	Tracks []Track
}

func (e DownloadsUpdatedEvent) Type() EventType { return EventDownloadsUpdated }

// NewDownloadsUpdatedEvent creates a new DownloadsUpdatedEvent.
func NewDownloadsUpdatedEvent(tracks []Track) DownloadsUpdatedEvent {
	return DownloadsUpdatedEvent{baseEvent: newBaseEvent(), Tracks: tracks}
}
