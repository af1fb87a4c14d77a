package domain

import "time"

// Playlist is a named, ordered, user-curated sequence of tracks.
//
// Track order is meaningful and user-reorderable. A track identity appears
// at most once per playlist; the PlaylistService enforces this on insert.
type Playlist struct {
	// ID is a unique identifier generated at creation (UUID).
	ID string `json:"id"`

	// Name is the user-visible playlist name.
	Name string `json:"name"`

	// Tracks is the ordered track sequence.
	Tracks []Track `json:"tracks"`

	// CoverImage is an optional cover, stored as a data URL or file path.
	CoverImage string `json:"coverImage,omitempty"`

	// CreatedAt and UpdatedAt are unix milliseconds, matching the persisted
	// document format. UpdatedAt is bumped on every mutation.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// NewPlaylist creates an empty playlist with the given id and name,
// stamping both timestamps with the current time.
func NewPlaylist(id, name string) Playlist {
	now := NowMillis()
	return Playlist{
		ID:        id,
		Name:      name,
		Tracks:    []Track{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Contains reports whether the playlist holds a track with the given identity key.
func (p Playlist) Contains(key string) bool {
	return ContainsKey(p.Tracks, key)
}

// Clone returns a deep-enough copy: the track slice is duplicated so callers
// can mutate the copy without aliasing the original collection.
func (p Playlist) Clone() Playlist {
	out := p
	out.Tracks = make([]Track, len(p.Tracks))
	copy(out.Tracks, p.Tracks)
	return out
}

// NowMillis returns the current wall clock in unix milliseconds.
// Playlist timestamps persist in this unit.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
