// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the Minuet music player.
package domain

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// TrackKind discriminates the three playable track variants.
type TrackKind string

const (
	// KindLocal is a track backed by a file already on the user's filesystem.
	KindLocal TrackKind = "local"

	// KindRemoteStream is a remote video played by resolving a streaming URL on demand.
	KindRemoteStream TrackKind = "youtube-stream"

	// KindRemoteDownloaded is a remote video with a previously downloaded local copy.
	KindRemoteDownloaded TrackKind = "youtube-downloaded"
)

// IsRemote reports whether the kind refers to a remote video source.
func (k TrackKind) IsRemote() bool {
	return k == KindRemoteStream || k == KindRemoteDownloaded
}

// Track is the tagged union over local and remote playable items.
//
// Exactly one identity field is meaningful per kind: Path for KindLocal,
// ID for the two remote kinds. Collections never hold two tracks with the
// same identity key.
type Track struct {
	// Kind is the variant tag. Persisted documents written by older versions
	// omit it for local tracks; UnmarshalJSON restores that default.
	Kind TrackKind `json:"type"`

	// Local variant fields.
	Path   string `json:"path,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Year   int    `json:"year,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Cover  []byte `json:"cover,omitempty"`

	// Remote variant fields.
	ID         string `json:"id,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	URL        string `json:"url,omitempty"`
	Downloaded bool   `json:"isDownloaded,omitempty"`
	LocalPath  string `json:"localPath,omitempty"`

	// Shared fields.
	Title    string  `json:"title"`
	Duration float64 `json:"duration"` // seconds
}

// trackAlias avoids UnmarshalJSON recursion.
type trackAlias Track

// UnmarshalJSON decodes a track, defaulting an absent or empty variant tag
// to KindLocal. Documents written before the remote variants existed carry
// no "type" field at all.
func (t *Track) UnmarshalJSON(data []byte) error {
	var alias trackAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	if alias.Kind == "" {
		alias.Kind = KindLocal
	}
	*t = Track(alias)
	return nil
}

// Key returns the identity key used to deduplicate and cross-reference
// tracks: the file path for local tracks, the remote video ID otherwise.
func (t Track) Key() string {
	switch t.Kind {
	case KindRemoteStream, KindRemoteDownloaded:
		return t.ID
	default:
		return t.Path
	}
}

// SameIdentity reports whether two tracks refer to the same playable item.
func (t Track) SameIdentity(other Track) bool {
	return t.Key() == other.Key() && t.Key() != ""
}

// PlayablePath returns the on-disk path for kinds that play from a file,
// and false for the streaming variant.
func (t Track) PlayablePath() (string, bool) {
	switch t.Kind {
	case KindLocal:
		return t.Path, t.Path != ""
	case KindRemoteDownloaded:
		return t.LocalPath, t.LocalPath != ""
	default:
		return "", false
	}
}

// DisplayTitle returns the title, falling back to the file basename for
// local tracks imported without usable metadata.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	if t.Kind == KindLocal && t.Path != "" {
		base := filepath.Base(t.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return t.Title
}

// MissingFrom returns the subset of candidates whose identity is not present
// in existing, preserving candidate order. Candidates that duplicate each
// other are also reduced to their first occurrence.
func MissingFrom(existing, candidates []Track) []Track {
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t.Key()] = struct{}{}
	}

	missing := make([]Track, 0, len(candidates))
	for _, c := range candidates {
		key := c.Key()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		missing = append(missing, c)
	}
	return missing
}

// ContainsKey reports whether any track in the slice has the given identity key.
func ContainsKey(tracks []Track, key string) bool {
	for _, t := range tracks {
		if t.Key() == key {
			return true
		}
	}
	return false
}
