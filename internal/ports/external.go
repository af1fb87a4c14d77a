// Package ports defines the contracts for external collaborators: the
// metadata extractor, the remote video backend, and connectivity probing.
package ports

import (
	"context"

	"github.com/lucverdier/minuet/internal/domain"
)

// MetadataReader extracts tag metadata from an audio file on disk.
//
// Extraction failure is not fatal to callers: services fall back to a
// filename-derived record when no metadata can be read.
type MetadataReader interface {
	// Read returns a local track populated from the file's tags.
	Read(path string) (domain.Track, error)
}

// RemoteSource is the remote video search/stream/download backend.
//
// All operations run to completion or failure; there is no cancel-in-flight
// contract beyond the passed context. Failures carry the backend's own
// error message (domain.RemoteSourceError).
type RemoteSource interface {
	// Search returns candidate tracks for a text query, in backend order.
	// Results are KindRemoteStream with Downloaded unset; annotation against
	// the downloaded set is the caller's concern.
	Search(ctx context.Context, query string) ([]domain.Track, error)

	// ResolveStreamURL returns a directly playable audio URL for a video id.
	ResolveStreamURL(ctx context.Context, videoID string) (string, error)

	// Download fetches the video's audio to the downloads directory and
	// returns the local file path.
	Download(ctx context.Context, videoID string) (string, error)
}

// Connectivity reports whether network access is available. The playback
// engine consults it before attempting to stream a remote track.
type Connectivity interface {
	Online(ctx context.Context) bool
}
