// Package ports defines repository interfaces for data persistence abstraction.
package ports

import (
	"github.com/lucverdier/minuet/internal/domain"
)

// LibraryRepository persists the local-file track library as one document.
// Every save is a full rewrite of the collection.
//
// A missing document is not an error: Load returns an empty slice.
type LibraryRepository interface {
	// Load retrieves the library, or an empty slice if none was saved yet.
	Load() ([]domain.Track, error)

	// Save persists the whole library, replacing the previous document.
	Save(tracks []domain.Track) error
}

// PlaylistRepository persists the playlist collection as one document.
// Every save is a full rewrite of the collection; there is no per-playlist
// incremental persistence.
type PlaylistRepository interface {
	// Load retrieves all playlists, or an empty slice if none were saved yet.
	Load() ([]domain.Playlist, error)

	// Save persists the whole collection, replacing the previous document.
	Save(playlists []domain.Playlist) error
}

// DownloadRepository persists the downloaded-remote-track set as one
// document. Records reference audio files in the downloads directory; the
// record and the file live and die together (RemoteService enforces this).
type DownloadRepository interface {
	// Load retrieves the downloaded set, or an empty slice if none was saved yet.
	Load() ([]domain.Track, error)

	// Save persists the whole set, replacing the previous document.
	Save(tracks []domain.Track) error
}
