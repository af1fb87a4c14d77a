package jsonfile

import (
	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

// LibraryRepository persists the local music library document.
type LibraryRepository struct {
	store *Store
}

// NewLibraryRepository creates a library repository over the store.
func NewLibraryRepository(store *Store) *LibraryRepository {
	return &LibraryRepository{store: store}
}

func (r *LibraryRepository) Load() ([]domain.Track, error) {
	var tracks []domain.Track
	if err := r.store.readDocument(libraryFile, &tracks); err != nil {
		return nil, domain.NewRepositoryError("load", "library", "reading document", err)
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return tracks, nil
}

func (r *LibraryRepository) Save(tracks []domain.Track) error {
	if tracks == nil {
		tracks = []domain.Track{}
	}
	if err := r.store.writeDocument(libraryFile, tracks); err != nil {
		return domain.NewRepositoryError("save", "library", "writing document", err)
	}
	return nil
}

// PlaylistRepository persists the playlists document.
type PlaylistRepository struct {
	store *Store
}

// NewPlaylistRepository creates a playlist repository over the store.
func NewPlaylistRepository(store *Store) *PlaylistRepository {
	return &PlaylistRepository{store: store}
}

func (r *PlaylistRepository) Load() ([]domain.Playlist, error) {
	var playlists []domain.Playlist
	if err := r.store.readDocument(playlistsFile, &playlists); err != nil {
		return nil, domain.NewRepositoryError("load", "playlists", "reading document", err)
	}
	if playlists == nil {
		playlists = []domain.Playlist{}
	}
	return playlists, nil
}

func (r *PlaylistRepository) Save(playlists []domain.Playlist) error {
	if playlists == nil {
		playlists = []domain.Playlist{}
	}
	if err := r.store.writeDocument(playlistsFile, playlists); err != nil {
		return domain.NewRepositoryError("save", "playlists", "writing document", err)
	}
	return nil
}

// DownloadRepository persists the downloaded remote tracks document.
type DownloadRepository struct {
	store *Store
}

// NewDownloadRepository creates a download repository over the store.
func NewDownloadRepository(store *Store) *DownloadRepository {
	return &DownloadRepository{store: store}
}

func (r *DownloadRepository) Load() ([]domain.Track, error) {
	var tracks []domain.Track
	if err := r.store.readDocument(downloadsFile, &tracks); err != nil {
		return nil, domain.NewRepositoryError("load", "downloads", "reading document", err)
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return tracks, nil
}

func (r *DownloadRepository) Save(tracks []domain.Track) error {
	if tracks == nil {
		tracks = []domain.Track{}
	}
	if err := r.store.writeDocument(downloadsFile, tracks); err != nil {
		return domain.NewRepositoryError("save", "downloads", "writing document", err)
	}
	return nil
}

// Verify that the repositories implement the persistence interfaces.
var (
	_ ports.LibraryRepository  = (*LibraryRepository)(nil)
	_ ports.PlaylistRepository = (*PlaylistRepository)(nil)
	_ ports.DownloadRepository = (*DownloadRepository)(nil)
)
