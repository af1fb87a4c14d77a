package service

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

// PlaylistService manages the playlist collection. Every mutation is a
// read-modify-write of the whole collection: the in-memory copy is updated,
// the document rewritten, and on save failure the previous state restored so
// memory never diverges from disk.
// All operations are thread-safe via sync.RWMutex.
type PlaylistService struct {
	// Dependencies (injected)
	logger *slog.Logger
	repo   ports.PlaylistRepository
	bus    ports.EventBus

	// State
	playlists []domain.Playlist

	// Concurrency control
	mu sync.RWMutex
}

// NewPlaylistService creates a playlist service and loads the persisted
// collection.
func NewPlaylistService(
	logger *slog.Logger,
	repo ports.PlaylistRepository,
	bus ports.EventBus,
) (*PlaylistService, error) {
	playlists, err := repo.Load()
	if err != nil {
		return nil, err
	}

	logger.Debug("playlist service initialized", slog.Int("playlists", len(playlists)))

	return &PlaylistService{
		logger:    logger,
		repo:      repo,
		bus:       bus,
		playlists: playlists,
	}, nil
}

// All returns a copy of every playlist.
func (s *PlaylistService) All() []domain.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clonePlaylists(s.playlists)
}

// Get returns the playlist with the given id.
func (s *PlaylistService) Get(id string) (domain.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.playlists {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return domain.Playlist{}, domain.ErrPlaylistNotFound
}

// Create adds a new empty playlist and returns it.
func (s *PlaylistService) Create(name string) (domain.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// UUID collisions are vanishingly rare; regenerating on one keeps the
	// uniqueness contract unconditional anyway.
	id := uuid.NewString()
	for s.findIndex(id) >= 0 {
		id = uuid.NewString()
	}

	playlist := domain.NewPlaylist(id, name)

	prev := s.playlists
	s.playlists = append(clonePlaylists(s.playlists), playlist)

	if err := s.persist(prev); err != nil {
		return domain.Playlist{}, err
	}

	s.logger.Info("playlist created", slog.String("id", id), slog.String("name", name))

	return playlist.Clone(), nil
}

// Delete removes the playlist with the given id.
func (s *PlaylistService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findIndex(id)
	if idx < 0 {
		return domain.ErrPlaylistNotFound
	}

	prev := s.playlists
	next := clonePlaylists(s.playlists)
	s.playlists = append(next[:idx], next[idx+1:]...)

	if err := s.persist(prev); err != nil {
		return err
	}

	s.logger.Info("playlist deleted", slog.String("id", id))

	return nil
}

// Rename changes the playlist name.
func (s *PlaylistService) Rename(id, name string) error {
	return s.mutate(id, "rename", func(p *domain.Playlist) bool {
		p.Name = name
		return true
	})
}

// SetCover sets or replaces the playlist cover image.
func (s *PlaylistService) SetCover(id, coverImage string) error {
	return s.mutate(id, "set cover", func(p *domain.Playlist) bool {
		p.CoverImage = coverImage
		return true
	})
}

// AddTrack appends a track to the playlist unless its identity is already
// present; a duplicate insert leaves the playlist untouched.
func (s *PlaylistService) AddTrack(id string, track domain.Track) error {
	return s.AddTracks(id, []domain.Track{track})
}

// AddTracks appends the subset of tracks not already present, in input
// order, deduplicating against the playlist as it evolves during the append.
func (s *PlaylistService) AddTracks(id string, tracks []domain.Track) error {
	return s.mutate(id, "add tracks", func(p *domain.Playlist) bool {
		missing := domain.MissingFrom(p.Tracks, tracks)
		if len(missing) == 0 {
			return false
		}
		p.Tracks = append(p.Tracks, missing...)
		return true
	})
}

// RemoveTrack removes the track with the given identity key. Removing an
// absent track is a successful no-op and does not bump UpdatedAt.
func (s *PlaylistService) RemoveTrack(id, key string) error {
	return s.mutate(id, "remove track", func(p *domain.Playlist) bool {
		kept := make([]domain.Track, 0, len(p.Tracks))
		for _, t := range p.Tracks {
			if t.Key() != key {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(p.Tracks) {
			return false
		}
		p.Tracks = kept
		return true
	})
}

// Reorder moves the track at position from to position to, shifting the
// tracks in between. Out-of-range positions are rejected.
func (s *PlaylistService) Reorder(id string, from, to int) error {
	return s.mutateErr(id, "reorder", func(p *domain.Playlist) (bool, error) {
		n := len(p.Tracks)
		if from < 0 || from >= n || to < 0 || to >= n {
			return false, domain.ErrInvalidIndex
		}
		if from == to {
			return false, nil
		}

		moved := p.Tracks[from]
		rest := append(p.Tracks[:from:from], p.Tracks[from+1:]...)
		p.Tracks = make([]domain.Track, 0, n)
		p.Tracks = append(p.Tracks, rest[:to]...)
		p.Tracks = append(p.Tracks, moved)
		p.Tracks = append(p.Tracks, rest[to:]...)
		return true, nil
	})
}

// RemoveTrackEverywhere strips every occurrence of the identity keys from
// every playlist, bumping UpdatedAt only on playlists that actually changed.
// Used by the library and download cascades.
func (s *PlaylistService) RemoveTrackEverywhere(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			keySet[k] = struct{}{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.playlists
	next := clonePlaylists(s.playlists)

	changed := false
	for i := range next {
		kept := make([]domain.Track, 0, len(next[i].Tracks))
		for _, t := range next[i].Tracks {
			if _, hit := keySet[t.Key()]; !hit {
				kept = append(kept, t)
			}
		}
		if len(kept) != len(next[i].Tracks) {
			next[i].Tracks = kept
			next[i].UpdatedAt = domain.NowMillis()
			changed = true
		}
	}

	if !changed {
		return nil
	}

	s.playlists = next
	return s.persist(prev)
}

// mutate applies fn to the playlist with the given id and persists when fn
// reports a change. fn mutates the clone in place; UpdatedAt is bumped here.
func (s *PlaylistService) mutate(id, op string, fn func(*domain.Playlist) bool) error {
	return s.mutateErr(id, op, func(p *domain.Playlist) (bool, error) {
		return fn(p), nil
	})
}

func (s *PlaylistService) mutateErr(id, op string, fn func(*domain.Playlist) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findIndex(id)
	if idx < 0 {
		return domain.ErrPlaylistNotFound
	}

	prev := s.playlists
	next := clonePlaylists(s.playlists)

	changed, err := fn(&next[idx])
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	next[idx].UpdatedAt = domain.NowMillis()
	s.playlists = next

	if err := s.persist(prev); err != nil {
		return err
	}

	s.logger.Debug("playlist mutated", slog.String("id", id), slog.String("op", op))

	return nil
}

// persist rewrites the collection document; on failure the in-memory state
// is rolled back to prev (caller must hold the write lock).
func (s *PlaylistService) persist(prev []domain.Playlist) error {
	if err := s.repo.Save(s.playlists); err != nil {
		s.playlists = prev
		s.logger.Error("failed to save playlists", slog.Any("error", err))
		return err
	}

	s.bus.Publish(domain.NewPlaylistsUpdatedEvent(clonePlaylists(s.playlists)))

	return nil
}

// findIndex locates a playlist by id (caller must hold lock).
func (s *PlaylistService) findIndex(id string) int {
	for i, p := range s.playlists {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clonePlaylists(in []domain.Playlist) []domain.Playlist {
	out := make([]domain.Playlist, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
