package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

// playlistCascade is the slice of the playlist store the library cascades
// need: stripping identities out of every playlist.
type playlistCascade interface {
	RemoveTrackEverywhere(keys ...string) error
}

// LibraryService manages the local track library and the downloaded-remote
// set. Both documents are owned here so the cross-document deletion cascades
// stay in one place.
// All operations are thread-safe via sync.RWMutex.
type LibraryService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	libRepo   ports.LibraryRepository
	dlRepo    ports.DownloadRepository
	meta      ports.MetadataReader
	playlists playlistCascade
	bus       ports.EventBus

	// State
	tracks    []domain.Track
	downloads []domain.Track

	// Concurrency control
	mu sync.RWMutex
}

// NewLibraryService creates a library service and loads both persisted
// collections.
func NewLibraryService(
	logger *slog.Logger,
	libRepo ports.LibraryRepository,
	dlRepo ports.DownloadRepository,
	meta ports.MetadataReader,
	playlists playlistCascade,
	bus ports.EventBus,
) (*LibraryService, error) {
	tracks, err := libRepo.Load()
	if err != nil {
		return nil, err
	}
	downloads, err := dlRepo.Load()
	if err != nil {
		return nil, err
	}

	logger.Debug("library service initialized",
		slog.Int("tracks", len(tracks)), slog.Int("downloads", len(downloads)))

	return &LibraryService{
		logger:    logger,
		libRepo:   libRepo,
		dlRepo:    dlRepo,
		meta:      meta,
		playlists: playlists,
		bus:       bus,
		tracks:    tracks,
		downloads: downloads,
	}, nil
}

// Tracks returns a copy of the library.
func (s *LibraryService) Tracks() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTracks(s.tracks)
}

// Downloads returns a copy of the downloaded-remote set.
func (s *LibraryService) Downloads() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneTracks(s.downloads)
}

// Import reads metadata for each picked file and appends the tracks not
// already present, by path identity, in input order. Files whose tags cannot
// be read still import with a filename-derived title; files that do not
// exist are skipped with a log line. Returns the tracks actually added.
func (s *LibraryService) Import(paths []string) ([]domain.Track, error) {
	candidates := make([]domain.Track, 0, len(paths))
	for _, path := range paths {
		track, err := s.meta.Read(path)
		if err != nil {
			s.logger.Warn("skipping unreadable file",
				slog.String("path", path), slog.Any("error", err))
			continue
		}
		candidates = append(candidates, track)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := domain.MissingFrom(s.tracks, candidates)
	if len(added) == 0 {
		return []domain.Track{}, nil
	}

	prev := s.tracks
	s.tracks = append(cloneTracks(s.tracks), added...)

	if err := s.persistLibrary(prev); err != nil {
		return nil, err
	}

	s.logger.Info("tracks imported", slog.Int("added", len(added)))

	return cloneTracks(added), nil
}

// Remove deletes a local track from the library by path and cascades:
// a downloaded-remote record pointing at the path loses its downloaded copy
// (flag cleared, file deleted best-effort), and every playlist drops the
// track whether it holds it by path or by the shared remote id.
func (s *LibraryService) Remove(path string) error {
	s.mu.Lock()

	prev := s.tracks
	kept := make([]domain.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		if t.Key() != path {
			kept = append(kept, t)
		}
	}

	if len(kept) != len(prev) {
		s.tracks = kept
		if err := s.persistLibrary(prev); err != nil {
			s.mu.Unlock()
			return err
		}
	}

	// Cascade (a): a downloaded copy backed by this path reverts to a
	// plain streamable record and its file goes away.
	cascadeKeys := []string{path}
	if id, err := s.clearDownloadedByPath(path); err != nil {
		s.mu.Unlock()
		return err
	} else if id != "" {
		cascadeKeys = append(cascadeKeys, id)
	}

	s.mu.Unlock()

	// Cascade (b): strip from every playlist.
	return s.playlists.RemoveTrackEverywhere(cascadeKeys...)
}

// clearDownloadedByPath reverts the downloaded record whose local copy is
// path, deleting the file best-effort, and returns its remote id (caller
// must hold the write lock).
func (s *LibraryService) clearDownloadedByPath(path string) (string, error) {
	idx := -1
	for i, t := range s.downloads {
		if t.LocalPath == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", nil
	}

	prev := s.downloads
	next := cloneTracks(s.downloads)
	next[idx].Kind = domain.KindRemoteStream
	next[idx].Downloaded = false
	next[idx].LocalPath = ""
	id := next[idx].ID

	s.downloads = next
	if err := s.persistDownloads(prev); err != nil {
		return "", err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to delete downloaded file",
			slog.String("path", path), slog.Any("error", err))
	}

	return id, nil
}

// AddDownload records a completed download: the record joins the downloaded
// set (replacing any previous record with the same id) and the audio file is
// mirrored into the library as a local track.
func (s *LibraryService) AddDownload(track domain.Track, localPath string) (domain.Track, error) {
	record := track
	record.Kind = domain.KindRemoteDownloaded
	record.Downloaded = true
	record.LocalPath = localPath

	s.mu.Lock()
	defer s.mu.Unlock()

	prevDl := s.downloads
	next := make([]domain.Track, 0, len(s.downloads)+1)
	for _, t := range s.downloads {
		if t.ID != record.ID {
			next = append(next, t)
		}
	}
	next = append(next, record)
	s.downloads = next

	if err := s.persistDownloads(prevDl); err != nil {
		return domain.Track{}, err
	}

	// Best-effort mirror: the mp3 shows up in the library like any other
	// local file. Tag data on transcoded downloads is usually absent, so
	// the remote title wins over the filename fallback.
	mirror, err := s.meta.Read(localPath)
	if err != nil {
		s.logger.Warn("downloaded file not mirrored into library",
			slog.String("path", localPath), slog.Any("error", err))
		return record, nil
	}
	base := filepath.Base(localPath)
	fallback := strings.TrimSuffix(base, filepath.Ext(base))
	if (mirror.Title == "" || mirror.Title == fallback) && track.Title != "" {
		mirror.Title = track.Title
	}

	if added := domain.MissingFrom(s.tracks, []domain.Track{mirror}); len(added) > 0 {
		prevLib := s.tracks
		s.tracks = append(cloneTracks(s.tracks), added...)
		if err := s.persistLibrary(prevLib); err != nil {
			s.logger.Warn("failed to persist library mirror", slog.Any("error", err))
		}
	}

	return record, nil
}

// RemoveDownload deletes a downloaded remote track: the file, the record,
// the library mirror, and every playlist occurrence (by remote id and by the
// file path).
func (s *LibraryService) RemoveDownload(id string) error {
	s.mu.Lock()

	idx := -1
	for i, t := range s.downloads {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrTrackNotFound
	}

	localPath := s.downloads[idx].LocalPath

	prev := s.downloads
	next := cloneTracks(s.downloads)
	s.downloads = append(next[:idx], next[idx+1:]...)

	if err := s.persistDownloads(prev); err != nil {
		s.mu.Unlock()
		return err
	}

	if localPath != "" {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to delete downloaded file",
				slog.String("path", localPath), slog.Any("error", err))
		}

		// Drop the library mirror too.
		prevLib := s.tracks
		kept := make([]domain.Track, 0, len(s.tracks))
		for _, t := range s.tracks {
			if t.Key() != localPath {
				kept = append(kept, t)
			}
		}
		if len(kept) != len(prevLib) {
			s.tracks = kept
			if err := s.persistLibrary(prevLib); err != nil {
				s.logger.Warn("failed to persist library after download removal",
					slog.Any("error", err))
			}
		}
	}

	s.mu.Unlock()

	keys := []string{id}
	if localPath != "" {
		keys = append(keys, localPath)
	}
	return s.playlists.RemoveTrackEverywhere(keys...)
}

// IsDownloaded reports whether a remote id has a downloaded record.
func (s *LibraryService) IsDownloaded(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.downloads {
		if t.ID == id && t.Downloaded {
			return true
		}
	}
	return false
}

// persistLibrary rewrites the library document, rolling back on failure
// (caller must hold the write lock).
func (s *LibraryService) persistLibrary(prev []domain.Track) error {
	if err := s.libRepo.Save(s.tracks); err != nil {
		s.tracks = prev
		s.logger.Error("failed to save library", slog.Any("error", err))
		return err
	}

	s.bus.Publish(domain.NewLibraryUpdatedEvent(cloneTracks(s.tracks)))

	return nil
}

// persistDownloads rewrites the downloads document, rolling back on failure
// (caller must hold the write lock).
func (s *LibraryService) persistDownloads(prev []domain.Track) error {
	if err := s.dlRepo.Save(s.downloads); err != nil {
		s.downloads = prev
		s.logger.Error("failed to save downloads", slog.Any("error", err))
		return err
	}

	s.bus.Publish(domain.NewDownloadsUpdatedEvent(cloneTracks(s.downloads)))

	return nil
}

func cloneTracks(in []domain.Track) []domain.Track {
	out := make([]domain.Track, len(in))
	copy(out, in)
	return out
}
