package service

import (
	"context"
	"log/slog"

	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

// RemoteService fronts the remote search/download backend. Record upkeep
// for completed downloads lives in the LibraryService; this service owns the
// network-facing operations and the connectivity gate.
type RemoteService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	remote  ports.RemoteSource
	net     ports.Connectivity
	library *LibraryService
}

// NewRemoteService creates a remote service.
func NewRemoteService(
	logger *slog.Logger,
	remote ports.RemoteSource,
	net ports.Connectivity,
	library *LibraryService,
) *RemoteService {
	logger.Debug("remote service initialized")

	return &RemoteService{
		logger:  logger,
		remote:  remote,
		net:     net,
		library: library,
	}
}

// Search queries the remote source and annotates each result against the
// downloaded set, so already-downloaded videos come back as downloaded
// records pointing at their local copy.
func (s *RemoteService) Search(ctx context.Context, query string) ([]domain.Track, error) {
	if !s.net.Online(ctx) {
		return nil, domain.ErrNetworkUnavailable
	}

	results, err := s.remote.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	downloads := s.library.Downloads()
	byID := make(map[string]domain.Track, len(downloads))
	for _, d := range downloads {
		if d.Downloaded {
			byID[d.ID] = d
		}
	}

	for i, r := range results {
		if d, ok := byID[r.ID]; ok {
			results[i].Kind = domain.KindRemoteDownloaded
			results[i].Downloaded = true
			results[i].LocalPath = d.LocalPath
		}
	}

	s.logger.Debug("search completed",
		slog.String("query", query), slog.Int("results", len(results)))

	return results, nil
}

// Download fetches the track's audio, records it in the downloaded set and
// mirrors it into the library. Returns the downloaded record.
func (s *RemoteService) Download(ctx context.Context, track domain.Track) (domain.Track, error) {
	if !track.Kind.IsRemote() || track.ID == "" {
		return domain.Track{}, domain.ErrTrackNotFound
	}
	if !s.net.Online(ctx) {
		return domain.Track{}, domain.ErrNetworkUnavailable
	}

	path, err := s.remote.Download(ctx, track.ID)
	if err != nil {
		s.logger.Warn("download failed",
			slog.String("id", track.ID), slog.Any("error", err))
		return domain.Track{}, err
	}

	record, err := s.library.AddDownload(track, path)
	if err != nil {
		return domain.Track{}, err
	}

	s.logger.Info("track downloaded",
		slog.String("id", track.ID), slog.String("path", path))

	return record, nil
}

// DeleteDownload removes a downloaded track: file, record, library mirror
// and playlist occurrences.
func (s *RemoteService) DeleteDownload(id string) error {
	return s.library.RemoveDownload(id)
}

// StreamURL resolves a time-limited direct audio URL for a remote id.
func (s *RemoteService) StreamURL(ctx context.Context, id string) (string, error) {
	if !s.net.Online(ctx) {
		return "", domain.ErrNetworkUnavailable
	}
	return s.remote.ResolveStreamURL(ctx, id)
}
