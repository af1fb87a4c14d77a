package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lucverdier/minuet/internal/domain"
)

// In-test doubles for the persistence and external-collaborator ports.

type mockTrackRepo struct {
	mu       sync.Mutex
	tracks   []domain.Track
	failSave bool
	failLoad bool
	saves    int
}

func (r *mockTrackRepo) Load() ([]domain.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLoad {
		return nil, domain.NewRepositoryError("load", "test", "mock load failure", nil)
	}
	out := make([]domain.Track, len(r.tracks))
	copy(out, r.tracks)
	return out, nil
}

func (r *mockTrackRepo) Save(tracks []domain.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return domain.NewRepositoryError("save", "test", "mock save failure", nil)
	}
	r.tracks = make([]domain.Track, len(tracks))
	copy(r.tracks, tracks)
	r.saves++
	return nil
}

func (r *mockTrackRepo) saved() []domain.Track {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Track, len(r.tracks))
	copy(out, r.tracks)
	return out
}

type mockPlaylistRepo struct {
	mu        sync.Mutex
	playlists []domain.Playlist
	failSave  bool
	saves     int
}

func (r *mockPlaylistRepo) Load() ([]domain.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Playlist, len(r.playlists))
	copy(out, r.playlists)
	return out, nil
}

func (r *mockPlaylistRepo) Save(playlists []domain.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return domain.NewRepositoryError("save", "playlists", "mock save failure", nil)
	}
	r.playlists = make([]domain.Playlist, len(playlists))
	copy(r.playlists, playlists)
	r.saves++
	return nil
}

// mockMetadataReader fabricates a track per path without touching the disk.
type mockMetadataReader struct {
	missing map[string]bool // paths reported as nonexistent
	titles  map[string]string
}

func (m *mockMetadataReader) Read(path string) (domain.Track, error) {
	if m.missing[path] {
		return domain.Track{}, domain.ErrTrackNotFound
	}
	title := m.titles[path]
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return domain.Track{Kind: domain.KindLocal, Path: path, Title: title}, nil
}

type mockRemoteSource struct {
	mu          sync.Mutex
	results     []domain.Track
	streamURL   string
	downloadDir string
	failSearch  bool
	failResolve bool
	failFetch   bool
	resolved    []string
	downloaded  []string
}

func (m *mockRemoteSource) Search(_ context.Context, _ string) ([]domain.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSearch {
		return nil, domain.NewRemoteSourceError("search", "", "mock search failure", nil)
	}
	out := make([]domain.Track, len(m.results))
	copy(out, m.results)
	return out, nil
}

func (m *mockRemoteSource) ResolveStreamURL(_ context.Context, videoID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failResolve {
		return "", domain.NewRemoteSourceError("resolve", videoID, "mock resolve failure", nil)
	}
	m.resolved = append(m.resolved, videoID)
	if m.streamURL != "" {
		return m.streamURL, nil
	}
	return "https://stream.example/" + videoID, nil
}

func (m *mockRemoteSource) Download(_ context.Context, videoID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFetch {
		return "", domain.NewRemoteSourceError("download", videoID, "mock download failure", nil)
	}
	m.downloaded = append(m.downloaded, videoID)
	return filepath.Join(m.downloadDir, videoID+".mp3"), nil
}

type mockConnectivity struct {
	offline bool
}

func (m *mockConnectivity) Online(context.Context) bool {
	return !m.offline
}
