package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucverdier/minuet/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewStore_CreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(base)
	require.NoError(t, err)
	assert.Equal(t, base, store.BaseDir())
	assert.DirExists(t, base)
}

func TestNewStore_EmptyDir(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

func TestStore_DownloadsDir(t *testing.T) {
	store := newTestStore(t)

	dir, err := store.DownloadsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.BaseDir(), "downloads", "youtube"), dir)
	assert.DirExists(t, dir)
}

func TestLibraryRepository_RoundTrip(t *testing.T) {
	repo := NewLibraryRepository(newTestStore(t))

	tracks := []domain.Track{
		{Kind: domain.KindLocal, Path: "/music/a.mp3", Title: "A", Artist: "Artist", Duration: 180},
		{Kind: domain.KindLocal, Path: "/music/b.mp3", Title: "B"},
	}

	require.NoError(t, repo.Save(tracks))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, tracks, loaded)
}

func TestLibraryRepository_MissingDocument(t *testing.T) {
	repo := NewLibraryRepository(newTestStore(t))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestLibraryRepository_UntaggedDocument(t *testing.T) {
	// Documents from before the remote variants existed carry no type tags.
	store := newTestStore(t)
	legacy := `[{"path": "/music/old.mp3", "title": "Old", "duration": 42}]`
	require.NoError(t, os.WriteFile(filepath.Join(store.BaseDir(), "music-library.json"), []byte(legacy), 0o644))

	loaded, err := NewLibraryRepository(store).Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, domain.KindLocal, loaded[0].Kind)
	assert.Equal(t, "/music/old.mp3", loaded[0].Key())
}

func TestLibraryRepository_SaveNil(t *testing.T) {
	repo := NewLibraryRepository(newTestStore(t))

	require.NoError(t, repo.Save(nil))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestPlaylistRepository_RoundTrip(t *testing.T) {
	repo := NewPlaylistRepository(newTestStore(t))

	p := domain.NewPlaylist("id-1", "Mix")
	p.Tracks = []domain.Track{
		{Kind: domain.KindLocal, Path: "/a.mp3", Title: "A"},
		{Kind: domain.KindRemoteStream, ID: "v1", Title: "V"},
	}

	require.NoError(t, repo.Save([]domain.Playlist{p}))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, p.ID, loaded[0].ID)
	assert.Equal(t, p.CreatedAt, loaded[0].CreatedAt)
	require.Len(t, loaded[0].Tracks, 2)
	assert.Equal(t, domain.KindRemoteStream, loaded[0].Tracks[1].Kind)
}

func TestDownloadRepository_RoundTrip(t *testing.T) {
	repo := NewDownloadRepository(newTestStore(t))

	tracks := []domain.Track{
		{
			Kind:       domain.KindRemoteDownloaded,
			ID:         "v1",
			Title:      "Downloaded",
			Downloaded: true,
			LocalPath:  "/dl/v1.mp3",
		},
	}

	require.NoError(t, repo.Save(tracks))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, tracks, loaded)
}

func TestStore_SaveReplacesDocument(t *testing.T) {
	repo := NewLibraryRepository(newTestStore(t))

	require.NoError(t, repo.Save([]domain.Track{{Kind: domain.KindLocal, Path: "/a.mp3"}}))
	require.NoError(t, repo.Save([]domain.Track{{Kind: domain.KindLocal, Path: "/b.mp3"}}))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "/b.mp3", loaded[0].Key())
}

func TestStore_PrettyPrinted(t *testing.T) {
	store := newTestStore(t)
	repo := NewLibraryRepository(store)

	require.NoError(t, repo.Save([]domain.Track{{Kind: domain.KindLocal, Path: "/a.mp3"}}))

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), "music-library.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ")
}
