package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucverdier/minuet/internal/adapter/eventbus"
	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/logger"
)

func newTestPlaylistService(t *testing.T) (*PlaylistService, *mockPlaylistRepo, *eventbus.SyncEventBus) {
	t.Helper()

	repo := &mockPlaylistRepo{}
	bus := eventbus.NewSyncEventBus()

	service, err := NewPlaylistService(logger.NewTestLogger(), repo, bus)
	require.NoError(t, err)

	return service, repo, bus
}

func localTrack(path string) domain.Track {
	return domain.Track{Kind: domain.KindLocal, Path: path, Title: path}
}

func TestPlaylistService_Create(t *testing.T) {
	service, repo, bus := newTestPlaylistService(t)

	var updated domain.PlaylistsUpdatedEvent
	bus.Subscribe(domain.EventPlaylistsUpdated, func(e domain.Event) {
		updated = e.(domain.PlaylistsUpdatedEvent)
	})

	p, err := service.Create("Road Trip")
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Road Trip", p.Name)
	assert.Empty(t, p.Tracks)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	// Persisted as a full rewrite and announced on the bus.
	assert.Equal(t, 1, repo.saves)
	require.Len(t, updated.Playlists, 1)
	assert.Equal(t, p.ID, updated.Playlists[0].ID)
}

func TestPlaylistService_Create_UniqueIDs(t *testing.T) {
	service, _, _ := newTestPlaylistService(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := service.Create("P")
		require.NoError(t, err)
		assert.False(t, seen[p.ID], "duplicate playlist id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestPlaylistService_Delete(t *testing.T) {
	service, repo, _ := newTestPlaylistService(t)

	p, err := service.Create("Gone Soon")
	require.NoError(t, err)

	require.NoError(t, service.Delete(p.ID))
	assert.Empty(t, service.All())
	assert.Empty(t, repo.playlists)

	assert.ErrorIs(t, service.Delete(p.ID), domain.ErrPlaylistNotFound)
}

func TestPlaylistService_Rename(t *testing.T) {
	service, _, _ := newTestPlaylistService(t)

	p, err := service.Create("Old Name")
	require.NoError(t, err)

	require.NoError(t, service.Rename(p.ID, "New Name"))

	got, err := service.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.GreaterOrEqual(t, got.UpdatedAt, p.UpdatedAt)

	assert.ErrorIs(t, service.Rename("missing", "X"), domain.ErrPlaylistNotFound)
}

func TestPlaylistService_SetCover(t *testing.T) {
	service, _, _ := newTestPlaylistService(t)

	p, err := service.Create("Covered")
	require.NoError(t, err)

	require.NoError(t, service.SetCover(p.ID, "data:image/png;base64,AAAA"))

	got, err := service.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", got.CoverImage)
}

func TestPlaylistService_AddTracks_Dedup(t *testing.T) {
	service, _, _ := newTestPlaylistService(t)

	p, err := service.Create("Mix")
	require.NoError(t, err)

	require.NoError(t, service.AddTrack(p.ID, localTrack("/a.mp3")))

	// Batch containing an existing identity, a new one twice, and another new one.
	err = service.AddTracks(p.ID, []domain.Track{
		localTrack("/a.mp3"),
		localTrack("/b.mp3"),
		localTrack("/b.mp3"),
		localTrack("/c.mp3"),
	})
	require.NoError(t, err)

	got, err := service.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Tracks, 3)
	assert.Equal(t, "/a.mp3", got.Tracks[0].Key())
	assert.Equal(t, "/b.mp3", got.Tracks[1].Key())
	assert.Equal(t, "/c.mp3", got.Tracks[2].Key())
}

func TestPlaylistService_AddTrack_DuplicateIsNoOp(t *testing.T) {
	service, repo, _ := newTestPlaylistService(t)

	p, err := service.Create("Mix")
	require.NoError(t, err)
	require.NoError(t, service.AddTrack(p.ID, localTrack("/a.mp3")))

	savesBefore := repo.saves
	before, err := service.Get(p.ID)
	require.NoError(t, err)

	require.NoError(t, service.AddTrack(p.ID, localTrack("/a.mp3")))

	after, err := service.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Equal(t, savesBefore, repo.saves)
}

func TestPlaylistService_RemoveTrack_Idempotent(t *testing.T) {
	service, _, _ := newTestPlaylistService(t)

	p, err := service.Create("Mix")
	require.NoError(t, err)
	require.NoError(t, service.AddTracks(p.ID, []domain.Track{localTrack("/a.mp3"), localTrack("/b.mp3")}))

	require.NoError(t, service.RemoveTrack(p.ID, "/a.mp3"))
	first, err := service.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, first.Tracks, 1)
	assert.Equal(t, "/b.mp3", first.Tracks[0].Key())

	// Removing again changes nothing, including updatedAt.
	require.NoError(t, service.RemoveTrack(p.ID, "/a.mp3"))
	second, err := service.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Tracks, second.Tracks)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestPlaylistService_Reorder(t *testing.T) {
	service, _, _ := newTestPlaylistService(t)

	p, err := service.Create("Ordered")
	require.NoError(t, err)
	require.NoError(t, service.AddTracks(p.ID, []domain.Track{
		localTrack("/x.mp3"), localTrack("/y.mp3"), localTrack("/z.mp3"),
	}))

	// [X, Y, Z] with 0 -> 2 becomes [Y, Z, X].
	require.NoError(t, service.Reorder(p.ID, 0, 2))

	got, err := service.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Tracks, 3)
	assert.Equal(t, "/y.mp3", got.Tracks[0].Key())
	assert.Equal(t, "/z.mp3", got.Tracks[1].Key())
	assert.Equal(t, "/x.mp3", got.Tracks[2].Key())
}

func TestPlaylistService_Reorder_OutOfRange(t *testing.T) {
	service, _, _ := newTestPlaylistService(t)

	p, err := service.Create("Ordered")
	require.NoError(t, err)
	require.NoError(t, service.AddTrack(p.ID, localTrack("/x.mp3")))

	assert.ErrorIs(t, service.Reorder(p.ID, 0, 5), domain.ErrInvalidIndex)
	assert.ErrorIs(t, service.Reorder(p.ID, -1, 0), domain.ErrInvalidIndex)
}

func TestPlaylistService_SaveFailureRollsBack(t *testing.T) {
	service, repo, _ := newTestPlaylistService(t)

	p, err := service.Create("Stable")
	require.NoError(t, err)
	require.NoError(t, service.AddTrack(p.ID, localTrack("/a.mp3")))

	repo.failSave = true
	err = service.AddTrack(p.ID, localTrack("/b.mp3"))
	require.Error(t, err)

	// In-memory state still matches the last successful save.
	repo.failSave = false
	got, err := service.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Tracks, 1)
	assert.Equal(t, "/a.mp3", got.Tracks[0].Key())
}

func TestPlaylistService_RemoveTrackEverywhere(t *testing.T) {
	service, _, _ := newTestPlaylistService(t)

	p1, err := service.Create("One")
	require.NoError(t, err)
	p2, err := service.Create("Two")
	require.NoError(t, err)

	require.NoError(t, service.AddTracks(p1.ID, []domain.Track{localTrack("/a.mp3"), localTrack("/b.mp3")}))
	require.NoError(t, service.AddTrack(p2.ID, localTrack("/a.mp3")))

	p2Before, err := service.Get(p2.ID)
	require.NoError(t, err)

	require.NoError(t, service.RemoveTrackEverywhere("/a.mp3"))

	got1, err := service.Get(p1.ID)
	require.NoError(t, err)
	require.Len(t, got1.Tracks, 1)
	assert.Equal(t, "/b.mp3", got1.Tracks[0].Key())

	got2, err := service.Get(p2.ID)
	require.NoError(t, err)
	assert.Empty(t, got2.Tracks)
	assert.GreaterOrEqual(t, got2.UpdatedAt, p2Before.UpdatedAt)

	// No matches anywhere leaves everything untouched.
	require.NoError(t, service.RemoveTrackEverywhere("/never-there.mp3"))
}

func TestPlaylistService_LoadsPersistedCollection(t *testing.T) {
	repo := &mockPlaylistRepo{}
	existing := domain.NewPlaylist("persisted-id", "From Disk")
	existing.Tracks = []domain.Track{localTrack("/a.mp3")}
	repo.playlists = []domain.Playlist{existing}

	service, err := NewPlaylistService(logger.NewTestLogger(), repo, eventbus.NewSyncEventBus())
	require.NoError(t, err)

	got, err := service.Get("persisted-id")
	require.NoError(t, err)
	assert.Equal(t, "From Disk", got.Name)
	require.Len(t, got.Tracks, 1)
}
