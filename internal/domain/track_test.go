package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_Key(t *testing.T) {
	local := Track{Kind: KindLocal, Path: "/music/a.mp3", Title: "A"}
	stream := Track{Kind: KindRemoteStream, ID: "v1", Title: "V"}
	downloaded := Track{Kind: KindRemoteDownloaded, ID: "v2", LocalPath: "/dl/v2.mp3"}

	assert.Equal(t, "/music/a.mp3", local.Key())
	assert.Equal(t, "v1", stream.Key())
	assert.Equal(t, "v2", downloaded.Key())
}

func TestTrack_SameIdentity(t *testing.T) {
	a := Track{Kind: KindLocal, Path: "/music/a.mp3"}
	b := Track{Kind: KindLocal, Path: "/music/a.mp3", Title: "different metadata"}
	c := Track{Kind: KindLocal, Path: "/music/c.mp3"}

	assert.True(t, a.SameIdentity(b))
	assert.False(t, a.SameIdentity(c))

	// A stream and its downloaded copy share the remote id.
	stream := Track{Kind: KindRemoteStream, ID: "v1"}
	downloaded := Track{Kind: KindRemoteDownloaded, ID: "v1"}
	assert.True(t, stream.SameIdentity(downloaded))

	// Tracks with no identity never match anything.
	empty := Track{Kind: KindLocal}
	assert.False(t, empty.SameIdentity(Track{Kind: KindLocal}))
}

func TestTrack_UnmarshalJSON_DefaultsToLocal(t *testing.T) {
	// Documents written before the remote variants existed carry no type tag.
	raw := `{"path": "/music/old.mp3", "title": "Old Song", "duration": 123.4}`

	var track Track
	require.NoError(t, json.Unmarshal([]byte(raw), &track))

	assert.Equal(t, KindLocal, track.Kind)
	assert.Equal(t, "/music/old.mp3", track.Path)
	assert.Equal(t, "Old Song", track.Title)
	assert.InDelta(t, 123.4, track.Duration, 0.001)
}

func TestTrack_UnmarshalJSON_RemoteKinds(t *testing.T) {
	raw := `[
		{"type": "youtube-stream", "id": "v1", "title": "Stream", "channel": "Ch", "duration": 60},
		{"type": "youtube-downloaded", "id": "v2", "title": "Down", "isDownloaded": true, "localPath": "/dl/v2.mp3"}
	]`

	var tracks []Track
	require.NoError(t, json.Unmarshal([]byte(raw), &tracks))
	require.Len(t, tracks, 2)

	assert.Equal(t, KindRemoteStream, tracks[0].Kind)
	assert.Equal(t, "v1", tracks[0].Key())

	assert.Equal(t, KindRemoteDownloaded, tracks[1].Kind)
	assert.True(t, tracks[1].Downloaded)
	assert.Equal(t, "/dl/v2.mp3", tracks[1].LocalPath)
}

func TestTrack_PlayablePath(t *testing.T) {
	path, ok := Track{Kind: KindLocal, Path: "/a.mp3"}.PlayablePath()
	assert.True(t, ok)
	assert.Equal(t, "/a.mp3", path)

	path, ok = Track{Kind: KindRemoteDownloaded, ID: "v1", LocalPath: "/dl/v1.mp3"}.PlayablePath()
	assert.True(t, ok)
	assert.Equal(t, "/dl/v1.mp3", path)

	_, ok = Track{Kind: KindRemoteStream, ID: "v1"}.PlayablePath()
	assert.False(t, ok)
}

func TestTrack_DisplayTitle(t *testing.T) {
	assert.Equal(t, "Named", Track{Kind: KindLocal, Path: "/a.mp3", Title: "Named"}.DisplayTitle())
	assert.Equal(t, "fallback", Track{Kind: KindLocal, Path: "/music/fallback.mp3"}.DisplayTitle())
}

func TestMissingFrom(t *testing.T) {
	existing := []Track{
		{Kind: KindLocal, Path: "/a.mp3"},
		{Kind: KindRemoteStream, ID: "v1"},
	}
	candidates := []Track{
		{Kind: KindLocal, Path: "/a.mp3"},  // already present
		{Kind: KindLocal, Path: "/b.mp3"},  // new
		{Kind: KindLocal, Path: "/b.mp3"},  // duplicate candidate
		{Kind: KindRemoteStream, ID: "v2"}, // new
		{Kind: KindLocal},                  // no identity, dropped
	}

	missing := MissingFrom(existing, candidates)

	require.Len(t, missing, 2)
	assert.Equal(t, "/b.mp3", missing[0].Key())
	assert.Equal(t, "v2", missing[1].Key())
}

func TestMissingFrom_AllPresent(t *testing.T) {
	existing := []Track{{Kind: KindLocal, Path: "/a.mp3"}}
	missing := MissingFrom(existing, existing)
	assert.Empty(t, missing)
}

func TestContainsKey(t *testing.T) {
	tracks := []Track{
		{Kind: KindLocal, Path: "/a.mp3"},
		{Kind: KindRemoteStream, ID: "v1"},
	}

	assert.True(t, ContainsKey(tracks, "/a.mp3"))
	assert.True(t, ContainsKey(tracks, "v1"))
	assert.False(t, ContainsKey(tracks, "/b.mp3"))
}
