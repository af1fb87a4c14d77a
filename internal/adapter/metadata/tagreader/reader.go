// Package tagreader extracts track metadata from audio files using the
// dhowden/tag library.
package tagreader

import (
	"os"
	"strings"

	"github.com/dhowden/tag"

	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

// Reader reads embedded tags from local audio files. Unreadable tags are
// not an error: an import should still succeed with the filename as the
// title, so Read degrades to a bare track instead of failing.
type Reader struct{}

// New creates a metadata reader.
func New() *Reader {
	return &Reader{}
}

// Read builds a local track for the file at path. Duration is left zero;
// it is measured by the audio output when the track is first decoded.
func (r *Reader) Read(path string) (domain.Track, error) {
	track := domain.Track{
		Kind: domain.KindLocal,
		Path: path,
	}

	if _, err := os.Stat(path); err != nil {
		return domain.Track{}, domain.ErrTrackNotFound
	}

	file, err := os.Open(path)
	if err != nil {
		track.Title = track.DisplayTitle()
		return track, nil
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil || meta == nil {
		track.Title = track.DisplayTitle()
		return track, nil
	}

	if title := strings.TrimSpace(meta.Title()); title != "" {
		track.Title = title
	} else {
		track.Title = track.DisplayTitle()
	}
	track.Artist = strings.TrimSpace(meta.Artist())
	track.Album = strings.TrimSpace(meta.Album())
	track.Genre = strings.TrimSpace(meta.Genre())
	if year := meta.Year(); year > 0 {
		track.Year = year
	}
	if picture := meta.Picture(); picture != nil {
		track.Cover = picture.Data
	}

	return track, nil
}

// Verify that Reader implements the MetadataReader interface.
var _ ports.MetadataReader = (*Reader)(nil)
