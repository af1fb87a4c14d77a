// Package jsonfile persists library, playlist and download state as
// pretty-printed JSON documents under the application data directory.
// Every save rewrites the whole document; the files are small enough that
// read-modify-write is simpler and safer than incremental updates.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	libraryFile   = "music-library.json"
	playlistsFile = "playlists.json"
	downloadsFile = "youtube-tracks.json"

	downloadsSubdir = "downloads/youtube"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store anchors the JSON documents and the download tree at a base
// directory, creating it on first use.
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("jsonfile: empty base directory")
	}
	if err := os.MkdirAll(baseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("jsonfile: creating data directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the data directory the store is rooted at.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// DownloadsDir returns the directory downloaded audio files live in,
// creating it if needed.
func (s *Store) DownloadsDir() (string, error) {
	dir := filepath.Join(s.baseDir, downloadsSubdir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("jsonfile: creating downloads directory: %w", err)
	}
	return dir, nil
}

// readDocument unmarshals the named JSON document into out. A missing file
// is not an error; out is left untouched so callers start from their zero
// value.
func (s *Store) readDocument(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.baseDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, out)
}

// writeDocument atomically replaces the named JSON document. The temp file
// lives in the same directory so the rename never crosses filesystems.
func (s *Store) writeDocument(name string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.baseDir, name)
	tmp, err := os.CreateTemp(s.baseDir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
