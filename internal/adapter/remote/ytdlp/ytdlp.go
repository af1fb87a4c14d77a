// Package ytdlp talks to the yt-dlp command line tool for searching,
// resolving and downloading remote video audio.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

const defaultBinary = "yt-dlp"

// Client shells out to yt-dlp. It holds no mutable state, so a single
// instance can run concurrent searches and downloads.
type Client struct {
	binary       string
	downloadsDir string
	searchLimit  int
}

// Option customizes the client.
type Option func(*Client)

// WithBinary overrides the yt-dlp executable path.
func WithBinary(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.binary = path
		}
	}
}

// WithSearchLimit sets how many results Search asks for.
func WithSearchLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// New creates a client that downloads audio into downloadsDir.
func New(downloadsDir string, opts ...Option) *Client {
	c := &Client{
		binary:       defaultBinary,
		downloadsDir: downloadsDir,
		searchLimit:  10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchEntry is the subset of yt-dlp's flat-playlist JSON dump we care
// about. Older yt-dlp versions report the channel under "uploader".
type searchEntry struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Channel   string  `json:"channel"`
	Uploader  string  `json:"uploader"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
	URL       string  `json:"url"`
}

// Search runs a video search and returns the results as streamable tracks.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Track{}, nil
	}

	out, err := c.run(ctx, "search", "",
		fmt.Sprintf("ytsearch%d:%s", c.searchLimit, query),
		"--dump-json",
		"--flat-playlist",
		"--no-warnings",
	)
	if err != nil {
		return nil, err
	}

	return parseSearchOutput(out)
}

// parseSearchOutput decodes yt-dlp's dump-json output: one JSON object per
// line, one line per result.
func parseSearchOutput(out []byte) ([]domain.Track, error) {
	tracks := []domain.Track{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry searchEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, domain.NewRemoteSourceError("search", "", "parsing result", err)
		}
		if entry.ID == "" {
			continue
		}
		tracks = append(tracks, entry.toTrack())
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewRemoteSourceError("search", "", "reading results", err)
	}
	return tracks, nil
}

func (e searchEntry) toTrack() domain.Track {
	channel := e.Channel
	if channel == "" {
		channel = e.Uploader
	}
	url := e.URL
	if url == "" {
		url = "https://www.youtube.com/watch?v=" + e.ID
	}
	return domain.Track{
		Kind:      domain.KindRemoteStream,
		ID:        e.ID,
		Title:     e.Title,
		Channel:   channel,
		Duration:  e.Duration,
		Thumbnail: e.Thumbnail,
		URL:       url,
	}
}

// ResolveStreamURL returns a direct audio URL for the video, valid for a
// limited time, without downloading anything.
func (c *Client) ResolveStreamURL(ctx context.Context, videoID string) (string, error) {
	out, err := c.run(ctx, "resolve", videoID,
		"--get-url",
		"--format", "bestaudio",
		"--no-playlist",
		"--no-warnings",
		watchURL(videoID),
	)
	if err != nil {
		return "", err
	}

	url := strings.TrimSpace(string(out))
	if url == "" {
		return "", domain.NewRemoteSourceError("resolve", videoID, "no stream url returned", nil)
	}
	// bestaudio can still expand to several formats; take the first.
	if i := strings.IndexByte(url, '\n'); i >= 0 {
		url = url[:i]
	}
	return url, nil
}

// Download fetches the video audio as an mp3 file named after the video ID
// and returns the path of the written file.
func (c *Client) Download(ctx context.Context, videoID string) (string, error) {
	target := filepath.Join(c.downloadsDir, videoID+".mp3")
	outputTemplate := filepath.Join(c.downloadsDir, videoID+".%(ext)s")

	_, err := c.run(ctx, "download", videoID,
		"--extract-audio",
		"--audio-format", "mp3",
		"--no-playlist",
		"--no-warnings",
		"--output", outputTemplate,
		watchURL(videoID),
	)
	if err != nil {
		return "", err
	}
	return target, nil
}

// run executes yt-dlp and returns stdout, wrapping failures with trimmed
// stderr so the real cause surfaces in logs.
func (c *Client) run(ctx context.Context, op, videoID string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "yt-dlp failed"
		}
		return nil, domain.NewRemoteSourceError(op, videoID, msg, err)
	}
	return stdout.Bytes(), nil
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Verify that Client implements the RemoteSource interface.
var _ ports.RemoteSource = (*Client)(nil)
