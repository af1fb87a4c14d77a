// Package beepout implements the AudioOutput interface on top of the beep
// playback library and its speaker. It plays one media source at a time:
// local and downloaded tracks from in-memory file bytes, remote streams by
// fetching the resolved URL into memory first.
package beepout

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

// mixRate is the fixed speaker sample rate; sources at other rates are
// resampled on the fly.
const mixRate = beep.SampleRate(44100)

// resampleQuality trades CPU for resampling accuracy (beep's 1..64 scale).
const resampleQuality = 4

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Output renders audio through the process-wide beep speaker.
//
// The speaker is a singleton, so only one source can be attached at a time:
// Load fails if the previous handle was not unloaded first. This is the
// resource-release discipline the playback engine already follows.
type Output struct {
	mu sync.Mutex

	httpClient *http.Client

	current    *loadedSource
	nextHandle domain.MediaHandle
}

type loadedSource struct {
	handle   domain.MediaHandle
	name     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	status   domain.PlaybackStatus
	started  bool // speaker.Play has been issued for this source
	finished bool // natural end reached
}

// New creates a beep-backed audio output. The speaker is initialized on
// first use and stays up for the life of the process.
func New() *Output {
	return &Output{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		nextHandle: 1,
	}
}

// Load decodes the source and prepares it for playback.
func (o *Output) Load(src domain.MediaSource) (domain.MediaHandle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil {
		return domain.InvalidMediaHandle, domain.NewAudioOutputError(
			"load", src.Name, "previous source not unloaded", nil)
	}

	data := src.Data
	if len(data) == 0 && src.StreamURL != "" {
		fetched, err := o.fetch(src.StreamURL)
		if err != nil {
			return domain.InvalidMediaHandle, domain.NewAudioOutputError(
				"load", src.Name, "fetching stream", err)
		}
		data = fetched
	}
	if len(data) == 0 {
		return domain.InvalidMediaHandle, domain.NewAudioOutputError(
			"load", src.Name, "empty media source", nil)
	}

	streamer, format, err := decode(src.Name, data)
	if err != nil {
		return domain.InvalidMediaHandle, domain.NewAudioOutputError(
			"load", src.Name, "decoding", err)
	}

	speakerOnce.Do(func() {
		speakerErr = speaker.Init(mixRate, mixRate.N(time.Second/10))
	})
	if speakerErr != nil {
		streamer.Close()
		return domain.InvalidMediaHandle, domain.NewAudioOutputError(
			"load", src.Name, "initializing speaker", speakerErr)
	}

	handle := o.nextHandle
	o.nextHandle++

	ctrl := &beep.Ctrl{Streamer: streamer, Paused: false}
	vol := &effects.Volume{Streamer: ctrl, Base: 2, Volume: 0, Silent: false}

	o.current = &loadedSource{
		handle:   handle,
		name:     src.Name,
		streamer: streamer,
		format:   format,
		ctrl:     ctrl,
		volume:   vol,
		status:   domain.StatusStopped,
	}

	return handle, nil
}

// Unload detaches and releases the loaded source.
func (o *Output) Unload(handle domain.MediaHandle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return err
	}

	if cur.started {
		speaker.Clear()
	}
	cur.streamer.Close()
	o.current = nil
	return nil
}

// Play starts or resumes playback.
func (o *Output) Play(handle domain.MediaHandle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return err
	}

	if !cur.started {
		stream := beep.Streamer(cur.volume)
		if cur.format.SampleRate != mixRate {
			stream = beep.Resample(resampleQuality, cur.format.SampleRate, mixRate, cur.volume)
		}
		speaker.Play(beep.Seq(stream, beep.Callback(func() {
			o.markFinished(handle)
		})))
		cur.started = true
	} else {
		speaker.Lock()
		cur.ctrl.Paused = false
		speaker.Unlock()
	}

	cur.status = domain.StatusPlaying
	return nil
}

// Pause pauses playback, keeping the position.
func (o *Output) Pause(handle domain.MediaHandle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return err
	}
	if cur.status != domain.StatusPlaying {
		return nil
	}

	speaker.Lock()
	cur.ctrl.Paused = true
	speaker.Unlock()
	cur.status = domain.StatusPaused
	return nil
}

// Stop halts playback and rewinds without unloading.
func (o *Output) Stop(handle domain.MediaHandle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return err
	}

	if cur.started {
		speaker.Clear()
		cur.started = false
	}
	if err := cur.streamer.Seek(0); err != nil {
		return domain.NewAudioOutputError("stop", cur.name, "rewinding", err)
	}
	cur.status = domain.StatusStopped
	cur.finished = false
	return nil
}

// Status returns the transport status for the handle.
func (o *Output) Status(handle domain.MediaHandle) (domain.PlaybackStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return domain.StatusStopped, err
	}
	return cur.status, nil
}

// Position returns the current playback position.
func (o *Output) Position(handle domain.MediaHandle) (time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return 0, err
	}

	speaker.Lock()
	pos := cur.streamer.Position()
	speaker.Unlock()
	return cur.format.SampleRate.D(pos), nil
}

// Duration returns the total duration of the loaded source.
func (o *Output) Duration(handle domain.MediaHandle) (time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return 0, err
	}
	return cur.format.SampleRate.D(cur.streamer.Len()), nil
}

// Seek sets the playback position.
func (o *Output) Seek(handle domain.MediaHandle, position time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return err
	}

	n := cur.format.SampleRate.N(position)
	if n < 0 || n > cur.streamer.Len() {
		return domain.ErrInvalidPosition
	}

	speaker.Lock()
	err = cur.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return domain.NewAudioOutputError("seek", cur.name, "seeking", err)
	}
	return nil
}

// SetVolume sets the output volume on a logarithmic scale: 1.0 maps to
// unity gain, 0.5 to half loudness, 0 to silence.
func (o *Output) SetVolume(handle domain.MediaHandle, volume float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cur, err := o.source(handle)
	if err != nil {
		return err
	}
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	speaker.Lock()
	if volume == 0 {
		cur.volume.Silent = true
	} else {
		cur.volume.Silent = false
		cur.volume.Volume = math.Log2(volume)
	}
	speaker.Unlock()
	return nil
}

// Close releases the loaded source, if any. The speaker itself stays up;
// beep offers no teardown for it.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current != nil {
		if o.current.started {
			speaker.Clear()
		}
		o.current.streamer.Close()
		o.current = nil
	}
	return nil
}

// markFinished flags natural end-of-source; the playback engine observes it
// through Status/Position polling.
func (o *Output) markFinished(handle domain.MediaHandle) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil || o.current.handle != handle {
		return
	}
	o.current.status = domain.StatusStopped
	o.current.finished = true
	o.current.started = false
}

// source returns the loaded source for the handle, or an error.
// Caller must hold o.mu.
func (o *Output) source(handle domain.MediaHandle) (*loadedSource, error) {
	if o.current == nil || o.current.handle != handle {
		return nil, domain.ErrInvalidMediaHandle
	}
	return o.current, nil
}

// fetch downloads a resolved stream URL fully into memory, mirroring the
// byte-buffer playback model used for local files.
func (o *Output) fetch(url string) ([]byte, error) {
	resp, err := o.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// decode picks a decoder from the source name's extension. Remote audio is
// always mp3 (the downloader transcodes to it), so that is the fallback.
func decode(name string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	rc := io.NopCloser(bytes.NewReader(data))

	switch strings.ToLower(filepath.Ext(name)) {
	case ".flac", ".fla":
		return flac.Decode(rc)
	case ".wav", ".aif", ".aiff":
		return wav.Decode(rc)
	case ".ogg", ".oga":
		return vorbis.Decode(rc)
	default:
		return mp3.Decode(rc)
	}
}

// Verify that Output implements the AudioOutput interface.
var _ ports.AudioOutput = (*Output)(nil)
