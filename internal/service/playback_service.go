// Package service provides the business logic of the Minuet player core.
package service

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/lucverdier/minuet/internal/domain"
	"github.com/lucverdier/minuet/internal/ports"
)

// PlaybackService orchestrates the playback session: the current track, the
// active play order, shuffle and repeat modes, volume, and the transport.
// All operations are thread-safe via sync.RWMutex.
type PlaybackService struct {
	// Dependencies (injected)
	logger *slog.Logger
	output ports.AudioOutput
	remote ports.RemoteSource
	net    ports.Connectivity
	bus    ports.EventBus

	// State
	order        []domain.Track // order as set by the caller
	shuffled     []domain.Track // active permutation while shuffle is on
	shuffle      bool
	repeat       domain.RepeatMode
	currentTrack *domain.Track
	handle       domain.MediaHandle
	volume       float64
	loading      bool

	// Concurrency control
	mu           sync.RWMutex
	pollInterval time.Duration
	stopPoll     chan struct{}
	pollRunning  bool
	pollWg       sync.WaitGroup
	manualStop   bool // true if the user explicitly stopped playback
	hasPlayed    bool // true if the current track has been played
}

// NewPlaybackService creates a new playback service and starts its progress
// poller.
func NewPlaybackService(
	logger *slog.Logger,
	output ports.AudioOutput,
	remote ports.RemoteSource,
	net ports.Connectivity,
	bus ports.EventBus,
) *PlaybackService {
	s := &PlaybackService{
		logger:       logger,
		output:       output,
		remote:       remote,
		net:          net,
		bus:          bus,
		handle:       domain.InvalidMediaHandle,
		volume:       0.8,
		pollInterval: 333 * time.Millisecond,
		stopPoll:     make(chan struct{}),
	}

	logger.Debug("playback service initialized")

	s.startPoller()

	return s
}

// Play resolves the track's media source and starts playing it, replacing
// whatever was loaded before. On resolution failure the previous session
// state is left untouched and an error event is published.
func (s *PlaybackService) Play(ctx context.Context, track domain.Track) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	// Source resolution can hit the disk or the network; keep the lock
	// released while it runs.
	src, err := s.resolveSource(ctx, track)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("failed to resolve media source",
			slog.String("key", track.Key()), slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return err
	}
	defer s.mu.Unlock()

	// The output owns one source at a time; release the old one first.
	if s.handle != domain.InvalidMediaHandle {
		if err := s.unloadInternal(); err != nil {
			s.logger.Warn("failed to unload previous track", slog.Any("error", err))
		}
	}

	handle, err := s.output.Load(src)
	if err != nil {
		s.logger.Warn("failed to load media source",
			slog.String("key", track.Key()), slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return err
	}

	if err := s.output.SetVolume(handle, s.volume); err != nil {
		if unloadErr := s.output.Unload(handle); unloadErr != nil {
			s.logger.Warn("failed to unload track after volume error", slog.Any("error", unloadErr))
		}
		return err
	}

	duration, err := s.output.Duration(handle)
	if err != nil {
		if unloadErr := s.output.Unload(handle); unloadErr != nil {
			s.logger.Warn("failed to unload track after duration error", slog.Any("error", unloadErr))
		}
		return err
	}

	// Metadata readers leave duration at zero for local files; the decoder
	// is the first to know the real value.
	if track.Duration == 0 && duration > 0 {
		track.Duration = duration.Seconds()
	}

	s.currentTrack = &track
	s.handle = handle
	s.manualStop = false
	s.hasPlayed = true

	s.bus.Publish(domain.NewTrackLoadedEvent(track, duration))

	if err := s.output.Play(handle); err != nil {
		s.logger.Warn("failed to start playback", slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return err
	}

	s.bus.Publish(domain.NewTrackStartedEvent(track))

	return nil
}

// resolveSource turns a track into a playable media source. File-backed
// tracks are read fully into memory; streaming tracks are gated on
// connectivity and resolved through the remote source.
func (s *PlaybackService) resolveSource(ctx context.Context, track domain.Track) (domain.MediaSource, error) {
	if path, ok := track.PlayablePath(); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Debug("media file unreadable",
				slog.String("path", path), slog.Any("error", err))
			return domain.MediaSource{}, domain.ErrSourceUnavailable
		}
		return domain.MediaSource{TrackKey: track.Key(), Name: path, Data: data}, nil
	}

	if track.Kind != domain.KindRemoteStream {
		return domain.MediaSource{}, domain.ErrSourceUnavailable
	}

	if !s.net.Online(ctx) {
		return domain.MediaSource{}, domain.ErrNetworkUnavailable
	}

	url, err := s.remote.ResolveStreamURL(ctx, track.ID)
	if err != nil {
		s.logger.Debug("stream url resolution failed",
			slog.String("id", track.ID), slog.Any("error", err))
		return domain.MediaSource{}, domain.ErrSourceUnavailable
	}
	return domain.MediaSource{TrackKey: track.Key(), Name: url, StreamURL: url}, nil
}

// Pause pauses playback. A no-op when nothing is loaded.
func (s *PlaybackService) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == domain.InvalidMediaHandle {
		return nil
	}

	position, err := s.output.Position(s.handle)
	if err != nil {
		position = 0
	}

	if err := s.output.Pause(s.handle); err != nil {
		return err
	}

	if s.currentTrack != nil {
		s.bus.Publish(domain.NewTrackPausedEvent(*s.currentTrack, position))
	}

	return nil
}

// Resume resumes paused playback. A no-op when nothing is loaded.
func (s *PlaybackService) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == domain.InvalidMediaHandle {
		return nil
	}

	status, err := s.output.Status(s.handle)
	if err != nil {
		return err
	}
	if status == domain.StatusPlaying {
		return nil
	}

	s.manualStop = false
	if err := s.output.Play(s.handle); err != nil {
		return err
	}

	if s.currentTrack != nil {
		s.bus.Publish(domain.NewTrackStartedEvent(*s.currentTrack))
	}

	return nil
}

// Stop stops playback and unloads the current track, returning to idle.
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopInternal()
}

// stopInternal stops playback without locking (caller must hold lock).
func (s *PlaybackService) stopInternal() error {
	if s.handle == domain.InvalidMediaHandle {
		return nil
	}

	s.manualStop = true
	s.hasPlayed = false

	track := s.currentTrack

	if err := s.unloadInternal(); err != nil {
		return err
	}

	if track != nil {
		s.bus.Publish(domain.NewTrackStoppedEvent(*track))
	}

	return nil
}

// unloadInternal stops and releases the loaded source (caller must hold lock).
func (s *PlaybackService) unloadInternal() error {
	if s.handle == domain.InvalidMediaHandle {
		return nil
	}

	if err := s.output.Stop(s.handle); err != nil {
		s.logger.Warn("failed to stop output", slog.Any("error", err))
	}
	err := s.output.Unload(s.handle)

	s.handle = domain.InvalidMediaHandle
	s.currentTrack = nil

	return err
}

// Seek sets the playback position, clamped into [0, duration].
func (s *PlaybackService) Seek(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == domain.InvalidMediaHandle {
		return domain.ErrNoTrackLoaded
	}

	duration, err := s.output.Duration(s.handle)
	if err != nil {
		return err
	}

	if position < 0 {
		position = 0
	}
	if position > duration {
		position = duration
	}

	if err := s.output.Seek(s.handle, position); err != nil {
		return err
	}

	s.bus.Publish(domain.NewTrackProgressEvent(position, duration))

	return nil
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (s *PlaybackService) SetVolume(volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.volume = volume

	if s.handle != domain.InvalidMediaHandle {
		if err := s.output.SetVolume(s.handle, volume); err != nil {
			return err
		}
	}

	s.bus.Publish(domain.NewVolumeChangedEvent(volume))

	return nil
}

// Volume returns the current volume (0.0 to 1.0).
func (s *PlaybackService) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.volume
}

// SetOrder replaces the active play order. When shuffle is on the
// permutation is regenerated with the current track first.
func (s *PlaybackService) SetOrder(tracks []domain.Track) {
	s.mu.Lock()

	s.order = make([]domain.Track, len(tracks))
	copy(s.order, tracks)

	if s.shuffle {
		s.reshuffle()
	}

	active := s.activeOrder()
	s.mu.Unlock()

	s.bus.Publish(domain.NewOrderChangedEvent(active))
}

// Next plays the track after the current one in the active order, wrapping
// from the last back to the first. A no-op when the order is empty.
func (s *PlaybackService) Next(ctx context.Context) error {
	return s.step(ctx, 1)
}

// Previous plays the track before the current one in the active order,
// wrapping from the first back to the last. A no-op when the order is empty.
func (s *PlaybackService) Previous(ctx context.Context) error {
	return s.step(ctx, -1)
}

func (s *PlaybackService) step(ctx context.Context, delta int) error {
	s.mu.RLock()
	active := s.activeOrder()
	n := len(active)
	if n == 0 {
		s.mu.RUnlock()
		return nil
	}

	if s.currentTrack == nil {
		s.mu.RUnlock()
		return nil
	}
	idx := indexOf(active, *s.currentTrack)
	s.mu.RUnlock()

	// A current track that fell out of the order restarts the walk from
	// the nearest edge.
	var next domain.Track
	if idx < 0 {
		if delta > 0 {
			next = active[0]
		} else {
			next = active[n-1]
		}
	} else {
		next = active[((idx+delta)%n+n)%n]
	}

	return s.Play(ctx, next)
}

// ToggleShuffle flips the shuffle flag. Turning it on generates a new
// permutation with the current track first; turning it off restores the
// caller-set order.
func (s *PlaybackService) ToggleShuffle() {
	s.mu.Lock()

	s.shuffle = !s.shuffle
	if s.shuffle {
		s.reshuffle()
	} else {
		s.shuffled = nil
	}

	enabled := s.shuffle
	active := s.activeOrder()
	s.mu.Unlock()

	s.bus.Publish(domain.NewShuffleToggledEvent(enabled))
	s.bus.Publish(domain.NewOrderChangedEvent(active))
}

// Shuffle reports whether shuffle is on.
func (s *PlaybackService) Shuffle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shuffle
}

// CycleRepeat advances the repeat mode (off, all, one) and returns the new
// mode.
func (s *PlaybackService) CycleRepeat() domain.RepeatMode {
	s.mu.Lock()
	s.repeat = s.repeat.Next()
	mode := s.repeat
	s.mu.Unlock()

	s.bus.Publish(domain.NewRepeatChangedEvent(mode))

	return mode
}

// Repeat returns the current repeat mode.
func (s *PlaybackService) Repeat() domain.RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.repeat
}

// State returns a snapshot of the playback session.
func (s *PlaybackService) State() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := domain.PlaybackState{
		Volume:  s.volume,
		Shuffle: s.shuffle,
		Repeat:  s.repeat,
		Order:   s.activeOrder(),
		Status:  domain.StatusStopped,
	}

	if s.currentTrack != nil {
		track := *s.currentTrack
		state.CurrentTrack = &track
	}

	if s.loading {
		state.Status = domain.StatusLoading
		return state
	}

	if s.handle != domain.InvalidMediaHandle {
		if status, err := s.output.Status(s.handle); err == nil {
			state.Status = status
		}
		if position, err := s.output.Position(s.handle); err == nil {
			state.Position = position
		}
		if duration, err := s.output.Duration(s.handle); err == nil {
			state.Duration = duration
		}
	}

	return state
}

// Shutdown stops the poller and releases the loaded source.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()

	if s.pollRunning {
		close(s.stopPoll)
		s.pollRunning = false
	}

	// Release lock before waiting for the poller to exit (avoids deadlock).
	s.mu.Unlock()

	s.pollWg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopInternal()
}

// activeOrder returns the order next/previous walk (caller must hold lock).
func (s *PlaybackService) activeOrder() []domain.Track {
	src := s.order
	if s.shuffle {
		src = s.shuffled
	}
	out := make([]domain.Track, len(src))
	copy(out, src)
	return out
}

// reshuffle regenerates the shuffled permutation: Fisher-Yates over the
// order with the current track, when present, moved to the front (caller
// must hold lock).
func (s *PlaybackService) reshuffle() {
	s.shuffled = make([]domain.Track, len(s.order))
	copy(s.shuffled, s.order)

	rand.Shuffle(len(s.shuffled), func(i, j int) {
		s.shuffled[i], s.shuffled[j] = s.shuffled[j], s.shuffled[i]
	})

	if s.currentTrack == nil {
		return
	}
	if idx := indexOf(s.shuffled, *s.currentTrack); idx > 0 {
		cur := s.shuffled[idx]
		copy(s.shuffled[1:idx+1], s.shuffled[:idx])
		s.shuffled[0] = cur
	}
}

// indexOf finds a track by identity.
func indexOf(tracks []domain.Track, track domain.Track) int {
	for i, t := range tracks {
		if t.SameIdentity(track) {
			return i
		}
	}
	return -1
}

// startPoller starts a goroutine that publishes progress events and detects
// natural end-of-track.
func (s *PlaybackService) startPoller() {
	s.mu.Lock()
	if s.pollRunning {
		s.mu.Unlock()
		return
	}
	s.pollRunning = true
	s.pollWg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.pollWg.Done()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopPoll:
				return

			case <-ticker.C:
				s.pollOnce()
			}
		}
	}()
}

// pollOnce publishes a progress event and applies end-of-track semantics
// when the loaded source has finished naturally.
func (s *PlaybackService) pollOnce() {
	s.mu.RLock()

	if s.handle == domain.InvalidMediaHandle || s.currentTrack == nil {
		s.mu.RUnlock()
		return
	}

	status, err := s.output.Status(s.handle)
	if err != nil {
		s.mu.RUnlock()
		return
	}
	position, err := s.output.Position(s.handle)
	if err != nil {
		s.mu.RUnlock()
		return
	}
	duration, err := s.output.Duration(s.handle)
	if err != nil {
		s.mu.RUnlock()
		return
	}

	finished := status == domain.StatusStopped && !s.manualStop && s.hasPlayed
	s.mu.RUnlock()

	s.bus.Publish(domain.NewTrackProgressEvent(position, duration))

	if finished {
		s.handleTrackFinished()
	}
}

// handleTrackFinished applies the repeat semantics after a natural end:
// repeat-one restarts the track, repeat-all advances with wrap-around, and
// off advances until the order runs out, then goes idle.
func (s *PlaybackService) handleTrackFinished() {
	s.mu.Lock()

	if s.currentTrack == nil {
		s.mu.Unlock()
		return
	}

	track := *s.currentTrack
	repeat := s.repeat
	active := s.activeOrder()
	s.hasPlayed = false

	s.bus.Publish(domain.NewTrackCompletedEvent(track))

	lastInOrder := false
	if idx := indexOf(active, track); idx >= 0 && idx == len(active)-1 {
		lastInOrder = true
	}

	s.mu.Unlock()

	ctx := context.Background()

	switch {
	case repeat == domain.RepeatOne:
		if err := s.Play(ctx, track); err != nil {
			s.logger.Warn("failed to restart track", slog.Any("error", err))
		}

	case repeat == domain.RepeatOff && lastInOrder:
		if err := s.Stop(); err != nil {
			s.logger.Warn("failed to stop at end of order", slog.Any("error", err))
		}

	default:
		if err := s.Next(ctx); err != nil {
			s.logger.Warn("failed to advance to next track", slog.Any("error", err))
		}
	}
}
