// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"log/slog"

	"github.com/lucverdier/minuet/internal/adapter/audio/beepout"
	"github.com/lucverdier/minuet/internal/adapter/audio/mock"
	"github.com/lucverdier/minuet/internal/adapter/eventbus"
	"github.com/lucverdier/minuet/internal/adapter/metadata/tagreader"
	"github.com/lucverdier/minuet/internal/adapter/netcheck"
	"github.com/lucverdier/minuet/internal/adapter/remote/ytdlp"
	"github.com/lucverdier/minuet/internal/adapter/storage/jsonfile"
	"github.com/lucverdier/minuet/internal/config"
	"github.com/lucverdier/minuet/internal/logger"
	"github.com/lucverdier/minuet/internal/ports"
	"github.com/lucverdier/minuet/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// A UI layer binds to the services and the event bus; nothing here renders
// anything.
type Application struct {
	// Core dependencies
	logger *slog.Logger

	// Infrastructure
	eventBus ports.EventBus
	output   ports.AudioOutput
	store    *jsonfile.Store

	// Services
	playbackService *service.PlaybackService
	playlistService *service.PlaylistService
	libraryService  *service.LibraryService
	remoteService   *service.RemoteService
}

// Config holds application configuration resolved from the TOML config.
type Config struct {
	// DataDir is where the JSON documents and downloads live.
	DataDir string

	// YtdlpPath is the yt-dlp executable name or path.
	YtdlpPath string

	// SearchLimit is how many results a remote search asks for.
	SearchLimit int

	// ProbeAddr is the host:port the connectivity check dials.
	ProbeAddr string

	// UseMockAudio replaces the speaker-backed output with the scriptable
	// mock (for tests and headless environments).
	UseMockAudio bool

	// LogLevel controls logging verbosity.
	LogLevel slog.Level

	// LogFormat is "text" or "json".
	LogFormat string
}

// DefaultConfig resolves configuration from the TOML config files, falling
// back to built-in defaults when none exist.
func DefaultConfig() (Config, error) {
	fileCfg, err := config.Load()
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	return Config{
		DataDir:     fileCfg.ResolveDataDir(),
		YtdlpPath:   fileCfg.Remote.YtdlpPath,
		SearchLimit: fileCfg.Remote.SearchLimit,
		ProbeAddr:   fileCfg.Remote.ProbeAddr,
		LogLevel:    logger.ParseLevel(fileCfg.Log.Level),
		LogFormat:   fileCfg.Log.Format,
	}, nil
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(cfg Config) (*Application, error) {
	app := &Application{}

	// Step 1: Logger
	app.logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	app.logger.Info("initializing application",
		slog.String("data_dir", cfg.DataDir))

	// Step 2: Event bus
	bus := eventbus.NewSyncEventBus()
	bus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = bus

	// Step 3: Audio output
	if cfg.UseMockAudio {
		app.output = mock.NewOutput()
	} else {
		app.output = beepout.New()
	}

	// Step 4: Storage
	store, err := jsonfile.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	app.store = store

	downloadsDir, err := store.DownloadsDir()
	if err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}

	// Step 5: External collaborators
	meta := tagreader.New()
	remote := ytdlp.New(downloadsDir,
		ytdlp.WithBinary(cfg.YtdlpPath),
		ytdlp.WithSearchLimit(cfg.SearchLimit),
	)
	connectivity := netcheck.New(cfg.ProbeAddr)

	// Step 6: Services (with dependency injection)
	app.playlistService, err = service.NewPlaylistService(
		app.logger.With(slog.String("service", "playlist")),
		jsonfile.NewPlaylistRepository(store),
		app.eventBus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist service: %w", err)
	}

	app.libraryService, err = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		jsonfile.NewLibraryRepository(store),
		jsonfile.NewDownloadRepository(store),
		meta,
		app.playlistService,
		app.eventBus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create library service: %w", err)
	}

	app.remoteService = service.NewRemoteService(
		app.logger.With(slog.String("service", "remote")),
		remote,
		connectivity,
		app.libraryService,
	)

	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		app.output,
		remote,
		connectivity,
		app.eventBus,
	)

	return app, nil
}

// Playback returns the playback service.
func (a *Application) Playback() *service.PlaybackService { return a.playbackService }

// Playlists returns the playlist service.
func (a *Application) Playlists() *service.PlaylistService { return a.playlistService }

// Library returns the library service.
func (a *Application) Library() *service.LibraryService { return a.libraryService }

// Remote returns the remote service.
func (a *Application) Remote() *service.RemoteService { return a.remoteService }

// Events returns the event bus a UI subscribes to.
func (a *Application) Events() ports.EventBus { return a.eventBus }

// DataDir returns the resolved data directory.
func (a *Application) DataDir() string { return a.store.BaseDir() }

// Shutdown gracefully shuts down the application.
// This should be called via deferring in main.go.
func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	if a.playbackService != nil {
		if err := a.playbackService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback service", slog.Any("error", err))
		}
	}

	if a.output != nil {
		if err := a.output.Close(); err != nil {
			a.logger.Warn("failed to close audio output", slog.Any("error", err))
		}
	}

	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}
	}

	a.logger.Info("application shutdown complete")
}
