// Package main is the production entry point for the Minuet player core.
//
// Minuet is the headless core of a desktop music player:
// - Local library, playlists and downloaded remote tracks as JSON documents
// - Playback through the system speaker with shuffle and repeat modes
// - Remote search, streaming and downloading via yt-dlp
//
// A UI process binds to the services and the event bus; this binary hosts
// them and runs until interrupted.
//
// Build:
//
//	go build -o build/minuet ./cmd
//
// Run:
//
//	./build/minuet
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lucverdier/minuet/internal/app"
)

func main() {
	config, err := app.DefaultConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Shutdown()

	// Run until interrupted.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
