// Package main is the production entry point for the Audition player.
//
// Audition is a desktop A/B listening tool built around an external mpv
// process: an ordered tracklist with concurrent track import, a playback
// controller with A/B loop and bookmark support, and a Fyne UI.
//
// Build:
//
//	go build -o build/audition ./cmd
//
// Run:
//
//	./build/audition
package main

import (
	"log"

	"github.com/audition-player/audition/internal/app"
	"github.com/audition-player/audition/internal/config"
)

func main() {
	// Configuration comes from the environment (AUDITION_* variables)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create the application with dependency injection
	application, err := app.NewApplication(app.DefaultOptions(cfg))
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer application.Shutdown()

	// Run application (blocks until the window is closed)
	application.Run()
}
