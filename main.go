// Package main provides the entry point for the Artwork Sequencer desktop
// editor.
package main

import (
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"artwork-sequencer/internal/app"
	"artwork-sequencer/internal/config"
	"artwork-sequencer/internal/version"
	"artwork-sequencer/ui/mainwindow"
	"artwork-sequencer/ui/prefs"
)

const appID = "com.github.artwork-sequencer"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Artwork Sequencer %s", version.String())

	cfg, path, exists, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if exists {
		log.Printf("Using configuration %s", path)
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.SequencerTheme{})

	appState := app.NewState(cfg)
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)

	// Handle command line arguments
	if len(os.Args) > 1 {
		win.OpenProject(os.Args[1])
	}

	win.ShowAndRun()
}
