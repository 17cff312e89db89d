package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"cratedig/internal/services"
	"cratedig/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.LibraryService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		}
	}

	window := services.NewDiscogsWindow()
	discogsService := services.NewDiscogsService(config.Credentials.Discogs, window, logger)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Catalog: discogsService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "cratedig",
		Usage:    "Sync your Spotify album library and enrich it with Discogs community ratings",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
