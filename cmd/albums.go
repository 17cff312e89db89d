package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"cratedig/internal/formatter"
	"cratedig/internal/models"
	"cratedig/internal/repositories"
	"cratedig/internal/shared"
)

// loadStoredLibrary reads the synced library for the authenticated user from
// the database, without any network traffic.
func (r *Runner) loadStoredLibrary(ctx context.Context) (string, []models.Album, error) {
	if err := r.ensureAuthenticated(ctx); err != nil {
		return "", nil, err
	}

	userID, err := r.spotify.UserID(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	db, err := r.database()
	if err != nil {
		return "", nil, err
	}

	albums, err := repositories.NewAlbumRepository(db).ListByUser(userID)
	if err != nil {
		return "", nil, err
	}

	return userID, albums, nil
}

// AlbumsList lists the synced library with cached ratings.
func (r *Runner) AlbumsList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	_, albums, err := r.loadStoredLibrary(ctx)
	if err != nil {
		return err
	}

	if len(albums) == 0 {
		r.writePlain("No albums stored yet. Run 'cratedig sync' first.\n")
		return nil
	}

	if limit > 0 && limit < len(albums) {
		albums = albums[:limit]
	}

	if useJSON {
		return r.writeJSON(albums, pretty)
	}

	r.writePlain("Found %d albums:\n\n", len(albums))
	for i, album := range albums {
		r.writePlain("%d. %s - %s\n", i+1, album.Artists, album.Name)
		switch {
		case album.Rating != nil:
			r.writePlain("   Rating: %.1f/10\n", *album.Rating)
		case album.Rated:
			r.writePlain("   Rating: none found\n")
		default:
			r.writePlain("   Rating: not checked\n")
		}
	}

	return nil
}

// AlbumsStats prints rating statistics for the stored library.
func (r *Runner) AlbumsStats(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	_, albums, err := r.loadStoredLibrary(ctx)
	if err != nil {
		return err
	}

	stats := models.ComputeStats(albums)

	if useJSON {
		return r.writeJSON(stats, pretty)
	}

	r.writePlain("Albums: %d\n", len(albums))
	r.writePlain("Rated: %d\n", stats.Rated)
	r.writePlain("Unrated: %d\n", stats.Unrated)
	if stats.Rated > 0 {
		r.writePlain("Highest: %.1f\n", stats.Highest)
		r.writePlain("Lowest: %.1f\n", stats.Lowest)
		r.writePlain("Mean: %.1f\n", stats.Mean)
	}

	return nil
}

// AlbumsExport writes the stored library to CSV, Markdown, or plain text.
func (r *Runner) AlbumsExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	userID, albums, err := r.loadStoredLibrary(ctx)
	if err != nil {
		return err
	}

	if len(albums) == 0 {
		return fmt.Errorf("%w: no albums stored, run 'cratedig sync' first", shared.ErrAlbumNotFound)
	}

	export := &formatter.LibraryExport{
		UserID: userID,
		Albums: albums,
		Stats:  models.ComputeStats(albums),
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Library exported\n")
		r.writePlain("  Albums: %s\n", result.AlbumsFile)
		r.writePlain("  Stats: %s\n", result.StatsFile)
	case "markdown", "md":
		file, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Library exported to %s\n", file)
	case "text", "txt":
		file, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Library exported to %s\n", file)
	default:
		return fmt.Errorf("%w: unknown format %q (expected csv, markdown, or text)", shared.ErrInvalidArgument, format)
	}

	return nil
}
