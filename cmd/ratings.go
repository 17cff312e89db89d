package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"cratedig/internal/repositories"
	"cratedig/internal/shared"
)

// RatingGet resolves the rating for a single album through the cache gate.
//
// A cached pair is served from the database; an unknown pair goes out to
// Discogs and the outcome is recorded either way.
func (r *Runner) RatingGet(ctx context.Context, cmd *cli.Command) error {
	album := cmd.StringArg("album")
	artist := cmd.String("artist")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if album == "" {
		return fmt.Errorf("%w: album name", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	r.logger.Infof("resolving rating for %v by %v", album, artist)

	outcome := r.gate(db).Resolve(ctx, album, artist)

	if useJSON {
		return r.writeJSON(outcome, pretty)
	}

	if outcome.Found {
		r.writePlain("%s by %s: %.1f/10\n", album, artist, outcome.Rating)
	} else {
		r.writePlain("%s by %s: no rating found\n", album, artist)
	}

	return nil
}

// RatingsList prints every cached rating outcome.
func (r *Runner) RatingsList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := r.database()
	if err != nil {
		return err
	}

	entries, err := repositories.NewRatingRepository(db).List()
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(entries, pretty)
	}

	if len(entries) == 0 {
		r.writePlain("Rating cache is empty.\n")
		return nil
	}

	r.writePlain("Cached outcomes: %d\n\n", len(entries))
	for i, entry := range entries {
		if entry.Rating != nil {
			r.writePlain("%d. %s - %s: %.1f/10\n", i+1, entry.ArtistName, entry.AlbumName, *entry.Rating)
		} else {
			r.writePlain("%d. %s - %s: no rating\n", i+1, entry.ArtistName, entry.AlbumName)
		}
	}

	return nil
}

// RatingsRemove forgets a cached outcome so the next lookup resolves again.
func (r *Runner) RatingsRemove(ctx context.Context, cmd *cli.Command) error {
	album := cmd.StringArg("album")
	artist := cmd.String("artist")

	if album == "" {
		return fmt.Errorf("%w: album name", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	if err := repositories.NewRatingRepository(db).Delete(album, artist); err != nil {
		return err
	}

	r.writePlain("✓ Forgot cached outcome for %s by %s\n", album, artist)
	return nil
}
