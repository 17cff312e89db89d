package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"cratedig/internal/tasks"
)

// Sync fetches the user's saved albums from Spotify and resolves a Discogs
// rating for each one, reporting progress as it goes.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	quiet := cmd.Bool("quiet")

	if err := r.ensureAuthenticated(ctx); err != nil {
		return err
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			if quiet || useJSON {
				continue
			}
			if update.Phase == tasks.ResolveRatings {
				r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
			} else {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := engine.SyncLibrary(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		if reauthed, authErr := r.handleAuthError(ctx, err, cmd); reauthed {
			if authErr != nil {
				return authErr
			}
			progress2 := make(chan tasks.ProgressUpdate, 50)
			go func() {
				for range progress2 {
				}
			}()
			result, err = engine.SyncLibrary(ctx, progress2)
			close(progress2)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
		} else {
			return fmt.Errorf("sync failed: %w", err)
		}
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	r.writePlainln("✓ Sync complete")
	r.writePlain("Albums: %d\n", len(result.Albums))
	r.writePlain("Rated: %d\n", result.Stats.Rated)
	r.writePlain("Unrated: %d\n", result.Stats.Unrated)
	if result.Stats.Rated > 0 {
		r.writePlain("Mean rating: %.1f/10\n", result.Stats.Mean)
	}

	return nil
}
