// package tasks implements library sync and enrichment operations.
//
// The core abstraction is LibraryEngine, which orchestrates fetching the
// user's saved albums from Spotify, persisting them, and enriching each with
// a Discogs community rating through the cache gate. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"cratedig/internal/models"
	"cratedig/internal/ratings"
	"cratedig/internal/repositories"
	"cratedig/internal/services"
	"github.com/charmbracelet/log"
)

// SyncResult contains all data from a full library sync.
type SyncResult struct {
	UserID string              `json:"user_id"`
	Albums []models.Album      `json:"albums"`
	Stats  models.LibraryStats `json:"stats"`
}

// LibraryResult contains a loaded library with its summary statistics.
type LibraryResult struct {
	Albums []models.Album      `json:"albums"`
	Stats  models.LibraryStats `json:"stats"`
}

// LibraryEngine orchestrates the sync pipeline from Spotify through the
// rating cache gate into SQLite.
type LibraryEngine struct {
	library services.LibraryService
	gate    ratings.RatingResolver
	albums  *repositories.AlbumRepository
	logger  *log.Logger
}

// NewLibraryEngine creates a LibraryEngine with the provided service, gate,
// and repository.
func NewLibraryEngine(library services.LibraryService, gate ratings.RatingResolver, albums *repositories.AlbumRepository, logger *log.Logger) *LibraryEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &LibraryEngine{
		library: library,
		gate:    gate,
		albums:  albums,
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SyncLibrary fetches the user's saved albums from Spotify, replaces the
// stored library, and resolves a rating for each album through the gate.
// Albums are processed one at a time so rating traffic stays within the
// Discogs request window.
func (e *LibraryEngine) SyncLibrary(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	userID, err := e.library.UserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to identify user: %w", err)
	}

	e.sendProgress(progress, fetchLibraryUpdate())

	albums, err := e.library.LibraryAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch library: %w", err)
	}

	e.sendProgress(progress, storeLibraryUpdate(len(albums)))

	if err := e.albums.Clear(userID); err != nil {
		return nil, fmt.Errorf("failed to clear stored library: %w", err)
	}
	for _, album := range albums {
		if err := e.albums.Save(userID, album); err != nil {
			return nil, fmt.Errorf("failed to store album %q: %w", album.Name, err)
		}
	}

	total := len(albums)
	for i := range albums {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.sendProgress(progress, resolveRatingUpdate(i+1, total, albums[i]))

		outcome := e.gate.Resolve(ctx, albums[i].Name, albums[i].PrimaryArtist)
		albums[i].Rated = true
		if outcome.Found {
			rating := outcome.Rating
			albums[i].Rating = &rating
		}

		e.sendProgress(progress, ratingResolvedUpdate(i+1, total, albums[i]))
	}

	stats := models.ComputeStats(albums)
	e.sendProgress(progress, doneUpdate(stats))

	return &SyncResult{UserID: userID, Albums: albums, Stats: stats}, nil
}

// LoadLibrary returns the stored library for a user without touching Spotify
// or Discogs.
func (e *LibraryEngine) LoadLibrary(userID string) (*LibraryResult, error) {
	albums, err := e.albums.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	return &LibraryResult{Albums: albums, Stats: models.ComputeStats(albums)}, nil
}

// GetLibrary returns the stored library when one exists, falling back to a
// full sync for first-time users.
func (e *LibraryEngine) GetLibrary(ctx context.Context, progress chan<- ProgressUpdate) (*LibraryResult, error) {
	userID, err := e.library.UserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to identify user: %w", err)
	}

	count, err := e.albums.Count(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect stored library: %w", err)
	}

	if count > 0 {
		e.logger.Debugf("serving %d albums from the database", count)
		return e.LoadLibrary(userID)
	}

	result, err := e.SyncLibrary(ctx, progress)
	if err != nil {
		return nil, err
	}

	return &LibraryResult{Albums: result.Albums, Stats: result.Stats}, nil
}
