package tasks

import (
	"fmt"

	"cratedig/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	StoreLibrary
	ResolveRatings
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case StoreLibrary:
		return "store_library"
	case ResolveRatings:
		return "resolve_ratings"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: "Fetching saved albums from Spotify...",
	}
}

func storeLibraryUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Storing %d albums...", count),
	}
}

func resolveRatingUpdate(step, total int, album models.Album) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveRatings,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching rating for %s by %s...", album.Name, album.PrimaryArtist),
		Data:    album,
	}
}

func ratingResolvedUpdate(step, total int, album models.Album) ProgressUpdate {
	message := fmt.Sprintf("No rating found for %s", album.Name)
	if album.Rating != nil {
		message = fmt.Sprintf("%s rated %.1f/10", album.Name, *album.Rating)
	}
	return ProgressUpdate{
		Phase:   ResolveRatings,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    album,
	}
}

func doneUpdate(stats models.LibraryStats) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync complete: %d rated, %d unrated", stats.Rated, stats.Unrated),
		Data:    stats,
	}
}
