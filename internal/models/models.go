// package models defines the data model for the album rating tracker
package models

import "time"

// Album represents a saved album with its optional community rating.
//
// Rating is nil until a resolution has produced one; Rated distinguishes
// "checked, nothing found" from "never checked".
type Album struct {
	Name          string   `json:"name"`
	Artists       string   `json:"artists"`        // Comma-joined artist names as Spotify reports them
	PrimaryArtist string   `json:"primary_artist"` // First credited artist, used for rating lookups
	Image         string   `json:"image,omitempty"`
	SpotifyID     string   `json:"spotify_id,omitempty"`
	AddedAt       string   `json:"added_at,omitempty"` // RFC3339 timestamp as Spotify reports it
	Rating        *float64 `json:"rating,omitempty"`
	Rated         bool     `json:"rated"`
}

// SavedAlbum is a user_albums row.
type SavedAlbum struct {
	ID            string
	UserID        string
	AlbumName     string
	ArtistName    string
	PrimaryArtist string
	AlbumImage    string
	SpotifyID     string
	AddedAt       time.Time
	LastSynced    time.Time
}

// LibraryStats summarizes the ratings across a user's library.
type LibraryStats struct {
	Rated   int     `json:"rated"`
	Unrated int     `json:"unrated"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
	Mean    float64 `json:"mean"`
}

// ComputeStats derives [LibraryStats] from a set of albums.
func ComputeStats(albums []Album) LibraryStats {
	stats := LibraryStats{}
	sum := 0.0

	for _, album := range albums {
		if album.Rating == nil {
			stats.Unrated++
			continue
		}

		r := *album.Rating
		if stats.Rated == 0 || r > stats.Highest {
			stats.Highest = r
		}
		if stats.Rated == 0 || r < stats.Lowest {
			stats.Lowest = r
		}
		sum += r
		stats.Rated++
	}

	if stats.Rated > 0 {
		stats.Mean = sum / float64(stats.Rated)
	}

	return stats
}
