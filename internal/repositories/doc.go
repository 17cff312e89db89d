// Package repositories implements SQLite persistence for the album library
// and the rating cache.
//
// Key Implementations:
//   - [AlbumRepository] : Synced Spotify library persistence with rating joins
//   - [RatingRepository] : Three-state rating cache (never checked, checked
//     without result, found) keyed by lowercased album/artist pairs
//
// The album_ratings table is append-mostly: once a pair has a row, later
// lookups are served from it and the network is never consulted again.
package repositories
