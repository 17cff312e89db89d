package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cratedig/internal/shared"
)

// RatingRepository persists resolved album ratings in the album_ratings table.
//
// Rows are three-state: no row means the album/artist pair has never been
// resolved, a row with NULL rating means a resolution completed and found
// nothing, and a row with a value is a found rating. Keys are stored lowercased
// so lookups are case insensitive.
type RatingRepository struct {
	db *sql.DB
}

// NewRatingRepository creates a new [RatingRepository] with the given database connection
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Lookup retrieves the cached rating for an album/artist pair. checked is
// false when the pair has never been resolved; a nil rating with checked true
// records a resolution that came up empty.
func (r *RatingRepository) Lookup(album, artist string) (*float64, bool, error) {
	query := `
		SELECT rating
		FROM album_ratings
		WHERE album_name = ? AND artist_name = ?
	`

	var rating sql.NullFloat64
	err := r.db.QueryRow(query, strings.ToLower(album), strings.ToLower(artist)).Scan(&rating)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query rating: %w", err)
	}

	if !rating.Valid {
		return nil, true, nil
	}

	value := rating.Float64
	return &value, true, nil
}

// Save records the outcome of a resolution for an album/artist pair. A nil
// rating marks the pair as checked with no result. Re-saving an existing pair
// replaces the previous outcome.
func (r *RatingRepository) Save(album, artist string, rating *float64) error {
	now := time.Now()

	query := `
		INSERT INTO album_ratings (album_name, artist_name, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(album_name, artist_name)
		DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at
	`

	var value any
	if rating != nil {
		value = *rating
	}

	_, err := r.db.Exec(query, strings.ToLower(album), strings.ToLower(artist), value, now, now)
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}

	return nil
}

// CachedRating is an album_ratings row as returned by [RatingRepository.List].
type CachedRating struct {
	AlbumName  string    `json:"album_name"`
	ArtistName string    `json:"artist_name"`
	Rating     *float64  `json:"rating"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// List retrieves every cached rating outcome, most recently updated first.
func (r *RatingRepository) List() ([]CachedRating, error) {
	query := `
		SELECT album_name, artist_name, rating, updated_at
		FROM album_ratings
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var entries []CachedRating
	for rows.Next() {
		var (
			entry  CachedRating
			rating sql.NullFloat64
		)

		if err := rows.Scan(&entry.AlbumName, &entry.ArtistName, &rating, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}

		if rating.Valid {
			value := rating.Float64
			entry.Rating = &value
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Delete removes the cached outcome for an album/artist pair so the next
// resolution hits the network again.
func (r *RatingRepository) Delete(album, artist string) error {
	query := `
		DELETE FROM album_ratings
		WHERE album_name = ? AND artist_name = ?
	`

	result, err := r.db.Exec(query, strings.ToLower(album), strings.ToLower(artist))
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no cached rating for %q by %q", shared.ErrAlbumNotFound, album, artist)
	}

	return nil
}
