package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"cratedig/internal/models"
	"cratedig/internal/shared"
)

// AlbumRepository persists a user's synced Spotify library in the user_albums
// table.
type AlbumRepository struct {
	db *sql.DB
}

// NewAlbumRepository creates a new [AlbumRepository] with the given database connection
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

// Save upserts a library album for the given user. The (user, album, artist)
// triple is the identity; re-saving refreshes artwork, Spotify ID, and the
// sync timestamp.
func (r *AlbumRepository) Save(userID string, album models.Album) error {
	now := time.Now()

	addedAt := now
	if album.AddedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, album.AddedAt); err == nil {
			addedAt = parsed
		}
	}

	query := `
		INSERT INTO user_albums (id, user_id, album_name, artist_name, primary_artist, album_image, spotify_album_id, added_at, last_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, album_name, artist_name)
		DO UPDATE SET primary_artist = excluded.primary_artist,
			album_image = excluded.album_image,
			spotify_album_id = excluded.spotify_album_id,
			added_at = excluded.added_at,
			last_synced = excluded.last_synced
	`

	_, err := r.db.Exec(query, shared.GenerateID(), userID, album.Name, album.Artists,
		album.PrimaryArtist, album.Image, album.SpotifyID, addedAt, now)
	if err != nil {
		return fmt.Errorf("failed to save album: %w", err)
	}

	return nil
}

// Clear removes every saved album for a user, ahead of a fresh sync.
func (r *AlbumRepository) Clear(userID string) error {
	_, err := r.db.Exec(`DELETE FROM user_albums WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear albums: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's saved albums joined with any cached ratings,
// most recently added first.
func (r *AlbumRepository) ListByUser(userID string) ([]models.Album, error) {
	query := `
		SELECT ua.album_name, ua.artist_name, ua.primary_artist, ua.album_image, ua.spotify_album_id, ua.added_at,
			ar.rating, ar.id IS NOT NULL AS checked
		FROM user_albums ua
		LEFT JOIN album_ratings ar
			ON ar.album_name = LOWER(ua.album_name) AND ar.artist_name = LOWER(ua.primary_artist)
		WHERE ua.user_id = ?
		ORDER BY ua.added_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		var (
			album   models.Album
			addedAt time.Time
			rating  sql.NullFloat64
			checked bool
		)

		err := rows.Scan(&album.Name, &album.Artists, &album.PrimaryArtist, &album.Image,
			&album.SpotifyID, &addedAt, &rating, &checked)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}

		album.AddedAt = addedAt.Format(time.RFC3339)
		album.Rated = checked
		if rating.Valid {
			value := rating.Float64
			album.Rating = &value
		}

		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

// Count returns the number of saved albums for a user.
func (r *AlbumRepository) Count(userID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM user_albums WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count albums: %w", err)
	}
	return count, nil
}
