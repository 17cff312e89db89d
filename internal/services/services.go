// package services defines interfaces for interacting with HTTP APIs
//
// Spotify (album source), Discogs (rating catalog)
package services

import (
	"context"

	"cratedig/internal/models"

	"golang.org/x/oauth2"
)

// LibraryService defines the interface for the album-source service the
// user's saved library is pulled from.
type LibraryService interface {
	// Authenticate performs OAuth or token authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// UserID returns a stable identifier for the authenticated user.
	UserID(ctx context.Context) (string, error)

	// LibraryAlbums retrieves every saved album in the user's library,
	// following pagination until the reported total is reached.
	LibraryAlbums(ctx context.Context) ([]models.Album, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by services that authenticate via the OAuth2
// authorization-code flow with a local callback server.
type OAuthService interface {
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
}
