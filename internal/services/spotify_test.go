package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cratedig/internal/shared"
)

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	validCredentials := map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}

	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("Valid Credentials", func(t *testing.T) {
			svc, err := NewSpotifyService(validCredentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc == nil {
				t.Fatal("expected service instance")
			}
			if svc.Name() != "Spotify" {
				t.Errorf("expected service name Spotify, got %q", svc.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			svc, err := NewSpotifyService(validCredentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := svc.GetOAuthConfig().RedirectURL; got != "http://localhost:3000/callback" {
				t.Errorf("expected default redirect URI, got %q", got)
			}
		})

		t.Run("Custom Redirect URI", func(t *testing.T) {
			credentials := map[string]string{
				"client_id":     "id",
				"client_secret": "secret",
				"redirect_uri":  "http://localhost:8080/done",
			}
			svc, err := NewSpotifyService(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := svc.GetOAuthConfig().RedirectURL; got != "http://localhost:8080/done" {
				t.Errorf("expected custom redirect URI, got %q", got)
			}
		})
	})

	t.Run("GetAuthURL", func(t *testing.T) {
		svc, err := NewSpotifyService(validCredentials)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		authURL := svc.GetAuthURL("state_token")

		for _, fragment := range []string{
			"accounts.spotify.com/authorize",
			"state=state_token",
			"user-library-read",
			"client_id=test_client_id",
		} {
			if !strings.Contains(authURL, fragment) {
				t.Errorf("expected auth URL to contain %q, got %q", fragment, authURL)
			}
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("With Access Token", func(t *testing.T) {
			svc, _ := NewSpotifyService(validCredentials)

			err := svc.Authenticate(ctx, map[string]string{
				"access_token":  "token_value",
				"refresh_token": "refresh_value",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			token := svc.Token()
			if token == nil || token.AccessToken != "token_value" {
				t.Errorf("expected stored access token, got %+v", token)
			}
			if token.RefreshToken != "refresh_value" {
				t.Errorf("expected stored refresh token, got %q", token.RefreshToken)
			}
		})

		t.Run("Without Credentials", func(t *testing.T) {
			svc, _ := NewSpotifyService(validCredentials)

			err := svc.Authenticate(ctx, map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Requires Authentication", func(t *testing.T) {
		svc, _ := NewSpotifyService(validCredentials)

		_, err := svc.UserProfile(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		_, err = svc.LibraryAlbums(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Converts Saved Albums", func(t *testing.T) {
		item := SpotifySavedAlbum{
			AddedAt: "2024-03-01T12:00:00Z",
			Album: SpotifyAlbum{
				ID:   "album_id",
				Name: "Wish You Were Here",
				Artists: []SpotifyArtist{
					{ID: "a1", Name: "Pink Floyd"},
					{ID: "a2", Name: "Guest Artist"},
				},
				Images: []SpotifyImage{
					{URL: "https://img.example/large.jpg", Height: 640, Width: 640},
					{URL: "https://img.example/small.jpg", Height: 64, Width: 64},
				},
			},
		}

		album := toAlbum(item)

		if album.Name != "Wish You Were Here" {
			t.Errorf("expected album name, got %q", album.Name)
		}
		if album.Artists != "Pink Floyd, Guest Artist" {
			t.Errorf("expected joined artist names, got %q", album.Artists)
		}
		if album.PrimaryArtist != "Pink Floyd" {
			t.Errorf("expected first artist as primary, got %q", album.PrimaryArtist)
		}
		if album.Image != "https://img.example/large.jpg" {
			t.Errorf("expected first image, got %q", album.Image)
		}
		if album.SpotifyID != "album_id" {
			t.Errorf("expected spotify ID, got %q", album.SpotifyID)
		}
		if album.AddedAt != "2024-03-01T12:00:00Z" {
			t.Errorf("expected added timestamp, got %q", album.AddedAt)
		}
	})
}
