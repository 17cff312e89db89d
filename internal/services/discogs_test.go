package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cratedig/internal/shared"
)

// newTestDiscogs wires a DiscogsService against an httptest server with
// instant, recorded backoff sleeps.
func newTestDiscogs(t *testing.T, handler http.HandlerFunc) (*DiscogsService, *[]time.Duration) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewDiscogsService(shared.DiscogsConfig{Token: "test_token", UserAgent: "cratedig-test/0.1"},
		NewRequestWindow(1000, time.Minute), shared.NewLogger(io.Discard))
	svc.baseURL = server.URL

	sleeps := &[]time.Duration{}
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}

	return svc, sleeps
}

func TestDiscogsService(t *testing.T) {
	ctx := context.Background()

	t.Run("Configured", func(t *testing.T) {
		svc := NewDiscogsService(shared.DiscogsConfig{Token: "abc"}, nil, nil)
		if !svc.Configured() {
			t.Error("expected configured service with token")
		}

		svc = NewDiscogsService(shared.DiscogsConfig{}, nil, nil)
		if svc.Configured() {
			t.Error("expected unconfigured service without token")
		}
	})

	t.Run("Sends Auth Headers", func(t *testing.T) {
		var gotAuth, gotAgent string
		svc, _ := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotAgent = r.Header.Get("User-Agent")
			fmt.Fprint(w, `{"results": []}`)
		})

		if _, err := svc.SearchReleases(ctx, "abbey road", 5); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if gotAuth != "Discogs token=test_token" {
			t.Errorf("expected Discogs token header, got %q", gotAuth)
		}
		if gotAgent != "cratedig-test/0.1" {
			t.Errorf("expected custom user agent, got %q", gotAgent)
		}
	})

	t.Run("Search Releases", func(t *testing.T) {
		var gotQuery string
		svc, _ := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			fmt.Fprint(w, `{"results": [
				{"id": 101, "title": "Pink Floyd - The Wall", "type": "release"},
				{"id": 102, "title": "The Wall (Deluxe)", "type": "release"}
			]}`)
		})

		results, err := svc.SearchReleases(ctx, "the wall", 5)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].ID != 101 || results[0].Title != "Pink Floyd - The Wall" {
			t.Errorf("unexpected first result: %+v", results[0])
		}

		for _, fragment := range []string{"type=release", "format=album", "per_page=5"} {
			if !strings.Contains(gotQuery, fragment) {
				t.Errorf("expected query to contain %q, got %q", fragment, gotQuery)
			}
		}
	})

	t.Run("Release Rating", func(t *testing.T) {
		t.Run("With Votes", func(t *testing.T) {
			svc, _ := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"id": 42, "title": "The Wall", "community": {"rating": {"average": 4.3, "count": 120}}}`)
			})

			avg, ok, err := svc.ReleaseRating(ctx, 42)
			if err != nil {
				t.Fatalf("rating fetch failed: %v", err)
			}
			if !ok || avg != 4.3 {
				t.Errorf("expected (4.3, true), got (%v, %v)", avg, ok)
			}
		})

		t.Run("Without Votes", func(t *testing.T) {
			svc, _ := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"id": 42, "title": "The Wall", "community": {"rating": {"average": 0, "count": 0}}}`)
			})

			_, ok, err := svc.ReleaseRating(ctx, 42)
			if err != nil {
				t.Fatalf("rating fetch failed: %v", err)
			}
			if ok {
				t.Error("expected ok=false when the release has no votes")
			}
		})
	})

	t.Run("Artist Releases Prefer Main Release ID", func(t *testing.T) {
		svc, _ := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"releases": [
				{"id": 7, "title": "The Wall", "main_release": 77},
				{"id": 8, "title": "Animals"}
			]}`)
		})

		results, err := svc.ArtistReleases(ctx, 9, 50)
		if err != nil {
			t.Fatalf("artist releases failed: %v", err)
		}
		if results[0].ID != 77 {
			t.Errorf("expected main release ID 77, got %d", results[0].ID)
		}
		if results[1].ID != 8 {
			t.Errorf("expected release ID 8, got %d", results[1].ID)
		}
	})

	t.Run("Retries On Rate Limit", func(t *testing.T) {
		attempts := 0
		svc, sleeps := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, `{"results": []}`)
		})

		if _, err := svc.SearchReleases(ctx, "the wall", 5); err != nil {
			t.Fatalf("expected retries to recover, got %v", err)
		}

		if attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", attempts)
		}

		want := []time.Duration{5 * time.Second, 10 * time.Second}
		if len(*sleeps) != 2 || (*sleeps)[0] != want[0] || (*sleeps)[1] != want[1] {
			t.Errorf("expected backoffs %v, got %v", want, *sleeps)
		}
	})

	t.Run("Retries On Server Error", func(t *testing.T) {
		attempts := 0
		svc, sleeps := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts <= 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, `{"results": []}`)
		})

		if _, err := svc.SearchReleases(ctx, "the wall", 5); err != nil {
			t.Fatalf("expected retries to recover, got %v", err)
		}

		want := []time.Duration{time.Second, 2 * time.Second}
		if len(*sleeps) != 2 || (*sleeps)[0] != want[0] || (*sleeps)[1] != want[1] {
			t.Errorf("expected backoffs %v, got %v", want, *sleeps)
		}
	})

	t.Run("Fails Fast On Client Error", func(t *testing.T) {
		attempts := 0
		svc, sleeps := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := svc.SearchReleases(ctx, "the wall", 5)
		if err == nil {
			t.Fatal("expected an error for 404")
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if attempts != 1 {
			t.Errorf("expected a single attempt, got %d", attempts)
		}
		if len(*sleeps) != 0 {
			t.Errorf("expected no backoff, slept %v", *sleeps)
		}
	})

	t.Run("Gives Up After Max Attempts", func(t *testing.T) {
		attempts := 0
		svc, _ := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := svc.SearchReleases(ctx, "the wall", 5)
		if err == nil {
			t.Fatal("expected exhaustion error")
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if attempts != 5 {
			t.Errorf("expected 5 attempts, got %d", attempts)
		}
	})

	t.Run("Consumes The Request Window", func(t *testing.T) {
		svc, _ := newTestDiscogs(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"results": []}`)
		})

		if _, err := svc.SearchReleases(ctx, "the wall", 5); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if got := svc.window.InFlight(); got != 1 {
			t.Errorf("expected 1 request counted, got %d", got)
		}
	})
}
