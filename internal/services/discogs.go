// Discogs API client for release search and community ratings.
//
// Discogs API response types based on https://www.discogs.com/developers
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cratedig/internal/ratings"
	"cratedig/internal/shared"
	"github.com/charmbracelet/log"
)

const discogsBaseURL = "https://api.discogs.com"

// Retry policy for Discogs requests.
const (
	discogsMaxAttempts     = 5
	discogsRetryAfterBase  = 5 * time.Second
	discogsRetryAfterCap   = 60 * time.Second
	discogsServerErrorBase = time.Second
)

// DiscogsSearchResult represents a single entry from /database/search.
type DiscogsSearchResult struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Year  string `json:"year"`
	Thumb string `json:"thumb"`
}

// DiscogsSearchResponse represents a paginated search response.
type DiscogsSearchResponse struct {
	Results []DiscogsSearchResult `json:"results"`
}

type communityRating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type releaseCommunity struct {
	Rating communityRating `json:"rating"`
}

// DiscogsRelease represents the subset of a release detail response needed
// for rating extraction.
type DiscogsRelease struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Community releaseCommunity `json:"community"`
}

// DiscogsArtistRelease represents an entry from /artists/{id}/releases.
type DiscogsArtistRelease struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	MainID int64  `json:"main_release"`
	Year   int    `json:"year"`
	Role   string `json:"role"`
}

// DiscogsArtistReleasesResponse represents a paginated artist releases response.
type DiscogsArtistReleasesResponse struct {
	Releases []DiscogsArtistRelease `json:"releases"`
}

// DiscogsService implements [ratings.Catalog] against the Discogs API. Every
// request passes through a shared [RequestWindow] before hitting the network,
// and transient failures are retried with a per-attempt backoff.
type DiscogsService struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	window     *RequestWindow
	logger     *log.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewDiscogsService creates a Discogs client with the given personal access
// token. An empty token produces an unconfigured client that reports itself
// as such through Configured.
func NewDiscogsService(cfg shared.DiscogsConfig, window *RequestWindow, logger *log.Logger) *DiscogsService {
	if window == nil {
		window = NewDiscogsWindow()
	}
	if logger == nil {
		logger = log.Default()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "cratedig/0.1"
	}
	return &DiscogsService{
		baseURL:    discogsBaseURL,
		token:      cfg.Token,
		userAgent:  userAgent,
		httpClient: http.DefaultClient,
		window:     window,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Configured reports whether a Discogs token is available.
func (s *DiscogsService) Configured() bool {
	return s.token != ""
}

func (s *DiscogsService) Name() string {
	return "Discogs"
}

// get performs a rate limited GET against the Discogs API and decodes the
// response into result. Rate limit responses and server errors are retried
// with growing backoff; any other non-2xx status fails immediately.
func (s *DiscogsService) get(ctx context.Context, endpoint string, result interface{}) error {
	apiURL := s.baseURL + endpoint

	for attempt := 1; attempt <= discogsMaxAttempts; attempt++ {
		if err := s.window.Acquire(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", s.userAgent)
		req.Header.Set("Authorization", "Discogs token="+s.token)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			if result != nil {
				if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
			}
			return nil
		}

		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := discogsRetryAfterBase * time.Duration(attempt)
			if wait > discogsRetryAfterCap {
				wait = discogsRetryAfterCap
			}
			s.logger.Warnf("discogs rate limited on %s, attempt %d/%d, backing off %s",
				endpoint, attempt, discogsMaxAttempts, wait)
			if err := s.sleep(ctx, wait); err != nil {
				return err
			}
		case resp.StatusCode >= 500:
			wait := discogsServerErrorBase * time.Duration(attempt)
			s.logger.Warnf("discogs server error %d on %s, attempt %d/%d, backing off %s",
				resp.StatusCode, endpoint, attempt, discogsMaxAttempts, wait)
			if err := s.sleep(ctx, wait); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: discogs status %d", shared.ErrAPIRequest, resp.StatusCode)
		}
	}

	return fmt.Errorf("%w: discogs request failed after %d attempts", shared.ErrAPIRequest, discogsMaxAttempts)
}

// SearchReleases searches the Discogs database for album releases matching
// the query.
func (s *DiscogsService) SearchReleases(ctx context.Context, query string, perPage int) ([]ratings.SearchResult, error) {
	endpoint := fmt.Sprintf("/database/search?q=%s&type=release&format=album&per_page=%d",
		url.QueryEscape(query), perPage)

	var response DiscogsSearchResponse
	if err := s.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return toSearchResults(response.Results), nil
}

// SearchArtists searches the Discogs database for artists matching the query.
func (s *DiscogsService) SearchArtists(ctx context.Context, query string, perPage int) ([]ratings.SearchResult, error) {
	endpoint := fmt.Sprintf("/database/search?q=%s&type=artist&per_page=%d",
		url.QueryEscape(query), perPage)

	var response DiscogsSearchResponse
	if err := s.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return toSearchResults(response.Results), nil
}

// ArtistReleases retrieves an artist's releases, newest first.
func (s *DiscogsService) ArtistReleases(ctx context.Context, artistID int64, perPage int) ([]ratings.SearchResult, error) {
	endpoint := fmt.Sprintf("/artists/%d/releases?sort=year&sort_order=desc&per_page=%d",
		artistID, perPage)

	var response DiscogsArtistReleasesResponse
	if err := s.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	results := make([]ratings.SearchResult, 0, len(response.Releases))
	for _, release := range response.Releases {
		id := release.ID
		if release.MainID != 0 {
			id = release.MainID
		}
		results = append(results, ratings.SearchResult{ID: id, Title: release.Title})
	}

	return results, nil
}

// ReleaseRating retrieves the community rating average for a release. The
// second return value is false when the release has no votes.
func (s *DiscogsService) ReleaseRating(ctx context.Context, releaseID int64) (float64, bool, error) {
	endpoint := fmt.Sprintf("/releases/%d", releaseID)

	var release DiscogsRelease
	if err := s.get(ctx, endpoint, &release); err != nil {
		return 0, false, err
	}

	avg := release.Community.Rating.Average
	return avg, avg > 0, nil
}

func toSearchResults(entries []DiscogsSearchResult) []ratings.SearchResult {
	results := make([]ratings.SearchResult, 0, len(entries))
	for _, entry := range entries {
		results = append(results, ratings.SearchResult{ID: entry.ID, Title: entry.Title})
	}
	return results
}
