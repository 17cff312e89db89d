package ratings

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"
)

// SearchResult is a transient catalog search hit. Only the id and display
// title matter for matching; nothing here is persisted.
type SearchResult struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Catalog is the surface of the rating-bearing database the resolver
// searches. Implemented by services.DiscogsService.
type Catalog interface {
	// Configured reports whether the catalog has credentials to make requests.
	Configured() bool

	// SearchReleases searches album releases matching query.
	SearchReleases(ctx context.Context, query string, perPage int) ([]SearchResult, error)

	// SearchArtists searches artists matching query.
	SearchArtists(ctx context.Context, query string, perPage int) ([]SearchResult, error)

	// ArtistReleases lists an artist's releases, newest first.
	ArtistReleases(ctx context.Context, artistID int64, perPage int) ([]SearchResult, error)

	// ReleaseRating fetches a release's community rating average on the
	// catalog's native 0-5 scale. ok is false when the release carries none.
	ReleaseRating(ctx context.Context, releaseID int64) (avg float64, ok bool, err error)
}

// Outcome is the result of a rating resolution: either a rating on the 0-10
// scale, or a definitive "checked, nothing found". Never a bare nullable
// number, so "absent" and "not yet determined" cannot be conflated.
type Outcome struct {
	Rating float64 `json:"rating"`
	Found  bool    `json:"found"`
}

// NoRating is the outcome of an exhausted resolution.
var NoRating = Outcome{}

// FoundRating wraps a normalized rating in a successful Outcome.
func FoundRating(rating float64) Outcome {
	return Outcome{Rating: rating, Found: true}
}

const (
	searchPerPage   = 5
	detailLimit     = 3
	artistPerPage   = 10
	releasesPerPage = 50
)

// normalizeScale converts the catalog's 0-5 community average to a 0-10
// rating rounded to one decimal.
func normalizeScale(avg float64) float64 {
	return math.Round(avg/5.0*10*10) / 10
}

// Resolver finds a community rating for an (album, artist) pair via a
// multi-strategy catalog search. Failures inside a strategy degrade that
// strategy to "found nothing"; the next strategy is still attempted, and
// Resolve never returns an error.
//
// Callers should go through [CacheGate] rather than using a Resolver
// directly, or previously-failed lookups will be retried.
type Resolver struct {
	catalog Catalog
	logger  *log.Logger
}

// NewResolver creates a Resolver over the given catalog.
func NewResolver(catalog Catalog, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve runs the strategy chain: direct release search (light clean, then
// aggressive clean, then title variants), then the artist-releases fallback.
func (r *Resolver) Resolve(ctx context.Context, album, artist string) Outcome {
	prefix := fmt.Sprintf("%s by %s", album, artist)

	if !r.catalog.Configured() {
		r.logger.Warnf("%s: no catalog token configured, skipping lookup", prefix)
		return NoRating
	}

	r.logger.Debugf("%s: starting catalog search", prefix)

	if outcome, ok := r.directSearch(ctx, album, artist, prefix); ok {
		return outcome
	}

	if outcome, ok := r.artistReleaseFallback(ctx, album, artist, prefix); ok {
		return outcome
	}

	r.logger.Infof("%s: no rating found via direct search or artist releases", prefix)
	return NoRating
}

// directSearch queries the release index directly and probes the first few
// results for a community rating. The query is retried with progressively
// more aggressive cleaning only when a search returns zero results, not when
// results merely lack ratings.
func (r *Resolver) directSearch(ctx context.Context, album, artist, prefix string) (Outcome, bool) {
	query := StripEnclosed(album) + " " + StripEnclosed(artist)
	r.logger.Debugf("%s: direct search query %q (lightly cleaned)", prefix, query)

	results, err := r.catalog.SearchReleases(ctx, query, searchPerPage)
	if err != nil {
		r.logger.Warnf("%s: direct search failed: %v", prefix, err)
		return NoRating, false
	}

	if len(results) == 0 {
		normArtist := Normalize(artist)
		query = Normalize(album) + " " + normArtist
		r.logger.Debugf("%s: retrying with aggressive normalization %q", prefix, query)

		results, err = r.catalog.SearchReleases(ctx, query, searchPerPage)
		if err != nil {
			r.logger.Warnf("%s: direct search failed: %v", prefix, err)
			return NoRating, false
		}

		// Widen recall with progressively simplified title variants,
		// most-specific first, until any search returns results.
		for _, variant := range TitleVariants(album)[1:] {
			if len(results) > 0 {
				break
			}
			query = Normalize(variant) + " " + normArtist
			r.logger.Debugf("%s: retrying with title variant %q", prefix, query)
			results, err = r.catalog.SearchReleases(ctx, query, searchPerPage)
			if err != nil {
				r.logger.Warnf("%s: direct search failed: %v", prefix, err)
				return NoRating, false
			}
		}
	}

	for i := 0; i < len(results) && i < detailLimit; i++ {
		avg, ok, err := r.catalog.ReleaseRating(ctx, results[i].ID)
		if err != nil {
			r.logger.Warnf("%s: release detail %d failed: %v", prefix, i+1, err)
			continue
		}
		if ok {
			rating := normalizeScale(avg)
			r.logger.Infof("%s: rating %.1f/10 found via direct search", prefix, rating)
			return FoundRating(rating), true
		}
	}

	return NoRating, false
}

// artistReleaseFallback searches for the artist, picks the best name match,
// and scans that artist's releases for a title matching the album.
//
// An exact title match without a rating ends the scan: the exact match is
// treated as authoritative, so partial matches further down are not
// consulted. A partial match without a rating keeps scanning.
func (r *Resolver) artistReleaseFallback(ctx context.Context, album, artist, prefix string) (Outcome, bool) {
	r.logger.Debugf("%s: searching artist releases as fallback", prefix)

	artists, err := r.catalog.SearchArtists(ctx, artist, artistPerPage)
	if err != nil {
		r.logger.Warnf("%s: artist search failed: %v", prefix, err)
		return NoRating, false
	}
	if len(artists) == 0 {
		r.logger.Debugf("%s: no artists found", prefix)
		return NoRating, false
	}

	match := BestMatch(artist, artists)
	if match == nil {
		r.logger.Debugf("%s: no matching artist among %d results", prefix, len(artists))
		return NoRating, false
	}

	releases, err := r.catalog.ArtistReleases(ctx, match.ID, releasesPerPage)
	if err != nil {
		r.logger.Warnf("%s: artist releases fetch failed: %v", prefix, err)
		return NoRating, false
	}

	target := Normalize(album)

	for _, release := range releases {
		title := Normalize(release.Title)
		exact := title == target
		partial := strings.Contains(title, target) || strings.Contains(target, title)
		if !exact && !partial {
			continue
		}

		avg, ok, err := r.catalog.ReleaseRating(ctx, release.ID)
		if err != nil {
			r.logger.Warnf("%s: release detail for %q failed: %v", prefix, release.Title, err)
			if exact {
				break
			}
			continue
		}

		if ok {
			rating := normalizeScale(avg)
			r.logger.Infof("%s: rating %.1f/10 found via artist releases (%q)", prefix, rating, release.Title)
			return FoundRating(rating), true
		}

		if exact {
			break
		}
	}

	r.logger.Debugf("%s: no rated match in %d artist releases", prefix, len(releases))
	return NoRating, false
}
