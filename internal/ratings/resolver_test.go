package ratings

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// fakeCatalog is a scripted Catalog that records every call.
type fakeCatalog struct {
	unconfigured bool

	releaseResults map[string][]SearchResult
	releaseErr     error
	artistResults  []SearchResult
	artistReleases []SearchResult
	avgRatings     map[int64]float64

	releaseQueries []string
	artistQueries  []string
	detailCalls    []int64
}

func (f *fakeCatalog) Configured() bool { return !f.unconfigured }

func (f *fakeCatalog) SearchReleases(ctx context.Context, query string, perPage int) ([]SearchResult, error) {
	f.releaseQueries = append(f.releaseQueries, query)
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	return f.releaseResults[query], nil
}

func (f *fakeCatalog) SearchArtists(ctx context.Context, query string, perPage int) ([]SearchResult, error) {
	f.artistQueries = append(f.artistQueries, query)
	return f.artistResults, nil
}

func (f *fakeCatalog) ArtistReleases(ctx context.Context, artistID int64, perPage int) ([]SearchResult, error) {
	return f.artistReleases, nil
}

func (f *fakeCatalog) ReleaseRating(ctx context.Context, releaseID int64) (float64, bool, error) {
	f.detailCalls = append(f.detailCalls, releaseID)
	avg, ok := f.avgRatings[releaseID]
	return avg, ok && avg > 0, nil
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("Unconfigured Catalog Skips Lookup", func(t *testing.T) {
		catalog := &fakeCatalog{unconfigured: true}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "The Wall", "Pink Floyd")
		if outcome.Found {
			t.Error("expected no rating from unconfigured catalog")
		}
		if len(catalog.releaseQueries) != 0 || len(catalog.artistQueries) != 0 {
			t.Error("expected no catalog traffic")
		}
	})

	t.Run("Direct Search With Light Cleaning", func(t *testing.T) {
		catalog := &fakeCatalog{
			releaseResults: map[string][]SearchResult{
				"Abbey Road The Beatles": {{ID: 1, Title: "Abbey Road"}},
			},
			avgRatings: map[int64]float64{1: 4.3},
		}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "Abbey Road (Remastered)", "The Beatles")
		if !outcome.Found {
			t.Fatal("expected a rating")
		}
		if outcome.Rating != 8.6 {
			t.Errorf("expected 4.3/5 to normalize to 8.6, got %v", outcome.Rating)
		}
		if catalog.releaseQueries[0] != "Abbey Road The Beatles" {
			t.Errorf("expected lightly cleaned first query, got %q", catalog.releaseQueries[0])
		}
	})

	t.Run("Aggressive Retry On Empty Results", func(t *testing.T) {
		catalog := &fakeCatalog{
			releaseResults: map[string][]SearchResult{
				"abbey road the beatles": {{ID: 2, Title: "Abbey Road"}},
			},
			avgRatings: map[int64]float64{2: 5.0},
		}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "Abbey Road!", "The Beatles")
		if !outcome.Found || outcome.Rating != 10.0 {
			t.Fatalf("expected 10.0, got %+v", outcome)
		}

		want := []string{"Abbey Road! The Beatles", "abbey road the beatles"}
		if !slices.Equal(catalog.releaseQueries, want) {
			t.Errorf("expected queries %v, got %v", want, catalog.releaseQueries)
		}
	})

	t.Run("Title Variant Retry Widens Recall", func(t *testing.T) {
		catalog := &fakeCatalog{
			releaseResults: map[string][]SearchResult{
				"wall pink floyd": {{ID: 5, Title: "The Wall"}},
			},
			avgRatings: map[int64]float64{5: 5.0},
		}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "The Wall - Deluxe Edition", "Pink Floyd")
		if !outcome.Found || outcome.Rating != 10.0 {
			t.Fatalf("expected 10.0, got %+v", outcome)
		}

		want := []string{
			"The Wall - Deluxe Edition Pink Floyd",
			"the wall deluxe edition pink floyd",
			"the wall pink floyd",
			"wall pink floyd",
		}
		if !slices.Equal(catalog.releaseQueries, want) {
			t.Errorf("expected query cascade %v, got %v", want, catalog.releaseQueries)
		}
	})

	t.Run("Probes At Most Three Results", func(t *testing.T) {
		catalog := &fakeCatalog{
			releaseResults: map[string][]SearchResult{
				"Lateralus Tool": {
					{ID: 10, Title: "Lateralus"},
					{ID: 11, Title: "Lateralus"},
					{ID: 12, Title: "Lateralus"},
					{ID: 13, Title: "Lateralus"},
				},
			},
			avgRatings: map[int64]float64{13: 4.8},
		}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "Lateralus", "Tool")
		if outcome.Found {
			t.Error("expected no rating when only the fourth result is rated")
		}
		if got := catalog.detailCalls[:3]; !slices.Equal(got, []int64{10, 11, 12}) {
			t.Errorf("expected first three results probed, got %v", catalog.detailCalls)
		}
	})

	t.Run("Artist Release Fallback", func(t *testing.T) {
		catalog := &fakeCatalog{
			artistResults:  []SearchResult{{ID: 9, Title: "Pink Floyd"}},
			artistReleases: []SearchResult{{ID: 11, Title: "The Wall"}},
			avgRatings:     map[int64]float64{11: 4.0},
		}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "The Wall", "Pink Floyd")
		if !outcome.Found || outcome.Rating != 8.0 {
			t.Fatalf("expected 8.0 via artist fallback, got %+v", outcome)
		}
	})

	t.Run("Exact Match Without Rating Is Authoritative", func(t *testing.T) {
		// An exact title hit that carries no rating ends the artist release
		// scan even when a rated partial match appears later in the list.
		catalog := &fakeCatalog{
			artistResults: []SearchResult{{ID: 9, Title: "Pink Floyd"}},
			artistReleases: []SearchResult{
				{ID: 11, Title: "The Wall"},
				{ID: 12, Title: "The Wall Live"},
			},
			avgRatings: map[int64]float64{12: 4.5},
		}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "The Wall", "Pink Floyd")
		if outcome.Found {
			t.Errorf("expected the unrated exact match to end the scan, got %+v", outcome)
		}
		if slices.Contains(catalog.detailCalls, 12) {
			t.Error("expected release 12 to never be probed after the exact match")
		}
	})

	t.Run("Partial Match Without Rating Continues Scan", func(t *testing.T) {
		catalog := &fakeCatalog{
			artistResults: []SearchResult{{ID: 9, Title: "Pink Floyd"}},
			artistReleases: []SearchResult{
				{ID: 21, Title: "The Wall Immersion Box"},
				{ID: 22, Title: "The Wall"},
			},
			avgRatings: map[int64]float64{22: 4.0},
		}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "The Wall", "Pink Floyd")
		if !outcome.Found || outcome.Rating != 8.0 {
			t.Fatalf("expected scan to continue past unrated partial match, got %+v", outcome)
		}
	})

	t.Run("Search Error Degrades To Fallback", func(t *testing.T) {
		catalog := &fakeCatalog{
			releaseErr:     errors.New("upstream down"),
			artistResults:  []SearchResult{{ID: 9, Title: "Pink Floyd"}},
			artistReleases: []SearchResult{{ID: 11, Title: "Animals"}},
			avgRatings:     map[int64]float64{11: 3.5},
		}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "Animals", "Pink Floyd")
		if !outcome.Found || outcome.Rating != 7.0 {
			t.Fatalf("expected fallback to survive search errors, got %+v", outcome)
		}
	})

	t.Run("Exhausted Resolution", func(t *testing.T) {
		catalog := &fakeCatalog{}
		resolver := NewResolver(catalog, nil)

		outcome := resolver.Resolve(ctx, "Obscure Demo Tape", "Nobody")
		if outcome.Found {
			t.Errorf("expected no rating, got %+v", outcome)
		}
		if outcome != NoRating {
			t.Errorf("expected the zero outcome, got %+v", outcome)
		}
	})
}

func TestNormalizeScale(t *testing.T) {
	cases := []struct {
		avg  float64
		want float64
	}{
		{4.3, 8.6},
		{5.0, 10.0},
		{0.1, 0.2},
		{3.33, 6.7},
		{4.27, 8.5},
	}

	for _, tc := range cases {
		if got := normalizeScale(tc.avg); got != tc.want {
			t.Errorf("normalizeScale(%v) = %v, expected %v", tc.avg, got, tc.want)
		}
	}
}
