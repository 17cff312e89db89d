package ratings

import (
	"context"
	"errors"
	"testing"
)

type countingResolver struct {
	outcome Outcome
	calls   int
}

func (c *countingResolver) Resolve(ctx context.Context, album, artist string) Outcome {
	c.calls++
	return c.outcome
}

type memStore struct {
	entries   map[string]*float64
	lookupErr error
	saveErr   error
	saves     int
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]*float64{}}
}

func (m *memStore) Lookup(album, artist string) (*float64, bool, error) {
	if m.lookupErr != nil {
		return nil, false, m.lookupErr
	}
	rating, checked := m.entries[album+"|"+artist]
	return rating, checked, nil
}

func (m *memStore) Save(album, artist string, rating *float64) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.entries[album+"|"+artist] = rating
	return nil
}

func TestCacheGate(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolves Each Pair Once", func(t *testing.T) {
		resolver := &countingResolver{outcome: FoundRating(8.6)}
		store := newMemStore()
		gate := NewCacheGate(resolver, store, nil)

		first := gate.Resolve(ctx, "The Wall", "Pink Floyd")
		second := gate.Resolve(ctx, "The Wall", "Pink Floyd")

		if resolver.calls != 1 {
			t.Errorf("expected a single resolution, got %d", resolver.calls)
		}
		if first != second {
			t.Errorf("expected identical outcomes, got %+v then %+v", first, second)
		}
		if !second.Found || second.Rating != 8.6 {
			t.Errorf("expected cached 8.6, got %+v", second)
		}
	})

	t.Run("Caches Empty Outcomes Too", func(t *testing.T) {
		resolver := &countingResolver{outcome: NoRating}
		store := newMemStore()
		gate := NewCacheGate(resolver, store, nil)

		gate.Resolve(ctx, "Obscure Demo", "Nobody")
		outcome := gate.Resolve(ctx, "Obscure Demo", "Nobody")

		if resolver.calls != 1 {
			t.Errorf("expected the miss to be cached, resolver ran %d times", resolver.calls)
		}
		if outcome.Found {
			t.Errorf("expected no rating, got %+v", outcome)
		}
	})

	t.Run("Keys Are Case Insensitive", func(t *testing.T) {
		resolver := &countingResolver{outcome: FoundRating(7.5)}
		store := newMemStore()
		gate := NewCacheGate(resolver, store, nil)

		gate.Resolve(ctx, "The Wall", "Pink Floyd")
		gate.Resolve(ctx, "the wall", "PINK FLOYD")

		if resolver.calls != 1 {
			t.Errorf("expected case variants to share a cache entry, resolver ran %d times", resolver.calls)
		}
		if _, checked := store.entries["the wall|pink floyd"]; !checked {
			t.Error("expected the entry stored under lowercased keys")
		}
	})

	t.Run("Lookup Failure Falls Through To Resolver", func(t *testing.T) {
		resolver := &countingResolver{outcome: FoundRating(9.0)}
		store := newMemStore()
		store.lookupErr = errors.New("db locked")
		gate := NewCacheGate(resolver, store, nil)

		outcome := gate.Resolve(ctx, "Animals", "Pink Floyd")
		if resolver.calls != 1 {
			t.Errorf("expected a fresh resolution, got %d calls", resolver.calls)
		}
		if !outcome.Found || outcome.Rating != 9.0 {
			t.Errorf("expected 9.0, got %+v", outcome)
		}
	})

	t.Run("Save Failure Still Returns Outcome", func(t *testing.T) {
		resolver := &countingResolver{outcome: FoundRating(6.0)}
		store := newMemStore()
		store.saveErr = errors.New("disk full")
		gate := NewCacheGate(resolver, store, nil)

		outcome := gate.Resolve(ctx, "Meddle", "Pink Floyd")
		if !outcome.Found || outcome.Rating != 6.0 {
			t.Errorf("expected 6.0 despite save failure, got %+v", outcome)
		}
	})

	t.Run("Cancelled Resolution Is Not Cached", func(t *testing.T) {
		resolver := &countingResolver{outcome: NoRating}
		store := newMemStore()
		gate := NewCacheGate(resolver, store, nil)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		gate.Resolve(cancelled, "Wish You Were Here", "Pink Floyd")
		if store.saves != 0 {
			t.Errorf("expected no cache write for a cancelled resolution, got %d", store.saves)
		}

		resolver.outcome = FoundRating(8.0)
		outcome := gate.Resolve(ctx, "Wish You Were Here", "Pink Floyd")
		if resolver.calls != 2 {
			t.Errorf("expected the pair to resolve again, got %d calls", resolver.calls)
		}
		if !outcome.Found || outcome.Rating != 8.0 {
			t.Errorf("expected 8.0 on retry, got %+v", outcome)
		}
	})
}
