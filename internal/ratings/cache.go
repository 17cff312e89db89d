package ratings

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Store is the persistence contract for resolved ratings. Lookups are
// three-state: checked=false means the pair has never been resolved;
// checked=true with a nil rating means it was resolved and nothing was found.
// Keys are passed already lowercased.
type Store interface {
	Lookup(album, artist string) (rating *float64, checked bool, err error)
	Save(album, artist string, rating *float64) error
}

// RatingResolver is the resolution strategy the gate falls back to on a cache
// miss. Satisfied by [Resolver].
type RatingResolver interface {
	Resolve(ctx context.Context, album, artist string) Outcome
}

// CacheGate wraps a resolver with a persistent get-or-compute cache keyed by
// the lowercased (album, artist) pair. A pair is resolved over the network at
// most once, ever: both found ratings and definitive misses are persisted and
// served from storage on every later call.
type CacheGate struct {
	resolver RatingResolver
	store    Store
	logger   *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCacheGate creates a CacheGate over the given resolver and store.
func NewCacheGate(resolver RatingResolver, store Store, logger *log.Logger) *CacheGate {
	if logger == nil {
		logger = log.Default()
	}
	return &CacheGate{
		resolver: resolver,
		store:    store,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Resolve returns the rating outcome for an album/artist pair, consulting
// storage before the network. Storage failures degrade to a fresh resolution
// rather than an error; no error ever reaches the caller.
func (g *CacheGate) Resolve(ctx context.Context, album, artist string) Outcome {
	albumKey := strings.ToLower(album)
	artistKey := strings.ToLower(artist)

	// Serialize concurrent resolutions of the same pair so an uncached album
	// is resolved once, not once per caller.
	keyLock := g.keyLock(albumKey + "\x00" + artistKey)
	keyLock.Lock()
	defer keyLock.Unlock()

	rating, checked, err := g.store.Lookup(albumKey, artistKey)
	if err != nil {
		g.logger.Warnf("%s by %s: rating lookup failed, resolving fresh: %v", album, artist, err)
	} else if checked {
		if rating != nil {
			g.logger.Debugf("%s by %s: rating %.1f/10 (from database)", album, artist, *rating)
			return FoundRating(*rating)
		}
		g.logger.Debugf("%s by %s: previously checked, no rating available", album, artist)
		return NoRating
	}

	outcome := g.resolver.Resolve(ctx, album, artist)

	// A cancelled resolution reports NoRating only because its requests were
	// aborted; persisting that would wrongly pin the pair as checked.
	if ctx.Err() != nil {
		return outcome
	}

	var value *float64
	if outcome.Found {
		v := outcome.Rating
		value = &v
	}

	if err := g.store.Save(albumKey, artistKey, value); err != nil {
		g.logger.Warnf("%s by %s: failed to persist rating outcome: %v", album, artist, err)
	}

	return outcome
}

func (g *CacheGate) keyLock(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	if l, ok := g.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	g.locks[key] = l
	return l
}
