// Package geocode turns free-text place names into coordinates.
//
// Cache is the process-wide memo in front of the geocoding service: a bounded
// LRU keyed by the exact query string, optionally backed by a persistent
// store that survives restarts. Entries never expire by time; they only leave
// the LRU under capacity pressure.
package geocode

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/tbourn/telemacher/internal/domain"
	"github.com/tbourn/telemacher/internal/observability"
)

// DefaultCapacity is the number of entries kept in memory.
const DefaultCapacity = 16384

// Geocoder is the upstream lookup used on a cache miss.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (domain.Coordinate, error)
}

// Store is an optional second tier behind the LRU. Get must return
// ErrNotStored when the query is unknown.
type Store interface {
	Get(ctx context.Context, query string) (domain.Coordinate, error)
	Put(ctx context.Context, query string, c domain.Coordinate) error
}

// ErrNotStored is returned by Store.Get for unknown queries.
var ErrNotStored = errors.New("geocode: not stored")

var cacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "telemacher_geocode_cache_total",
		Help: "Geocode cache lookups by result (hit, store_hit, miss, error).",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(cacheLookups)
}

// Cache is safe for concurrent use.
type Cache struct {
	entries  *lru.Cache[string, domain.Coordinate]
	upstream Geocoder
	store    Store
	flight   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore adds a persistent tier consulted before the upstream geocoder.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

// NewCache returns a cache holding at most capacity entries in memory.
// A capacity <= 0 uses DefaultCapacity.
func NewCache(g Geocoder, capacity int, opts ...Option) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[string, domain.Coordinate](capacity)
	if err != nil {
		return nil, err
	}
	c := &Cache{entries: entries, upstream: g}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve returns the coordinate for query. A hit marks the entry most
// recently used. On a miss the store (if any) and then the upstream geocoder
// are consulted; failures are not cached and yield ok == false.
func (c *Cache) Resolve(ctx context.Context, query string) (domain.Coordinate, bool) {
	ctx, span := observability.Tracer("geocode").Start(ctx, "geocode.Resolve")
	defer span.End()

	if coord, ok := c.entries.Get(query); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		span.SetAttributes(attribute.String("geocode.result", "hit"))
		return coord, true
	}

	v, err, _ := c.flight.Do(query, func() (any, error) {
		// Another caller may have filled the entry while we waited.
		if coord, ok := c.entries.Peek(query); ok {
			return coord, nil
		}
		// The result is shared with every waiter on this key, so the
		// leader's cancellation must not fail them.
		return c.fill(context.WithoutCancel(ctx), query)
	})
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		span.SetAttributes(attribute.String("geocode.result", "error"))
		zerolog.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("geocode failed")
		return domain.Coordinate{}, false
	}
	span.SetAttributes(attribute.String("geocode.result", "miss"))
	return v.(domain.Coordinate), true
}

func (c *Cache) fill(ctx context.Context, query string) (domain.Coordinate, error) {
	lg := zerolog.Ctx(ctx)

	if c.store != nil {
		coord, err := c.store.Get(ctx, query)
		switch {
		case err == nil:
			cacheLookups.WithLabelValues("store_hit").Inc()
			c.entries.Add(query, coord)
			return coord, nil
		case !errors.Is(err, ErrNotStored):
			lg.Warn().Err(err).Msg("geocode store read failed")
		}
	}

	cacheLookups.WithLabelValues("miss").Inc()
	coord, err := c.upstream.Lookup(ctx, query)
	if err != nil {
		return domain.Coordinate{}, err
	}
	c.entries.Add(query, coord)

	if c.store != nil {
		if err := c.store.Put(ctx, query, coord); err != nil {
			lg.Warn().Err(err).Msg("geocode store write failed")
		}
	}
	return coord, nil
}

// Len reports the number of entries held in memory.
func (c *Cache) Len() int { return c.entries.Len() }

// Contains reports whether query is in memory without touching recency.
func (c *Cache) Contains(query string) bool { return c.entries.Contains(query) }
