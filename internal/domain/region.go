package domain

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultRegionsYAML []byte

// ReverseGeocoder resolves coordinates to the federal state they lie in.
// An empty state with a nil error means the provider had no answer.
type ReverseGeocoder interface {
	ReverseState(ctx context.Context, lat, lng float64) (string, error)
}

// RegionTable maps a city name to a federal state.
type RegionTable map[string]string

// DefaultRegionTable returns the embedded table of well-known German cities.
func DefaultRegionTable() RegionTable {
	t, err := ParseRegionTable(defaultRegionsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded regions.yaml: %v", err))
	}
	return t
}

// ParseRegionTable decodes a flat "city: state" YAML document.
func ParseRegionTable(data []byte) (RegionTable, error) {
	var t RegionTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse region table: %w", err)
	}
	for city, state := range t {
		if city == "" || state == "" {
			return nil, fmt.Errorf("parse region table: empty entry %q: %q", city, state)
		}
	}
	return t, nil
}

// LoadRegionTable reads a region table from path. An empty path returns the
// embedded default.
func LoadRegionTable(path string) (RegionTable, error) {
	if path == "" {
		return DefaultRegionTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region table: %w", err)
	}
	return ParseRegionTable(data)
}

// RegionCache remembers reverse-geocoded states per city for the lifetime of
// its owner. Entries are never evicted. Failed lookups are never stored, so a
// later call retries them.
type RegionCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewRegionCache creates an empty cache.
func NewRegionCache() *RegionCache {
	return &RegionCache{entries: make(map[string]string)}
}

// Get returns the cached state for city.
func (c *RegionCache) Get(city string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state, ok := c.entries[city]
	return state, ok
}

// Put stores a state for city. Concurrent writers for the same city both
// succeed and the last one wins.
func (c *RegionCache) Put(city, state string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[city] = state
}

// Len reports the number of cached cities.
func (c *RegionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RegionLookupObserver receives the source of every resolution
// ("static", "cache", "geocoder", "failed").
type RegionLookupObserver func(source string)

// RegionResolver maps an event city to its federal state.
type RegionResolver struct {
	table    RegionTable
	cache    *RegionCache
	geocoder ReverseGeocoder
	logger   *slog.Logger
	observe  RegionLookupObserver
}

// NewRegionResolver builds a resolver. geocoder may be nil, in which case
// cities outside the table resolve to "".
func NewRegionResolver(table RegionTable, cache *RegionCache, geocoder ReverseGeocoder, logger *slog.Logger) *RegionResolver {
	if cache == nil {
		cache = NewRegionCache()
	}
	return &RegionResolver{
		table:    table,
		cache:    cache,
		geocoder: geocoder,
		logger:   logger,
		observe:  func(string) {},
	}
}

// WithObserver sets the hook called after each resolution.
func (r *RegionResolver) WithObserver(fn RegionLookupObserver) *RegionResolver {
	if fn != nil {
		r.observe = fn
	}
	return r
}

// Lookup resolves city from the static table and the cache only. It is used
// when the venue position is a placeholder, so nothing is geocoded or cached.
func (r *RegionResolver) Lookup(city string) string {
	if state, ok := r.table[city]; ok {
		r.observe("static")
		return state
	}
	if state, ok := r.cache.Get(city); ok {
		r.observe("cache")
		return state
	}
	r.observe("failed")
	return ""
}

// Resolve returns the federal state for city, or "" when it cannot be
// determined. It never fails; geocoder errors are logged and swallowed.
func (r *RegionResolver) Resolve(ctx context.Context, city string, lat, lng float64) string {
	if state, ok := r.table[city]; ok {
		r.observe("static")
		return state
	}
	if state, ok := r.cache.Get(city); ok {
		r.observe("cache")
		return state
	}
	if r.geocoder == nil {
		r.observe("failed")
		return ""
	}

	state, err := r.geocoder.ReverseState(ctx, lat, lng)
	if err != nil {
		r.logger.Warn("reverse geocoding failed",
			"city", city,
			"lat", lat,
			"lng", lng,
			"error", err,
		)
		r.observe("failed")
		return ""
	}
	if state == "" {
		r.observe("failed")
		return ""
	}

	r.cache.Put(city, state)
	r.observe("geocoder")
	return state
}
