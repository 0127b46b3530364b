package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock geocoder ---

type mockReverseGeocoder struct {
	state string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (m *mockReverseGeocoder) ReverseState(_ context.Context, _, _ float64) (string, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.state, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- table tests ---

func TestDefaultRegionTable(t *testing.T) {
	table := DefaultRegionTable()

	assert.Len(t, table, 18)
	assert.Equal(t, "Bayern", table["München"])
	assert.Equal(t, "Bayern", table["Munich"])
	assert.Equal(t, "Nordrhein-Westfalen", table["Köln"])
	assert.Equal(t, "Nordrhein-Westfalen", table["Cologne"])
	assert.Equal(t, "Sachsen", table["Dresden"])
	assert.Equal(t, "Baden-Württemberg", table["Stuttgart"])
}

func TestParseRegionTable_RejectsEmptyState(t *testing.T) {
	_, err := ParseRegionTable([]byte("Berlin: \"\"\n"))
	require.Error(t, err)
}

func TestParseRegionTable_InvalidYAML(t *testing.T) {
	_, err := ParseRegionTable([]byte("- just\n- a list\n"))
	require.Error(t, err)
}

func TestLoadRegionTable_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Potsdam: Brandenburg\nRostock: Mecklenburg-Vorpommern\n"), 0o600))

	table, err := LoadRegionTable(path)
	require.NoError(t, err)
	assert.Equal(t, RegionTable{"Potsdam": "Brandenburg", "Rostock": "Mecklenburg-Vorpommern"}, table)
}

func TestLoadRegionTable_EmptyPathUsesDefault(t *testing.T) {
	table, err := LoadRegionTable("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRegionTable(), table)
}

func TestLoadRegionTable_MissingFile(t *testing.T) {
	_, err := LoadRegionTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

// --- resolver tests ---

func TestResolve_StaticTableSkipsGeocoder(t *testing.T) {
	geo := &mockReverseGeocoder{state: "Wrong"}
	r := NewRegionResolver(DefaultRegionTable(), NewRegionCache(), geo, discardLogger())

	assert.Equal(t, "Hessen", r.Resolve(context.Background(), "Frankfurt", 50.11, 8.68))
	assert.Equal(t, int32(0), geo.calls.Load())
}

func TestResolve_GeocoderResultIsCached(t *testing.T) {
	geo := &mockReverseGeocoder{state: "Thüringen"}
	cache := NewRegionCache()
	r := NewRegionResolver(DefaultRegionTable(), cache, geo, discardLogger())

	assert.Equal(t, "Thüringen", r.Resolve(context.Background(), "Erfurt", 50.98, 11.03))
	assert.Equal(t, "Thüringen", r.Resolve(context.Background(), "Erfurt", 50.98, 11.03))

	assert.Equal(t, int32(1), geo.calls.Load(), "second lookup should hit the cache")
	state, ok := cache.Get("Erfurt")
	assert.True(t, ok)
	assert.Equal(t, "Thüringen", state)
}

func TestResolve_FailureIsNotCached(t *testing.T) {
	geo := &mockReverseGeocoder{err: errors.New("connection refused")}
	cache := NewRegionCache()
	r := NewRegionResolver(DefaultRegionTable(), cache, geo, discardLogger())

	assert.Empty(t, r.Resolve(context.Background(), "Erfurt", 50.98, 11.03))
	assert.Equal(t, 0, cache.Len())

	geo.err = nil
	geo.state = "Thüringen"
	assert.Equal(t, "Thüringen", r.Resolve(context.Background(), "Erfurt", 50.98, 11.03))
	assert.Equal(t, int32(2), geo.calls.Load(), "failed lookup should be retried")
}

func TestResolve_EmptyStateIsNotCached(t *testing.T) {
	geo := &mockReverseGeocoder{state: ""}
	cache := NewRegionCache()
	r := NewRegionResolver(DefaultRegionTable(), cache, geo, discardLogger())

	assert.Empty(t, r.Resolve(context.Background(), "Nordsee", 54.5, 7.5))
	assert.Equal(t, 0, cache.Len())
}

func TestResolve_NilGeocoder(t *testing.T) {
	r := NewRegionResolver(DefaultRegionTable(), nil, nil, discardLogger())
	assert.Empty(t, r.Resolve(context.Background(), "Erfurt", 50.98, 11.03))
	assert.Equal(t, "Berlin", r.Resolve(context.Background(), "Berlin", 52.52, 13.405))
}

func TestResolve_ObserverSources(t *testing.T) {
	geo := &mockReverseGeocoder{state: "Thüringen"}
	var sources []string
	r := NewRegionResolver(DefaultRegionTable(), NewRegionCache(), geo, discardLogger()).
		WithObserver(func(s string) { sources = append(sources, s) })

	r.Resolve(context.Background(), "Berlin", 0, 0)
	r.Resolve(context.Background(), "Erfurt", 0, 0)
	r.Resolve(context.Background(), "Erfurt", 0, 0)
	geo.state = ""
	r.Resolve(context.Background(), "Atlantis", 0, 0)

	assert.Equal(t, []string{"static", "geocoder", "cache", "failed"}, sources)
}

func TestLookup_NeverGeocodes(t *testing.T) {
	geo := &mockReverseGeocoder{state: "Thüringen"}
	cache := NewRegionCache()
	var sources []string
	r := NewRegionResolver(DefaultRegionTable(), cache, geo, discardLogger()).
		WithObserver(func(s string) { sources = append(sources, s) })

	assert.Equal(t, "Berlin", r.Lookup("Berlin"))
	assert.Empty(t, r.Lookup("Erfurt"))
	cache.Put("Erfurt", "Thüringen")
	assert.Equal(t, "Thüringen", r.Lookup("Erfurt"))

	assert.Zero(t, geo.calls.Load())
	assert.Equal(t, []string{"static", "failed", "cache"}, sources)
	assert.Equal(t, 1, cache.Len())
}

func TestResolve_ConcurrentSameCityConverges(t *testing.T) {
	geo := &mockReverseGeocoder{state: "Thüringen", delay: 20 * time.Millisecond}
	cache := NewRegionCache()
	r := NewRegionResolver(DefaultRegionTable(), cache, geo, discardLogger())

	const workers = 2
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), "Jena", 50.93, 11.59)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"Thüringen", "Thüringen"}, results)
	assert.LessOrEqual(t, geo.calls.Load(), int32(workers))
	assert.Equal(t, 1, cache.Len())

	state, ok := cache.Get("Jena")
	require.True(t, ok)
	assert.Equal(t, "Thüringen", state)
}
