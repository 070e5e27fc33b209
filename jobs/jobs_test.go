package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"huntboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	entries map[string]string
	ttls    map[string]time.Duration
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.entries[key], nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

type stubSource struct {
	name      string
	vacancies []models.JobVacancy
	err       error
	calls     int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ int, _ string) ([]models.JobVacancy, error) {
	s.calls++
	return s.vacancies, s.err
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "jobs-1-", CacheKey(1, ""))
	assert.Equal(t, "jobs-3-golang", CacheKey(3, "golang"))
}

func TestListingsCacheHitSkipsSources(t *testing.T) {
	cached := []models.JobVacancy{{Title: "Backend Engineer", Company: "Acme"}}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	cache := newFakeCache()
	cache.entries[CacheKey(1, "go")] = string(raw)
	src := &stubSource{name: "board"}

	svc := NewService(cache, src)
	got, err := svc.Listings(context.Background(), 1, "go")
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	assert.Zero(t, src.calls, "cache hit must not reach sources")
}

func TestListingsMergesInSourceOrder(t *testing.T) {
	first := &stubSource{name: "jobstreet", vacancies: []models.JobVacancy{
		{Title: "Go Developer", Source: "a"},
		{Title: "SRE", Source: "b"},
	}}
	second := &stubSource{name: "kalibrr", vacancies: []models.JobVacancy{
		{Title: "Platform Engineer", Source: "c"},
	}}
	cache := newFakeCache()

	svc := NewService(cache, first, second)
	got, err := svc.Listings(context.Background(), 2, "go")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Go Developer", got[0].Title)
	assert.Equal(t, "SRE", got[1].Title)
	assert.Equal(t, "Platform Engineer", got[2].Title)

	// the merged page is written back for the next caller
	assert.NotEmpty(t, cache.entries[CacheKey(2, "go")])
	assert.Equal(t, 4*time.Hour, cache.ttls[CacheKey(2, "go")])
}

func TestListingsToleratesFailingSource(t *testing.T) {
	broken := &stubSource{name: "jobstreet", err: errors.New("boom")}
	working := &stubSource{name: "kalibrr", vacancies: []models.JobVacancy{{Title: "QA Engineer"}}}
	cache := newFakeCache()

	svc := NewService(cache, broken, working)
	got, err := svc.Listings(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "QA Engineer", got[0].Title)

	// a partial merge must not occupy the cache for the full TTL
	assert.Empty(t, cache.entries)
}

func TestListingsRetriesSourcesAfterOutage(t *testing.T) {
	flaky := &stubSource{name: "jobstreet", err: errors.New("503")}
	cache := newFakeCache()

	svc := NewService(cache, flaky)
	got, err := svc.Listings(context.Background(), 1, "go")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, cache.entries, "an empty outage result must not be cached")

	// source recovers; the next call must reach it instead of a stale entry
	flaky.err = nil
	flaky.vacancies = []models.JobVacancy{{Title: "Go Developer"}}

	got, err = svc.Listings(context.Background(), 1, "go")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Go Developer", got[0].Title)
	assert.Equal(t, 2, flaky.calls)
	assert.NotEmpty(t, cache.entries[CacheKey(1, "go")])
}

func TestListingsNormalizesPage(t *testing.T) {
	cache := newFakeCache()
	src := &stubSource{name: "board"}

	svc := NewService(cache, src)
	_, err := svc.Listings(context.Background(), 0, "go")
	require.NoError(t, err)
	assert.Contains(t, cache.entries, CacheKey(1, "go"))
}

func TestListingsDiscardsCorruptCacheEntry(t *testing.T) {
	cache := newFakeCache()
	cache.entries[CacheKey(1, "go")] = "{not json"
	src := &stubSource{name: "board", vacancies: []models.JobVacancy{{Title: "Fresh"}}}

	svc := NewService(cache, src)
	got, err := svc.Listings(context.Background(), 1, "go")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fresh", got[0].Title)
	assert.Equal(t, 1, src.calls)
}

func TestListingsCacheErrorFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	src := &stubSource{name: "board", vacancies: []models.JobVacancy{{Title: "Live"}}}

	svc := NewService(cache, src)
	got, err := svc.Listings(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Live", got[0].Title)
}
