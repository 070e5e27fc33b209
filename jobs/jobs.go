// Package jobs serves scraped job listings through a redis cache-aside.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"huntboard/models"
	"huntboard/rdx"
)

const cacheTTL = 4 * time.Hour

// Source is one external job board.
type Source interface {
	Name() string
	Fetch(ctx context.Context, page int, query string) ([]models.JobVacancy, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CacheKey derives the listing cache key from page and query.
func CacheKey(page int, query string) string {
	return fmt.Sprintf("jobs-%d-%s", page, query)
}

type Service struct {
	cache   Cache
	sources []Source
}

// NewService builds the listing service; source order is merge order.
func NewService(cache Cache, sources ...Source) *Service {
	return &Service{cache: cache, sources: sources}
}

// Listings returns the cached page if present, otherwise queries every
// source, merges in source order, and writes the result back with the TTL.
// A failing source is logged and skipped so the others still serve; a
// partial merge is returned but never cached, so the next miss retries
// the full set of sources.
func (s *Service) Listings(ctx context.Context, page int, query string) ([]models.JobVacancy, error) {
	if page < 1 {
		page = 1
	}
	key := CacheKey(page, query)

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var vacancies []models.JobVacancy
		if err := json.Unmarshal([]byte(cached), &vacancies); err == nil {
			return vacancies, nil
		}
		log.Printf("jobs: discarding corrupt cache entry %s", key)
	}

	merged := []models.JobVacancy{}
	failed := 0
	for _, src := range s.sources {
		found, err := src.Fetch(ctx, page, query)
		if err != nil {
			log.Printf("jobs: %s fetch failed: %v", src.Name(), err)
			failed++
			continue
		}
		merged = append(merged, found...)
	}
	if failed > 0 {
		return merged, nil
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return merged, nil
	}
	if err := s.cache.Set(ctx, key, string(data), cacheTTL); err != nil {
		log.Printf("jobs: failed to cache %s: %v", key, err)
	}
	return merged, nil
}

// RedisCache adapts the shared redis connection to the Cache interface.
type RedisCache struct{}

func (RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rdx.RdxGet(ctx, key)
}

func (RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return rdx.SetWithExpiry(ctx, key, value, ttl)
}
