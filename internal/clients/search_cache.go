package clients

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spacesedan/bookpulse/internal/monitoring"
)

const (
	SEARCH_CACHE_PREFIX = "bookpulse:search:"
	DEFAULT_CACHE_TTL   = 15 * time.Minute
)

type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type searcher interface {
	Ready(ctx context.Context) error
	Search(ctx context.Context, req models.SearchRequest) iter.Seq2[models.Candidate, error]
}

// CachedSource serves repeated searches from the cache store. Only searches
// that ran to completion without error are stored.
type CachedSource struct {
	source searcher
	store  CacheStore
	ttl    time.Duration
}

func NewCachedSource(source searcher, store CacheStore, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DEFAULT_CACHE_TTL
	}
	return &CachedSource{source: source, store: store, ttl: ttl}
}

func (cs *CachedSource) Ready(ctx context.Context) error {
	return cs.source.Ready(ctx)
}

func (cs *CachedSource) Search(ctx context.Context, req models.SearchRequest) iter.Seq2[models.Candidate, error] {
	return func(yield func(models.Candidate, error) bool) {
		key := searchCacheKey(req)

		if cached, ok := cs.lookup(ctx, key); ok {
			for _, c := range cached {
				if !yield(c, nil) {
					return
				}
			}
			return
		}

		var collected []models.Candidate
		for c, err := range cs.source.Search(ctx, req) {
			if err != nil {
				yield(models.Candidate{}, err)
				return
			}
			collected = append(collected, c)
			if !yield(c, nil) {
				return
			}
		}

		cs.save(ctx, key, collected)
	}
}

func (cs *CachedSource) lookup(ctx context.Context, key string) ([]models.Candidate, bool) {
	data, found, err := cs.store.Get(ctx, key)
	if err != nil {
		monitoring.CacheLookups.WithLabelValues("error").Inc()
		slog.Warn("[SearchCache] Lookup failed, querying source", slog.String("error", err.Error()))
		return nil, false
	}
	if !found {
		monitoring.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var cached []models.Candidate
	if err := json.Unmarshal(data, &cached); err != nil {
		monitoring.CacheLookups.WithLabelValues("error").Inc()
		slog.Warn("[SearchCache] Dropping unreadable entry", slog.String("error", err.Error()))
		return nil, false
	}

	monitoring.CacheLookups.WithLabelValues("hit").Inc()
	slog.Debug("[SearchCache] Hit", slog.String("key", key), slog.Int("candidates", len(cached)))
	return cached, true
}

func (cs *CachedSource) save(ctx context.Context, key string, candidates []models.Candidate) {
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		slog.Warn("[SearchCache] Failed to encode candidates", slog.String("error", err.Error()))
		return
	}
	if err := cs.store.Set(ctx, key, data, cs.ttl); err != nil {
		slog.Warn("[SearchCache] Failed to store candidates", slog.String("error", err.Error()))
	}
}

func searchCacheKey(req models.SearchRequest) string {
	raw := fmt.Sprintf("%s|%s|%d|%s|%s",
		strings.Join(req.Communities, "+"),
		strings.ToLower(strings.TrimSpace(req.Query)),
		req.Limit, req.Sort, req.TimeWindow)
	hash := sha256.Sum256([]byte(raw))
	return SEARCH_CACHE_PREFIX + hex.EncodeToString(hash[:])
}
