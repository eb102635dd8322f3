package jobsearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"velocity/internal/domain/joblisting"
)

// SearchCache is the slice of the cache surface the decorator needs.
type SearchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedClient short-circuits repeated identical searches within a TTL.
// Alerts with the same criteria frequently fire in the same scheduler cycle;
// the cache keeps those from burning upstream quota.
type CachedClient struct {
	inner Client
	cache SearchCache
	ttl   time.Duration
}

func NewCachedClient(inner Client, cache SearchCache, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedClient{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedClient) Search(ctx context.Context, q Query) ([]joblisting.JobListing, error) {
	key := cacheKey(q)

	if c.cache != nil {
		var cached []joblisting.JobListing
		if ok, err := c.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	listings, err := c.inner.Search(ctx, q)
	if err != nil {
		// Never cache failures; rate limiting must stay visible upstream.
		return listings, err
	}

	if c.cache != nil && len(listings) > 0 {
		_ = c.cache.SetJSON(ctx, key, listings, c.ttl)
	}
	return listings, nil
}

type cacheKeyInput struct {
	Text            string   `json:"text"`
	Location        string   `json:"location"`
	RemoteOnly      bool     `json:"remote_only"`
	EmploymentTypes []string `json:"employment_types"`
	Page            int      `json:"page"`
	NumPages        int      `json:"num_pages"`
}

func normalizeValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

func cacheKey(q Query) string {
	types := make([]string, 0, len(q.EmploymentTypes))
	for _, t := range q.EmploymentTypes {
		t = normalizeValue(t)
		if t == "" {
			continue
		}
		types = append(types, t)
	}

	in := cacheKeyInput{
		Text:            normalizeValue(q.Text),
		Location:        normalizeValue(q.Location),
		RemoteOnly:      q.RemoteOnly,
		EmploymentTypes: types,
		Page:            q.Page,
		NumPages:        q.NumPages,
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "jobs:search:" + hex.EncodeToString(sum[:])
}

var _ Client = (*CachedClient)(nil)
