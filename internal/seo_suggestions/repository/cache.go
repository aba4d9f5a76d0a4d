package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix  = "seo:suggestions:" // seo:suggestions:{input_hash}
	DefaultCacheTTL = time.Hour
)

// ErrCacheMiss is returned by Get when no entry exists for the hash.
var ErrCacheMiss = errors.New("suggestion cache miss")

// InputHash fingerprints the trimmed post fields. Fields are length-prefixed so
// ("ab", "c") and ("a", "bc") never collide.
func InputHash(in domain.SuggestionInput) string {
	h := sha256.New()
	for _, field := range []string{in.Title, in.Summary, in.Content} {
		f := strings.TrimSpace(field)
		fmt.Fprintf(h, "%d:%s|", len(f), f)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CacheRepository stores successful suggestion results in Redis.
type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis.Client, ttl time.Duration) *CacheRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheRepository{client: client, ttl: ttl}
}

func (r *CacheRepository) Get(ctx context.Context, inputHash string) ([]domain.Suggestion, error) {
	data, err := r.client.Get(ctx, r.key(inputHash)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached suggestions: %w", err)
	}

	var out []domain.Suggestion
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached suggestions: %w", err)
	}
	if out == nil {
		out = []domain.Suggestion{}
	}
	return out, nil
}

func (r *CacheRepository) Set(ctx context.Context, inputHash string, suggestions []domain.Suggestion) error {
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	data, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	if err := r.client.Set(ctx, r.key(inputHash), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache suggestions: %w", err)
	}
	return nil
}

func (r *CacheRepository) key(inputHash string) string {
	return cacheKeyPrefix + inputHash
}
