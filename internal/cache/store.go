package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"urlvetter/internal/models"
)

const keyPrefix = "urlvetter:verdict:"

// Store is a shared verdict cache in Redis, keyed by a hash of the scanned
// URL. Both the API and the worker read it, so a URL scanned once inside
// the TTL window is never re-scored.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Key hashes the raw URL so arbitrary input never ends up inside a Redis
// key verbatim.
func Key(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached verdict and whether one was present.
func (s *Store) Get(ctx context.Context, rawURL string) (models.ScanVerdict, bool, error) {
	var verdict models.ScanVerdict

	raw, err := s.client.Get(ctx, Key(rawURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return verdict, false, nil
	}
	if err != nil {
		return verdict, false, fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(raw, &verdict); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return models.ScanVerdict{}, false, nil
	}
	return verdict, true, nil
}

// Set stores the verdict snapshot under the configured TTL.
func (s *Store) Set(ctx context.Context, rawURL string, verdict models.ScanVerdict) error {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := s.client.Set(ctx, Key(rawURL), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
