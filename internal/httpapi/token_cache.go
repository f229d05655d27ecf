package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"task-manager/internal/domain"
)

// tokenCache remembers which user a bearer token belongs to so that
// repeated requests skip the session lookup. Keys are token hashes.
type tokenCache struct {
	c   *ristretto.Cache[string, domain.User]
	ttl time.Duration
}

// newTokenCache creates a cache holding up to size tokens for ttl each.
func newTokenCache(size int64, ttl time.Duration) (*tokenCache, error) {
	if size <= 0 {
		size = 1
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, domain.User]{
		NumCounters:        size * 10, // ~10x expected items
		MaxCost:            size,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &tokenCache{c: c, ttl: ttl}, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Get returns the user cached for token.
func (t *tokenCache) Get(token string) (domain.User, bool) {
	return t.c.Get(tokenKey(token))
}

// Set caches user for token until the cache TTL or the session's remaining
// lifetime runs out, whichever is first. The entry is visible to Get once Set returns.
func (t *tokenCache) Set(token string, user domain.User, lifetime time.Duration) {
	ttl := min(t.ttl, lifetime)
	if ttl <= 0 {
		return
	}
	t.c.SetWithTTL(tokenKey(token), user, 1, ttl)
	t.c.Wait()
}

// Delete forgets token.
func (t *tokenCache) Delete(token string) {
	t.c.Del(tokenKey(token))
}

// Close shuts down the cache and releases resources.
func (t *tokenCache) Close() {
	t.c.Close()
}
