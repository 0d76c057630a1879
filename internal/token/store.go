// Package token holds session tokens in an expiring cache so stale
// entries age out instead of accumulating for the process lifetime.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store maps opaque tokens to user ids.
type Store interface {
	Issue(userID string) (string, error)
	Lookup(token string) (userID string, ok bool)
	Revoke(token string)
}

type lruStore struct {
	cache *expirable.LRU[string, string]
}

// NewStore returns a Store that drops tokens after ttl or when more
// than maxTokens are live, oldest first.
func NewStore(maxTokens int, ttl time.Duration) Store {
	return &lruStore{
		cache: expirable.NewLRU[string, string](maxTokens, nil, ttl),
	}
}

func (s *lruStore) Issue(userID string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: generate: %w", err)
	}
	token := hex.EncodeToString(buf)
	s.cache.Add(token, userID)
	return token, nil
}

func (s *lruStore) Lookup(token string) (string, bool) {
	return s.cache.Get(token)
}

func (s *lruStore) Revoke(token string) {
	s.cache.Remove(token)
}
