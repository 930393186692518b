// Package store provides the opt-in session cache used to reuse authenticated provider sessions.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionCache keeps authenticated sessions keyed by a credential digest. Entries expire
// after ttl and the least recently used entry is evicted when the cache is full.
type SessionCache[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewSessionCache creates a cache holding at most size sessions for ttl each.
func NewSessionCache[V any](size int, ttl time.Duration) *SessionCache[V] {
	if size <= 0 {
		panic("session cache size must be positive")
	}
	return &SessionCache[V]{
		lru: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

// Get returns the cached session for key if it has not expired.
func (c *SessionCache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Add stores a session, replacing any previous one for key.
func (c *SessionCache[V]) Add(key string, session V) {
	c.lru.Add(key, session)
}

// Invalidate drops the session for key, e.g. after the provider rejected its token.
func (c *SessionCache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Len returns the number of cached sessions, expired entries included until purged.
func (c *SessionCache[V]) Len() int {
	return c.lru.Len()
}

// Purge removes every session.
func (c *SessionCache[V]) Purge() {
	c.lru.Purge()
}

// CredentialKey derives a cache key from credential parts without keeping them in memory.
func CredentialKey(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
