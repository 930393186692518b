// Package flood limits how many conversions a single client may request per minute.
package flood

import (
	"sync"
	"time"
)

const (
	// windowDuration is the sliding window requests are counted in.
	windowDuration = 60 * time.Second
	// cleanupInterval is how often idle clients are forgotten.
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long a client may stay silent before its entry is dropped.
	idleTimeout = 10 * time.Minute
)

// Floodgate is a per-client sliding window rate limiter. A limit of zero or less
// disables it and every request is allowed.
type Floodgate struct {
	limitPerMinute int
	clients        map[string]*clientEntry
	mutex          sync.RWMutex
	now            func() time.Time
	stopCleanup    chan struct{}
	stopOnce       sync.Once
}

type clientEntry struct {
	requests []time.Time
	lastSeen time.Time
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed bool
	// Remaining is the number of requests the client may still make in the current window.
	Remaining int
	// RetryAfter is how long a rejected client has to wait for the oldest request to leave the window.
	RetryAfter time.Duration
}

// New creates a Floodgate admitting limitPerMinute requests per client.
func New(limitPerMinute int) *Floodgate {
	fg := &Floodgate{
		limitPerMinute: limitPerMinute,
		clients:        make(map[string]*clientEntry),
		now:            time.Now,
		stopCleanup:    make(chan struct{}),
	}

	if fg.Enabled() {
		go fg.cleanup()
	}

	return fg
}

// Enabled reports whether requests are limited at all.
func (fg *Floodgate) Enabled() bool {
	return fg.limitPerMinute > 0
}

// Stop ends the background cleanup. It is safe to call more than once.
func (fg *Floodgate) Stop() {
	fg.stopOnce.Do(func() {
		close(fg.stopCleanup)
	})
}

// Allow records a request from client and reports whether it may proceed.
func (fg *Floodgate) Allow(client string) Decision {
	if !fg.Enabled() {
		return Decision{Allowed: true, Remaining: -1}
	}

	now := fg.now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.clients[client]
	if !exists {
		entry = &clientEntry{requests: make([]time.Time, 0, fg.limitPerMinute)}
		fg.clients[client] = entry
	}
	entry.lastSeen = now

	windowStart := now.Add(-windowDuration)
	kept := entry.requests[:0]
	for _, ts := range entry.requests {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	entry.requests = kept

	if len(entry.requests) >= fg.limitPerMinute {
		return Decision{
			Allowed:    false,
			RetryAfter: entry.requests[0].Add(windowDuration).Sub(now),
		}
	}

	entry.requests = append(entry.requests, now)
	return Decision{Allowed: true, Remaining: fg.limitPerMinute - len(entry.requests)}
}

func (fg *Floodgate) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.performCleanup()
		case <-fg.stopCleanup:
			return
		}
	}
}

func (fg *Floodgate) performCleanup() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := fg.now().Add(-idleTimeout)
	for client, entry := range fg.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.clients, client)
		}
	}
}

// GetStats returns a snapshot for the readiness endpoint.
func (fg *Floodgate) GetStats() Stats {
	fg.mutex.RLock()
	defer fg.mutex.RUnlock()

	return Stats{
		ActiveClients:  len(fg.clients),
		LimitPerMinute: fg.limitPerMinute,
		WindowSeconds:  int(windowDuration.Seconds()),
	}
}

// Stats contains floodgate statistics.
type Stats struct {
	ActiveClients  int `json:"active_clients"`
	LimitPerMinute int `json:"limit_per_minute"`
	WindowSeconds  int `json:"window_seconds"`
}
