// Package cache provides the in-process TTL caches backing the read-heavy
// API responses (dashboard summaries, month selectors). Entries are keyed per
// owner so writes can invalidate one owner without flushing everyone.
package cache

import (
	"log/slog"
	"time"
)

// Cache is the read/write surface handlers program against.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can evict their expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager owns the background expiry sweep for every registered cache. The
// server registers its caches at startup and stops the manager on shutdown.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the periodic sweep. Not safe to call after
// StartCleanup.
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins sweeping expired entries on the given interval.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, cache := range m.caches {
				cleaned += cache.CleanExpired()
			}
			if cleaned > 0 {
				slog.Debug("Cache cleanup swept expired entries", "cleaned", cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop halts the sweep and waits for the cleanup goroutine to exit.
func (m *Manager) Stop() {
	if m.stopCleanup != nil {
		close(m.stopCleanup)
		<-m.cleanupDone
	}
}
