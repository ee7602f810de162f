package moderation

import (
	"context"
	"errors"
	"sync"
	"time"
)

const DefaultIdleTTL = 30 * time.Minute

// Registry keeps one controller per operator session so that approvals made in
// one request are reflected in the next render without a re-fetch.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	controller *Controller
	owner      string
	lastUsed   time.Time
}

func NewRegistry(idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		ttl:     idleTTL,
		now:     time.Now,
		entries: make(map[string]*registryEntry),
	}
}

// Get returns the controller for key, building it on first use or after it
// expired. owner identifies the operator; a different owner under the same key
// replaces the controller.
func (r *Registry) Get(key, owner string, build func() (*Controller, error)) (*Controller, error) {
	if key == "" {
		return nil, errors.New("moderation registry key is required")
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok && e.owner == owner && now.Sub(e.lastUsed) < r.ttl {
		e.lastUsed = now
		return e.controller, nil
	}

	controller, err := build()
	if err != nil {
		return nil, err
	}
	r.entries[key] = &registryEntry{controller: controller, owner: owner, lastUsed: now}
	return controller, nil
}

// Forget drops the controller for key, e.g. on logout.
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Sweep drops controllers idle for longer than the TTL and returns how many it removed.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, e := range r.entries {
		if now.Sub(e.lastUsed) >= r.ttl {
			delete(r.entries, key)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps on every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = r.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
