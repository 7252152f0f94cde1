package hosting

import (
	"slices"
	"sync"
)

// Registry tracks which applications each user deployed through the bot.
// Process-local, like the session cache.
type Registry struct {
	mu   sync.RWMutex
	apps map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{apps: make(map[string][]string)}
}

// Register records an app under a user. Duplicate registrations are
// ignored.
func (r *Registry) Register(userID, appID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.apps[userID], appID) {
		return
	}
	r.apps[userID] = append(r.apps[userID], appID)
}

// Unregister removes an app from a user's list.
func (r *Registry) Unregister(userID, appID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.apps[userID]
	idx := slices.Index(list, appID)
	if idx < 0 {
		return
	}
	r.apps[userID] = slices.Delete(list, idx, idx+1)
}

// Apps returns the app ids registered for a user.
func (r *Registry) Apps(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.apps[userID])
}

// Owns reports whether the user registered the app.
func (r *Registry) Owns(userID, appID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.apps[userID], appID)
}
