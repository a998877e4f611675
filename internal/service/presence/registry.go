package presence

import (
	"sort"
	"sync"

	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/samber/lo"
)

// Registry maps live connection ids to the username authenticated on them.
// One connection has at most one user; a user may hold several connections.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]string
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]string)}
}

// Register binds connID to username, replacing any previous binding (last login wins).
func (r *Registry) Register(connID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = username
}

// Remove is a no-op for unknown ids. It reports whether an entry was dropped.
func (r *Registry) Remove(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[connID]
	delete(r.conns, connID)
	return ok
}

func (r *Registry) Resolve(connID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	username, ok := r.conns[connID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return username, nil
}

// Snapshot returns a copy of connID -> username.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.conns))
	for id, username := range r.conns {
		out[id] = username
	}
	return out
}

// Online lists each connected username once, sorted.
func (r *Registry) Online() []string {
	r.mu.RLock()
	users := lo.Uniq(lo.Values(r.conns))
	r.mu.RUnlock()
	sort.Strings(users)
	return users
}

// ConnectionsOf returns every connection id a user is logged in on.
func (r *Registry) ConnectionsOf(username string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := lo.Keys(lo.PickByValues(r.conns, []string{username}))
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Entries is Snapshot as a list, ordered by connection id.
func (r *Registry) Entries() []domain.PresenceEntry {
	snapshot := r.Snapshot()
	entries := lo.MapToSlice(snapshot, func(connID, username string) domain.PresenceEntry {
		return domain.PresenceEntry{ConnID: connID, Username: username}
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].ConnID < entries[j].ConnID })
	return entries
}
