// Package registry maps extension-issued button ids to their press handlers.
package registry

import (
	"sync"
	"time"

	"github.com/tinyland-inc/picobuttons/pkg/host"
)

// Callback runs when the button it is registered for is pressed.
type Callback func(msg *host.Message, ui host.UIContainer)

// Entry is a registered handler together with the message that owns the button.
type Entry struct {
	Callback   Callback
	MessageID  string
	Registered time.Time
}

// Registry is safe for concurrent registration and lookup. Entries live until
// removed explicitly or pruned with RemoveMessage.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

var defaultRegistry = sync.OnceValue(New)

// Default returns the process-wide registry, created on first use.
func Default() *Registry {
	return defaultRegistry()
}

// Register stores cb under id, replacing any previous handler for it.
func (r *Registry) Register(id, messageID string, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = Entry{Callback: cb, MessageID: messageID, Registered: time.Now()}
}

// Lookup returns the handler registered for id.
func (r *Registry) Lookup(id string) (Callback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.Callback, true
}

// Entry returns the full registration for id, including its message.
func (r *Registry) Entry(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Remove drops the handler for id and reports whether one was registered.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// RemoveMessage drops every handler registered for buttons of messageID and
// returns how many were removed.
func (r *Registry) RemoveMessage(messageID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		if e.MessageID == messageID {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// Len reports the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
