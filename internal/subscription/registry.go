package subscription

import "sync"

// Registry is the thread-safe subscription store. Update operations on
// unknown ids are silent no-ops: late-arriving messages for locally
// removed subscriptions are an expected race, not an error.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]*Subscription)}
}

// Register adds or replaces a subscription keyed by its id.
func (r *Registry) Register(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := sub
	r.subs[sub.ID] = &s
}

// Remove deletes a subscription. Unknown ids are a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
}

// Get returns a copy of the subscription for id.
func (r *Registry) Get(id string) (Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subs[id]
	if !ok {
		return Subscription{}, false
	}
	return *s, true
}

// List returns copies of all subscriptions.
func (r *Registry) List() []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		result = append(result, *s)
	}
	return result
}

// Len returns the number of registered subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Clear removes all subscriptions.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = make(map[string]*Subscription)
}

// UpdateOnData records a delivered data frame: the subscription is
// live, its sequence advances, and any error streak ends.
func (r *Registry) UpdateOnData(id string, seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subs[id]; ok {
		s.Active = true
		s.LastSeq = seq
		s.ErrorCount = 0
	}
}

// UpdateOnAck marks the subscription acknowledged by the server.
func (r *Registry) UpdateOnAck(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subs[id]; ok {
		s.Active = true
	}
}

// UpdateOnError increments the subscription's error count.
func (r *Registry) UpdateOnError(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subs[id]; ok {
		s.ErrorCount++
	}
}
