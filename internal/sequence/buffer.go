// Package sequence reorders per-subscription data frames by sequence
// number, absorbing duplicates and buffering past gaps until the
// missing frame arrives.
package sequence

import (
	"encoding/json"
	"sync"
)

// Buffer tracks ordering state per subscription id.
type Buffer struct {
	mu   sync.Mutex
	subs map[string]*entry
}

type entry struct {
	lastSeq uint64
	// pending holds out-of-order frames keyed by seq. Every key is
	// greater than lastSeq.
	pending map[uint64]json.RawMessage
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{subs: make(map[string]*entry)}
}

// Process applies a frame for id. It returns (payload, true) when the
// frame advances the contiguous sequence; if buffered frames become
// contiguous in the same call they are folded in and the payload of the
// highest applied seq is returned (last value wins in a catch-up
// burst). Frames beyond the next expected seq are buffered and return
// false; frames at or below the last applied seq are dropped.
func (b *Buffer) Process(id string, seq uint64, payload json.RawMessage) (json.RawMessage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.subs[id]
	if !ok {
		e = &entry{pending: make(map[uint64]json.RawMessage)}
		b.subs[id] = e
	}

	switch {
	case seq == e.lastSeq+1:
		e.lastSeq = seq
		result := payload
		for {
			next, ok := e.pending[e.lastSeq+1]
			if !ok {
				break
			}
			delete(e.pending, e.lastSeq+1)
			e.lastSeq++
			result = next
		}
		return result, true

	case seq > e.lastSeq+1:
		e.pending[seq] = payload
		return nil, false

	default:
		// Duplicate or stale.
		return nil, false
	}
}

// LastSeq returns the highest contiguously applied seq for id, 0 if
// the id is unknown.
func (b *Buffer) LastSeq(id string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.subs[id]; ok {
		return e.lastSeq
	}
	return 0
}

// PendingCount returns the number of buffered out-of-order frames for
// id.
func (b *Buffer) PendingCount(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.subs[id]; ok {
		return len(e.pending)
	}
	return 0
}

// Clear drops all state for id.
func (b *Buffer) Clear(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// ClearAll drops state for every subscription.
func (b *Buffer) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string]*entry)
}
