package bridge

import (
	"sync"

	"github.com/reglet-dev/compute-bridge/domain/entities"
)

// handleRegistry maps host handles to native state. Handles are never
// reused, so a stale handle cannot resolve to another context.
type handleRegistry struct {
	states map[entities.Handle]*contextState
	mu     sync.Mutex
	next   entities.Handle
}

var states = newHandleRegistry()

func newHandleRegistry() *handleRegistry {
	return &handleRegistry{states: make(map[entities.Handle]*contextState)}
}

func (r *handleRegistry) add(s *contextState) entities.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.states[r.next] = s
	return r.next
}

func (r *handleRegistry) get(h entities.Handle) (*contextState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[h]
	return s, ok
}

func (r *handleRegistry) remove(h entities.Handle) (*contextState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[h]
	delete(r.states, h)
	return s, ok
}

func (r *handleRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
