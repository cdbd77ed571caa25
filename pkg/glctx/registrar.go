package glctx

import (
	"sort"
	"sync"
)

// ID identifies a context. IDs are unique among live contexts.
type ID uint64

// Registrar serializes context creation and hands out context IDs.
//
// The native pixel format and context creation calls are not thread-safe,
// so every creation (and adoption) on a process must go through one Registrar.
// Tests can use their own.
type Registrar struct {
	mu   sync.Mutex
	next ID

	lmu  sync.Mutex
	live map[ID]struct{}
}

func NewRegistrar() *Registrar { return &Registrar{live: make(map[ID]struct{})} }

var defaultRegistrar = NewRegistrar()

// DefaultRegistrar is the process wide registrar used by connections
// that were not given one.
func DefaultRegistrar() *Registrar { return defaultRegistrar }

// register runs fn under the creation lock with the ID the new context gets.
// The ID is consumed only when fn succeeds.
func (r *Registrar) register(fn func(id ID) error) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	if err := fn(id); err != nil {
		return 0, err
	}
	r.next++

	r.lmu.Lock()
	r.live[id] = struct{}{}
	r.lmu.Unlock()
	return id, nil
}

// release forgets a destroyed context. It does not take the creation lock.
func (r *Registrar) release(id ID) {
	r.lmu.Lock()
	delete(r.live, id)
	r.lmu.Unlock()
}

// Live returns the IDs of contexts that are not destroyed yet, ascending.
func (r *Registrar) Live() []ID {
	r.lmu.Lock()
	ids := make([]ID, 0, len(r.live))
	for id := range r.live {
		ids = append(ids, id)
	}
	r.lmu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registrar) Len() int {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	return len(r.live)
}
