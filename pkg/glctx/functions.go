package glctx

import (
	"sync"
	"unsafe"

	"github.com/giongto35/glctx/pkg/thread"
)

// Functions is the part of the GL function table the context layer calls.
type Functions interface {
	Flush()
}

// FunctionLoader builds a function table from a symbol resolver.
type FunctionLoader func(resolve func(name string) unsafe.Pointer) (Functions, error)

type noFunctions struct{}

func (noFunctions) Flush() {}

// FunctionRegistry caches one function table per OS thread.
// The table is loaded on first use on a thread and reused after.
type FunctionRegistry struct {
	mu     sync.Mutex
	load   FunctionLoader
	tid    func() uint64
	tables map[uint64]Functions
}

// NewFunctionRegistry makes a registry keyed by the caller OS thread.
// A nil loader gives tables that do nothing.
func NewFunctionRegistry(load FunctionLoader) *FunctionRegistry {
	return newFunctionRegistry(load, thread.ID)
}

func newFunctionRegistry(load FunctionLoader, tid func() uint64) *FunctionRegistry {
	if load == nil {
		load = func(func(string) unsafe.Pointer) (Functions, error) { return noFunctions{}, nil }
	}
	return &FunctionRegistry{load: load, tid: tid, tables: make(map[uint64]Functions)}
}

// Get returns the table of the calling thread, loading it with resolve if needed.
func (r *FunctionRegistry) Get(resolve func(name string) unsafe.Pointer) (Functions, error) {
	id := r.tid()

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.tables[id]; ok {
		return f, nil
	}
	f, err := r.load(resolve)
	if err != nil {
		return nil, err
	}
	r.tables[id] = f
	return f, nil
}

// Loaded returns the number of threads with a cached table.
func (r *FunctionRegistry) Loaded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}
