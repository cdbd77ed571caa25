// Package fake is an in-memory native.API used by tests and dry runs.
package fake

import (
	"sync"
	"unsafe"

	"github.com/giongto35/glctx/pkg/native"
)

type pixelFormat struct {
	attrs map[native.Attribute]native.Attribute
	refs  int
}

type context struct {
	pf        native.PixelFormat
	destroyed bool
}

// API keeps pixel formats and contexts in maps.
// The current context is process wide here, tests drive it from one goroutine.
type API struct {
	mu sync.Mutex

	next     uintptr
	formats  map[native.PixelFormat]*pixelFormat
	contexts map[native.Handle]*context
	current  native.Handle

	// Injected failures, checked before doing any work.
	ChooseErr     *native.Error
	NoMatch       bool
	CreateErr     *native.Error
	SetCurrentErr *native.Error
	// FailSetCurrentOn fails only SetCurrent calls targeting this handle.
	FailSetCurrentOn native.Handle

	Destroyed  map[native.Handle]int
	SetCalls   int
	LastChosen []native.Attribute
	Symbols    map[string]unsafe.Pointer
}

func New() *API {
	return &API{
		next:      0x1000,
		formats:   make(map[native.PixelFormat]*pixelFormat),
		contexts:  make(map[native.Handle]*context),
		Destroyed: make(map[native.Handle]int),
		Symbols:   make(map[string]unsafe.Pointer),
	}
}

func (a *API) id() uintptr { a.next += 0x10; return a.next }

func (a *API) ChoosePixelFormat(attrs []native.Attribute) (native.PixelFormat, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.LastChosen = append([]native.Attribute(nil), attrs...)
	if a.ChooseErr != nil {
		return native.NoPixelFormat, 0, a.ChooseErr
	}
	if a.NoMatch {
		return native.NoPixelFormat, 0, nil
	}
	pf := native.PixelFormat(a.id())
	a.formats[pf] = &pixelFormat{attrs: native.Pairs(attrs), refs: 1}
	return pf, 1, nil
}

func (a *API) DescribePixelFormat(pf native.PixelFormat, attr native.Attribute) (int32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.formats[pf]
	if !ok || f.refs == 0 {
		return 0, &native.Error{Op: "describe pixel format", Code: 10004, Msg: "bad pixel format"}
	}
	return int32(f.attrs[attr]), nil
}

func (a *API) RetainPixelFormat(pf native.PixelFormat) native.PixelFormat {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.formats[pf]; ok {
		f.refs++
	}
	return pf
}

func (a *API) ReleasePixelFormat(pf native.PixelFormat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.formats[pf]; ok && f.refs > 0 {
		f.refs--
	}
}

// Refs returns the reference count of a pixel format.
func (a *API) Refs(pf native.PixelFormat) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.formats[pf]; ok {
		return f.refs
	}
	return 0
}

func (a *API) CreateContext(pf native.PixelFormat) (native.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.CreateErr != nil {
		return native.NoContext, a.CreateErr
	}
	f, ok := a.formats[pf]
	if !ok || f.refs == 0 {
		return native.NoContext, &native.Error{Op: "create context", Code: 10004, Msg: "bad pixel format"}
	}
	f.refs++
	h := native.Handle(a.id())
	a.contexts[h] = &context{pf: pf}
	return h, nil
}

func (a *API) DestroyContext(h native.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Destroyed[h]++
	c, ok := a.contexts[h]
	if !ok || c.destroyed {
		return &native.Error{Op: "destroy context", Code: 10006, Msg: "bad context"}
	}
	c.destroyed = true
	if f, ok := a.formats[c.pf]; ok && f.refs > 0 {
		f.refs--
	}
	if a.current == h {
		a.current = native.NoContext
	}
	return nil
}

func (a *API) ContextPixelFormat(h native.Handle) native.PixelFormat {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.contexts[h]; ok {
		return c.pf
	}
	return native.NoPixelFormat
}

func (a *API) SetCurrent(h native.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.SetCalls++
	if a.SetCurrentErr != nil {
		return a.SetCurrentErr
	}
	if h != native.NoContext && h == a.FailSetCurrentOn {
		return &native.Error{Op: "set current", Code: 10006, Msg: "bad context"}
	}
	if h != native.NoContext {
		if c, ok := a.contexts[h]; !ok || c.destroyed {
			return &native.Error{Op: "set current", Code: 10006, Msg: "bad context"}
		}
	}
	a.current = h
	return nil
}

func (a *API) Current() native.Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *API) ProcAddress(name string) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Symbols[name]
}

// Adopt registers a context created "elsewhere" and makes it current,
// as a foreign toolkit would before handing control over.
func (a *API) Adopt() native.Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := native.Handle(a.id())
	a.contexts[h] = &context{}
	a.current = h
	return h
}

// Live reports whether the native context exists and is not destroyed.
func (a *API) Live(h native.Handle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.contexts[h]
	return ok && !c.destroyed
}
