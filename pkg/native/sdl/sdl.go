// Package sdl implements native.API with SDL2 OpenGL contexts.
//
// SDL has no pixel format objects: a pixel format here is a snapshot of the
// SDL GL attributes, applied right before a context is created. Every context
// gets its own hidden 1x1 window to be current with.
package sdl

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/giongto35/glctx/pkg/native"
	"github.com/giongto35/glctx/pkg/thread"
	"github.com/veandco/go-sdl2/sdl"
)

type pixelFormat struct {
	attrs map[native.Attribute]native.Attribute
	refs  int
}

type glContext struct {
	w   *sdl.Window
	ctx sdl.GLContext
	pf  native.PixelFormat
	// borrowed contexts were found current, they're never deleted here.
	borrowed bool
}

type API struct {
	mu       sync.Mutex
	next     uintptr
	formats  map[native.PixelFormat]*pixelFormat
	contexts map[native.Handle]*glContext
	byCtx    map[uintptr]native.Handle
}

// New initializes the SDL video subsystem.
func New() (*API, error) {
	if err := thread.MainMaybeErr(func() error { return sdl.Init(sdl.INIT_VIDEO) }); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}
	return &API{
		formats:  make(map[native.PixelFormat]*pixelFormat),
		contexts: make(map[native.Handle]*glContext),
		byCtx:    make(map[uintptr]native.Handle),
	}, nil
}

// Close shuts SDL down. Contexts still alive become invalid.
func (a *API) Close() { thread.MainMaybe(sdl.Quit) }

// TryInit checks that SDL video can be used on this machine.
func TryInit() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return err
	}
	sdl.Quit()
	return nil
}

func sdlError(op string, err error) *native.Error {
	return &native.Error{Op: op, Code: -1, Msg: err.Error()}
}

func (a *API) nextID() uintptr {
	a.next++
	return a.next
}

// ChoosePixelFormat validates the attributes with SDL.
// SDL can't enumerate formats, there is always exactly one match.
func (a *API) ChoosePixelFormat(attrs []native.Attribute) (native.PixelFormat, int, error) {
	pairs := native.Pairs(attrs)
	if err := thread.MainMaybeErr(func() error { return apply(pairs) }); err != nil {
		return native.NoPixelFormat, 0, sdlError("choose pixel format", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	pf := native.PixelFormat(a.nextID())
	a.formats[pf] = &pixelFormat{attrs: pairs, refs: 1}
	return pf, 1, nil
}

type attrValue struct {
	attr  sdl.GLattr
	value int
}

// apply sets the global SDL GL attributes.
// Must be called on the main thread (thread.MainMaybeErr).
func apply(pairs map[native.Attribute]native.Attribute) error {
	sdl.GLResetAttributes()
	set := []attrValue{
		{sdl.GL_ALPHA_SIZE, int(pairs[native.AttrAlphaSize])},
		{sdl.GL_DEPTH_SIZE, int(pairs[native.AttrDepthSize])},
		{sdl.GL_STENCIL_SIZE, int(pairs[native.AttrStencilSize])},
	}
	switch profile := pairs[native.AttrOpenGLProfile]; profile {
	case native.Profile32Core, native.ProfileGL4:
		major, minor := native.ProfileVersion(profile)
		set = append(set,
			attrValue{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
			attrValue{sdl.GL_CONTEXT_MAJOR_VERSION, int(major)},
			attrValue{sdl.GL_CONTEXT_MINOR_VERSION, int(minor)},
		)
	default:
		set = append(set, attrValue{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_COMPATIBILITY})
	}
	// AttrAllowOfflineRenderers has no SDL counterpart, SDL picks the GPU.
	for _, s := range set {
		if err := sdl.GLSetAttribute(s.attr, s.value); err != nil {
			return fmt.Errorf("attribute %v: %w", s.attr, err)
		}
	}
	return nil
}

func (a *API) DescribePixelFormat(pf native.PixelFormat, attr native.Attribute) (int32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.formats[pf]
	if !ok {
		return 0, &native.Error{Op: "describe pixel format", Code: -1, Msg: "unknown pixel format"}
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
	a.release(pf)
}

func (a *API) release(pf native.PixelFormat) {
	f, ok := a.formats[pf]
	if !ok {
		return
	}
	if f.refs--; f.refs <= 0 {
		delete(a.formats, pf)
	}
}

// CreateContext makes a hidden window and a GL context in it.
// In OSX 10.14+ window creation and context creation must happen in the main thread.
func (a *API) CreateContext(pf native.PixelFormat) (native.Handle, error) {
	a.mu.Lock()
	f, ok := a.formats[pf]
	if !ok {
		a.mu.Unlock()
		return native.NoContext, &native.Error{Op: "create context", Code: -1, Msg: "unknown pixel format"}
	}
	f.refs++
	attrs := f.attrs
	a.mu.Unlock()

	var c glContext
	err := thread.MainMaybeErr(func() error {
		if err := apply(attrs); err != nil {
			return err
		}
		w, err := sdl.CreateWindow("glctx", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
			1, 1, sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
		if err != nil {
			return fmt.Errorf("window: %w", err)
		}
		ctx, err := w.GLCreateContext()
		if err != nil {
			err1 := w.Destroy()
			return fmt.Errorf("gl context: %w, destroy err: %v", err, err1)
		}
		c = glContext{w: w, ctx: ctx, pf: pf}
		return nil
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.release(pf)
		return native.NoContext, sdlError("create context", err)
	}
	h := native.Handle(a.nextID())
	a.contexts[h] = &c
	a.byCtx[ctxKey(c.ctx)] = h
	return h, nil
}

func ctxKey(ctx sdl.GLContext) uintptr { return uintptr(unsafe.Pointer(ctx)) }

func (a *API) DestroyContext(h native.Handle) error {
	a.mu.Lock()
	c, ok := a.contexts[h]
	if ok {
		delete(a.contexts, h)
		delete(a.byCtx, ctxKey(c.ctx))
	}
	a.mu.Unlock()
	if !ok {
		return &native.Error{Op: "destroy context", Code: -1, Msg: "unknown context"}
	}
	if c.borrowed {
		return nil
	}

	var err error
	thread.MainMaybe(func() {
		sdl.GLDeleteContext(c.ctx)
		err = c.w.Destroy()
	})

	a.mu.Lock()
	a.release(c.pf)
	a.mu.Unlock()
	if err != nil {
		return sdlError("destroy window", err)
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
	if h == native.NoContext {
		w, err := sdl.GLGetCurrentWindow()
		if err != nil || w == nil {
			// nothing is current
			return nil
		}
		if err = w.GLMakeCurrent(nil); err != nil {
			return sdlError("make current", err)
		}
		return nil
	}

	a.mu.Lock()
	c, ok := a.contexts[h]
	a.mu.Unlock()
	if !ok {
		return &native.Error{Op: "make current", Code: -1, Msg: "unknown context"}
	}
	if err := c.w.GLMakeCurrent(c.ctx); err != nil {
		return sdlError("make current", err)
	}
	return nil
}

// Current returns the current context of the thread. A context made by
// someone else is registered as borrowed.
func (a *API) Current() native.Handle {
	ctx, err := sdl.GLGetCurrentContext()
	if err != nil || ctx == nil {
		return native.NoContext
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if h, ok := a.byCtx[ctxKey(ctx)]; ok {
		return h
	}
	w, err := sdl.GLGetCurrentWindow()
	if err != nil {
		return native.NoContext
	}
	h := native.Handle(a.nextID())
	a.contexts[h] = &glContext{w: w, ctx: ctx, borrowed: true}
	a.byCtx[ctxKey(ctx)] = h
	return h
}

func (a *API) ProcAddress(name string) unsafe.Pointer { return sdl.GLGetProcAddress(name) }
