// Package glfw implements native.API with GLFW.
//
// In GLFW a context always comes with a window, so each context is a hidden
// 1x1 window created with the window hints of its pixel format.
package glfw

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/giongto35/glctx/pkg/native"
	"github.com/giongto35/glctx/pkg/thread"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type pixelFormat struct {
	attrs map[native.Attribute]native.Attribute
	refs  int
}

type window struct {
	w        *glfw.Window
	pf       native.PixelFormat
	borrowed bool
}

type API struct {
	mu       sync.Mutex
	next     uintptr
	formats  map[native.PixelFormat]*pixelFormat
	windows  map[native.Handle]*window
	byWindow map[*glfw.Window]native.Handle
}

// New initializes GLFW.
// Uses main thread lock (see pkg/thread).
func New() (*API, error) {
	if err := thread.MainMaybeErr(glfw.Init); err != nil {
		return nil, fmt.Errorf("glfw: %w", err)
	}
	return &API{
		formats:  make(map[native.PixelFormat]*pixelFormat),
		windows:  make(map[native.Handle]*window),
		byWindow: make(map[*glfw.Window]native.Handle),
	}, nil
}

func (a *API) Close() { thread.MainMaybe(glfw.Terminate) }

// glfwError turns a GLFW error, returned or panicked, into a native one.
func glfwError(op string, err error) *native.Error {
	var gerr *glfw.Error
	if errors.As(err, &gerr) {
		return &native.Error{Op: op, Code: int(gerr.Code), Msg: gerr.Desc}
	}
	return &native.Error{Op: op, Code: -1, Msg: err.Error()}
}

// catch runs a GLFW call that reports errors with panics.
func catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	f()
	return nil
}

func (a *API) nextID() uintptr {
	a.next++
	return a.next
}

// ChoosePixelFormat records the window hints, GLFW has no way to check them
// before a window is made.
func (a *API) ChoosePixelFormat(attrs []native.Attribute) (native.PixelFormat, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pf := native.PixelFormat(a.nextID())
	a.formats[pf] = &pixelFormat{attrs: native.Pairs(attrs), refs: 1}
	return pf, 1, nil
}

func hints(pairs map[native.Attribute]native.Attribute) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.AlphaBits, int(pairs[native.AttrAlphaSize]))
	glfw.WindowHint(glfw.DepthBits, int(pairs[native.AttrDepthSize]))
	glfw.WindowHint(glfw.StencilBits, int(pairs[native.AttrStencilSize]))
	switch profile := pairs[native.AttrOpenGLProfile]; profile {
	case native.Profile32Core, native.ProfileGL4:
		major, minor := native.ProfileVersion(profile)
		glfw.WindowHint(glfw.ContextVersionMajor, int(major))
		glfw.WindowHint(glfw.ContextVersionMinor, int(minor))
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	default:
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLAnyProfile)
	}
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

// CreateContext creates a hidden window with its context.
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

	var w *glfw.Window
	err := thread.MainMaybeErr(func() error {
		return catch(func() {
			hints(attrs)
			var err error
			if w, err = glfw.CreateWindow(1, 1, "glctx", nil, nil); err != nil {
				panic(err)
			}
		})
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.release(pf)
		return native.NoContext, glfwError("create context", err)
	}
	h := native.Handle(a.nextID())
	a.windows[h] = &window{w: w, pf: pf}
	a.byWindow[w] = h
	return h, nil
}

func (a *API) DestroyContext(h native.Handle) error {
	a.mu.Lock()
	win, ok := a.windows[h]
	if ok {
		delete(a.windows, h)
		delete(a.byWindow, win.w)
	}
	a.mu.Unlock()
	if !ok {
		return &native.Error{Op: "destroy context", Code: -1, Msg: "unknown context"}
	}
	if win.borrowed {
		return nil
	}

	err := thread.MainMaybeErr(func() error { return catch(win.w.Destroy) })
	a.mu.Lock()
	a.release(win.pf)
	a.mu.Unlock()
	if err != nil {
		return glfwError("destroy context", err)
	}
	return nil
}

func (a *API) ContextPixelFormat(h native.Handle) native.PixelFormat {
	a.mu.Lock()
	defer a.mu.Unlock()
	if win, ok := a.windows[h]; ok {
		return win.pf
	}
	return native.NoPixelFormat
}

func (a *API) SetCurrent(h native.Handle) error {
	if h == native.NoContext {
		if err := catch(glfw.DetachCurrentContext); err != nil {
			return glfwError("make current", err)
		}
		return nil
	}
	a.mu.Lock()
	win, ok := a.windows[h]
	a.mu.Unlock()
	if !ok {
		return &native.Error{Op: "make current", Code: -1, Msg: "unknown context"}
	}
	if err := catch(win.w.MakeContextCurrent); err != nil {
		return glfwError("make current", err)
	}
	return nil
}

// Current returns the context current on the thread. Windows made by
// someone else are registered as borrowed.
func (a *API) Current() native.Handle {
	w := glfw.GetCurrentContext()
	if w == nil {
		return native.NoContext
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if h, ok := a.byWindow[w]; ok {
		return h
	}
	h := native.Handle(a.nextID())
	a.windows[h] = &window{w: w, borrowed: true}
	a.byWindow[w] = h
	return h
}

func (a *API) ProcAddress(name string) unsafe.Pointer { return glfw.GetProcAddress(name) }
