package glctx

import (
	"runtime"
	"sync/atomic"

	"github.com/giongto35/glctx/pkg/native"
)

// ContextDescriptor is a pixel format: the immutable configuration contexts
// are created from. Descriptors are safe to share between goroutines.
//
// Each value holds one native reference. Clone takes another one, Release
// gives it back. A descriptor that is never released is released by the GC,
// so methods using pf keep the descriptor alive until their native call returns.
type ContextDescriptor struct {
	api      native.API
	pf       native.PixelFormat
	released atomic.Bool
}

func newContextDescriptor(api native.API, pf native.PixelFormat) *ContextDescriptor {
	d := &ContextDescriptor{api: api, pf: pf}
	runtime.SetFinalizer(d, (*ContextDescriptor).Release)
	return d
}

// Clone returns a new reference to the same pixel format.
func (d *ContextDescriptor) Clone() *ContextDescriptor {
	if d.released.Load() {
		panic("glctx: clone of a released context descriptor")
	}
	c := newContextDescriptor(d.api, d.api.RetainPixelFormat(d.pf))
	runtime.KeepAlive(d)
	return c
}

// Release drops this reference. It is safe to call more than once.
func (d *ContextDescriptor) Release() {
	if !d.released.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(d, nil)
	d.api.ReleasePixelFormat(d.pf)
}

func (d *ContextDescriptor) PixelFormat() native.PixelFormat { return d.pf }
