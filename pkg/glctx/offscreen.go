package glctx

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// FramebufferAllocator makes GL framebuffer objects in the current context.
type FramebufferAllocator interface {
	CreateFramebuffer(w, h int, depth, stencil bool) (uint32, error)
	DeleteFramebuffer(fbo uint32)
}

// OffscreenSurface is a surface backed by a framebuffer object.
type OffscreenSurface struct {
	id        SurfaceID
	contextID ID
	size      image.Point
	fbo       uint32
	destroyed bool
}

func (s *OffscreenSurface) ContextID() ID { return s.contextID }

func (s *OffscreenSurface) ID() SurfaceID { return s.id }

// Offscreen is a Surfaces implementation for framebuffer object surfaces.
// With a nil allocator surfaces are only bookkept, which is enough when the
// GL side is handled by someone else.
type Offscreen struct {
	mu    sync.Mutex
	fb    FramebufferAllocator
	next  SurfaceID
	alive int
}

func NewOffscreen(fb FramebufferAllocator) *Offscreen { return &Offscreen{fb: fb, next: 1} }

var errNotOffscreen = errors.New("not an offscreen surface")

// Create makes a surface for the context. The context must be current when
// there is an allocator.
func (o *Offscreen) Create(c *Context, size image.Point, depth, stencil bool) (*OffscreenSurface, error) {
	if c.Adopted() {
		return nil, ErrExternalRenderTarget
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("bad surface size %v", size)
	}
	var fbo uint32
	if o.fb != nil {
		var err error
		if fbo, err = o.fb.CreateFramebuffer(size.X, size.Y, depth, stencil); err != nil {
			return nil, fmt.Errorf("surface: %w", err)
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	s := &OffscreenSurface{id: o.next, contextID: c.ID(), size: size, fbo: fbo}
	o.next++
	o.alive++
	return s, nil
}

func (o *Offscreen) Destroy(c *Context, s Surface) error {
	off, ok := s.(*OffscreenSurface)
	if !ok {
		return errNotOffscreen
	}
	if off.contextID != c.ID() {
		return ErrIncompatibleSurface
	}
	if off.destroyed {
		return nil
	}
	if o.fb != nil && off.fbo != 0 {
		o.fb.DeleteFramebuffer(off.fbo)
	}
	off.destroyed = true
	o.mu.Lock()
	o.alive--
	o.mu.Unlock()
	return nil
}

func (o *Offscreen) Info(s Surface) SurfaceInfo {
	off, ok := s.(*OffscreenSurface)
	if !ok {
		return SurfaceInfo{ContextID: s.ContextID()}
	}
	return SurfaceInfo{ID: off.id, ContextID: off.contextID, Size: off.size, FramebufferObject: off.fbo}
}

// Alive returns the number of surfaces created and not destroyed.
func (o *Offscreen) Alive() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.alive
}
