package glctx

import "image"

// Surface is a drawable render target. It belongs to exactly one context.
type Surface interface {
	// ContextID is the ID of the context the surface was created for.
	ContextID() ID
}

type SurfaceID uint64

type SurfaceInfo struct {
	ID        SurfaceID
	ContextID ID
	Size      image.Point
	// FramebufferObject is the GL framebuffer to render to, 0 for the default one.
	FramebufferObject uint32
}

// Surfaces is the surface subsystem.
type Surfaces interface {
	// Destroy releases a surface unbound from the context.
	Destroy(c *Context, s Surface) error
	Info(s Surface) SurfaceInfo
}
