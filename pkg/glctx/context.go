package glctx

// Context is a GL context.
//
// Contexts must be destroyed explicitly with Device.DestroyContext.
// A context that is garbage collected while still alive is a leak and,
// by default, crashes the program.
//
// A context is not safe for concurrent use.
type Context struct {
	native      nativeContext
	id          ID
	framebuffer framebuffer
}

func (c *Context) ID() ID { return c.id }

// Destroyed reports whether the context has been destroyed.
func (c *Context) Destroyed() bool { return c.native.destroyed() }

// Adopted reports whether the context wraps a native context created elsewhere.
func (c *Context) Adopted() bool { return c.native.kind == external }

func (c *Context) Framebuffer() FramebufferState { return c.framebuffer.state }
