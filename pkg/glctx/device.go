package glctx

import (
	"errors"
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"github.com/giongto35/glctx/pkg/logger"
	"github.com/giongto35/glctx/pkg/native"
)

// Device creates and destroys contexts on one adapter.
//
// Devices are not safe for concurrent use, same as contexts. Different devices
// of a connection may be used from different threads.
type Device struct {
	conn    *Connection
	adapter Adapter
	log     *logger.Logger
}

func (d *Device) Adapter() Adapter { return d.adapter }

func (d *Device) Connection() *Connection { return d.conn }

// CreateContextDescriptor chooses a pixel format for the attributes.
//
// The GL major version picks one of three profile tiers: 4 and above gets the
// 4.1 core profile, 3 the 3.2 core profile and the rest the legacy profile.
// There is no fallback when the hardware doesn't support the tier.
func (d *Device) CreateContextDescriptor(attrs ContextAttributes) (*ContextDescriptor, error) {
	profile := native.ProfileFor(attrs.Version.Major)
	alpha, depth, stencil := attrs.Flags.sizes()

	pfa := []native.Attribute{
		native.AttrOpenGLProfile, profile,
		native.AttrAlphaSize, native.Attribute(alpha),
		native.AttrDepthSize, native.Attribute(depth),
		native.AttrStencilSize, native.Attribute(stencil),
	}
	if d.adapter.LowPower {
		pfa = append(pfa, native.AttrAllowOfflineRenderers)
	}
	pfa = append(pfa, native.AttrEnd, native.AttrEnd)

	pf, n, err := d.conn.api.ChoosePixelFormat(pfa)
	if err != nil {
		d.conn.metrics.fail("choose_pixel_format")
		return nil, fmt.Errorf("%w: %w", ErrPixelFormatSelectionFailed, err)
	}
	if n == 0 {
		return nil, ErrNoPixelFormatFound
	}
	d.log.Debug().Msgf("pixel format %#x for %v (profile %#x)", uintptr(pf), attrs, int32(profile))
	return newContextDescriptor(d.conn.api, pf), nil
}

// CreateContext creates a context and makes it current on the calling thread.
//
// The context must be destroyed with DestroyContext when it is no longer
// needed. The first context made on a thread also loads the GL functions
// for that thread.
func (d *Device) CreateContext(desc *ContextDescriptor) (*Context, error) {
	api := d.conn.api
	start := time.Now()

	var h native.Handle
	id, err := d.conn.reg.register(func(id ID) error {
		var err error
		if h, err = api.CreateContext(desc.pf); err != nil {
			d.conn.metrics.fail("create_context")
			return fmt.Errorf("%w: %w", ErrContextCreationFailed, err)
		}
		if err = api.SetCurrent(h); err != nil {
			d.conn.metrics.fail("make_current")
			if derr := api.DestroyContext(h); derr != nil {
				d.log.Error().Err(derr).Msgf("couldn't destroy the context %#x", uintptr(h))
			}
			return fmt.Errorf("%w: %w", ErrMakeCurrentFailed, err)
		}
		if _, err = d.conn.funcs.Get(api.ProcAddress); err != nil {
			d.conn.metrics.fail("load_functions")
			_ = api.SetCurrent(native.NoContext)
			if derr := api.DestroyContext(h); derr != nil {
				d.log.Error().Err(derr).Msgf("couldn't destroy the context %#x", uintptr(h))
			}
			return fmt.Errorf("%w: gl functions: %w", ErrContextCreationFailed, err)
		}
		return nil
	})
	runtime.KeepAlive(desc)
	if err != nil {
		d.log.Error().Err(err).Msg("context creation failed")
		return nil, err
	}

	c := &Context{native: nativeContext{kind: owned, h: h}, id: id}
	d.track(c)
	d.conn.metrics.created.Inc()
	d.conn.metrics.live.Set(float64(d.conn.reg.Len()))
	d.conn.metrics.creation.Observe(time.Since(start).Seconds())
	d.log.Debug().Uint64("ctx", uint64(id)).Msgf("context created %#x", uintptr(h))
	return c, nil
}

// track arms the leak check of a context.
func (d *Device) track(c *Context) {
	onLeak := d.conn.onLeak
	runtime.SetFinalizer(c, func(c *Context) {
		if !c.native.destroyed() {
			onLeak(c.id)
		}
	})
}

// DestroyContext destroys a context and the surface bound to it, if any.
// Destroying a destroyed context does nothing.
//
// Adopted contexts are only forgotten, their native context stays alive.
func (d *Device) DestroyContext(c *Context) error {
	if c.native.destroyed() {
		return nil
	}

	if c.framebuffer.state == FramebufferSurface {
		s := c.framebuffer.take()
		if err := d.conn.surfaces.Destroy(c, s); err != nil {
			c.framebuffer.bind(s)
			return err
		}
	}

	h, kind := c.native.h, c.native.kind
	err := c.native.destroy(d.conn.api)
	runtime.SetFinalizer(c, nil)
	d.conn.reg.release(c.id)
	d.conn.metrics.destroyed.Inc()
	d.conn.metrics.live.Set(float64(d.conn.reg.Len()))
	if err != nil {
		d.conn.metrics.fail("destroy_context")
		d.log.Error().Err(err).Uint64("ctx", uint64(c.id)).Msg("native context destroy failed")
		return fmt.Errorf("destroy context %d: %w", c.id, err)
	}
	d.log.Debug().Uint64("ctx", uint64(c.id)).Msgf("%v context destroyed %#x", kind, uintptr(h))
	return nil
}

// WithContext creates a context, runs fn with it and destroys it after,
// whatever fn returns.
func (d *Device) WithContext(desc *ContextDescriptor, fn func(c *Context) error) error {
	c, err := d.CreateContext(desc)
	if err != nil {
		return err
	}
	ferr := fn(c)
	return errors.Join(ferr, d.DestroyContext(c))
}

// ContextDescriptor returns the descriptor the context was created with.
// The caller owns the returned reference.
func (d *Device) ContextDescriptor(c *Context) *ContextDescriptor {
	api := d.conn.api
	pf := api.ContextPixelFormat(c.native.handle())
	return newContextDescriptor(api, api.RetainPixelFormat(pf))
}

// MakeContextCurrent makes the context current on the calling thread.
//
// The caller goroutine should be locked to its OS thread.
func (d *Device) MakeContextCurrent(c *Context) error {
	if err := d.conn.api.SetCurrent(c.native.handle()); err != nil {
		d.conn.metrics.fail("make_current")
		return fmt.Errorf("%w: %w", ErrMakeCurrentFailed, err)
	}
	return nil
}

// MakeNoContextCurrent leaves the calling thread without a current context.
func (d *Device) MakeNoContextCurrent() error {
	if err := d.conn.api.SetCurrent(native.NoContext); err != nil {
		d.conn.metrics.fail("make_current")
		return fmt.Errorf("%w: %w", ErrMakeCurrentFailed, err)
	}
	return nil
}

// TemporarilyMakeContextCurrent makes the context current until the returned
// guard is released. Releasing it restores the context that was current before.
func (d *Device) TemporarilyMakeContextCurrent(c *Context) (*CurrentContextGuard, error) {
	g := newCurrentContextGuard(d.conn.api, d.log)
	if err := d.MakeContextCurrent(c); err != nil {
		_ = g.Release()
		return nil, err
	}
	return g, nil
}

// BindSurfaceToContext attaches a surface made for this context.
// Once the context is current, rendering goes to the surface.
// A destroyed context takes no surface: nothing would destroy it.
func (d *Device) BindSurfaceToContext(c *Context, s Surface) error {
	if c.native.destroyed() {
		return ErrContextDestroyed
	}
	switch c.framebuffer.state {
	case FramebufferExternal:
		return ErrExternalRenderTarget
	case FramebufferSurface:
		return ErrSurfaceAlreadyBound
	}
	if s.ContextID() != c.id {
		return ErrIncompatibleSurface
	}
	c.framebuffer.bind(s)
	return nil
}

// UnbindSurfaceFromContext detaches the surface of the context and returns it,
// nil if there was none.
//
// All rendering to the surface is flushed before it's returned.
func (d *Device) UnbindSurfaceFromContext(c *Context) (Surface, error) {
	switch c.framebuffer.state {
	case FramebufferExternal:
		return nil, ErrExternalRenderTarget
	case FramebufferNone:
		return nil, nil
	}

	s := c.framebuffer.take()
	g, err := d.TemporarilyMakeContextCurrent(c)
	if err != nil {
		c.framebuffer.bind(s)
		return nil, err
	}
	defer func() { _ = g.Release() }()

	fns, err := d.conn.funcs.Get(d.conn.api.ProcAddress)
	if err != nil {
		c.framebuffer.bind(s)
		return nil, fmt.Errorf("gl functions: %w", err)
	}
	// TODO: wait on a fence (glClientWaitSync) instead of a flush.
	fns.Flush()
	return s, nil
}

// ContextSurfaceInfo describes the surface bound to the context, nil if none.
func (d *Device) ContextSurfaceInfo(c *Context) (*SurfaceInfo, error) {
	switch c.framebuffer.state {
	case FramebufferExternal:
		return nil, ErrExternalRenderTarget
	case FramebufferSurface:
		info := d.conn.surfaces.Info(c.framebuffer.surface)
		return &info, nil
	}
	return nil, nil
}

// ContextDescriptorAttributes reconstructs the attributes of a descriptor.
//
// The GL version comes back as the lowest version of the profile tier,
// not as the one requested: 3.3 reads as 3.2, 4.6 as 4.1 and 2.1 as 1.0.
func (d *Device) ContextDescriptorAttributes(desc *ContextDescriptor) ContextAttributes {
	get := func(attr native.Attribute) int32 {
		v, err := d.conn.api.DescribePixelFormat(desc.pf, attr)
		if err != nil {
			d.log.Warn().Err(err).Msgf("couldn't describe pixel format attribute %v", attr)
		}
		return v
	}
	alpha, depth, stencil := get(native.AttrAlphaSize), get(native.AttrDepthSize), get(native.AttrStencilSize)
	profile := get(native.AttrOpenGLProfile)
	runtime.KeepAlive(desc)

	var flags ContextAttributeFlags
	flags.Set(Alpha, alpha != 0)
	flags.Set(Depth, depth != 0)
	flags.Set(Stencil, stencil != 0)

	major, minor := native.ProfileVersion(native.Attribute(profile))
	return ContextAttributes{Version: GLVersion{Major: major, Minor: minor}, Flags: flags}
}

// GetProcAddress resolves a GL symbol for the context.
// The name includes the gl prefix. Reload symbols when switching contexts.
func (d *Device) GetProcAddress(_ *Context, name string) unsafe.Pointer {
	return d.conn.api.ProcAddress(name)
}

// ContextID returns the ID of the context.
//
// IDs are unique among live contexts and never handed out twice by a registrar.
func (d *Device) ContextID(c *Context) ID { return c.id }

// FromCurrentContext wraps the context current on the calling thread, created
// outside of this package, and opens a device on the default adapter.
//
// The native context is borrowed: the caller keeps it alive as long as the
// returned context is used, and DestroyContext only forgets it. Its render
// target is opaque, so every surface operation on it fails with
// ErrExternalRenderTarget.
func FromCurrentContext(conn *Connection) (*Device, *Context, error) {
	var h native.Handle
	id, err := conn.reg.register(func(ID) error {
		if h = conn.api.Current(); h == native.NoContext {
			return ErrNoCurrentContext
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	c := &Context{
		native:      nativeContext{kind: external, h: h},
		id:          id,
		framebuffer: framebuffer{state: FramebufferExternal},
	}

	a, err := conn.CreateAdapter()
	if err == nil {
		var d *Device
		if d, err = conn.CreateDevice(a); err == nil {
			d.track(c)
			conn.metrics.adopted.Inc()
			conn.metrics.live.Set(float64(conn.reg.Len()))
			d.log.Debug().Uint64("ctx", uint64(id)).Msgf("adopted context %#x", uintptr(h))
			return d, c, nil
		}
	}
	conn.reg.release(id)
	return nil, nil, err
}
