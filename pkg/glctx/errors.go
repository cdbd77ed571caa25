package glctx

import "errors"

var (
	ErrPixelFormatSelectionFailed = errors.New("pixel format selection failed")
	ErrNoPixelFormatFound         = errors.New("no pixel format found")
	ErrContextCreationFailed      = errors.New("context creation failed")
	ErrMakeCurrentFailed          = errors.New("make current failed")
	// ErrExternalRenderTarget is returned by surface operations on a context
	// whose render target is owned by someone else.
	ErrExternalRenderTarget = errors.New("external render target")
	ErrSurfaceAlreadyBound  = errors.New("surface already bound")
	ErrIncompatibleSurface  = errors.New("incompatible surface")
	ErrNoCurrentContext     = errors.New("no current context")
	ErrContextDestroyed     = errors.New("context destroyed")
)
