package glctx

// FramebufferState tells what a context renders into.
type FramebufferState uint8

const (
	// FramebufferNone means no surface is bound.
	FramebufferNone FramebufferState = iota
	// FramebufferExternal is the render target of an adopted context.
	// It is managed elsewhere and surfaces can't be bound or unbound.
	FramebufferExternal
	// FramebufferSurface means exactly one surface is bound.
	FramebufferSurface
)

func (s FramebufferState) String() string {
	switch s {
	case FramebufferNone:
		return "none"
	case FramebufferExternal:
		return "external"
	case FramebufferSurface:
		return "surface"
	}
	return "unknown"
}

type framebuffer struct {
	state   FramebufferState
	surface Surface
}

func (f *framebuffer) bind(s Surface) { *f = framebuffer{state: FramebufferSurface, surface: s} }

// take moves the bound surface out and leaves the slot empty.
func (f *framebuffer) take() Surface {
	s := f.surface
	*f = framebuffer{}
	return s
}
