package glctx

import (
	"fmt"
	"strings"
)

// ContextAttributeFlags selects optional buffers.
type ContextAttributeFlags uint8

const (
	Alpha ContextAttributeFlags = 1 << iota
	Depth
	Stencil
)

func (f ContextAttributeFlags) Has(x ContextAttributeFlags) bool { return f&x == x }

func (f *ContextAttributeFlags) Set(x ContextAttributeFlags, on bool) {
	if on {
		*f |= x
	} else {
		*f &^= x
	}
}

func (f ContextAttributeFlags) String() string {
	var names []string
	for _, x := range []struct {
		f ContextAttributeFlags
		n string
	}{{Alpha, "ALPHA"}, {Depth, "DEPTH"}, {Stencil, "STENCIL"}} {
		if f.Has(x.f) {
			names = append(names, x.n)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

type GLVersion struct {
	Major, Minor uint8
}

func (v GLVersion) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// ContextAttributes is a requested (or reconstructed) context configuration.
type ContextAttributes struct {
	Version GLVersion
	Flags   ContextAttributeFlags
}

func (a ContextAttributes) String() string { return fmt.Sprintf("GL %v [%v]", a.Version, a.Flags) }

const (
	alphaSize   = 8
	depthSize   = 24
	stencilSize = 8
)

// sizes returns the fixed buffer sizes requested by the flags.
func (f ContextAttributeFlags) sizes() (alpha, depth, stencil int32) {
	if f.Has(Alpha) {
		alpha = alphaSize
	}
	if f.Has(Depth) {
		depth = depthSize
	}
	if f.Has(Stencil) {
		stencil = stencilSize
	}
	return
}
