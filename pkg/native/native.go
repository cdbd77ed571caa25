// Package native describes the narrow surface of a platform GL windowing API
// (CGL, SDL, GLFW...) that the context layer consumes.
// Implementations live in the sub-packages.
package native

import (
	"fmt"
	"unsafe"
)

type (
	// Handle is an opaque native rendering context handle.
	Handle uintptr
	// PixelFormat is an opaque, reference counted native pixel format handle.
	PixelFormat uintptr
	// Attribute is a pixel format attribute key or value.
	Attribute int32
)

const (
	NoContext     Handle      = 0
	NoPixelFormat PixelFormat = 0
)

// Pixel format attribute keys.
const (
	AttrEnd                   Attribute = 0
	AttrAlphaSize             Attribute = 11
	AttrDepthSize             Attribute = 12
	AttrStencilSize           Attribute = 13
	AttrAllowOfflineRenderers Attribute = 96
	AttrOpenGLProfile         Attribute = 99
)

// OpenGL profile tiers, encoded as 0xMm00 where M and m are the lowest
// major and minor GL versions the tier guarantees.
const (
	ProfileLegacy Attribute = 0x1000
	Profile32Core Attribute = 0x3200
	ProfileGL4    Attribute = 0x4100
)

// API is a native GL windowing API.
//
// All calls that touch the current context affect the calling OS thread only.
// ChoosePixelFormat and CreateContext are not safe for concurrent use,
// callers serialize them.
type API interface {
	// ChoosePixelFormat selects a pixel format matching the AttrEnd terminated
	// list of key/value pairs and returns the number of matching formats.
	ChoosePixelFormat(attrs []Attribute) (PixelFormat, int, error)
	DescribePixelFormat(pf PixelFormat, attr Attribute) (int32, error)
	RetainPixelFormat(pf PixelFormat) PixelFormat
	ReleasePixelFormat(pf PixelFormat)

	CreateContext(pf PixelFormat) (Handle, error)
	DestroyContext(h Handle) error
	// ContextPixelFormat returns the pixel format the context was created with
	// without retaining it.
	ContextPixelFormat(h Handle) PixelFormat

	// SetCurrent makes h current on the calling thread, NoContext clears it.
	SetCurrent(h Handle) error
	Current() Handle

	// ProcAddress resolves a GL symbol, the name includes the gl prefix.
	ProcAddress(name string) unsafe.Pointer
}

// Error is a failed native call.
type Error struct {
	Op   string
	Code int
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: native error 0x%x", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: native error 0x%x (%s)", e.Op, e.Code, e.Msg)
}

// ProfileVersion decodes the GL version a profile tier stands for.
func ProfileVersion(profile Attribute) (major, minor uint8) {
	return uint8((profile >> 12) & 0xf), uint8((profile >> 8) & 0xf)
}

// ProfileFor maps a requested GL major version to a profile tier.
// There is no downgrade path.
func ProfileFor(major uint8) Attribute {
	switch {
	case major >= 4:
		return ProfileGL4
	case major == 3:
		return Profile32Core
	default:
		return ProfileLegacy
	}
}

// Pairs splits an AttrEnd terminated attribute list into a key/value map.
// Keys without a value (AttrAllowOfflineRenderers) map to 1.
func Pairs(attrs []Attribute) map[Attribute]Attribute {
	out := make(map[Attribute]Attribute, len(attrs)/2)
	for i := 0; i < len(attrs); i++ {
		k := attrs[i]
		if k == AttrEnd {
			break
		}
		if k == AttrAllowOfflineRenderers {
			out[k] = 1
			continue
		}
		if i+1 < len(attrs) {
			out[k] = attrs[i+1]
		}
		i++
	}
	return out
}
