package glctx

import (
	"fmt"

	"github.com/giongto35/glctx/pkg/native"
)

type nativeKind uint8

const (
	// owned contexts were created by us and are destroyed with the native API.
	owned nativeKind = iota
	// external contexts were current when adopted, somebody else owns them.
	external
)

func (k nativeKind) String() string {
	if k == external {
		return "external"
	}
	return "owned"
}

// nativeContext is the native handle of a context.
// A destroyed context has the NoContext handle.
type nativeContext struct {
	kind nativeKind
	h    native.Handle
}

func (n *nativeContext) destroyed() bool { return n.h == native.NoContext }

func (n *nativeContext) handle() native.Handle {
	if n.destroyed() {
		panic("glctx: use of a destroyed context")
	}
	return n.h
}

// destroy releases the handle. Destroying twice is a bug in the caller.
func (n *nativeContext) destroy(api native.API) error {
	if n.destroyed() {
		panic(fmt.Sprintf("glctx: %v native context destroyed twice", n.kind))
	}
	h := n.h
	n.h = native.NoContext

	switch n.kind {
	case owned:
		if api.Current() == h {
			if err := api.SetCurrent(native.NoContext); err != nil {
				return err
			}
		}
		return api.DestroyContext(h)
	case external:
		// The handle is borrowed, only forget it.
	}
	return nil
}
