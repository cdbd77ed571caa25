// Package thread deals with OS thread affinity of GL calls.
//
// GL contexts are current per OS thread, goroutines that use them must be
// locked to a thread. On macOS window and context creation must happen on the
// main thread, the Main* helpers funnel calls there.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import (
	"runtime"

	"github.com/faiface/mainthread"
)

var isMacOs = runtime.GOOS == "darwin"

// MainWrapMaybe runs f with the main thread loop started.
// Enabled for macOS only, elsewhere f is just called.
func MainWrapMaybe(f func()) {
	if isMacOs {
		mainthread.Run(f)
	} else {
		f()
	}
}

// MainMaybe calls a function on the main thread.
// Enabled for macOS only.
func MainMaybe(f func()) {
	if isMacOs {
		mainthread.Call(f)
	} else {
		f()
	}
}

// MainMaybeErr is MainMaybe for functions that fail.
func MainMaybeErr(f func() error) error {
	if isMacOs {
		return mainthread.CallErr(f)
	}
	return f()
}
