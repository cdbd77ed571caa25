//go:build !linux && !windows

package thread

// ID returns 0, so all threads share one function table. GL entry points
// resolve to the same addresses on every thread here. Only window and context
// creation go through MainMaybe, make current and GL calls run on the
// caller's thread.
func ID() uint64 { return 0 }
