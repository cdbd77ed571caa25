package thread

import "golang.org/x/sys/windows"

// ID returns the id of the OS thread the caller runs on.
// It's stable only while the goroutine is locked to its thread.
func ID() uint64 { return uint64(windows.GetCurrentThreadId()) }
