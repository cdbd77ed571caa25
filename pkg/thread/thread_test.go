package thread

import (
	"runtime"
	"testing"
)

func TestMainMaybe(t *testing.T) {
	if isMacOs {
		t.Skip("needs the mainthread loop")
	}
	value := 0
	MainMaybe(func() { value = 1 })
	if value != 1 {
		t.Errorf("wrong value %v", value)
	}
	if err := MainMaybeErr(func() error { value = 2; return nil }); err != nil || value != 2 {
		t.Errorf("wrong value %v, err %v", value, err)
	}
}

func TestIDIsStableWhenLocked(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	a, b := ID(), ID()
	if a != b {
		t.Errorf("thread id changed on a locked thread: %v != %v", a, b)
	}
}

func TestIDDiffersBetweenThreads(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "windows" {
		t.Skip("single thread id")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	mine := ID()
	other := make(chan uint64)
	go func() {
		runtime.LockOSThread()
		// don't unlock: the thread dies with the goroutine and can't be reused
		other <- ID()
	}()
	if theirs := <-other; theirs == mine {
		t.Errorf("two locked goroutines share thread id %v", mine)
	}
}
