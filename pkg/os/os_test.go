package os

import (
	"testing"
	"time"
)

func TestLinger(t *testing.T) {
	if !Linger(time.Millisecond, make(chan struct{})) {
		t.Errorf("linger was interrupted")
	}

	done := make(chan struct{})
	close(done)
	if Linger(time.Hour, done) {
		t.Errorf("linger wasn't interrupted")
	}
}
