package os

import (
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ExpectTermination returns a channel closed on SIGINT or SIGTERM.
func ExpectTermination() <-chan struct{} {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-signals
		signal.Stop(signals)
		close(done)
	}()
	return done
}

// Linger blocks for d or until done is closed.
// It reports whether the whole period has passed.
func Linger(d time.Duration, done <-chan struct{}) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-done:
		return false
	}
}
