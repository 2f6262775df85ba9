package capture

import (
	"os"
	"os/signal"
	"syscall"
)

// StopSignals are the signals that end a capture gracefully.
var StopSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP}

// WatchSignals interrupts s on every delivery of one of StopSignals. The
// returned function unregisters the handler and waits for the watcher
// goroutine to exit; after it returns the signals have their default
// behaviour again.
func WatchSignals(s *Session) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	exited := make(chan struct{})
	signal.Notify(sigCh, StopSignals...)

	go func() {
		defer close(exited)
		for {
			select {
			case sig := <-sigCh:
				s.Interrupt(sig)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
		<-exited
	}
}
