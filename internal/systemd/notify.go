// Package systemd reports capture session progress to the service manager
// through the sd_notify protocol.
package systemd

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/smazurov/pcmcap/internal/events"
)

// sdNotifyStatus is the sd_notify STATUS= key; go-systemd's daemon package
// defines no constant for it.
const sdNotifyStatus = "STATUS="

// Notifier translates session events into sd_notify messages. Outside a
// systemd unit (no NOTIFY_SOCKET) every message is a silent no-op.
type Notifier struct {
	notify func(unsetEnvironment bool, state string) (bool, error)
	logger *slog.Logger

	initDone  sync.Once
	closeDone sync.Once
	done      chan struct{}
}

// NewNotifier creates a notifier backed by daemon.SdNotify.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{notify: daemon.SdNotify, logger: logger}
}

// Subscribe starts forwarding session events from bus. The returned
// function unsubscribes.
func (n *Notifier) Subscribe(bus *events.Bus) func() {
	unsubState := bus.Subscribe(n.handleState)
	unsubSignal := bus.Subscribe(func(e events.SignalReceivedEvent) {
		n.send(sdNotifyStatus + "received " + e.Signal + ", stopping")
	})
	unsubRemoved := bus.Subscribe(func(e events.DeviceRemovedEvent) {
		n.send(sdNotifyStatus + fmt.Sprintf("capture device hw:%d,%d removed", e.Card, e.Device))
	})
	return func() {
		unsubState()
		unsubSignal()
		unsubRemoved()
	}
}

// Done is closed once the notifier has handled the session's closed state.
// Every earlier state message has been sent by then.
func (n *Notifier) Done() <-chan struct{} {
	return n.doneCh()
}

func (n *Notifier) doneCh() chan struct{} {
	n.initDone.Do(func() { n.done = make(chan struct{}) })
	return n.done
}

func (n *Notifier) handleState(e events.SessionStateChangedEvent) {
	switch e.To {
	case "closed":
		n.closeDone.Do(func() { close(n.doneCh()) })
	case "capturing":
		n.send(daemon.SdNotifyReady + "\n" + sdNotifyStatus + "capturing (session " + e.SessionID + ")")
	case "stopped":
		n.send(daemon.SdNotifyStopping + "\n" + sdNotifyStatus + fmt.Sprintf("stopped: %s", e.Reason))
	}
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(false, state)
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("sd_notify", "state", state)
	}
}
