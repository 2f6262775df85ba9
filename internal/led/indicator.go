package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/pcmcap/internal/events"
)

// Indicator lights an LED while a capture session runs: solid while
// capturing, blinking while stopping, off once closed.
type Indicator struct {
	controller Controller
	name       string
	logger     *slog.Logger

	initDone  sync.Once
	closeDone sync.Once
	done      chan struct{}
}

// NewIndicator drives the LED called name on controller.
func NewIndicator(controller Controller, name string, logger *slog.Logger) *Indicator {
	return &Indicator{controller: controller, name: name, logger: logger}
}

// Subscribe follows session state changes on bus. The returned function
// unsubscribes.
func (i *Indicator) Subscribe(bus *events.Bus) func() {
	return bus.Subscribe(i.handleState)
}

// Done is closed once the indicator has handled the session's closed
// state, whether or not the LED write succeeded.
func (i *Indicator) Done() <-chan struct{} {
	return i.doneCh()
}

func (i *Indicator) doneCh() chan struct{} {
	i.initDone.Do(func() { i.done = make(chan struct{}) })
	return i.done
}

func (i *Indicator) handleState(e events.SessionStateChangedEvent) {
	if e.To == "closed" {
		defer i.closeDone.Do(func() { close(i.doneCh()) })
	}

	var mode Mode
	switch e.To {
	case "capturing":
		mode = ModeSolid
	case "stopped":
		mode = ModeBlink
	case "closed":
		mode = ModeOff
	default:
		return
	}
	if err := i.controller.Set(i.name, mode); err != nil {
		i.logger.Warn("Failed to set indicator LED", "led", i.name, "mode", mode, "error", err)
		return
	}
	i.logger.Debug("Indicator LED set", "led", i.name, "mode", mode, "state", e.To)
}
