// Package metrics provides Prometheus metrics for capture sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/pcmcap/internal/events"
)

// States reported by the state gauge, in lifecycle order.
var States = []string{"init", "open", "capturing", "stopped", "closed"}

var (
	captureFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pcmcap",
		Subsystem: "capture",
		Name:      "frames_total",
		Help:      "Frames captured from the device",
	})

	captureBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pcmcap",
		Subsystem: "capture",
		Name:      "bytes_total",
		Help:      "Bytes handed to the output sink",
	})

	captureReads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pcmcap",
		Subsystem: "capture",
		Name:      "reads_total",
		Help:      "Completed device reads",
	})

	captureErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcmcap",
		Subsystem: "capture",
		Name:      "errors_total",
		Help:      "Capture failures by kind",
	}, []string{"kind"})

	captureState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pcmcap",
		Subsystem: "capture",
		Name:      "state",
		Help:      "1 for the current session state, 0 otherwise",
	}, []string{"state"})
)

// AddRead accounts one completed device read.
func AddRead(frames, bytes uint64) {
	captureReads.Inc()
	captureFrames.Add(float64(frames))
	captureBytes.Add(float64(bytes))
}

// IncError counts a failure of the given kind.
func IncError(kind string) {
	captureErrors.WithLabelValues(kind).Inc()
}

// SetState marks state as current. Unknown states clear every series.
func SetState(state string) {
	for _, s := range States {
		v := 0.0
		if s == state {
			v = 1
		}
		captureState.WithLabelValues(s).Set(v)
	}
}

// Subscribe keeps the collectors in sync with capture events on bus.
// The returned function unsubscribes.
func Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.SessionStateChangedEvent) {
			SetState(e.To)
		}),
		bus.Subscribe(func(e events.FramesCapturedEvent) {
			AddRead(e.Frames, e.Bytes)
		}),
		bus.Subscribe(func(e events.CaptureErrorEvent) {
			IncError(e.Kind)
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
