package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smazurov/pcmcap/internal/events"
)

func TestAddRead(t *testing.T) {
	frames := testutil.ToFloat64(captureFrames)
	bytes := testutil.ToFloat64(captureBytes)
	reads := testutil.ToFloat64(captureReads)

	AddRead(2048, 16384)
	AddRead(2048, 16384)

	if got := testutil.ToFloat64(captureFrames) - frames; got != 4096 {
		t.Errorf("frames delta = %v, want 4096", got)
	}
	if got := testutil.ToFloat64(captureBytes) - bytes; got != 32768 {
		t.Errorf("bytes delta = %v, want 32768", got)
	}
	if got := testutil.ToFloat64(captureReads) - reads; got != 2 {
		t.Errorf("reads delta = %v, want 2", got)
	}
}

func TestSetStateIsExclusive(t *testing.T) {
	SetState("capturing")
	for _, s := range States {
		want := 0.0
		if s == "capturing" {
			want = 1
		}
		if got := testutil.ToFloat64(captureState.WithLabelValues(s)); got != want {
			t.Errorf("state %q = %v, want %v", s, got, want)
		}
	}

	SetState("closed")
	if got := testutil.ToFloat64(captureState.WithLabelValues("capturing")); got != 0 {
		t.Errorf("capturing still set after closed: %v", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSubscribe(t *testing.T) {
	bus := events.New()
	unsub := Subscribe(bus)
	defer unsub()

	shortReads := testutil.ToFloat64(captureErrors.WithLabelValues("short_read"))
	frames := testutil.ToFloat64(captureFrames)

	bus.Publish(events.SessionStateChangedEvent{From: "capturing", To: "stopped"})
	bus.Publish(events.FramesCapturedEvent{Frames: 1024, Bytes: 8192})
	bus.Publish(events.CaptureErrorEvent{Kind: "short_read"})

	waitFor(t, func() bool {
		return testutil.ToFloat64(captureState.WithLabelValues("stopped")) == 1
	})
	waitFor(t, func() bool {
		return testutil.ToFloat64(captureFrames)-frames == 1024
	})
	waitFor(t, func() bool {
		return testutil.ToFloat64(captureErrors.WithLabelValues("short_read"))-shortReads == 1
	})
}
