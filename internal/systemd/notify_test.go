package systemd

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/pcmcap/internal/events"
)

type recorder struct {
	mu     sync.Mutex
	states []string
	err    error
}

func (r *recorder) notify(_ bool, state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return r.err == nil, r.err
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.states...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifierHandleState(t *testing.T) {
	tests := []struct {
		name  string
		event events.SessionStateChangedEvent
		want  []string
	}{
		{
			name:  "capturing sends ready",
			event: events.SessionStateChangedEvent{SessionID: "abc", To: "capturing"},
			want:  []string{"READY=1\nSTATUS=capturing (session abc)"},
		},
		{
			name:  "stopped sends stopping with reason",
			event: events.SessionStateChangedEvent{To: "stopped", Reason: "signal"},
			want:  []string{"STOPPING=1\nSTATUS=stopped: signal"},
		},
		{
			name:  "open is silent",
			event: events.SessionStateChangedEvent{To: "open"},
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			n := &Notifier{notify: rec.notify, logger: testLogger()}
			n.handleState(tt.event)

			got := rec.snapshot()
			if len(got) != len(tt.want) {
				t.Fatalf("sent %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("message %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNotifierSubscribe(t *testing.T) {
	rec := &recorder{}
	n := &Notifier{notify: rec.notify, logger: testLogger()}
	bus := events.New()
	unsub := n.Subscribe(bus)
	defer unsub()

	bus.Publish(events.SignalReceivedEvent{Signal: "terminated"})

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no notification sent")
		}
		time.Sleep(time.Millisecond)
	}
	if got := rec.snapshot()[0]; got != "STATUS=received terminated, stopping" {
		t.Errorf("message = %q", got)
	}
}

func TestNotifierDeviceRemoved(t *testing.T) {
	rec := &recorder{}
	n := &Notifier{notify: rec.notify, logger: testLogger()}
	bus := events.New()
	defer n.Subscribe(bus)()

	bus.Publish(events.DeviceRemovedEvent{Card: 2, Device: 0, DevName: "snd/pcmC2D0c"})

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no notification sent")
		}
		time.Sleep(time.Millisecond)
	}
	if got := rec.snapshot()[0]; got != "STATUS=capture device hw:2,0 removed" {
		t.Errorf("message = %q", got)
	}
}

func TestNotifierSendErrorIsLogged(_ *testing.T) {
	rec := &recorder{err: errors.New("socket gone")}
	n := &Notifier{notify: rec.notify, logger: testLogger()}
	n.handleState(events.SessionStateChangedEvent{To: "capturing"})
}

func TestNotifierDoneAfterStoppingSent(t *testing.T) {
	rec := &recorder{}
	n := &Notifier{notify: rec.notify, logger: testLogger()}
	bus := events.New()
	defer n.Subscribe(bus)()

	bus.Publish(events.SessionStateChangedEvent{To: "capturing", SessionID: "abc"})
	bus.Publish(events.SessionStateChangedEvent{To: "stopped", Reason: "short_read"})
	bus.Publish(events.SessionStateChangedEvent{To: "closed"})

	select {
	case <-n.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after the closed state")
	}
	got := rec.snapshot()
	if len(got) != 2 || got[1] != "STOPPING=1\nSTATUS=stopped: short_read" {
		t.Errorf("sent %q, want ready then stopping", got)
	}
}
