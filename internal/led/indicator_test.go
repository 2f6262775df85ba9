package led

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/pcmcap/internal/events"
)

type mockController struct {
	mu    sync.Mutex
	modes []Mode
	err   error
}

func (m *mockController) Set(_ string, mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes = append(m.modes, mode)
	return m.err
}

func (m *mockController) Available() []string {
	return []string{"user"}
}

func (m *mockController) snapshot() []Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mode(nil), m.modes...)
}

func TestIndicatorFollowsSession(t *testing.T) {
	ctrl := &mockController{}
	bus := events.New()
	unsub := NewIndicator(ctrl, "user", testLogger()).Subscribe(bus)
	defer unsub()

	for _, to := range []string{"open", "capturing", "stopped", "closed"} {
		bus.Publish(events.SessionStateChangedEvent{To: to})
	}

	want := []Mode{ModeSolid, ModeBlink, ModeOff}
	deadline := time.Now().Add(2 * time.Second)
	for len(ctrl.snapshot()) < len(want) {
		if time.Now().After(deadline) {
			t.Fatalf("modes = %v, want %v", ctrl.snapshot(), want)
		}
		time.Sleep(time.Millisecond)
	}
	got := ctrl.snapshot()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mode %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIndicatorControllerError(t *testing.T) {
	ctrl := &mockController{err: errors.New("read-only sysfs")}
	ind := NewIndicator(ctrl, "user", testLogger())
	ind.handleState(events.SessionStateChangedEvent{To: "capturing"})

	if got := ctrl.snapshot(); len(got) != 1 || got[0] != ModeSolid {
		t.Errorf("modes = %v, want a single solid attempt", got)
	}
}

func TestIndicatorDoneAfterClosed(t *testing.T) {
	ctrl := &mockController{err: errors.New("read-only sysfs")}
	ind := NewIndicator(ctrl, "user", testLogger())

	ind.handleState(events.SessionStateChangedEvent{To: "stopped"})
	select {
	case <-ind.Done():
		t.Fatal("Done closed before the closed state")
	default:
	}

	ind.handleState(events.SessionStateChangedEvent{To: "closed"})
	ind.handleState(events.SessionStateChangedEvent{To: "closed"})
	select {
	case <-ind.Done():
	default:
		t.Fatal("Done not closed after the closed state, even though the LED write failed")
	}
	if got := ctrl.snapshot(); got[len(got)-1] != ModeOff {
		t.Errorf("last mode = %q, want %q", got[len(got)-1], ModeOff)
	}
}
