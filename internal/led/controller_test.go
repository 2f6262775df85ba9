package led

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNoopController(t *testing.T) {
	ctrl := newNoop(testLogger())

	if err := ctrl.Set("user", ModeSolid); err != nil {
		t.Errorf("Set() returned error: %v", err)
	}
	if names := ctrl.Available(); len(names) != 0 {
		t.Errorf("Available() = %v, want empty slice", names)
	}
}

func TestSysfsController_Available(t *testing.T) {
	ctrl := newSysfs(t.TempDir(), map[string]string{"user": "usr_led", "system": "sys_led"})
	if got, want := ctrl.Available(), []string{"system", "user"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func fakeLED(t *testing.T, root, dir string) string {
	t.Helper()
	path := filepath.Join(root, dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func TestSysfsController_Set(t *testing.T) {
	tests := []struct {
		mode           Mode
		wantTrigger    string
		wantBrightness string
	}{
		{ModeSolid, "none", "1"},
		{ModeOff, "none", "0"},
		{ModeBlink, "heartbeat", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			root := t.TempDir()
			ledPath := fakeLED(t, root, "usr_led")
			ctrl := newSysfs(root, map[string]string{"user": "usr_led"})

			if err := ctrl.Set("user", tt.mode); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if got := readFile(t, filepath.Join(ledPath, "trigger")); got != tt.wantTrigger {
				t.Errorf("trigger = %q, want %q", got, tt.wantTrigger)
			}
			if got := readFile(t, filepath.Join(ledPath, "brightness")); got != tt.wantBrightness {
				t.Errorf("brightness = %q, want %q", got, tt.wantBrightness)
			}
		})
	}
}

func TestSysfsController_SetErrors(t *testing.T) {
	root := t.TempDir()
	fakeLED(t, root, "usr_led")
	ctrl := newSysfs(root, map[string]string{"user": "usr_led", "system": "sys_led"})

	if err := ctrl.Set("nonexistent", ModeSolid); err == nil {
		t.Error("Set() with invalid LED name should return error")
	}
	if err := ctrl.Set("system", ModeSolid); err == nil {
		t.Error("Set() should fail when the sysfs directory is missing")
	}
	if err := ctrl.Set("user", Mode("strobe")); err == nil {
		t.Error("Set() should reject an unknown mode")
	}
}
