package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	Initialize(Config{
		Level:     "info",
		Format:    "text",
		NoJournal: true,
		Modules: map[string]string{
			"capture": "debug",
			"metrics": "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"capture", true, true, true},
		{"metrics", false, false, true},
		{"alsa", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()

			gotDebug := handler.Enabled(context.Background(), slog.LevelDebug)
			gotInfo := handler.Enabled(context.Background(), slog.LevelInfo)
			gotWarn := handler.Enabled(context.Background(), slog.LevelWarn)

			if gotDebug != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, gotDebug, tt.wantDebug)
			}
			if gotInfo != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, gotInfo, tt.wantInfo)
			}
			if gotWarn != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, gotWarn, tt.wantWarn)
			}
		})
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debugHandler, infoHandler)).With("module", "test")
	logger.Debug("debug only message")

	output := buf.String()
	if count := strings.Count(output, "debug only message"); count != 1 {
		t.Errorf("Expected 1 debug message, got %d. Output: %s", count, output)
	}
	if !strings.Contains(output, "module=test") {
		t.Errorf("Attributes not propagated. Output: %s", output)
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("boom") }

func TestMultiHandlerContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewTextHandler(&buf, nil)
	bad := failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)}

	multi := NewMultiHandler(bad, ok)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "still written", 0)

	if err := multi.Handle(context.Background(), r); err == nil {
		t.Error("Handle() error = nil, want the failing handler's error")
	}
	if !strings.Contains(buf.String(), "still written") {
		t.Errorf("second handler skipped. Output: %s", buf.String())
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	loggerBefore := GetLogger("alsa")
	handlerBefore := loggerBefore.Handler()
	if handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Logger created before Initialize should NOT have debug enabled")
	}

	Initialize(Config{
		Level:     "info",
		NoJournal: true,
		Modules:   map[string]string{"alsa": "debug"},
	})

	if loggerAfter := GetLogger("alsa"); loggerBefore != loggerAfter {
		t.Error("Logger should be cached - same pointer before and after Initialize")
	}
	if !handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Cached logger should have debug enabled after Initialize updates LevelVar")
	}
}

func TestLogFileRotationTarget(t *testing.T) {
	resetState()
	path := filepath.Join(t.TempDir(), "pcmcap.log")

	Initialize(Config{Level: "info", Format: "json", File: path, NoJournal: true})
	GetLogger("capture").Info("written to file", "frames", 2048)
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"written to file"`) || !strings.Contains(out, `"module":"capture"`) {
		t.Errorf("unexpected log file contents: %s", out)
	}

	Initialize(Config{Level: "info", NoJournal: true})
}

func TestJournalKey(t *testing.T) {
	tests := []struct {
		key    string
		groups []string
		want   string
	}{
		{"session_id", nil, "SESSION_ID"},
		{"frames", []string{"read"}, "READ_FRAMES"},
		{"stop-reason", nil, "STOP_REASON"},
	}
	for _, tt := range tests {
		if got := journalKey(tt.key, tt.groups); got != tt.want {
			t.Errorf("journalKey(%q, %v) = %q, want %q", tt.key, tt.groups, got, tt.want)
		}
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		isNil bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			if tt.isNil {
				if got != nil {
					t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
				}
				if ValidLevel(tt.input) {
					t.Errorf("ValidLevel(%q) = true, want false", tt.input)
				}
				return
			}
			if got == nil {
				t.Fatalf("parseLevel(%q) = nil, want %v", tt.input, tt.want)
			}
			if *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}
