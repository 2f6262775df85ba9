package capture

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.raw")
	if err := os.WriteFile(path, []byte("stale contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	sink, err := OpenFileSink(path)
	if err != nil {
		t.Fatalf("OpenFileSink() error = %v", err)
	}

	payload := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 50000)
	if n, err := sink.Write(payload); err != nil || n != len(payload) {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("file holds %d bytes, want the %d written (truncated on open)", len(got), len(payload))
	}
}

func TestOpenFileSinkMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.raw")
	if _, err := OpenFileSink(path); err == nil {
		t.Error("OpenFileSink() should fail when the directory does not exist")
	}
}
