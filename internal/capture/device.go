package capture

import "context"

// Device is an open capture stream in memory-mapped mode.
type Device interface {
	// IsReady reports whether the stream is usable.
	IsReady() bool
	// LastError describes the most recent device failure.
	LastError() string
	// BufferSize is the ring buffer size in frames.
	BufferSize() uint32
	// FramesToBytes converts a frame count to bytes.
	FramesToBytes(frames uint32) uint32
	// Readi requests frames frames, invoking fn once per contiguous block of
	// the mapped area. Blocks arrive in order and never overlap. It returns
	// the number of frames delivered.
	Readi(ctx context.Context, frames uint32, fn func(areas []byte, offset, frames uint32)) (int, error)
	Close() error
}

// OpenFlags select the stream mode requested from an OpenFunc.
type OpenFlags uint32

// Open flags.
const (
	OpenCapture OpenFlags = 1 << iota
	OpenMmap
)

// DeviceParams is what a session asks its OpenFunc for.
type DeviceParams struct {
	Card   uint
	Device uint
	Flags  OpenFlags
	Config Config
}

// OpenFunc opens a capture device. It may return a nil Device or one that
// is not ready; both are treated as open failures.
type OpenFunc func(DeviceParams) (Device, error)

// Config describes the requested stream and output. Defaults returns the
// stock values.
type Config struct {
	Card        uint
	Device      uint
	Channels    uint32
	Rate        uint32
	PeriodSize  uint32
	PeriodCount uint32
	Format      string
	Output      string
}

// Defaults returns card 2, device 0, stereo S32_LE at 48 kHz with two
// 1024-frame periods, written to out.raw.
func Defaults() Config {
	return Config{
		Card:        2,
		Device:      0,
		Channels:    2,
		Rate:        48000,
		PeriodSize:  1024,
		PeriodCount: 2,
		Format:      "S32_LE",
		Output:      "out.raw",
	}
}
