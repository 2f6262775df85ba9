//go:build linux && arm && !arm64

package alsa

import "context"

// PCM is a placeholder on architectures without mmap capture support.
type PCM struct{}

// Open always fails with ErrUnsupported on this architecture.
func Open(_, _ uint, _ Flag, _ *Config) (*PCM, error) {
	return nil, ErrUnsupported
}

// IsReady always reports false.
func (p *PCM) IsReady() bool { return false }

// LastError describes why no PCM is available.
func (p *PCM) LastError() string { return ErrUnsupported.Error() }

// Config returns the zero configuration.
func (p *PCM) Config() Config { return Config{} }

// BufferSize returns 0.
func (p *PCM) BufferSize() uint32 { return 0 }

// FramesToBytes returns 0.
func (p *PCM) FramesToBytes(uint32) uint32 { return 0 }

// Xruns returns 0.
func (p *PCM) Xruns() int { return 0 }

// Readi always fails with ErrUnsupported.
func (p *PCM) Readi(context.Context, uint32, func(areas []byte, offset, frames uint32)) (int, error) {
	return 0, ErrUnsupported
}

// Close is a no-op.
func (p *PCM) Close() error { return nil }
