package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

const (
	testBufferFrames = 2048
	testBPF          = 8 // stereo S32_LE
)

type block struct {
	offset, frames uint32
}

// read scripts one Readi call. The returned count is the sum of the
// delivered blocks.
type read struct {
	blocks []block
	err    error
	after  func()
}

func full() read {
	return read{blocks: []block{{0, testBufferFrames}}}
}

type fakeDevice struct {
	area       []byte
	bufferSize uint32
	ready      bool
	lastErr    string
	reads      []read

	session       *Session
	calls         int
	closed        int
	closeErr      error
	readAfterStop bool
}

func newFakeDevice(reads ...read) *fakeDevice {
	area := make([]byte, testBufferFrames*testBPF)
	for i := range area {
		area[i] = byte(i * 7)
	}
	return &fakeDevice{area: area, bufferSize: testBufferFrames, ready: true, reads: reads}
}

func (d *fakeDevice) IsReady() bool                 { return d.ready }
func (d *fakeDevice) LastError() string             { return d.lastErr }
func (d *fakeDevice) BufferSize() uint32            { return d.bufferSize }
func (d *fakeDevice) FramesToBytes(n uint32) uint32 { return n * testBPF }

func (d *fakeDevice) Readi(_ context.Context, _ uint32, fn func(areas []byte, offset, frames uint32)) (int, error) {
	if d.session != nil && !d.session.Running() {
		d.readAfterStop = true
	}
	if d.calls >= len(d.reads) {
		d.calls++
		return 0, errors.New("fake device: script exhausted")
	}
	r := d.reads[d.calls]
	d.calls++

	var n int
	for _, b := range r.blocks {
		fn(d.area, b.offset, b.frames)
		n += int(b.frames)
	}
	if r.after != nil {
		r.after()
	}
	return n, r.err
}

func (d *fakeDevice) Close() error {
	d.closed++
	return d.closeErr
}

// bytesAt returns the area bytes of a frame range.
func (d *fakeDevice) bytesAt(offset, frames uint32) []byte {
	return d.area[offset*testBPF : (offset+frames)*testBPF]
}

type fakeSink struct {
	buf      bytes.Buffer
	limit    int // accept at most limit bytes in total when > 0
	writeErr error
	closeErr error
	writes   int
	flushes  int
	closed   int
}

func (s *fakeSink) Write(p []byte) (int, error) {
	s.writes++
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	if s.limit > 0 && s.buf.Len()+len(p) > s.limit {
		n := s.limit - s.buf.Len()
		s.buf.Write(p[:n])
		return n, nil
	}
	return s.buf.Write(p)
}

func (s *fakeSink) Flush() error {
	s.flushes++
	return nil
}

func (s *fakeSink) Close() error {
	s.closed++
	return s.closeErr
}

type harness struct {
	device    *fakeDevice
	sink      *fakeSink
	session   *Session
	sinkOpens int
	openErr   error
	sinkErr   error
}

func newHarness(dev *fakeDevice) *harness {
	h := &harness{device: dev, sink: &fakeSink{}}
	h.session = NewSession(Options{
		Config: Defaults(),
		Open: func(DeviceParams) (Device, error) {
			if h.device == nil {
				return nil, h.openErr
			}
			return h.device, h.openErr
		},
		OpenSink: func(string) (Sink, error) {
			h.sinkOpens++
			if h.sinkErr != nil {
				return nil, h.sinkErr
			}
			return h.sink, nil
		},
		Logger: testLogger(),
	})
	if dev != nil {
		dev.session = h.session
	}
	return h
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// blockingDevice delivers one full buffer on its first read, then blocks
// every read until ctx is done. A read still blocked after wakeTimeout
// fails with errNotWoken.
type blockingDevice struct {
	area      []byte
	delivered chan struct{}
	calls     int
	closed    int
}

var errNotWoken = errors.New("blocking device: read was never woken")

const wakeTimeout = 2 * time.Second

func newBlockingDevice() *blockingDevice {
	return &blockingDevice{
		area:      make([]byte, testBufferFrames*testBPF),
		delivered: make(chan struct{}),
	}
}

func (d *blockingDevice) IsReady() bool                 { return true }
func (d *blockingDevice) LastError() string             { return "" }
func (d *blockingDevice) BufferSize() uint32            { return testBufferFrames }
func (d *blockingDevice) FramesToBytes(n uint32) uint32 { return n * testBPF }

func (d *blockingDevice) Readi(ctx context.Context, frames uint32, fn func(areas []byte, offset, frames uint32)) (int, error) {
	d.calls++
	if d.calls == 1 {
		fn(d.area, 0, frames)
		close(d.delivered)
		return int(frames), nil
	}
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(wakeTimeout):
		return 0, errNotWoken
	}
}

func (d *blockingDevice) Close() error {
	d.closed++
	return nil
}

func newBlockingSession(dev *blockingDevice, sink *fakeSink) *Session {
	return NewSession(Options{
		Config:   Defaults(),
		Open:     func(DeviceParams) (Device, error) { return dev, nil },
		OpenSink: func(string) (Sink, error) { return sink, nil },
		Logger:   testLogger(),
	})
}
