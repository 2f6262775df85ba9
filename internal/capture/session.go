// Package capture runs a memory-mapped PCM capture session: it opens a
// device and an output sink, copies every delivered frame block into the
// sink until told to stop, and releases both on every path.
package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/smazurov/pcmcap/internal/events"
)

// Options configures a Session.
type Options struct {
	Config   Config
	Open     OpenFunc
	OpenSink SinkOpenFunc // OpenFileSink when nil
	Bus      *events.Bus  // events are dropped when nil
	Logger   *slog.Logger
	// SessionID identifies the session in logs and events. A random UUID
	// is used when empty.
	SessionID string
}

// Result summarises a finished session.
type Result struct {
	SessionID  string
	Frames     uint64
	Bytes      uint64
	StopReason StopReason
	// Err is the error that ended capture early, if any.
	Err      error
	Signal   os.Signal
	Duration time.Duration
}

// Session owns one capture run. Run must be called at most once; Interrupt
// may be called from any goroutine.
type Session struct {
	id       string
	cfg      Config
	open     OpenFunc
	openSink SinkOpenFunc
	bus      *events.Bus
	logger   *slog.Logger

	running atomic.Bool

	mu     sync.Mutex // guards the fields below
	cancel context.CancelFunc
	reason StopReason
	err    error
	signal os.Signal

	// Touched only by the goroutine in Run.
	state       State
	device      Device
	sink        Sink
	bpf         uint32
	frames      uint64
	bytes       uint64
	writeFailed bool
}

// NewSession creates a session in the init state with its running flag set.
func NewSession(opts Options) *Session {
	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	openSink := opts.OpenSink
	if openSink == nil {
		openSink = OpenFileSink
	}

	s := &Session{
		id:       id,
		cfg:      opts.Config,
		open:     opts.Open,
		openSink: openSink,
		bus:      opts.Bus,
		logger:   logger.With("session_id", id),
		state:    StateInit,
	}
	s.running.Store(true)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Running reports whether the session has not been told to stop.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Interrupt stops the session on behalf of sig. The frame request in
// flight is woken and the loop exits at its next check. Repeated calls
// are harmless; the first signal is the one reported.
func (s *Session) Interrupt(sig os.Signal) {
	s.logger.Info("Received signal, stopping capture", "signal", sig.String())
	s.bus.Publish(events.SignalReceivedEvent{
		SessionID: s.id,
		Signal:    sig.String(),
		Timestamp: now(),
	})

	s.mu.Lock()
	if s.signal == nil {
		s.signal = sig
	}
	s.mu.Unlock()
	s.stop(StopSignal, nil, true)
}

// stop clears the running flag. Only the first caller's reason and error
// are kept.
func (s *Session) stop(reason StopReason, err error, wake bool) {
	// Cleared under mu after the reason is set. Run stores cancel and reads
	// the flag under mu too, so a stop is never missed.
	s.mu.Lock()
	if s.reason == "" {
		s.reason = reason
		s.err = err
	}
	s.running.Store(false)
	cancel := s.cancel
	s.mu.Unlock()

	if wake && cancel != nil {
		cancel()
	}
}

// Run opens the device and sink, captures until stopped and releases
// everything it acquired. Failures before capture starts are returned as
// *DeviceOpenError or *SinkOpenError; failures during capture end the
// session and are reported in Result.Err.
func (s *Session) Run(parent context.Context) (Result, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	stopped := !s.running.Load()
	s.mu.Unlock()
	if stopped {
		cancel()
	}

	start := time.Now()
	result := Result{SessionID: s.id}

	if err := s.openDevice(); err != nil {
		s.fail(err)
		s.setState(StateClosed)
		return result, err
	}
	defer s.release()

	s.logger.Debug("Opening output file", "path", s.cfg.Output)
	sink, err := s.openSink(s.cfg.Output)
	if err != nil {
		err = &SinkOpenError{Path: s.cfg.Output, Err: err}
		s.fail(err)
		return result, err
	}
	s.sink = sink

	s.capture(ctx)

	s.mu.Lock()
	result.StopReason = s.reason
	result.Err = s.err
	result.Signal = s.signal
	s.mu.Unlock()
	result.Frames = s.frames
	result.Bytes = s.bytes
	result.Duration = time.Since(start)

	s.logger.Info("Capture finished",
		"reason", result.StopReason,
		"frames", result.Frames,
		"bytes", result.Bytes,
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (s *Session) openDevice() error {
	params := DeviceParams{
		Card:   s.cfg.Card,
		Device: s.cfg.Device,
		Flags:  OpenCapture | OpenMmap,
		Config: s.cfg,
	}
	s.logger.Debug("Opening capture device", "card", params.Card, "device", params.Device)

	dev, err := s.open(params)
	if err == nil && dev != nil && dev.IsReady() {
		s.device = dev
		s.setState(StateOpen)
		return nil
	}

	var reason string
	switch {
	case dev != nil && dev.LastError() != "":
		reason = dev.LastError()
	case err != nil:
		reason = err.Error()
	case dev == nil:
		reason = "no PCM handle"
	default:
		reason = "device not ready"
	}
	if dev != nil {
		_ = dev.Close()
	}
	return &DeviceOpenError{Card: params.Card, Device: params.Device, Reason: reason, Err: err}
}

// capture is the read loop. The running flag is checked before every frame
// request and takes priority over the request's result.
func (s *Session) capture(ctx context.Context) {
	frames := s.device.BufferSize()
	s.bpf = s.device.FramesToBytes(1)
	s.setState(StateCapturing)
	s.logger.Info("Capturing",
		"card", s.cfg.Card,
		"device", s.cfg.Device,
		"output", s.cfg.Output,
		"buffer_frames", frames,
		"bytes_per_frame", s.bpf)

	for s.running.Load() && ctx.Err() == nil {
		prevFrames, prevBytes := s.frames, s.bytes
		n, err := s.device.Readi(ctx, frames, s.writeFrames)
		if s.frames > prevFrames || s.bytes > prevBytes {
			s.bus.Publish(events.FramesCapturedEvent{
				SessionID: s.id,
				Frames:    s.frames - prevFrames,
				Bytes:     s.bytes - prevBytes,
			})
		}

		if !s.running.Load() || ctx.Err() != nil {
			break
		}
		if err != nil {
			s.logger.Error("Error capturing frames", "error", err)
			captureErr := &CaptureError{Err: err}
			s.publishError(captureErr)
			s.stop(StopCaptureError, captureErr, false)
			break
		}
		if n < int(frames) {
			s.logger.Error("Missing frames", "captured", n, "expected", frames)
			shortErr := &ShortReadError{Captured: n, Expected: frames}
			s.publishError(shortErr)
			s.stop(StopShortRead, shortErr, false)
			break
		}
	}

	// No-op unless the loop ended because the parent context did.
	s.stop(StopCancelled, nil, false)

	s.mu.Lock()
	reason := s.reason
	s.mu.Unlock()
	s.setStateReason(StateStopped, reason)
}

// writeFrames copies one frame block from the mapped area into the sink.
// It runs on the device's callback path and must not block on anything but
// the sink.
func (s *Session) writeFrames(areas []byte, offset, frames uint32) {
	if frames == 0 || s.writeFailed {
		return
	}

	start := uint64(s.bpf) * uint64(offset)
	end := start + uint64(s.bpf)*uint64(frames)
	want := int(end - start)
	if end > uint64(len(areas)) {
		s.failWrite(&WriteError{Want: want, Err: errBlockOutOfRange})
		return
	}

	n, err := s.sink.Write(areas[start:end])
	s.bytes += uint64(n)
	if s.bpf > 0 {
		s.frames += uint64(n) / uint64(s.bpf)
	}
	if err == nil && n < want {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.failWrite(&WriteError{Want: want, Got: n, Err: err})
	}
}

func (s *Session) failWrite(err *WriteError) {
	s.writeFailed = true
	s.logger.Error("Error writing to raw PCM file", "want", err.Want, "got", err.Got, "error", err.Err)
	s.publishError(err)
	s.stop(StopWriteError, err, false)
}

// release closes the sink and then the device. Each is closed once, and a
// failure closing one does not skip the other.
func (s *Session) release() {
	if s.sink != nil {
		if err := errors.Join(s.sink.Flush(), s.sink.Close()); err != nil {
			s.logger.Error("Failed to close output file", "path", s.cfg.Output, "error", err)
			s.publishError(err)
		}
		s.sink = nil
	}
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			s.logger.Error("Failed to close capture device", "error", err)
			s.publishError(err)
		}
		s.device = nil
	}
	s.setState(StateClosed)
}

func (s *Session) fail(err error) {
	s.logger.Error("Capture session failed", "error", err)
	s.publishError(err)
}

func (s *Session) publishError(err error) {
	s.bus.Publish(events.CaptureErrorEvent{
		SessionID: s.id,
		Kind:      errorKind(err),
		Error:     err.Error(),
		Timestamp: now(),
	})
}

func (s *Session) setState(to State) {
	s.setStateReason(to, "")
}

func (s *Session) setStateReason(to State, reason StopReason) {
	from := s.state
	s.state = to
	s.logger.Debug("State changed", "from", from, "to", to)
	s.bus.Publish(events.SessionStateChangedEvent{
		SessionID: s.id,
		From:      string(from),
		To:        string(to),
		Reason:    string(reason),
		Timestamp: now(),
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
