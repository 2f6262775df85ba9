package capture

import (
	"errors"
	"fmt"
)

// DeviceOpenError reports that the capture device could not be opened or
// was not ready. Reason carries the device's own error text.
type DeviceOpenError struct {
	Card   uint
	Device uint
	Reason string
	Err    error
}

func (e *DeviceOpenError) Error() string {
	return fmt.Sprintf("unable to open PCM capture device hw:%d,%d (%s)", e.Card, e.Device, e.Reason)
}

func (e *DeviceOpenError) Unwrap() error {
	return e.Err
}

// SinkOpenError reports that the output file could not be created.
type SinkOpenError struct {
	Path string
	Err  error
}

func (e *SinkOpenError) Error() string {
	return fmt.Sprintf("failed to create output file %s: %v", e.Path, e.Err)
}

func (e *SinkOpenError) Unwrap() error {
	return e.Err
}

// WriteError reports that the sink accepted fewer bytes than a frame block held.
type WriteError struct {
	Want int
	Got  int
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("error writing to raw PCM file: wrote %d of %d bytes: %v", e.Got, e.Want, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// CaptureError reports that the device failed a frame request.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("error capturing frames: %v", e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// ShortReadError reports a frame request that returned fewer frames than
// asked for without an error.
type ShortReadError struct {
	Captured int
	Expected uint32
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("missing frames: %d captured, %d expected", e.Captured, e.Expected)
}

// errBlockOutOfRange is wrapped by WriteError when a frame block does not
// lie inside the mapped area.
var errBlockOutOfRange = errors.New("frame block outside mapped area")

// errorKind names err for events and metrics.
func errorKind(err error) string {
	var (
		deviceErr *DeviceOpenError
		sinkErr   *SinkOpenError
		writeErr  *WriteError
		readErr   *CaptureError
		shortErr  *ShortReadError
	)
	switch {
	case errors.As(err, &deviceErr):
		return "device_open"
	case errors.As(err, &sinkErr):
		return "sink_open"
	case errors.As(err, &writeErr):
		return "write_error"
	case errors.As(err, &readErr):
		return "capture_error"
	case errors.As(err, &shortErr):
		return "short_read"
	default:
		return "release"
	}
}
