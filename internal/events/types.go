package events

// Event type constants for kelindar/event.
const (
	TypeSessionStateChanged uint32 = iota + 1
	TypeFramesCaptured
	TypeCaptureError
	TypeSignalReceived
	TypeDeviceRemoved
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// SessionStateChangedEvent is published on every capture session state
// transition (init, open, capturing, stopped, closed).
type SessionStateChangedEvent struct {
	SessionID string `json:"session_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	// Reason is set on the transition to stopped.
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for SessionStateChangedEvent.
func (e SessionStateChangedEvent) Type() uint32 { return TypeSessionStateChanged }

// FramesCapturedEvent reports one completed device read.
type FramesCapturedEvent struct {
	SessionID string `json:"session_id"`
	Frames    uint64 `json:"frames"`
	Bytes     uint64 `json:"bytes"`
}

// Type returns the event type identifier for FramesCapturedEvent.
func (e FramesCapturedEvent) Type() uint32 { return TypeFramesCaptured }

// CaptureErrorEvent reports a failure that ended or prevented a session.
// Kind is one of device_open, sink_open, capture_error, short_read,
// write_error or release.
type CaptureErrorEvent struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for CaptureErrorEvent.
func (e CaptureErrorEvent) Type() uint32 { return TypeCaptureError }

// SignalReceivedEvent is published each time a termination signal arrives.
type SignalReceivedEvent struct {
	SessionID string `json:"session_id"`
	Signal    string `json:"signal"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for SignalReceivedEvent.
func (e SignalReceivedEvent) Type() uint32 { return TypeSignalReceived }

// DeviceRemovedEvent is published when the kernel reports that the PCM
// node being captured from went away.
type DeviceRemovedEvent struct {
	Card      int    `json:"card"`
	Device    int    `json:"device"`
	DevName   string `json:"dev_name"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for DeviceRemovedEvent.
func (e DeviceRemovedEvent) Type() uint32 { return TypeDeviceRemoved }
