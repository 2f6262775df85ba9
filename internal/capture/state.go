package capture

// State is a capture session lifecycle state.
type State string

// Session states, in order.
const (
	StateInit      State = "init"      // Nothing acquired
	StateOpen      State = "open"      // Device open and ready
	StateCapturing State = "capturing" // Sink open, reading frames
	StateStopped   State = "stopped"   // Running flag cleared
	StateClosed    State = "closed"    // Everything released
)

// StopReason explains why a session left the capturing state.
type StopReason string

// Stop reasons.
const (
	StopSignal       StopReason = "signal"
	StopCaptureError StopReason = "capture_error"
	StopShortRead    StopReason = "short_read"
	StopWriteError   StopReason = "write_error"
	StopCancelled    StopReason = "cancelled"
)
