package led

import "log/slog"

// noop implements Controller as a no-op for systems without LED support
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

// Set logs the request but performs no actual LED control
func (n *noop) Set(name string, mode Mode) error {
	n.logger.Debug("LED control not available (no-op)", "led", name, "mode", mode)
	return nil
}

// Available returns an empty list since no LEDs are available
func (n *noop) Available() []string {
	return []string{}
}
