// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to stderr when a terminal, pipe, or file is connected
//   - Logs to the systemd journal when available, unless disabled
//   - Logs to a size-rotated file when one is configured
//
// Stdout is never written to, so captured audio can be piped through it
// without interleaved log lines.
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"alsa": "debug",
//		},
//	})
//	defer logging.Close()
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("capture")
//	logger.Info("Capture started", "frames", 2048)
//
// # Viewing Logs
//
//	journalctl -t pcmcap -f
//	journalctl -t pcmcap MODULE=capture SESSION_ID=...
//
// # Configuration
//
//	[logging]
//	level = "info"
//	format = "text"
//	file = "/var/log/pcmcap.log"
//
//	[logging.modules]
//	capture = "debug"
package logging
