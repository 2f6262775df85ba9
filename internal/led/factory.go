package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// board maps a device tree model to its LEDs and the one used as the
// recording indicator.
type board struct {
	model     string
	leds      map[string]string
	indicator string
}

var boards = []board{
	{"NanoPC-T6", map[string]string{"user": "usr_led", "system": "sys_led"}, "user"},
	{"Orange Pi", map[string]string{"blue": "blue_led", "green": "green_led"}, "green"},
	{"Raspberry Pi", map[string]string{"act": "ACT"}, "act"},
}

// New detects the board and returns its LED controller and indicator LED
// name. Unknown boards get a no-op controller.
func New(logger *slog.Logger) (Controller, string) {
	return newForModel(detectBoard(), sysfsLEDPath, logger)
}

func newForModel(model, root string, logger *slog.Logger) (Controller, string) {
	for _, b := range boards {
		if strings.Contains(model, b.model) {
			logger.Info("Using sysfs LED controller", "board_model", model, "indicator", b.indicator)
			return newSysfs(root, b.leds), b.indicator
		}
	}
	logger.Info("No LED support detected, using no-op controller", "board_model", model)
	return newNoop(logger), ""
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	// Device tree model contains null bytes, trim them
	return strings.TrimRight(string(data), "\x00")
}
