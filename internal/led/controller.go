// Package led drives a board LED as a recording indicator.
package led

// Mode is what an LED shows.
type Mode string

// LED modes.
const (
	ModeOff   Mode = "off"
	ModeSolid Mode = "solid"
	ModeBlink Mode = "blink"
)

// Controller abstracts LED hardware control across different SBC boards.
// Implementations handle board-specific LED naming.
type Controller interface {
	// Set switches the named LED (e.g. "user", "act") to mode.
	Set(name string, mode Mode) error

	// Available returns the LED names supported by this controller.
	Available() []string
}
