package alsa

import (
	"errors"
	"fmt"
	"strings"
)

// Device represents an ALSA audio capture device.
type Device struct {
	CardNumber       int
	CardID           string
	CardName         string
	DeviceNumber     int
	DeviceName       string
	Type             string // "capture"
	ALSADevice       string // ALSA device string (e.g., "hw:0,0")
	SupportedRates   []int
	MinChannels      int
	MaxChannels      int
	SupportedFormats []string
	MinBufferSize    int
	MaxBufferSize    int
	MinPeriodSize    int
	MaxPeriodSize    int
}

// Config holds the hardware parameters requested when opening a PCM.
// The driver may adjust PeriodSize and PeriodCount; PCM.Config reports
// the values actually in effect.
type Config struct {
	Channels    uint32
	Rate        uint32
	PeriodSize  uint32
	PeriodCount uint32
	Format      int
}

// Flag selects the stream direction and transfer mode for Open.
type Flag uint32

// Open flags.
const (
	FlagIn   Flag = 1 << iota // capture stream (playback otherwise)
	FlagMmap                  // memory-mapped transfers via Readi
)

var (
	// ErrUnsupported is returned by Open on architectures without
	// memory-mapped capture support.
	ErrUnsupported = errors.New("alsa: mmap capture not supported on this architecture")
	// ErrNotReady is returned when operating on a closed or nil PCM.
	ErrNotReady = errors.New("alsa: pcm not ready")
	// ErrOverrun is returned by Readi when the driver overwrote frames
	// that had not been consumed yet.
	ErrOverrun = errors.New("alsa: capture overrun")
	// ErrSuspended is returned by Readi when the hardware was suspended.
	ErrSuspended = errors.New("alsa: device suspended")
	// ErrDisconnected is returned by Readi when the device went away.
	ErrDisconnected = errors.New("alsa: device disconnected")
)

// FormatALSADevice creates an ALSA device string from card and device numbers.
func FormatALSADevice(cardNum, deviceNum int) string {
	return "hw:" + itoa(cardNum) + "," + itoa(deviceNum)
}

// itoa is a simple int to string conversion.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	pos := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		pos--
		b[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		b[pos] = '-'
	}
	return string(b[pos:])
}

// Stream types
const (
	StreamPlayback = 0
	StreamCapture  = 1
)

// PCM format constants
const (
	FormatS8        = 0
	FormatU8        = 1
	FormatS16LE     = 2
	FormatS16BE     = 3
	FormatU16LE     = 4
	FormatU16BE     = 5
	FormatS24LE     = 6
	FormatS24BE     = 7
	FormatU24LE     = 8
	FormatU24BE     = 9
	FormatS32LE     = 10
	FormatS32BE     = 11
	FormatU32LE     = 12
	FormatU32BE     = 13
	FormatFloatLE   = 14
	FormatFloatBE   = 15
	FormatFloat64LE = 16
	FormatFloat64BE = 17
	FormatMuLaw     = 20
	FormatALaw      = 21
)

type formatInfo struct {
	name string
	bits uint32 // physical width; 24-bit formats live in 32-bit containers
}

var formats = map[int]formatInfo{
	FormatS8:        {"S8", 8},
	FormatU8:        {"U8", 8},
	FormatS16LE:     {"S16_LE", 16},
	FormatS16BE:     {"S16_BE", 16},
	FormatU16LE:     {"U16_LE", 16},
	FormatU16BE:     {"U16_BE", 16},
	FormatS24LE:     {"S24_LE", 32},
	FormatS24BE:     {"S24_BE", 32},
	FormatU24LE:     {"U24_LE", 32},
	FormatU24BE:     {"U24_BE", 32},
	FormatS32LE:     {"S32_LE", 32},
	FormatS32BE:     {"S32_BE", 32},
	FormatU32LE:     {"U32_LE", 32},
	FormatU32BE:     {"U32_BE", 32},
	FormatFloatLE:   {"FLOAT_LE", 32},
	FormatFloatBE:   {"FLOAT_BE", 32},
	FormatFloat64LE: {"FLOAT64_LE", 64},
	FormatFloat64BE: {"FLOAT64_BE", 64},
	FormatMuLaw:     {"MU_LAW", 8},
	FormatALaw:      {"A_LAW", 8},
}

// FormatName returns a human-readable name for a PCM format.
func FormatName(format int) string {
	if info, ok := formats[format]; ok {
		return info.name
	}
	return "UNKNOWN"
}

// FormatBits returns the number of bits one sample of format occupies in
// memory, or 0 for unknown formats.
func FormatBits(format int) uint32 {
	return formats[format].bits
}

// ParseFormat returns the format constant for a name such as "S32_LE".
// Matching is case-insensitive and accepts "-" in place of "_".
func ParseFormat(name string) (int, error) {
	want := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), "-", "_")
	for format, info := range formats {
		if info.name == want {
			return format, nil
		}
	}
	return 0, fmt.Errorf("unknown PCM format %q", name)
}

// framesToBytes is the size of frames interleaved frames.
func framesToBytes(frames, channels uint32, format int) uint32 {
	return frames * channels * (FormatBits(format) / 8)
}

// Common sample rates to test
var CommonSampleRates = []int{
	8000, 11025, 16000, 22050, 32000, 44100, 48000, 88200, 96000, 176400, 192000,
}

// Common formats to test
var CommonFormats = []int{
	FormatU8, FormatS16LE, FormatS16BE, FormatS24LE, FormatS24BE,
	FormatS32LE, FormatS32BE, FormatFloatLE, FormatFloatBE,
	FormatFloat64LE, FormatFloat64BE,
}
