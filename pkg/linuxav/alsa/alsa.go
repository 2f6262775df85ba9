// Package alsa provides pure Go bindings to the ALSA (Advanced Linux Sound Architecture)
// kernel interface for capture device enumeration and memory-mapped PCM capture.
//
// This package does not use cgo, enabling simple cross-compilation for
// different Linux architectures (amd64, arm64, arm). Memory-mapped capture
// is available on amd64 and arm64; on arm Open returns ErrUnsupported.
//
// # Device Enumeration
//
// Use ListDevices to discover all ALSA audio capture devices:
//
//	devices, err := alsa.ListDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s (%s)\n", dev.ALSADevice, dev.DeviceName, dev.CardName)
//	    fmt.Printf("  Rates: %v\n", dev.SupportedRates)
//	    fmt.Printf("  Channels: %d-%d\n", dev.MinChannels, dev.MaxChannels)
//	    fmt.Printf("  Formats: %v\n", dev.SupportedFormats)
//	}
//
// # Memory-mapped Capture
//
// Open a hardware device with FlagIn|FlagMmap and pull frames with Readi.
// The driver's ring buffer is handed to the callback directly; the callback
// must copy what it needs before returning:
//
//	pcm, err := alsa.Open(2, 0, alsa.FlagIn|alsa.FlagMmap, &alsa.Config{
//	    Channels: 2, Rate: 48000, PeriodSize: 1024, PeriodCount: 2,
//	    Format: alsa.FormatS32LE,
//	})
//	defer pcm.Close()
//	n, err := pcm.Readi(ctx, pcm.BufferSize(), func(areas []byte, offset, frames uint32) {
//	    bpf := pcm.FramesToBytes(1)
//	    out.Write(areas[offset*bpf : (offset+frames)*bpf])
//	})
package alsa
