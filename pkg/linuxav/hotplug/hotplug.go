//go:build linux

// Package hotplug watches kernel uevents for sound devices appearing and
// disappearing. It reads the netlink kobject uevent socket directly, so no
// udev daemon or cgo is needed.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// Actions reported for sound devices.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// SubsystemSound is the kernel subsystem of ALSA devices.
const SubsystemSound = "sound"

// netlinkKobjectUEvent is the netlink protocol for kernel object events.
const netlinkKobjectUEvent = 15

// Event is one kernel device event.
type Event struct {
	Action    string
	KObj      string // kernel object path, e.g. /devices/.../sound/card2/pcmC2D0c
	Subsystem string
	DevName   string // relative to /dev, e.g. snd/pcmC2D0c
	Env       map[string]string
}

// PCM reports the card and device of a PCM node event and whether it is a
// capture node. ok is false for anything that is not a PCM node.
func (e Event) PCM() (card, device int, capture, ok bool) {
	name, found := strings.CutPrefix(e.DevName, "snd/")
	if !found {
		return 0, 0, false, false
	}
	var dir byte
	n, err := fmt.Sscanf(name, "pcmC%dD%d%c", &card, &device, &dir)
	if err != nil || n != 3 || (dir != 'c' && dir != 'p') {
		return 0, 0, false, false
	}
	return card, device, dir == 'c', true
}

// Monitor receives sound subsystem uevents from the kernel.
type Monitor struct {
	fd int
}

// NewMonitor opens and binds a uevent socket.
func NewMonitor() (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, fmt.Errorf("uevent socket: %w", err)
	}
	// Group 1 is the kernel broadcast group.
	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 1}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind uevent socket: %w", err)
	}
	// A receive timeout lets Run notice cancellation.
	tv := unix.Timeval{Usec: 200_000}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("set uevent socket timeout: %w", err)
	}
	return &Monitor{fd: fd}, nil
}

// Close releases the socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// Run delivers sound subsystem events to fn until ctx is done or the
// socket fails. fn runs on the caller's goroutine.
func (m *Monitor) Run(ctx context.Context, fn func(Event)) error {
	buf := make([]byte, 8192)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, _, err := unix.Recvfrom(m.fd, buf, 0)
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return err
		case n == 0:
			continue
		}
		if ev := ParseUEvent(buf[:n]); ev != nil && ev.Subsystem == SubsystemSound {
			fn(*ev)
		}
	}
}

// ParseUEvent parses a kernel uevent message of the form
// "ACTION@KOBJ\0KEY=VALUE\0...". It returns nil for malformed input.
func ParseUEvent(data []byte) *Event {
	// libudev rebroadcasts carry a binary header before the uevent.
	if bytes.HasPrefix(data, []byte("libudev")) {
		for i := 0; i < len(data)-1; i++ {
			if data[i] != 0 {
				continue
			}
			rest := data[i+1:]
			at, nul := bytes.IndexByte(rest, '@'), bytes.IndexByte(rest, 0)
			if at > 0 && at < 20 && (nul < 0 || at < nul) {
				data = rest
				break
			}
		}
	}

	parts := bytes.Split(data, []byte{0})
	action, kobj, found := strings.Cut(string(parts[0]), "@")
	if !found || action == "" {
		return nil
	}

	ev := &Event{Action: action, KObj: kobj, Env: make(map[string]string)}
	for _, part := range parts[1:] {
		key, value, found := strings.Cut(string(part), "=")
		if !found || key == "" {
			continue
		}
		ev.Env[key] = value
		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		}
	}
	return ev
}
