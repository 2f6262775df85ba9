//go:build linux && (amd64 || arm64)

package alsa

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// PCM is an open ALSA PCM stream on a hardware device.
// It is not safe for concurrent use.
type PCM struct {
	fd         int
	flags      Flag
	config     Config
	bufferSize uint32 // in frames
	boundary   uint64
	area       []byte
	sync       sndPCMSyncPtr
	running    bool
	xruns      int
	lastErr    string
}

// Open opens /dev/snd/pcmC<card>D<device>c (or p for playback), applies
// config and leaves the stream prepared. With FlagMmap the driver's ring
// buffer is mapped and frames are read with Readi.
func Open(card, device uint, flags Flag, config *Config) (*PCM, error) {
	if config == nil {
		return nil, errors.New("alsa: nil config")
	}
	if FormatBits(config.Format) == 0 {
		return nil, fmt.Errorf("alsa: unsupported format %d", config.Format)
	}

	stream := 'p'
	if flags&FlagIn != 0 {
		stream = 'c'
	}
	path := fmt.Sprintf("/dev/snd/pcmC%dD%d%c", card, device, stream)

	// Non-blocking open fails fast with EBUSY when another client holds the
	// device; reads are blocking afterwards.
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot open device %s: %w", path, err)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("cannot set blocking mode on %s: %w", path, err)
	}

	p := &PCM{fd: fd, flags: flags}
	if err := p.setParams(config); err != nil {
		_ = p.Close()
		return nil, err
	}
	if flags&FlagMmap != 0 {
		if err := p.mapArea(); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	if err := ioctl(uintptr(p.fd), sndrvPCMIoctlPrepare, nil); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("cannot prepare %s: %w", path, err)
	}

	return p, nil
}

func (p *PCM) setParams(config *Config) error {
	var hw sndPCMHwParams
	hw.init()

	access := uint32(sndrvPCMAccessRwInterleaved)
	if p.flags&FlagMmap != 0 {
		access = sndrvPCMAccessMmapInterleaved
	}
	bits := FormatBits(config.Format)

	hw.setMask(sndrvPCMHwParamAccess, access)
	hw.setMask(sndrvPCMHwParamFormat, uint32(config.Format))
	hw.setMask(sndrvPCMHwParamSubformat, 0)
	hw.setMin(sndrvPCMHwParamPeriodSize, config.PeriodSize)
	hw.setInterval(sndrvPCMHwParamSampleBits, bits)
	hw.setInterval(sndrvPCMHwParamFrameBits, bits*config.Channels)
	hw.setInterval(sndrvPCMHwParamChannels, config.Channels)
	hw.setInterval(sndrvPCMHwParamPeriods, config.PeriodCount)
	hw.setInterval(sndrvPCMHwParamRate, config.Rate)

	if err := ioctl(uintptr(p.fd), sndrvPCMIoctlHwParams, unsafe.Pointer(&hw)); err != nil {
		return fmt.Errorf("cannot set hw params (%d ch, %d Hz, %s, %dx%d): %w",
			config.Channels, config.Rate, FormatName(config.Format),
			config.PeriodCount, config.PeriodSize, err)
	}

	p.config = *config
	p.config.PeriodSize, _ = hw.getInterval(sndrvPCMHwParamPeriodSize)
	p.config.PeriodCount, _ = hw.getInterval(sndrvPCMHwParamPeriods)
	p.bufferSize = p.config.PeriodSize * p.config.PeriodCount
	if p.bufferSize == 0 {
		return fmt.Errorf("driver finalized an empty buffer (period size %d, periods %d)",
			p.config.PeriodSize, p.config.PeriodCount)
	}

	sw := sndPCMSwParams{
		tstampMode:     sndrvPCMTstampEnable,
		periodStep:     1,
		availMin:       uframes(p.config.PeriodSize),
		startThreshold: uframes(p.bufferSize),
		stopThreshold:  uframes(p.bufferSize),
		boundary:       uframes(boundaryFor(p.bufferSize, longMax)),
	}
	if p.flags&FlagIn != 0 {
		sw.startThreshold = 1
	}
	if err := ioctl(uintptr(p.fd), sndrvPCMIoctlSwParams, unsafe.Pointer(&sw)); err != nil {
		return fmt.Errorf("cannot set sw params: %w", err)
	}

	// The kernel reports the boundary it actually uses.
	p.boundary = uint64(sw.boundary)
	if p.boundary == 0 {
		p.boundary = boundaryFor(p.bufferSize, longMax)
	}
	return nil
}

func (p *PCM) mapArea() error {
	size := int(p.FramesToBytes(p.bufferSize))
	area, err := unix.Mmap(p.fd, sndrvPCMMmapOffsetData, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("cannot mmap %d byte ring buffer: %w", size, err)
	}
	p.area = area
	return nil
}

// IsReady reports whether the PCM is open.
func (p *PCM) IsReady() bool {
	return p != nil && p.fd >= 0
}

// LastError returns the message of the most recent failure on this PCM.
func (p *PCM) LastError() string {
	if p == nil {
		return "no PCM handle"
	}
	return p.lastErr
}

// Config returns the configuration in effect after driver negotiation.
func (p *PCM) Config() Config {
	return p.config
}

// BufferSize returns the ring buffer size in frames.
func (p *PCM) BufferSize() uint32 {
	return p.bufferSize
}

// FramesToBytes converts a frame count to bytes for this stream's layout.
func (p *PCM) FramesToBytes(frames uint32) uint32 {
	return framesToBytes(frames, p.config.Channels, p.config.Format)
}

// Xruns returns how many overruns Readi has observed.
func (p *PCM) Xruns() int {
	return p.xruns
}

// Readi captures up to frames frames. For each contiguous run available in
// the mapped ring buffer it calls fn with the whole area and the run's frame
// offset and length, then returns the run to the driver. Runs are delivered
// in order and never overlap. The area must not be retained after fn returns.
//
// Readi returns once frames frames were delivered, when ctx is done (with
// the count delivered so far and ctx.Err()), or on a driver error.
func (p *PCM) Readi(ctx context.Context, frames uint32, fn func(areas []byte, offset, frames uint32)) (int, error) {
	if !p.IsReady() {
		return 0, ErrNotReady
	}
	if p.area == nil {
		return 0, p.fail(errors.New("alsa: Readi requires a stream opened with FlagMmap"))
	}
	if !p.running {
		if err := ioctl(uintptr(p.fd), sndrvPCMIoctlStart, nil); err != nil {
			return 0, p.fail(fmt.Errorf("cannot start capture: %w", err))
		}
		p.running = true
	}

	var done uint32
	for done < frames {
		if err := ctx.Err(); err != nil {
			return int(done), err
		}
		if err := p.syncPtr(syncPtrHwsync | syncPtrAppl | syncPtrAvailMin); err != nil {
			return int(done), p.fail(fmt.Errorf("sync_ptr: %w", err))
		}
		if err := p.checkState(); err != nil {
			return int(done), p.fail(err)
		}

		avail := captureAvail(p.sync.status.hwPtr, p.sync.control.applPtr, p.boundary)
		if avail > uint64(p.bufferSize) {
			p.xruns++
			p.running = false
			return int(done), p.fail(ErrOverrun)
		}
		if avail == 0 {
			if err := p.wait(ctx); err != nil {
				return int(done), err
			}
			continue
		}

		offset, n := nextRun(p.sync.control.applPtr, avail, frames-done, p.bufferSize)
		fn(p.area, offset, n)

		p.sync.control.applPtr = advancePtr(p.sync.control.applPtr, uint64(n), p.boundary)
		if err := p.syncPtr(syncPtrAvailMin); err != nil {
			return int(done), p.fail(fmt.Errorf("commit %d frames: %w", n, err))
		}
		done += n
	}
	return int(done), nil
}

func (p *PCM) checkState() error {
	switch p.sync.status.state {
	case sndrvPCMStateXrun:
		p.xruns++
		p.running = false
		return ErrOverrun
	case sndrvPCMStateSuspended:
		p.running = false
		return ErrSuspended
	case sndrvPCMStateDisconnected:
		p.running = false
		return ErrDisconnected
	}
	return nil
}

// wait blocks until the driver signals new frames, one poll interval
// passes, or ctx is done.
func (p *PCM) wait(ctx context.Context) error {
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	timeout := p.pollInterval()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := unix.Poll(fds, timeout)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return p.fail(fmt.Errorf("poll: %w", err))
		}
		if n == 0 {
			return nil
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) == 0 {
			return nil
		}
		if err := p.syncPtr(syncPtrHwsync | syncPtrAppl | syncPtrAvailMin); err != nil {
			return p.fail(fmt.Errorf("sync_ptr: %w", err))
		}
		if err := p.checkState(); err != nil {
			return p.fail(err)
		}
		return p.fail(errors.New("alsa: device reported a poll error"))
	}
}

// pollInterval is two periods in milliseconds, clamped to [10, 100]. It
// bounds how long a cancelled Readi stays blocked.
func (p *PCM) pollInterval() int {
	if p.config.Rate == 0 {
		return 100
	}
	ms := int(uint64(p.config.PeriodSize) * 2000 / uint64(p.config.Rate))
	return min(max(ms, 10), 100)
}

func (p *PCM) syncPtr(flags uint32) error {
	p.sync.flags = flags
	return ioctl(uintptr(p.fd), sndrvPCMIoctlSyncPtr, unsafe.Pointer(&p.sync))
}

func (p *PCM) fail(err error) error {
	p.lastErr = err.Error()
	return err
}

// Close stops the stream, unmaps the ring buffer and closes the device.
// Closing a closed PCM is a no-op.
func (p *PCM) Close() error {
	if !p.IsReady() {
		return nil
	}
	if p.running {
		_ = ioctl(uintptr(p.fd), sndrvPCMIoctlDrop, nil)
		p.running = false
	}
	if p.area != nil {
		_ = unix.Munmap(p.area)
		p.area = nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}
