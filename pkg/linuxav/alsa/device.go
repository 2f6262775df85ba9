//go:build linux

package alsa

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ListDevices returns all available ALSA audio capture devices.
func ListDevices() ([]Device, error) {
	var devices []Device

	// Iterate through all sound cards
	for cardNum := 0; ; cardNum++ {
		ctlPath := fmt.Sprintf("/dev/snd/controlC%d", cardNum)
		ctlFd, err := unix.Open(ctlPath, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			if errors.Is(err, unix.ENOENT) {
				break // No more cards
			}
			continue // Skip this card
		}

		cardDevices, err := listCardDevices(ctlFd, cardNum)
		_ = unix.Close(ctlFd)
		if err != nil {
			continue
		}
		devices = append(devices, cardDevices...)
	}

	return devices, nil
}

func listCardDevices(ctlFd, cardNum int) ([]Device, error) {
	cardInfo := sndCtlCardInfo{}
	if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlCardInfo, unsafe.Pointer(&cardInfo)); err != nil {
		return nil, err
	}

	var devices []Device
	deviceNum := int32(-1)
	for {
		if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMNextDevice, unsafe.Pointer(&deviceNum)); err != nil {
			break
		}
		if deviceNum < 0 {
			break // No more devices
		}

		pcmInfo := sndPCMInfo{
			device: uint32(deviceNum),
			stream: StreamCapture,
		}
		if err := ioctl(uintptr(ctlFd), sndrvCtlIoctlPCMInfo, unsafe.Pointer(&pcmInfo)); err != nil {
			continue // Device doesn't support capture
		}

		device := Device{
			CardNumber:   cardNum,
			CardID:       cstr(cardInfo.id[:]),
			CardName:     cstr(cardInfo.longname[:]),
			DeviceNumber: int(deviceNum),
			DeviceName:   cstr(pcmInfo.name[:]),
			Type:         "capture",
			ALSADevice:   FormatALSADevice(cardNum, int(deviceNum)),
		}

		if caps, err := queryCapabilities(cardNum, int(deviceNum)); err == nil {
			device.SupportedRates = caps.rates
			device.MinChannels = caps.minChannels
			device.MaxChannels = caps.maxChannels
			device.SupportedFormats = caps.formats
			device.MinBufferSize = caps.minBufferSize
			device.MaxBufferSize = caps.maxBufferSize
			device.MinPeriodSize = caps.minPeriodSize
			device.MaxPeriodSize = caps.maxPeriodSize
		}

		devices = append(devices, device)
	}
	return devices, nil
}

type capabilities struct {
	rates         []int
	minChannels   int
	maxChannels   int
	formats       []string
	minBufferSize int
	maxBufferSize int
	minPeriodSize int
	maxPeriodSize int
}

func queryCapabilities(cardNum, deviceNum int) (*capabilities, error) {
	pcmPath := fmt.Sprintf("/dev/snd/pcmC%dD%dc", cardNum, deviceNum)

	// Non-blocking so a device held by another client doesn't stall enumeration.
	fd, err := unix.Open(pcmPath, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	hwparams := sndPCMHwParams{}
	hwparams.init()
	hwparams.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessMmapInterleaved)

	if err := ioctl(uintptr(fd), sndrvPCMIoctlHwRefine, unsafe.Pointer(&hwparams)); err != nil {
		return nil, err
	}

	caps := &capabilities{}

	minCh, maxCh := hwparams.getInterval(sndrvPCMHwParamChannels)
	caps.minChannels = int(minCh)
	caps.maxChannels = int(maxCh)

	minRate, maxRate := hwparams.getInterval(sndrvPCMHwParamRate)
	for _, rate := range CommonSampleRates {
		if uint32(rate) >= minRate && uint32(rate) <= maxRate {
			caps.rates = append(caps.rates, rate)
		}
	}

	for _, format := range CommonFormats {
		if hwparams.checkMask(sndrvPCMHwParamFormat, uint32(format)) {
			caps.formats = append(caps.formats, FormatName(format))
		}
	}

	minBuf, maxBuf := hwparams.getInterval(sndrvPCMHwParamBufferSize)
	caps.minBufferSize = int(minBuf)
	caps.maxBufferSize = int(maxBuf)

	minPer, maxPer := hwparams.getInterval(sndrvPCMHwParamPeriodSize)
	caps.minPeriodSize = int(minPer)
	caps.maxPeriodSize = int(maxPer)

	return caps, nil
}
