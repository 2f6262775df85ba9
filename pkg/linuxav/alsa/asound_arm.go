//go:build linux && arm && !arm64

package alsa

import "unsafe"

// uframes is snd_pcm_uframes_t (unsigned long).
type uframes = uint32

var (
	_ [376]byte = [unsafe.Sizeof(sndCtlCardInfo{})]byte{}
	_ [288]byte = [unsafe.Sizeof(sndPCMInfo{})]byte{}
	_ [604]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
	_ [104]byte = [unsafe.Sizeof(sndPCMSwParams{})]byte{}
)

// IOCTL constants for 32-bit ARM.
// hw_params and sw_params differ from 64-bit due to snd_pcm_uframes_t size.
const (
	sndrvCtlIoctlCardInfo      = 0x81785501
	sndrvCtlIoctlPCMNextDevice = 0x80045530
	sndrvCtlIoctlPCMInfo       = 0xc1205531

	sndrvPCMIoctlInfo     = 0x81204101
	sndrvPCMIoctlHwRefine = 0xc25c4110
	sndrvPCMIoctlHwParams = 0xc25c4111
	sndrvPCMIoctlSwParams = 0xc0684113
	sndrvPCMIoctlPrepare  = 0x00004140
)

// longMax bounds the kernel's pointer boundary.
const longMax = 1<<31 - 1
