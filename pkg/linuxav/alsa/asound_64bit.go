//go:build linux && (amd64 || arm64)

package alsa

import "unsafe"

// uframes is snd_pcm_uframes_t (unsigned long).
type uframes = uint64

// Compile-time struct size assertions.
// These will cause build failures if struct sizes don't match kernel expectations.
var (
	_ [376]byte = [unsafe.Sizeof(sndCtlCardInfo{})]byte{}
	_ [288]byte = [unsafe.Sizeof(sndPCMInfo{})]byte{}
	_ [32]byte  = [unsafe.Sizeof(sndMask{})]byte{}
	_ [12]byte  = [unsafe.Sizeof(sndInterval{})]byte{}
	_ [608]byte = [unsafe.Sizeof(sndPCMHwParams{})]byte{}
	_ [136]byte = [unsafe.Sizeof(sndPCMSwParams{})]byte{}
	_ [56]byte  = [unsafe.Sizeof(sndPCMMmapStatus{})]byte{}
	_ [16]byte  = [unsafe.Sizeof(sndPCMMmapControl{})]byte{}
	_ [136]byte = [unsafe.Sizeof(sndPCMSyncPtr{})]byte{}
)

// IOCTL constants for 64-bit architectures.
const (
	// Control interface IOCTLs.
	sndrvCtlIoctlCardInfo      = 0x81785501
	sndrvCtlIoctlPCMNextDevice = 0x80045530
	sndrvCtlIoctlPCMInfo       = 0xc1205531

	// PCM IOCTLs.
	sndrvPCMIoctlInfo     = 0x81204101
	sndrvPCMIoctlSyncPtr  = 0xc0884123
	sndrvPCMIoctlHwRefine = 0xc2604110
	sndrvPCMIoctlHwParams = 0xc2604111
	sndrvPCMIoctlSwParams = 0xc0884113
	sndrvPCMIoctlPrepare  = 0x00004140
	sndrvPCMIoctlStart    = 0x00004142
	sndrvPCMIoctlDrop     = 0x00004143
)

// longMax bounds the kernel's pointer boundary.
const longMax = 1<<63 - 1

// sndPCMMmapStatus has size 56 bytes.
type sndPCMMmapStatus struct {
	state          int32    // offset 0
	_              [4]byte  // padding
	hwPtr          uint64   // offset 8
	tstamp         [16]byte // offset 16
	suspendedState int32    // offset 32
	_              [4]byte  // padding
	audioTstamp    [16]byte // offset 40
}

// sndPCMMmapControl has size 16 bytes.
type sndPCMMmapControl struct {
	applPtr  uint64 // offset 0
	availMin uint64 // offset 8
}

// sndPCMSyncPtr has size 136 bytes; status and control sit in 64-byte unions.
type sndPCMSyncPtr struct {
	flags   uint32            // offset 0
	_       [4]byte           // padding
	status  sndPCMMmapStatus  // offset 8
	_       [8]byte           // union padding
	control sndPCMMmapControl // offset 72
	_       [48]byte          // union padding
}
