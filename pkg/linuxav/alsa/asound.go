//go:build linux

package alsa

// Hardware parameter constants (same across architectures).
const (
	sndrvPCMHwParamAccess        = 0
	sndrvPCMHwParamFormat        = 1
	sndrvPCMHwParamSubformat     = 2
	sndrvPCMHwParamFirstMask     = 0
	sndrvPCMHwParamLastMask      = 2
	sndrvPCMHwParamSampleBits    = 8
	sndrvPCMHwParamFrameBits     = 9
	sndrvPCMHwParamChannels      = 10
	sndrvPCMHwParamRate          = 11
	sndrvPCMHwParamPeriodTime    = 12
	sndrvPCMHwParamPeriodSize    = 13
	sndrvPCMHwParamPeriodBytes   = 14
	sndrvPCMHwParamPeriods       = 15
	sndrvPCMHwParamBufferTime    = 16
	sndrvPCMHwParamBufferSize    = 17
	sndrvPCMHwParamBufferBytes   = 18
	sndrvPCMHwParamTickTime      = 19
	sndrvPCMHwParamFirstInterval = 8
	sndrvPCMHwParamLastInterval  = 19

	sndrvMaskMax = 256

	sndrvPCMAccessMmapInterleaved = 0
	sndrvPCMAccessRwInterleaved   = 3

	sndrvPCMTstampEnable = 1

	sndrvPCMMmapOffsetData = 0x00000000

	// interval bitfield: openmin:1, openmax:1, integer:1, empty:1
	sndIntervalInteger = 1 << 2
)

// PCM states reported in the mmap status page.
const (
	sndrvPCMStateOpen         = 0
	sndrvPCMStateSetup        = 1
	sndrvPCMStatePrepared     = 2
	sndrvPCMStateRunning      = 3
	sndrvPCMStateXrun         = 4
	sndrvPCMStateDraining     = 5
	sndrvPCMStatePaused       = 6
	sndrvPCMStateSuspended    = 7
	sndrvPCMStateDisconnected = 8
)

// SYNC_PTR flags. A set APPL/AVAIL_MIN bit reads the value from the kernel,
// a clear one writes ours.
const (
	syncPtrHwsync   = 1 << 0
	syncPtrAppl     = 1 << 1
	syncPtrAvailMin = 1 << 2
)

// sndCtlCardInfo has size 376 bytes.
type sndCtlCardInfo struct {
	card       int32     // offset 0
	_          [4]byte   // padding
	id         [16]byte  // offset 8
	driver     [16]byte  // offset 24
	name       [32]byte  // offset 40
	longname   [80]byte  // offset 72
	reserved   [16]byte  // offset 152
	mixername  [80]byte  // offset 168
	components [128]byte // offset 248
}

// sndPCMInfo has size 288 bytes.
type sndPCMInfo struct {
	device          uint32   // offset 0
	subdevice       uint32   // offset 4
	stream          int32    // offset 8
	card            int32    // offset 12
	id              [64]byte // offset 16
	name            [80]byte // offset 80
	subname         [32]byte // offset 160
	devClass        int32    // offset 192
	devSubclass     int32    // offset 196
	subdevicesCount uint32   // offset 200
	subdevicesAvail uint32   // offset 204
	_               [16]byte // padding
	reserved        [64]byte // offset 224
}

// sndMask has size 32 bytes.
type sndMask struct {
	bits [(sndrvMaskMax + 31) / 32]uint32
}

// sndInterval has size 12 bytes.
type sndInterval struct {
	minVal uint32
	maxVal uint32
	bit    uint32
}

// sndPCMHwParams is 608 bytes on 64-bit and 604 on 32-bit, the difference
// being fifoSize (snd_pcm_uframes_t).
type sndPCMHwParams struct {
	flags     uint32
	masks     [sndrvPCMHwParamLastMask - sndrvPCMHwParamFirstMask + 1]sndMask
	mres      [5]sndMask
	intervals [sndrvPCMHwParamLastInterval - sndrvPCMHwParamFirstInterval + 1]sndInterval
	ires      [9]sndInterval
	rmask     uint32
	cmask     uint32
	info      uint32
	msbits    uint32
	rateNum   uint32
	rateDen   uint32
	fifoSize  uframes
	reserved  [64]byte
}

// sndPCMSwParams is 136 bytes on 64-bit and 104 on 32-bit.
type sndPCMSwParams struct {
	tstampMode       int32
	periodStep       uint32
	sleepMin         uint32
	availMin         uframes
	xferAlign        uframes
	startThreshold   uframes
	stopThreshold    uframes
	silenceThreshold uframes
	silenceSize      uframes
	boundary         uframes
	proto            uint32
	tstampType       uint32
	reserved         [56]byte
}

func (p *sndPCMHwParams) init() {
	for i := range p.masks {
		p.masks[i].bits[0] = 0xFFFFFFFF
		p.masks[i].bits[1] = 0xFFFFFFFF
	}
	for i := range p.intervals {
		p.intervals[i].maxVal = 0xFFFFFFFF
	}
	p.rmask = 0xFFFFFFFF
	p.cmask = 0
	p.info = 0xFFFFFFFF
}

func (p *sndPCMHwParams) setMask(param, val uint32) {
	p.masks[param].bits[0] = 0
	p.masks[param].bits[1] = 0
	p.masks[param].bits[val>>5] = 1 << (val & 0x1F)
}

func (p *sndPCMHwParams) checkMask(param, val uint32) bool {
	return p.masks[param].bits[val>>5]&(1<<(val&0x1F)) > 0
}

// setInterval pins param to exactly val.
func (p *sndPCMHwParams) setInterval(param, val uint32) {
	idx := param - sndrvPCMHwParamFirstInterval
	p.intervals[idx].minVal = val
	p.intervals[idx].maxVal = val
	p.intervals[idx].bit = sndIntervalInteger
}

// setMin lets the driver pick any value of param at or above val.
func (p *sndPCMHwParams) setMin(param, val uint32) {
	idx := param - sndrvPCMHwParamFirstInterval
	p.intervals[idx].minVal = val
}

func (p *sndPCMHwParams) getInterval(param uint32) (minVal, maxVal uint32) {
	idx := param - sndrvPCMHwParamFirstInterval
	return p.intervals[idx].minVal, p.intervals[idx].maxVal
}
