//go:build linux

package alsa

// The kernel tracks the hardware and application positions as frame
// counters that wrap at a boundary: the largest power-of-two multiple of
// the buffer size that keeps pointer sums inside a signed long.

func boundaryFor(bufferSize uint32, limit uint64) uint64 {
	if bufferSize == 0 {
		return 0
	}
	b := uint64(bufferSize)
	for b*2 <= limit-uint64(bufferSize) {
		b *= 2
	}
	return b
}

// captureAvail is the number of captured frames not yet consumed.
func captureAvail(hwPtr, applPtr, boundary uint64) uint64 {
	avail := hwPtr + boundary - applPtr
	if avail >= boundary {
		avail -= boundary
	}
	return avail
}

func advancePtr(ptr, frames, boundary uint64) uint64 {
	ptr += frames
	if ptr >= boundary {
		ptr -= boundary
	}
	return ptr
}

// nextRun returns the ring offset and length of the next contiguous run of
// frames to hand out, given what is available and what is still wanted.
func nextRun(applPtr, avail uint64, wanted, bufferSize uint32) (offset, frames uint32) {
	offset = uint32(applPtr % uint64(bufferSize))
	frames = wanted
	if avail < uint64(frames) {
		frames = uint32(avail)
	}
	if contiguous := bufferSize - offset; frames > contiguous {
		frames = contiguous
	}
	return offset, frames
}
