// gigatron_vga.go - edge-triggered VGA timing reconstruction

/*
(c) 2026 Gigatron-Go contributors
License: GPLv3 or later
*/

package main

import "sync/atomic"

// VGA timing-window constants, in VGA dot-clock units. One Gigatron pixel is
// four dot-clocks wide.
const (
	vgaVBackPorch = 34
	vgaVisibleH   = 480
	vgaHBackPorch = 48
	vgaVisibleW   = 640

	vgaFrameWidth  = 640
	vgaFrameHeight = 480
	bytesPerPixel  = 4
)

// VGA observes the CPU's OUT register after every tick and reconstructs a
// pixel framebuffer purely from HSYNC/VSYNC edge timing, exactly as the real
// hardware's external video circuitry does. It implements VideoSource.
type VGA struct {
	cpu *CPU

	row, col   int
	pixelIndex int
	prevOut    byte

	frameCount   uint64
	frameReady   atomic.Bool
	enabled      atomic.Bool
	vsyncLatched atomic.Bool

	// Triple-buffered framebuffer: the tick loop writes into frameBufs[writeIdx],
	// then publishes it by swapping sharedIdx; a reader (runMachine in main.go,
	// or a test) takes ownership of whichever buffer sharedIdx currently names and
	// leaves the remaining slot for the next write. This lock-free rotation
	// mirrors the single-writer/single-reader discipline spec.md §5 requires.
	frameBufs  [3][]byte
	writeIdx   int
	sharedIdx  atomic.Int32
	readingIdx int
}

// NewVGA wires a VGA reconstructor to its CPU and allocates the three
// framebuffers.
func NewVGA(cpu *CPU) *VGA {
	v := &VGA{cpu: cpu}
	for i := range v.frameBufs {
		v.frameBufs[i] = make([]byte, vgaFrameWidth*vgaFrameHeight*bytesPerPixel)
	}
	v.sharedIdx.Store(1)
	v.readingIdx = 2
	v.enabled.Store(true)
	return v
}

// Tick observes the CPU's current OUT, advances (row, col) per the
// falling-edge rules, and emits a pixel quadruple when inside the visible
// window with both sync bits high.
func (v *VGA) Tick() {
	out := v.cpu.Out
	falling := v.prevOut & ^out

	if falling&outVSyncBit != 0 {
		v.row = 0
		v.pixelIndex = 0
		v.frameReady.Store(true)
		v.frameCount++
		v.publish()
	}
	if falling&outHSyncBit != 0 {
		v.col = 0
		v.row++
	}

	bothSyncHigh := out&outVSyncBit != 0 && out&outHSyncBit != 0
	visible := v.row >= vgaVBackPorch && v.row < vgaVBackPorch+vgaVisibleH &&
		v.col >= vgaHBackPorch && v.col < vgaHBackPorch+vgaVisibleW

	if bothSyncHigh && visible {
		r, g, b := expandColor(out & outColorMask)
		buf := v.frameBufs[v.writeIdx]
		idx := v.pixelIndex
		for i := 0; i < 4; i++ {
			if idx+3 < len(buf) {
				buf[idx+0] = r
				buf[idx+1] = g
				buf[idx+2] = b
				buf[idx+3] = 255
			}
			idx += bytesPerPixel
		}
	}
	// col and pixel_index advance by one Gigatron pixel's worth every tick,
	// regardless of visibility.
	v.col += 4
	v.pixelIndex += 16

	v.prevOut = out
}

// expandColor expands a 6-bit RRGGBB color into 8-bit-per-channel RGB by
// replicating each 2-bit channel into all four 2-bit positions of a byte:
// values 0, 85, 170, 255.
func expandColor(c byte) (r, g, b byte) {
	chan2 := func(v byte) byte {
		return v * 85
	}
	r = chan2((c >> 4) & 0x3)
	g = chan2((c >> 2) & 0x3)
	b = chan2(c & 0x3)
	return
}

// publish swaps the just-completed framebuffer into sharedIdx for readers,
// and advances writeIdx to whichever slot is not currently shared or being
// read.
func (v *VGA) publish() {
	newShared := v.writeIdx
	old := v.sharedIdx.Swap(int32(newShared))
	v.writeIdx = int(old)
	if v.writeIdx == v.readingIdx {
		for i := 0; i < 3; i++ {
			if i != newShared && i != v.readingIdx {
				v.writeIdx = i
				break
			}
		}
	}
}

// FrameReady atomically reads and clears the frame-complete latch.
func (v *VGA) FrameReady() bool {
	return v.frameReady.Swap(false)
}

// GetFrame implements VideoSource: returns the most recently published
// frame, taking ownership of that buffer slot for the caller's use until the
// next call.
func (v *VGA) GetFrame() []byte {
	v.readingIdx = int(v.sharedIdx.Swap(int32(v.readingIdx)))
	return v.frameBufs[v.readingIdx]
}

// IsEnabled implements VideoSource.
func (v *VGA) IsEnabled() bool { return v.enabled.Load() }

// GetLayer implements VideoSource. The VGA reconstructor is the only video
// source in this emulator, so its Z-order is irrelevant but fixed at 0.
func (v *VGA) GetLayer() int { return 0 }

// GetDimensions implements VideoSource.
func (v *VGA) GetDimensions() (w, h int) { return vgaFrameWidth, vgaFrameHeight }

// SignalVSync implements VideoSource; this emulator's VGA component derives
// its own VSync purely from OUT edges, so this is a no-op hook kept only to
// satisfy the interface.
func (v *VGA) SignalVSync() {}

// FrameCount returns the number of completed frames (VSYNC falling edges)
// since Reset.
func (v *VGA) FrameCount() uint64 { return v.frameCount }

// Reset lives in component_reset.go alongside every other component's
// Reset method.
