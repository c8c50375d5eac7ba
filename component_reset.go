// component_reset.go - Reset() methods for all hardware components (hard reset support)

/*
(c) 2026 Gigatron-Go contributors
License: GPLv3 or later
*/

package main

import "math/rand/v2"

// Memory.Reset clears the CTRL/bank/MISO sidebands and leaves ROM and RAM
// untouched; see RandomizeRAM below for the separate cold-boot operation.
func (m *Memory) Reset() {
	m.bank = 0
	m.ctrl = resetCTRL
	m.prevCTRL = noCTRL
	m.miso = 0
}

// Memory.RandomizeRAM re-fills RAM with fresh random bytes, modelling a true
// cold power-on rather than a soft reset.
func (m *Memory) RandomizeRAM() {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	for i := range m.ram {
		m.ram[i] = byte(rng.IntN(256))
	}
}

// CPU.Reset sets PC=0, NEXT_PC=1, clears AC/X/Y/OUT/OUTX, sets IN=0xFF (all
// buttons released, active-low), and resets the memory controller's
// CTRL/BANK/MISO sidebands. RAM contents are preserved.
func (c *CPU) Reset() {
	c.PC = 0
	c.NextPC = 1
	c.AC = 0
	c.X = 0
	c.Y = 0
	c.Out = 0
	c.OutX = 0
	c.In = 0xFF
	c.Cycle = 0
	c.mem.Reset()
}

// VGA.Reset restores the VGA reconstructor to power-on defaults: scan
// position, edge-detection shadow, frame counter, and all three
// framebuffers cleared.
func (v *VGA) Reset() {
	v.row = 0
	v.col = 0
	v.pixelIndex = 0
	v.prevOut = 0
	v.frameCount = 0
	v.frameReady.Store(false)

	for i := range v.frameBufs {
		for j := range v.frameBufs[i] {
			v.frameBufs[i][j] = 0
		}
	}
	v.writeIdx = 0
	v.sharedIdx.Store(1)
	v.readingIdx = 2
}

// AudioResampler.Reset restores the resampler to its constructor defaults,
// clearing the accumulator, DC-bias estimate, and ring buffer, but
// preserving the configured volume/mute settings (these are host-frontend
// preferences, not architectural state).
func (a *AudioResampler) Reset() {
	a.accum = 0
	a.bias = 0
	a.readIdx = 0
	a.writeIdx = 0
	for i := range a.ring {
		a.ring[i] = 0
	}
}

// Loader.Reset returns the loader to IDLE, releasing its GT1 reference.
func (l *Loader) Reset() {
	l.state = loaderIdle
	l.gt1 = nil
	l.segIdx = 0
	l.segOffset = 0
	l.checksum = 0
	l.vsyncN = 0
	l.prevOut = 0
	l.frameBits = nil
	l.frameBitAt = 0
	l.frameSub = frameWaitVSyncNeg
	l.err = nil
}

