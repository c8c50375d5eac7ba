// gigatron_audio.go - cycle-accumulator resampling and DC-bias removal

/*
(c) 2026 Gigatron-Go contributors
License: GPLv3 or later
*/

package main

const audioRingSize = 4096 // ~5.5 frames of audio at 44.1kHz/60fps headroom

// AudioResampler observes the CPU's OUTX after every tick and rate-converts
// the 4-bit DAC code latched there from the CPU clock down to an audio
// sample stream, removing the DC bias inherent in an unsigned DAC code with
// a running exponential moving average.
type AudioResampler struct {
	cpu *CPU

	cpuHz      int
	sampleRate int
	accum      int64

	bias   float64
	alpha  float64
	volume float64
	mute   bool

	ring      [audioRingSize]float32
	readIdx   int
	writeIdx  int
}

// NewAudioResampler wires a resampler to its CPU at the given clock and
// target sample rate, with volume at full and the DC-bias filter at its
// default coefficient.
func NewAudioResampler(cpu *CPU, cpuHz, sampleRate int) *AudioResampler {
	return &AudioResampler{
		cpu:        cpu,
		cpuHz:      cpuHz,
		sampleRate: sampleRate,
		alpha:      0.99,
		volume:     1.0,
	}
}

// Tick advances the cycle accumulator by sample_rate and, each time it
// crosses cpu_hz, emits exactly one sample into the ring buffer.
func (a *AudioResampler) Tick() {
	a.accum += int64(a.sampleRate)
	for a.accum >= int64(a.cpuHz) {
		a.accum -= int64(a.cpuHz)
		a.emit()
	}
}

func (a *AudioResampler) emit() {
	raw := float64(a.cpu.OutX>>4) / 8.0
	a.bias = a.alpha*a.bias + (1-a.alpha)*raw
	s := (raw - a.bias) * a.volume

	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	if a.mute {
		s = 0
	}

	next := (a.writeIdx + 1) % audioRingSize
	if next == a.readIdx {
		return // ring full: drop the sample rather than overrun the reader
	}
	a.ring[a.writeIdx] = float32(s)
	a.writeIdx = next
}

// Available returns the number of unread samples currently buffered.
func (a *AudioResampler) Available() int {
	return (a.writeIdx - a.readIdx + audioRingSize) % audioRingSize
}

// ReadSamples copies up to len(buf) samples into buf, advancing the read
// index, and returns the number actually copied.
func (a *AudioResampler) ReadSamples(buf []float32) int {
	n := len(buf)
	avail := a.Available()
	if n > avail {
		n = avail
	}
	for i := 0; i < n; i++ {
		buf[i] = a.ring[a.readIdx]
		a.readIdx = (a.readIdx + 1) % audioRingSize
	}
	return n
}

// SetVolume clamps and sets the output volume in [0, 1].
func (a *AudioResampler) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	a.volume = v
}

// SetMute enables or disables the silence override.
func (a *AudioResampler) SetMute(m bool) { a.mute = m }

// Reset lives in component_reset.go alongside every other component's
// Reset method.
