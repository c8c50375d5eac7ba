// gigatron_driver.go - per-cycle orchestration of CPU, VGA, audio, and loader

/*
(c) 2026 Gigatron-Go contributors
License: GPLv3 or later
*/

package main

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

func init() {
	compiledFeatures = append(compiledFeatures, "gt1-loader", "errgroup-batch")
}

// Config is the core's external configuration surface, per spec.md §6.
type Config struct {
	Hz             int // CPU clock, default 6,250,000
	SampleRate     int // audio output rate, default 44,100
	ROMAddressBits int // default 16
	RAMAddressBits int // default 15, or 17 for extended configurations
}

// DefaultConfig returns the spec's default configuration.
func DefaultConfig() Config {
	return Config{
		Hz:             defaultCPUHz,
		SampleRate:     defaultSampleRate,
		ROMAddressBits: defaultROMBits,
		RAMAddressBits: defaultRAMBits,
	}
}

// ExtendedConfig returns the spec's 128K+ configuration: RAM addressed with
// 17 bits, enabling the bank-XOR and CTRL-sideband behavior in Memory.
func ExtendedConfig() Config {
	cfg := DefaultConfig()
	cfg.RAMAddressBits = extRAMBits
	return cfg
}

// Machine wires the four CORE components together and drives them one tick
// at a time in the strict order spec.md §4.6 requires: external IN (when the
// loader is inactive), cpu.Tick(), vga.Tick(), audio.Tick(), loader.Tick().
type Machine struct {
	Config Config

	Memory *Memory
	CPU    *CPU
	VGA    *VGA
	Audio  *AudioResampler
	Loader *Loader

	// externalIn is set by the host frontend (keyboard/controller mapping);
	// applied to CPU.In only while the loader is not driving it.
	externalIn byte
}

// NewMachine allocates memory and all four components per cfg.
func NewMachine(cfg Config) (*Machine, error) {
	mem, err := NewMemory(cfg.ROMAddressBits, cfg.RAMAddressBits)
	if err != nil {
		return nil, fmt.Errorf("gigatron: init: %w", err)
	}

	cpu := NewCPU(mem)
	m := &Machine{
		Config:     cfg,
		Memory:     mem,
		CPU:        cpu,
		VGA:        NewVGA(cpu),
		Audio:      NewAudioResampler(cpu, cfg.Hz, cfg.SampleRate),
		Loader:     NewLoader(cpu),
		externalIn: 0xFF,
	}
	return m, nil
}

// SetExternalIn records the controller/keyboard state the driver applies to
// CPU.In whenever the loader is not active.
func (m *Machine) SetExternalIn(in byte) { m.externalIn = in }

// LoadROMFile loads a ROM image from path.
func (m *Machine) LoadROMFile(path string) error {
	return m.Memory.LoadROMFile(path)
}

// StartLoader begins delivering gt1 through the loader co-processor.
func (m *Machine) StartLoader(gt1 *GT1File) {
	m.Loader.Start(gt1)
}

// Tick advances every component by exactly one clock cycle, in the order
// spec.md §4.6 mandates.
func (m *Machine) Tick() {
	if !m.Loader.Active() {
		m.CPU.In = m.externalIn
	}
	m.CPU.Tick()
	m.VGA.Tick()
	m.Audio.Tick()
	m.Loader.Tick()
}

// Run advances the machine by n ticks.
func (m *Machine) Run(n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

// Reset returns every component to its power-on state. ROM contents are
// preserved; RAM is preserved by CPU.Reset (re-randomization is a separate,
// explicit cold-boot operation via Memory.RandomizeRAM).
func (m *Machine) Reset() {
	m.CPU.Reset()
	m.VGA.Reset()
	m.Audio.Reset()
	m.Loader.Reset()
}

// RunBatch runs fn concurrently over n independently constructed Machines
// (one per goroutine, each with its own Config), collecting the first
// error. Intended for headless soak runs and multi-instance integration
// testing where each Machine ticks in total isolation — the CORE itself
// never runs ticks concurrently within a single Machine, since spec.md §5
// mandates a single-threaded tick sequence per instance.
func RunBatch(configs []Config, fn func(*Machine) error) error {
	var g errgroup.Group
	for _, cfg := range configs {
		cfg := cfg
		g.Go(func() error {
			m, err := NewMachine(cfg)
			if err != nil {
				return err
			}
			return fn(m)
		})
	}
	return g.Wait()
}
