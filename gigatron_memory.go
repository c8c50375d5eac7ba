// gigatron_memory.go - ROM/RAM storage, address translation, CTRL and MISO sidebands

/*
(c) 2026 Gigatron-Go contributors
License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"
)

// ErrInit and ErrROMLoad are the sentinel errors wrapped into NewMemory's and
// LoadROM's/LoadROMFile's returns, letting callers distinguish initialization
// failures (invalid ROM/RAM address widths) from ROM I/O failures via
// errors.Is without string matching.
var (
	ErrInit    = errors.New("gigatron: init failed")
	ErrROMLoad = errors.New("gigatron: rom load failed")
)

// Memory models the Gigatron's Harvard-architecture storage: a ROM of 16-bit
// instruction words and a byte-addressed RAM, plus the bank-switching and SPI
// sidebands that the extended (128K+) configuration multiplexes through the
// store opcode.
//
// ROM and RAM are both power-of-two sized; romMask/ramMask below are size-1 and are used
// for all wraparound indexing, per the invariant "RAM indexing is always
// translate(addr) & ram_mask".
type Memory struct {
	rom []uint16
	ram []byte

	romMask uint32
	ramMask uint32

	// Extended-configuration state. bank is the 32-bit offset XOR'd into
	// addresses with bit 15 set; ctrl is the memory-mapped control register;
	// prevCTRL records the CTRL value written during the tick just executed,
	// reset to noCTRL at the start of each tick.
	bank     uint32
	ctrl     uint16
	prevCTRL int32
	miso     byte

	extended bool
}

// NewMemory allocates ROM of 2^romBits words and RAM of 2^ramBits bytes. RAM
// is filled with uniformly random bytes to mirror indeterminate DRAM contents
// at power-on; the source is seeded from wall-clock time once per instance,
// matching real hardware's non-reproducible cold-boot state.
func NewMemory(romBits, ramBits int) (*Memory, error) {
	if romBits <= 0 || romBits > 24 {
		return nil, fmt.Errorf("%w: invalid rom_address_width %d", ErrInit, romBits)
	}
	if ramBits <= 0 || ramBits > 24 {
		return nil, fmt.Errorf("%w: invalid ram_address_width %d", ErrInit, ramBits)
	}

	romSize := 1 << romBits
	ramSize := 1 << ramBits

	m := &Memory{
		rom:      make([]uint16, romSize),
		ram:      make([]byte, ramSize),
		romMask:  uint32(romSize - 1),
		ramMask:  uint32(ramSize - 1),
		prevCTRL: noCTRL,
		extended: ramBits > defaultROMBits,
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(ramSize)))
	for i := range m.ram {
		m.ram[i] = byte(rng.IntN(256))
	}
	return m, nil
}

// LoadROM fills ROM from index 0 with big-endian 16-bit words read from r.
// Any excess in the stream is ignored; any shortfall leaves the remainder of
// ROM at its prior contents.
func (m *Memory) LoadROM(r io.Reader) error {
	buf := make([]byte, 2)
	for i := range m.rom {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrROMLoad, err)
		}
		m.rom[i] = binary.BigEndian.Uint16(buf)
	}
	return nil
}

// LoadROMFile opens path and loads it via LoadROM. Prior ROM contents are
// preserved if the file cannot be opened or is empty.
func (m *Memory) LoadROMFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrROMLoad, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err == nil && info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrROMLoad, path)
	}
	return m.LoadROM(f)
}

// ReadInstruction fetches the 16-bit word at pc, wrapping via romMask.
func (m *Memory) ReadInstruction(pc uint16) uint16 {
	return m.rom[uint32(pc)&m.romMask]
}

// translate applies the bank-XOR rule: if bit 15 of addr is set, XOR with
// bank to yield a physical index; otherwise pass through. In the base
// (non-extended) configuration bank is always zero so this is a no-op.
func (m *Memory) translate(addr uint16) uint32 {
	a := uint32(addr)
	if addr&0x8000 != 0 {
		a ^= m.bank
	}
	return a & m.ramMask
}

// ReadRAM returns the byte at addr, honoring the MISO sideband: when CTRL
// bit 0 is set, reads return MISO rather than memory contents.
func (m *Memory) ReadRAM(addr uint16) byte {
	if m.ctrl&0x01 != 0 {
		return m.miso
	}
	return m.ram[m.translate(addr)]
}

// WriteRAM writes value at addr through the normal (non-CTRL) path.
func (m *Memory) WriteRAM(addr uint16, value byte) {
	m.ram[m.translate(addr)] = value
}

// WriteStoreRAMBus performs the store opcode's RAM-bus write, which in the
// extended configuration is redirected to the CTRL sideband instead of RAM.
// In the base configuration this undefined hardware combination writes zero
// to the decoded address, matching spec.md §4.1.
func (m *Memory) WriteStoreRAMBus(addr uint16, value byte) {
	if !m.extended {
		m.ram[m.translate(addr)] = 0
		return
	}
	computedAddr := uint16(addr)
	m.ctrl = computedAddr & 0x80FD
	m.bank = (uint32(m.ctrl&0xC0) << 9) ^ 0x8000
	m.prevCTRL = int32(m.ctrl)
}

// BeginTick resets the PREV_CTRL sentinel; called once at the start of each
// CPU tick before fetch/decode/execute.
func (m *Memory) BeginTick() {
	m.prevCTRL = noCTRL
}

// PrevCTRL returns the CTRL value written during the tick just executed, or
// noCTRL if no CTRL write occurred.
func (m *Memory) PrevCTRL() int32 { return m.prevCTRL }

// SetMISO sets the byte returned by RAM reads when CTRL bit 0 is set.
func (m *Memory) SetMISO(b byte) { m.miso = b }

// Reset() and RandomizeRAM() live in component_reset.go alongside every
// other component's Reset method.
