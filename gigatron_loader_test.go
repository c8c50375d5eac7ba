package main

import (
	"bytes"
	"testing"
)

func TestParseGT1SingleSegmentWithStartAddress(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x02) // addr hi
	buf.WriteByte(0x00) // addr lo: segment at 0x0200
	buf.WriteByte(0x03) // 3 payload bytes
	buf.Write([]byte{0xDE, 0xAD, 0xBE})
	buf.WriteByte(0x00)       // terminator
	buf.Write([]byte{0x02, 0x00}) // start address 0x0200

	gt1, err := ParseGT1(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseGT1: %v", err)
	}
	if len(gt1.Segments) != 1 {
		t.Fatalf("len(Segments) = %d, want 1", len(gt1.Segments))
	}
	seg := gt1.Segments[0]
	if seg.Addr != 0x0200 {
		t.Fatalf("segment addr = %#x, want 0x0200", seg.Addr)
	}
	if !bytes.Equal(seg.Data, []byte{0xDE, 0xAD, 0xBE}) {
		t.Fatalf("segment data = %v, want [DE AD BE]", seg.Data)
	}
	if !gt1.Autostart() || gt1.StartAddress != 0x0200 {
		t.Fatalf("StartAddress = %#x, Autostart = %v, want 0x0200/true", gt1.StartAddress, gt1.Autostart())
	}
}

func TestParseGT1ZeroSizeMeans256(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x01)
	buf.WriteByte(0x00)
	buf.WriteByte(0x00) // size byte 0 means 256 bytes follow
	buf.Write(make([]byte, 256))
	buf.WriteByte(0x00)

	gt1, err := ParseGT1(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseGT1: %v", err)
	}
	if len(gt1.Segments[0].Data) != 256 {
		t.Fatalf("segment length = %d, want 256", len(gt1.Segments[0].Data))
	}
}

func TestParseGT1TruncatedPayloadErrors(t *testing.T) {
	data := []byte{0x01, 0x00, 0x05, 0xAA, 0xBB} // claims 5 bytes, only has 2
	_, err := ParseGT1(data)
	if err == nil {
		t.Fatalf("expected truncated-payload error, got nil")
	}
	var perr *ParseError
	if !errorsAs(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
}

// errorsAs is a tiny local stand-in for errors.As so this file only needs
// one extra import; ParseGT1 never wraps ParseError, so a direct type
// assertion is equivalent.
func errorsAs(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

func TestLoaderStartIsActiveWithZeroProgress(t *testing.T) {
	cpu, _ := newCPUTestRig(t)
	loader := NewLoader(cpu)
	gt1 := &GT1File{Segments: []GT1Segment{
		{Addr: 0x0010, Data: []byte{1, 2, 3}},
		{Addr: 0x0100, Data: make([]byte, 61)},
	}}

	loader.Start(gt1)

	if !loader.Active() {
		t.Fatalf("Active() after Start = false, want true")
	}
	if loader.Progress() != 0 {
		t.Fatalf("Progress() after Start = %v, want 0", loader.Progress())
	}
}

func TestLoaderMenuNavButtonSequence(t *testing.T) {
	cpu, _ := newCPUTestRig(t)
	loader := NewLoader(cpu)
	loader.Start(&GT1File{Segments: []GT1Segment{{Addr: 0, Data: []byte{1}}}})
	loader.state = loaderMenuNav

	cases := []struct {
		n    int
		want byte
	}{
		{1, ^byte(btnDown)},
		{2, 0xFF},
		{9, ^byte(btnDown)},
		{10, 0xFF},
		{11, ^byte(btnA)},
		{12, 0xFF},
	}
	for _, tc := range cases {
		loader.vsyncN = tc.n
		loader.stepMenuNav()
		if cpu.In != tc.want {
			t.Fatalf("n=%d: cpu.In = %#x, want %#x", tc.n, cpu.In, tc.want)
		}
	}

	loader.vsyncN = 12 + 60
	loader.stepMenuNav()
	if loader.state != loaderSyncFrame {
		t.Fatalf("state after n=72 = %d, want loaderSyncFrame", loader.state)
	}
	if loader.checksum != 0 {
		t.Fatalf("checksum reset at sync frame = %d, want 0", loader.checksum)
	}
}

func TestLoaderSetupFrameBitLength(t *testing.T) {
	cpu, _ := newCPUTestRig(t)
	loader := NewLoader(cpu)
	loader.checksum = 0

	loader.setupFrame(loaderStartOfFrame, 0x0010, []byte{0xDE, 0xAD, 0xBE})

	wantBits := 8 + 6 + 8 + 8 + loaderMaxPayload*8 + 8
	if len(loader.frameBits) != wantBits {
		t.Fatalf("len(frameBits) = %d, want %d", len(loader.frameBits), wantBits)
	}
	if loader.frameSub != frameWaitVSyncNeg {
		t.Fatalf("frameSub after setupFrame = %d, want frameWaitVSyncNeg", loader.frameSub)
	}
}

// driveLoaderOneTick advances cpu.Out through a continuous alternating
// VSYNC/HSYNC edge pattern and ticks loader once; loader.Tick only reacts to
// edges, so a steady toggle produces every edge type the protocol needs
// without caring about real-world sync frequencies.
func driveLoaderOneTick(cpu *CPU, loader *Loader, tick int) {
	hsyncHigh := tick%2 == 0
	vsyncHigh := (tick/2)%2 == 0
	var out byte
	if vsyncHigh {
		out |= outVSyncBit
	}
	if hsyncHigh {
		out |= outHSyncBit
	}
	cpu.Out = out
	loader.Tick()
}

func TestLoaderProgressMidSegment(t *testing.T) {
	cpu, _ := newCPUTestRig(t)
	loader := NewLoader(cpu)
	gt1 := &GT1File{Segments: []GT1Segment{
		{Addr: 0, Data: make([]byte, 100)},
		{Addr: 0x100, Data: make([]byte, 100)},
	}}
	loader.Start(gt1)
	loader.state = loaderSending // skip straight past menu-nav for this check

	loader.segIdx = 0
	loader.segOffset = 50
	if got := loader.Progress(); got != 0.25 {
		t.Fatalf("Progress() with segment 0 half-sent = %v, want 0.25", got)
	}

	loader.segIdx = 1
	loader.segOffset = 0
	if got := loader.Progress(); got != 0.5 {
		t.Fatalf("Progress() with segment 0 done, segment 1 not started = %v, want 0.5", got)
	}
}

func TestLoaderFullProtocolReachesComplete(t *testing.T) {
	cpu, _ := newCPUTestRig(t)
	loader := NewLoader(cpu)
	gt1 := &GT1File{Segments: []GT1Segment{{Addr: 0x0010, Data: []byte{1, 2, 3}}}}
	loader.Start(gt1)

	const maxTicks = 8000
	i := 0
	for ; i < maxTicks && loader.Active(); i++ {
		driveLoaderOneTick(cpu, loader, i)
	}

	if loader.Active() {
		t.Fatalf("loader still active after %d ticks, protocol did not complete", maxTicks)
	}
	if loader.HasError() {
		t.Fatalf("loader ended in error: %v", loader.Err())
	}
	if loader.Progress() != 1 {
		t.Fatalf("Progress() after completion = %v, want 1", loader.Progress())
	}
}
