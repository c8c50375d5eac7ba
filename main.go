// main.go - entry point: flag parsing, component wiring, run loop

/*
(c) 2026 Gigatron-Go contributors
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

func init() {
	compiledFeatures = append(compiledFeatures, "term-color")
}

// Version is the emulator's reported version string.
const Version = "0.1.0"

// bannerColor wraps s in green ANSI escapes when stdout is a terminal, the
// same term.IsTerminal check terminal_host.go uses to gate raw-mode stdin.
func bannerColor(s string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return "\x1b[32m" + s + "\x1b[0m"
}

func boilerPlate() {
	fmt.Println(bannerColor("Gigatron - a cycle-accurate emulator for the Gigatron TTL microcomputer"))
	fmt.Println(bannerColor("License: GPLv3 or later"))
}

func main() {
	romPath := flag.String("rom", "", "path to a Gigatron ROM image (required unless -gt1 is given)")
	gt1Path := flag.String("gt1", "", "path to a GT1 program to load through the loader co-processor")
	headless := flag.Bool("headless", false, "run without opening a window or audio device")
	scale := flag.Int("scale", 1, "integer window scale factor (1-4)")
	mute := flag.Bool("mute", false, "disable audio output")
	hz := flag.Int("hz", defaultCPUHz, "CPU clock rate in Hz")
	sampleRate := flag.Int("sample-rate", defaultSampleRate, "audio output sample rate in Hz")
	extended := flag.Bool("extended", false, "enable the 128K+ extended RAM/bank-switching configuration")
	showVersion := flag.Bool("version", false, "print version and compiled features, then exit")
	showFeatures := flag.Bool("features", false, "print version and compiled features, then exit")
	flag.Parse()

	if *showVersion || *showFeatures {
		printFeatures()
		return
	}

	boilerPlate()

	if *romPath == "" && *gt1Path == "" {
		fmt.Println("Error: -rom is required (no built-in boot ROM is bundled)")
		os.Exit(1)
	}

	cfg := DefaultConfig()
	if *extended {
		cfg = ExtendedConfig()
	}
	cfg.Hz = *hz
	cfg.SampleRate = *sampleRate

	machine, err := NewMachine(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize machine: %v\n", err)
		os.Exit(1)
	}

	if *romPath != "" {
		if err := machine.LoadROMFile(*romPath); err != nil {
			fmt.Printf("Failed to load ROM: %v\n", err)
			os.Exit(1)
		}
	}

	var gt1 *GT1File
	if *gt1Path != "" {
		data, err := os.ReadFile(*gt1Path)
		if err != nil {
			fmt.Printf("Failed to read GT1 file: %v\n", err)
			os.Exit(1)
		}
		gt1, err = ParseGT1(data)
		if err != nil {
			fmt.Printf("Failed to parse GT1 file: %v\n", err)
			os.Exit(1)
		}
	}

	videoBackend := VIDEO_BACKEND_EBITEN
	if *headless {
		videoBackend = VIDEO_BACKEND_HEADLESS
	}
	video, err := NewVideoOutput(videoBackend)
	if err != nil {
		fmt.Printf("Failed to initialize video: %v\n", err)
		os.Exit(1)
	}

	var player *OtoPlayer
	if !*headless {
		player, err = NewOtoPlayer(cfg.SampleRate)
		if err != nil {
			fmt.Printf("Failed to initialize audio: %v\n", err)
			os.Exit(1)
		}
		player.SetupPlayer(machine.Audio)
	}
	machine.Audio.SetMute(*mute)

	if err := video.SetDisplayConfig(DisplayConfig{
		Width:       640,
		Height:      480,
		Scale:       ClampScale(*scale),
		PixelFormat: PixelFormatRGBA,
		RefreshRate: 60,
	}); err != nil {
		fmt.Printf("Failed to configure display: %v\n", err)
		os.Exit(1)
	}

	if kb, ok := video.(KeyboardInput); ok {
		kb.SetKeyHandler(machine.SetExternalIn)
	}
	if eb, ok := video.(*EbitenOutput); ok {
		eb.hud.SetEnabled(true)
		eb.SetHUDSource(func() (uint64, uint64, bool, float64) {
			return machine.CPU.Cycle, machine.VGA.FrameCount(), machine.Loader.Active(), machine.Loader.Progress()
		})
	}

	if err := video.Start(); err != nil {
		fmt.Printf("Failed to start video: %v\n", err)
		os.Exit(1)
	}
	if player != nil {
		player.Start()
	}

	if gt1 != nil {
		machine.StartLoader(gt1)
		fmt.Printf("Loading %s through the GT1 loader...\n", *gt1Path)
	}

	runMachine(machine, video, cfg.Hz)

	if player != nil {
		player.Stop()
	}
	_ = video.Stop()
	_ = video.Close()
}

// runMachine ticks machine in batches for as long as the video output
// reports itself running, pacing batches against the wall clock so the
// emulated clock tracks hz in real time, and publishing a frame whenever
// VGA completes one. video.Start has already returned by the time this is
// called (for the Ebiten backend, that means its own event-loop goroutine
// is live).
func runMachine(machine *Machine, video VideoOutput, hz int) {
	const ticksPerBatch = 4096

	start := time.Now()
	var ticksDone int64

	for video.IsStarted() {
		for i := 0; i < ticksPerBatch; i++ {
			machine.Tick()
			if machine.VGA.FrameReady() {
				if err := video.UpdateFrame(machine.VGA.GetFrame()); err != nil {
					fmt.Printf("video update failed: %v\n", err)
				}
			}
		}
		ticksDone += ticksPerBatch

		target := start.Add(time.Duration(ticksDone) * time.Second / time.Duration(hz))
		if sleep := target.Sub(time.Now()); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}
