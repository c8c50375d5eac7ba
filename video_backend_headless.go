// video_backend_headless.go - no-op video output for batch runs and soak tests

/*
(c) 2026 Gigatron-Go contributors
License: GPLv3 or later
*/

package main

func init() {
	compiledFeatures = append(compiledFeatures, "video:headless")
}

// HeadlessVideoOutput discards every frame. It exists so RunBatch and CI
// soak runs can drive a Machine's VGA reconstructor without opening a window.
type HeadlessVideoOutput struct {
	running     bool
	width       int
	height      int
	format      PixelFormat
	scale       int
	fullscreen  bool
	refreshRate int
	frameCount  uint64
}

// NewHeadlessVideoOutput returns a VideoOutput that accepts and discards frames.
func NewHeadlessVideoOutput() *HeadlessVideoOutput {
	return &HeadlessVideoOutput{
		width:       640,
		height:      480,
		format:      PixelFormatRGBA,
		scale:       1,
		refreshRate: 60,
	}
}

func (ho *HeadlessVideoOutput) Start() error { ho.running = true; return nil }
func (ho *HeadlessVideoOutput) Stop() error  { ho.running = false; return nil }
func (ho *HeadlessVideoOutput) Close() error { return ho.Stop() }
func (ho *HeadlessVideoOutput) IsStarted() bool { return ho.running }

func (ho *HeadlessVideoOutput) SetDisplayConfig(config DisplayConfig) error {
	if config.Width > 0 {
		ho.width = config.Width
	}
	if config.Height > 0 {
		ho.height = config.Height
	}
	ho.format = config.PixelFormat
	ho.scale = ClampScale(config.Scale)
	ho.fullscreen = config.Fullscreen
	return nil
}

func (ho *HeadlessVideoOutput) GetDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Width:       ho.width,
		Height:      ho.height,
		Scale:       ho.scale,
		PixelFormat: ho.format,
		RefreshRate: ho.refreshRate,
		Fullscreen:  ho.fullscreen,
	}
}

func (ho *HeadlessVideoOutput) UpdateFrame(buffer []byte) error {
	ho.frameCount++
	return nil
}

func (ho *HeadlessVideoOutput) WaitForVSync() error { return nil }
func (ho *HeadlessVideoOutput) GetFrameCount() uint64 { return ho.frameCount }
func (ho *HeadlessVideoOutput) GetRefreshRate() int   { return ho.refreshRate }
