package player

import (
	"image/color"

	"github.com/user-none/mm5snd/apu"
)

// Meter view geometry. Each channel gets one row: a volume bar and a
// pitch marker.
const (
	ScreenWidth  = 256
	ScreenHeight = rowHeight * apu.NumChannels

	rowHeight = 16
	barTop    = 3
	barHeight = 10
	barUnit   = 15 // pixels per volume step
)

// ChannelColors are the meter colors in register order.
var ChannelColors = [apu.NumChannels]color.RGBA{
	{0x40, 0xC0, 0xFF, 0xFF},
	{0x40, 0xFF, 0x90, 0xFF},
	{0xFF, 0xC0, 0x40, 0xFF},
	{0xE0, 0xE0, 0xE0, 0xFF},
}

var markerColor = color.RGBA{0xFF, 0x40, 0x40, 0xFF}

// GetFramebuffer returns the meter view as RGBA pixel data.
func (p *Player) GetFramebuffer() []byte {
	return p.framebuffer
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (p *Player) GetFramebufferStride() int {
	return ScreenWidth * 4
}

// GetActiveHeight returns the meter view height.
func (p *Player) GetActiveHeight() int {
	return ScreenHeight
}

func (p *Player) renderMeters() {
	clear(p.framebuffer)
	for ch, c := range p.synth.Registers().Channels() {
		if !c.Audible() {
			continue
		}
		y := ch*rowHeight + barTop
		p.fill(0, y, int(c.Volume)*barUnit, barHeight, ChannelColors[ch])
		if ch != apu.Noise {
			p.fill(markerX(c.Period), y, 2, barHeight, markerColor)
		}
	}
}

// markerX places a timer period on the row, high pitches to the right.
func markerX(period uint16) int {
	x := ScreenWidth - 2 - int(period>>3)
	if x < 0 {
		x = 0
	}
	return x
}

func (p *Player) fill(x, y, w, h int, c color.RGBA) {
	if x+w > ScreenWidth {
		w = ScreenWidth - x
	}
	stride := ScreenWidth * 4
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			i := row*stride + col*4
			p.framebuffer[i] = c.R
			p.framebuffer[i+1] = c.G
			p.framebuffer[i+2] = c.B
			p.framebuffer[i+3] = c.A
		}
	}
}
