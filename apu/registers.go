// Package apu holds the sinks the driver writes 2A03 registers into:
// a trace recorder, a register shadow that decodes channel state, and a
// preview synthesizer.
package apu

// Writer receives APU register writes.
type Writer interface {
	Write(addr uint16, value uint8)
}

// Register window.
const (
	RegBase   = 0x4000
	RegStatus = 0x4015
	regCount  = 0x18
)

// Channel indices in register order.
const (
	Pulse1 = iota
	Pulse2
	Triangle
	Noise
	NumChannels
)

var channelNames = [NumChannels]string{"pulse1", "pulse2", "triangle", "noise"}

// ChannelName returns a short label for a channel index.
func ChannelName(ch int) string {
	if ch < 0 || ch >= NumChannels {
		return "?"
	}
	return channelNames[ch]
}

// Channel is the decoded state of one APU channel.
type Channel struct {
	Enabled bool
	Volume  uint8  // 0-15; triangle reports 15 while its counter is open
	Duty    uint8  // pulse only
	Period  uint16 // 11-bit timer; noise holds the 4-bit rate index
	Loop    bool   // noise short mode
}

// Audible reports whether the channel produces sound.
func (c Channel) Audible() bool {
	return c.Enabled && c.Volume != 0
}

// Registers shadows the APU register file. It is a Writer.
type Registers struct {
	regs [regCount]uint8
}

// Write stores a register write. Addresses outside $4000-$4017 are ignored.
func (r *Registers) Write(addr uint16, value uint8) {
	if addr < RegBase || addr >= RegBase+regCount {
		return
	}
	r.regs[addr-RegBase] = value
}

// Reg returns the last value written to addr.
func (r *Registers) Reg(addr uint16) uint8 {
	if addr < RegBase || addr >= RegBase+regCount {
		return 0
	}
	return r.regs[addr-RegBase]
}

// Reset clears every register.
func (r *Registers) Reset() {
	r.regs = [regCount]uint8{}
}

// Channel decodes the state of channel ch.
func (r *Registers) Channel(ch int) Channel {
	base := ch * 4
	c := Channel{Enabled: r.regs[RegStatus-RegBase]&(1<<ch) != 0}
	switch ch {
	case Pulse1, Pulse2:
		c.Duty = r.regs[base] >> 6
		c.Volume = r.regs[base] & 0x0F
		c.Period = uint16(r.regs[base+3]&0x07)<<8 | uint16(r.regs[base+2])
		// Timers below 8 mute the pulse.
		if c.Period < 8 {
			c.Volume = 0
		}
	case Triangle:
		if r.regs[base]&0x7F != 0 {
			c.Volume = 15
		}
		c.Period = uint16(r.regs[base+3]&0x07)<<8 | uint16(r.regs[base+2])
	case Noise:
		c.Volume = r.regs[base] & 0x0F
		c.Period = uint16(r.regs[base+2] & 0x0F)
		c.Loop = r.regs[base+2]&0x80 != 0
	}
	return c
}

// Channels decodes all four channels.
func (r *Registers) Channels() [NumChannels]Channel {
	var out [NumChannels]Channel
	for ch := range out {
		out[ch] = r.Channel(ch)
	}
	return out
}

// Frequency returns the tone frequency in Hz for a pulse or triangle
// channel, or 0 when the timer is silent.
func Frequency(ch int, period uint16, cpuHz int) float64 {
	switch ch {
	case Pulse1, Pulse2:
		return float64(cpuHz) / (16 * float64(period+1))
	case Triangle:
		return float64(cpuHz) / (32 * float64(period+1))
	}
	return 0
}
