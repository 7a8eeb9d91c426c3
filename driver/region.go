package driver

import emucore "github.com/user-none/eblitui/api"

// Region is an alias for emucore.Region so hosts share one region type.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RegionTiming holds timing constants for a specific region.
// The driver itself is tick based; hosts use these to pace Advance
// and to clock the audio backend.
type RegionTiming struct {
	CPUClockHz int // 2A03 CPU clock frequency
	Scanlines  int // Total scanlines per frame
	FPS        int // Frames per second
}

// NTSC timing: 2A03 1.789773 MHz, 262 scanlines, 60 Hz
var NTSCTiming = RegionTiming{
	CPUClockHz: 1789773,
	Scanlines:  262,
	FPS:        60,
}

// PAL timing: 2A07 1.662607 MHz, 312 scanlines, 50 Hz
var PALTiming = RegionTiming{
	CPUClockHz: 1662607,
	Scanlines:  312,
	FPS:        50,
}

// GetTimingForRegion returns the appropriate timing constants
func GetTimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// Timing converts to the host-facing timing description.
func (t RegionTiming) Timing() emucore.Timing {
	return emucore.Timing{FPS: t.FPS, Scanlines: t.Scanlines}
}
