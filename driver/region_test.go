package driver

import "testing"

func TestGetTimingForRegion(t *testing.T) {
	if got := GetTimingForRegion(RegionNTSC); got != NTSCTiming {
		t.Errorf("NTSC: got %+v", got)
	}
	if got := GetTimingForRegion(RegionPAL); got != PALTiming {
		t.Errorf("PAL: got %+v", got)
	}
}

func TestInitRecordsRegion(t *testing.T) {
	d, _ := newTestDriver(&image{})
	if d.Region() != RegionNTSC {
		t.Errorf("default region = %v, want NTSC", d.Region())
	}
	d.Init(CmdStopAll, RegionPAL)
	if d.Region() != RegionPAL {
		t.Errorf("region = %v, want PAL", d.Region())
	}
	if d.Timing().FPS != 50 {
		t.Errorf("FPS = %d, want 50", d.Timing().FPS)
	}
	if got := d.Timing().Timing(); got.FPS != 50 || got.Scanlines != 312 {
		t.Errorf("host timing = %+v", got)
	}

	d.SetRegion(RegionNTSC)
	if d.Timing() != NTSCTiming {
		t.Errorf("after SetRegion timing = %+v, want NTSC", d.Timing())
	}
}

func TestLayoutByName(t *testing.T) {
	l, ok := LayoutByName("mm5")
	if !ok || l != MM5Layout {
		t.Errorf("mm5: got %+v, %v", l, ok)
	}
	if _, ok := LayoutByName("mm6"); ok {
		t.Error("unknown layout should not resolve")
	}
}
