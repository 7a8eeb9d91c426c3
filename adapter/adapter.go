package adapter

import (
	"strconv"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/mm5snd/driver"
	"github.com/user-none/mm5snd/player"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the sound driver. The zero
// value plays Mega Man 5 data.
type Factory struct {
	Layout driver.Layout
}

func (f *Factory) layout() driver.Layout {
	if f.Layout.TrackCount == 0 {
		return driver.MM5Layout
	}
	return f.Layout
}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	tracks := int(f.layout().TrackCount)
	return emucore.SystemInfo{
		Name:            player.Name,
		ConsoleName:     "Nintendo Sound Format",
		Extensions:      []string{".nsf"},
		ScreenWidth:     player.ScreenWidth,
		MaxScreenHeight: player.ScreenHeight,
		AspectRatio:     float64(player.ScreenWidth) / float64(player.ScreenHeight),
		SampleRate:      player.SampleRate,
		Buttons: []emucore.Button{
			{Name: "Pause", ID: player.ButtonPause, DefaultKey: "Space", DefaultPad: "Start"},
			{Name: "Fade", ID: player.ButtonFade, DefaultKey: "F", DefaultPad: "L1"},
			{Name: "Fade In", ID: player.ButtonFadeIn, DefaultKey: "I", DefaultPad: "R1"},
			{Name: "Restart", ID: player.ButtonRestart, DefaultKey: "R", DefaultPad: "A"},
			{Name: "Stop", ID: player.ButtonStop, DefaultKey: "S", DefaultPad: "B"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         player.OptionTrack,
				Label:       "Track",
				Description: "Song or sound effect to play",
				Type:        emucore.CoreOptionRange,
				Default:     "0",
				Min:         0,
				Max:         tracks - 1,
				Step:        1,
				Category:    emucore.CoreOptionCategoryCore,
				PerGame:     true,
			},
			{
				Key:         player.OptionFadeIn,
				Label:       "Fade In Tracks",
				Description: "Fade in each newly selected track",
				Type:        emucore.CoreOptionBool,
				Default:     strconv.FormatBool(false),
				Category:    emucore.CoreOptionCategoryAudio,
			},
		},
		DataDirName:   player.Name,
		CoreName:      player.Name,
		CoreVersion:   player.Version,
		SerializeSize: player.SerializeSize,
	}
}

// CreateEmulator loads an NSF and starts its default song.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	p, err := player.New(rom, region, f.layout())
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DetectRegion reads the region flag from the NSF header. The bool
// return is false since there is no database lookup.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return player.DetectRegion(rom), false
}
