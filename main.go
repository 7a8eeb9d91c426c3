package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/mm5snd/adapter"
	"github.com/user-none/mm5snd/cli"
	"github.com/user-none/mm5snd/driver"
	"github.com/user-none/mm5snd/nsf"
	"github.com/user-none/mm5snd/player"
)

func main() {
	nsfPath := flag.String("nsf", "", "path to NSF file (required)")
	trackFlag := flag.Int("track", -1, "track to start (default: the file's start song)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	traceTicks := flag.Int("trace", 0, "print the register trace for N frames instead of opening a window")
	color := flag.Bool("color", false, "colorize trace output")
	volume := flag.Float64("volume", 1.0, "playback volume (0.0-1.0)")
	layoutName := flag.String("layout", "mm5", "data image layout")
	statePath := flag.String("state", "", "save state file for F5/F8 (default: next to the NSF)")
	flag.Parse()

	if *nsfPath == "" {
		log.Fatal("NSF path is required. Usage: mm5snd -nsf <path>")
	}

	data, err := os.ReadFile(*nsfPath)
	if err != nil {
		log.Fatalf("Failed to load NSF: %v", err)
	}
	img, err := nsf.Load(data)
	if err != nil {
		log.Fatalf("Failed to parse NSF: %v", err)
	}

	layout, ok := driver.LayoutByName(*layoutName)
	if !ok {
		log.Fatalf("Unknown layout: %s", *layoutName)
	}

	var region driver.Region
	switch strings.ToLower(*regionFlag) {
	case "auto":
		region = nsf.DetectRegion(img.Header)
	case "ntsc":
		region = driver.RegionNTSC
	case "pal":
		region = driver.RegionPAL
	default:
		log.Fatalf("Invalid region: %s (use auto, ntsc, or pal)", *regionFlag)
	}

	track := *trackFlag
	if track < 0 {
		track = int(img.Header.StartSong) - 1
	}
	if track < 0 || track > 0xFF {
		log.Fatalf("Invalid track: %d", track)
	}

	if *traceTicks > 0 {
		opts := cli.TraceOptions{
			Track:  uint8(track),
			Region: region,
			Ticks:  *traceTicks,
			Color:  *color,
		}
		if err := cli.Trace(os.Stdout, img, layout, opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	factory := &adapter.Factory{Layout: layout}
	e, err := factory.CreateEmulator(data, region)
	if err != nil {
		log.Fatalf("Failed to initialize player: %v", err)
	}
	defer e.Close()
	if *trackFlag >= 0 {
		e.SetOption(player.OptionTrack, strconv.Itoa(track))
	}

	if *statePath == "" {
		*statePath = strings.TrimSuffix(*nsfPath, filepath.Ext(*nsfPath)) + ".state"
	}

	title := img.Header.Name
	if title == "" {
		title = player.Name
	}
	ebiten.SetWindowSize(cli.ScreenWidth*2, cli.ScreenHeight*2)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	runner := cli.NewRunner(e, *statePath, *volume)
	defer runner.Close()

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
