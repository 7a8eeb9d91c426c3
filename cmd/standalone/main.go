//go:build !libretro && !ios

package main

import (
	"flag"
	"log"
	"strconv"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/mm5snd/adapter"
	"github.com/user-none/mm5snd/player"
)

func main() {
	nsfPath := flag.String("nsf", "", "path to NSF file (opens UI if not provided)")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	track := flag.Int("track", -1, "track to start (default: the file's start song)")
	fadeIn := flag.Bool("fade-in", false, "fade in each newly selected track")
	flag.Parse()

	factory := &adapter.Factory{}

	if *nsfPath != "" {
		options := map[string]string{
			player.OptionFadeIn: strconv.FormatBool(*fadeIn),
		}
		if *track >= 0 {
			options[player.OptionTrack] = strconv.Itoa(*track)
		}
		if err := standalone.RunDirect(factory, *nsfPath, *regionFlag, options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
