package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/mm5snd/adapter"
	"github.com/user-none/mm5snd/player"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadStart, BitID: player.ButtonPause},
		{RetroID: libretro.JoypadL, BitID: player.ButtonFade},
		{RetroID: libretro.JoypadR, BitID: player.ButtonFadeIn},
		{RetroID: libretro.JoypadA, BitID: player.ButtonRestart},
		{RetroID: libretro.JoypadB, BitID: player.ButtonStop},
	})
}

func main() {}
