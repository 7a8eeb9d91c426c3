// Package cli provides the hosts that drive the sound driver: a windowed
// player and a headless register trace dumper.
package cli

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/mm5snd/apu"
	"github.com/user-none/mm5snd/player"
	"github.com/user-none/mm5snd/ui"
)

// ADT thresholds in driver frames of queued audio.
const (
	adtMinFrames = 3
	adtMaxFrames = 6
)

// Window geometry in logical pixels.
const (
	ScreenWidth  = 320
	ScreenHeight = 176

	meterX = 56
	meterY = 40
)

// statusReporter is implemented by cores that expose playback state for
// the overlay.
type statusReporter interface {
	Status() player.Status
	CPUClockHz() int
}

// Runner plays a core in a window. The core runs on a dedicated
// goroutine paced by the audio buffer. The ebiten thread polls the
// keyboard into a button mask and draws the core's meter view with a
// text overlay.
type Runner struct {
	emulator    emucore.Emulator
	audioPlayer *ui.AudioPlayer
	statePath   string

	control     *ui.PlayerControl
	input       *ui.SharedInput
	requests    *ui.RequestQueue
	meters      *ui.SharedMeters
	framebuffer *ui.SharedFramebuffer
	offscreen   *ebiten.Image
	done        chan struct{}

	// Owned by the player goroutine.
	track  uint8
	logged bool
}

// NewRunner starts playing e. Save and load keys use statePath; an
// empty path disables them. Audio initialization failure is non-fatal;
// the runner keeps drawing meters.
func NewRunner(e emucore.Emulator, statePath string, volume float64) *Runner {
	r := newRunner(e, statePath)

	timing := e.GetTiming()
	audio, err := ui.NewAudioPlayer(player.SampleRate, timing.FPS, volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	} else {
		r.audioPlayer = audio
	}

	go r.playerLoop()
	return r
}

func newRunner(e emucore.Emulator, statePath string) *Runner {
	r := &Runner{
		emulator:    e,
		statePath:   statePath,
		control:     ui.NewPlayerControl(),
		input:       &ui.SharedInput{},
		requests:    &ui.RequestQueue{},
		meters:      &ui.SharedMeters{},
		framebuffer: ui.NewSharedFramebuffer(player.ScreenWidth * player.ScreenHeight * 4),
		done:        make(chan struct{}),
	}
	if sr, ok := e.(statusReporter); ok {
		r.track = sr.Status().Track
	}
	return r
}

// Close stops the player goroutine and releases audio.
func (r *Runner) Close() {
	if r.control != nil {
		r.control.Stop()
		<-r.done
	}

	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}
}

// playerLoop runs on a dedicated goroutine with ADT.
func (r *Runner) playerLoop() {
	defer close(r.done)

	timing := r.emulator.GetTiming()
	frameTime := time.Duration(float64(time.Second) / float64(timing.FPS))
	lastFrameTime := time.Now()

	for {
		if !r.control.CheckPause() {
			return
		}

		r.step()

		elapsed := time.Since(lastFrameTime)
		sleepTime := frameTime - elapsed

		if r.audioPlayer != nil {
			frames := r.audioPlayer.GetBufferLevel() / r.audioPlayer.FrameBytes()
			if frames < adtMinFrames {
				sleepTime = time.Duration(float64(sleepTime) * 0.9)
			} else if frames > adtMaxFrames {
				sleepTime = time.Duration(float64(sleepTime) * 1.1)
			}
		}

		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}

		lastFrameTime = time.Now()
	}
}

// step services pending requests and runs one frame.
func (r *Runner) step() {
	for _, req := range r.requests.Drain() {
		r.handle(req)
	}

	r.emulator.SetInput(0, r.input.Read())
	r.emulator.RunFrame()

	if r.audioPlayer != nil {
		r.audioPlayer.QueueSamples(r.emulator.GetAudioSamples())
	}
	r.framebuffer.Update(
		r.emulator.GetFramebuffer(),
		r.emulator.GetFramebufferStride(),
		r.emulator.GetActiveHeight(),
	)

	sr, ok := r.emulator.(statusReporter)
	if !ok {
		return
	}
	st := sr.Status()
	if st.Track != r.track {
		r.track = st.Track
		r.flushAudio()
	}
	switch {
	case st.Err != nil && !r.logged:
		log.Printf("Driver stopped: %v", st.Err)
		r.logged = true
	case st.Err == nil:
		r.logged = false
	}
	r.meters.Update(st)
}

func (r *Runner) handle(req ui.Request) {
	ss, ok := r.emulator.(emucore.SaveStater)
	if !ok || r.statePath == "" {
		return
	}

	switch req {
	case ui.RequestSave:
		if err := saveState(ss, r.statePath); err != nil {
			log.Printf("Save state failed: %v", err)
			return
		}
		log.Printf("Saved state to %s", r.statePath)
	case ui.RequestLoad:
		if err := loadState(ss, r.statePath); err != nil {
			log.Printf("Load state failed: %v", err)
			return
		}
		r.flushAudio()
		log.Printf("Loaded state from %s", r.statePath)
	}
}

func saveState(ss emucore.SaveStater, path string) error {
	data, err := ss.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func loadState(ss emucore.SaveStater, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return ss.Deserialize(data)
}

func (r *Runner) flushAudio() {
	if r.audioPlayer != nil {
		r.audioPlayer.Flush()
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if !ebiten.IsFocused() {
		return nil
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		r.requests.Push(ui.RequestSave)
	case inpututil.IsKeyJustPressed(ebiten.KeyF8):
		r.requests.Push(ui.RequestLoad)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if r.control.IsPaused() {
			r.control.RequestResume()
		} else {
			r.control.RequestPause()
		}
	}

	r.input.Set(pollButtons())
	return nil
}

// pollButtons packs the keyboard and gamepads into a core button mask.
func pollButtons() uint32 {
	var buttons uint32
	set := func(bit int, pressed bool) {
		if pressed {
			buttons |= 1 << bit
		}
	}

	set(emucore.ButtonUp, ebiten.IsKeyPressed(ebiten.KeyArrowUp))
	set(emucore.ButtonDown, ebiten.IsKeyPressed(ebiten.KeyArrowDown))
	set(emucore.ButtonLeft, ebiten.IsKeyPressed(ebiten.KeyArrowLeft))
	set(emucore.ButtonRight, ebiten.IsKeyPressed(ebiten.KeyArrowRight))
	set(player.ButtonPause, ebiten.IsKeyPressed(ebiten.KeySpace))
	set(player.ButtonFade, ebiten.IsKeyPressed(ebiten.KeyF))
	set(player.ButtonFadeIn, ebiten.IsKeyPressed(ebiten.KeyI))
	set(player.ButtonRestart, ebiten.IsKeyPressed(ebiten.KeyR))
	set(player.ButtonStop, ebiten.IsKeyPressed(ebiten.KeyS))

	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		pressed := func(b ebiten.StandardGamepadButton) bool {
			return ebiten.IsStandardGamepadButtonPressed(id, b)
		}
		set(emucore.ButtonUp, pressed(ebiten.StandardGamepadButtonLeftTop))
		set(emucore.ButtonDown, pressed(ebiten.StandardGamepadButtonLeftBottom))
		set(emucore.ButtonLeft, pressed(ebiten.StandardGamepadButtonLeftLeft))
		set(emucore.ButtonRight, pressed(ebiten.StandardGamepadButtonLeftRight))
		set(player.ButtonPause, pressed(ebiten.StandardGamepadButtonCenterRight))
		set(player.ButtonRestart, pressed(ebiten.StandardGamepadButtonRightBottom))
		set(player.ButtonStop, pressed(ebiten.StandardGamepadButtonRightRight))
		set(player.ButtonFade, pressed(ebiten.StandardGamepadButtonFrontTopLeft))
		set(player.ButtonFadeIn, pressed(ebiten.StandardGamepadButtonFrontTopRight))
	}
	return buttons
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	r.drawMeters(screen)

	sr, ok := r.emulator.(statusReporter)
	if !ok {
		return
	}
	st := r.meters.Read()

	status := "playing"
	switch {
	case r.control.IsPaused():
		status = "frozen"
	case st.Paused:
		status = "music paused"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("track %02X  frame %d  %s", st.Track, st.Frame, status), 8, 4)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("fade %02X  sfx %04b", st.Fade, st.SFXMask), 8, 20)

	cpuHz := sr.CPUClockHz()
	for ch, c := range st.Channels {
		y := meterY + ch*16
		ebitenutil.DebugPrintAt(screen, apu.ChannelName(ch), 8, y)
		if f := apu.Frequency(ch, c.Period, cpuHz); f > 0 && c.Audible() {
			x := 8 + (ch%2)*152
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %.1fHz", apu.ChannelName(ch), f), x, meterY+72+(ch/2)*16)
		}
	}

	if st.Err != nil {
		ebitenutil.DebugPrintAt(screen, "stopped: corrupt sequence data", 8, ScreenHeight-16)
	}
}

// drawMeters copies the core's latest meter frame onto the screen.
func (r *Runner) drawMeters(screen *ebiten.Image) {
	pixels, stride, height := r.framebuffer.Read()
	if height == 0 || stride == 0 || len(pixels) < stride*height {
		return
	}
	width := stride / 4
	if r.offscreen == nil || r.offscreen.Bounds().Dx() != width || r.offscreen.Bounds().Dy() != height {
		r.offscreen = ebiten.NewImage(width, height)
	}
	r.offscreen.WritePixels(pixels)

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(meterX, meterY)
	screen.DrawImage(r.offscreen, &op)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
