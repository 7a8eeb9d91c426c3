// Package ui holds the pieces a host shares between the ebiten thread
// and the player goroutine: audio output, control, and meter state.
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Queue depths counted in driver frames. The driver ticks once per
// video frame, so every Advance renders exactly one of these.
const (
	queueFrames  = 8 // ring buffer between the player goroutine and oto
	deviceFrames = 2 // oto's own pull-ahead
)

// FrameBytes is the size of one driver tick of int16 stereo audio.
func FrameBytes(sampleRate, fps int) int {
	return sampleRate / fps * pairBytes
}

// AudioPlayer queues the synth output of each driver tick for oto.
type AudioPlayer struct {
	player     *oto.Player
	ringBuffer *AudioRingBuffer
	frameBytes int
	audioBytes []byte
}

var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

// ensureOtoContext opens the process-wide oto context on first use. The
// first caller's rate wins.
func ensureOtoContext(sampleRate, fps int) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   time.Duration(deviceFrames) * time.Second / time.Duration(fps),
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-ready
	})
	return otoCtx, otoInitErr
}

// NewAudioPlayer opens the audio device for a synth rendering at
// sampleRate and ticked fps times a second. Volume runs from 0.0
// (silent) to 1.0.
func NewAudioPlayer(sampleRate, fps int, volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext(sampleRate, fps)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	fb := FrameBytes(sampleRate, fps)
	rb := NewAudioRingBuffer(queueFrames * fb)
	player := ctx.NewPlayer(rb)
	player.SetBufferSize(deviceFrames * fb)
	player.SetVolume(volume)
	player.Play()

	return &AudioPlayer{
		player:     player,
		ringBuffer: rb,
		frameBytes: fb,
		audioBytes: make([]byte, 0, 2*fb),
	}, nil
}

// QueueSamples appends one tick of int16 stereo samples.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	a.audioBytes = appendLE16(a.audioBytes[:0], samples)
	a.ringBuffer.Write(a.audioBytes)
}

func appendLE16(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = append(dst, byte(s), byte(s>>8))
	}
	return dst
}

// FrameBytes returns the size of one driver tick of audio.
func (a *AudioPlayer) FrameBytes() int {
	return a.frameBytes
}

// GetBufferLevel returns the bytes queued ahead of the speaker, counting
// oto's internal buffer. The player loop paces itself on this value.
func (a *AudioPlayer) GetBufferLevel() int {
	return a.ringBuffer.Buffered() + a.player.BufferedSize()
}

// Flush drops queued audio so a new track starts clean.
func (a *AudioPlayer) Flush() {
	a.ringBuffer.Clear()
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = full).
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(vol)
}

// Close stops playback and releases the player.
func (a *AudioPlayer) Close() {
	if a.ringBuffer != nil {
		a.ringBuffer.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}
