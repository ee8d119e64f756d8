package viewer

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// Chime is played once when the agent reaches its goal
type Chime interface {
	Play()
}

// SpeakerChime plays a short two-note sine chime on the default audio device
type SpeakerChime struct {
	mu          sync.Mutex
	initialized bool
}

// NewSpeakerChime initializes the speaker; callers treat an error as "no audio"
func NewSpeakerChime() (*SpeakerChime, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	return &SpeakerChime{initialized: true}, nil
}

func (c *SpeakerChime) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Play(beep.Seq(
		beep.Take(sampleRate.N(120*time.Millisecond), NewToneGenerator(sampleRate, 660)),
		beep.Take(sampleRate.N(180*time.Millisecond), NewToneGenerator(sampleRate, 880)),
	))
}

// Close releases the audio device
func (c *SpeakerChime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		speaker.Close()
		c.initialized = false
	}
}

// ToneGenerator streams a sine tone with a short attack
type ToneGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

func NewToneGenerator(sr beep.SampleRate, freq float64) *ToneGenerator {
	return &ToneGenerator{sr: sr, freq: freq}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// 10ms attack avoids a click
		envelope := math.Min(t/0.01, 1.0)
		sample := 0.2 * envelope * math.Sin(2*math.Pi*g.freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}
