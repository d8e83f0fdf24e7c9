package terminal

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Sound plays the feedback cues. Implementations must not block.
type Sound interface {
	Pulse()
	LevelUp()
	Miss()
	Close()
}

// Silent is a Sound that does nothing
type Silent struct{}

func (Silent) Pulse()   {}
func (Silent) LevelUp() {}
func (Silent) Miss()    {}
func (Silent) Close()   {}

// Speaker plays short synthesized tones through the system audio device
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeaker opens the audio device. Callers usually fall back to Silent when
// it fails, since audio is optional.
func NewSpeaker() (*Speaker, error) {
	s := &Speaker{mixer: &beep.Mixer{}}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return s, nil
}

// Pulse plays the correct-answer chirp
func (s *Speaker) Pulse() {
	s.play(newTone(880, 80*time.Millisecond, 0.2))
}

// LevelUp plays a two-note rise
func (s *Speaker) LevelUp() {
	s.play(beep.Seq(
		newTone(660, 90*time.Millisecond, 0.2),
		newTone(990, 140*time.Millisecond, 0.2),
	))
}

// Miss plays a low buzz
func (s *Speaker) Miss() {
	s.play(newTone(140, 180*time.Millisecond, 0.25))
}

// Close stops playback
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.initialized = false
}

func (s *Speaker) play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// newTone returns a sine cue of length d that fades linearly from volume to silence
func newTone(freq float64, d time.Duration, volume float64) beep.Streamer {
	n := sampleRate.N(d)
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(n)
	}
	return effects.Transition(beep.Take(n, sine), n, volume, 0, effects.TransitionLinear)
}
