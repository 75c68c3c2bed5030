package audio

import (
	"fmt"
	"time"
)

// Sample rates accepted for decoded audio. Anything outside this range is a
// corrupt or hostile header, not a recording.
const (
	MinSampleRate = 4000
	MaxSampleRate = 384000
)

// Waveform is a decoded signal: interleaved float samples in [-1, 1].
type Waveform struct {
	Samples    []float64
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames (samples per channel).
func (w *Waveform) Frames() int {
	if w == nil || w.Channels <= 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// Duration returns the playback length of the waveform.
func (w *Waveform) Duration() time.Duration {
	if w == nil || w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(w.Frames()) / float64(w.SampleRate) * float64(time.Second))
}

// Validate checks the structural invariants of a decoded waveform.
func (w *Waveform) Validate() error {
	switch {
	case w == nil:
		return fmt.Errorf("nil waveform")
	case w.Channels <= 0:
		return fmt.Errorf("invalid channel count %d", w.Channels)
	case w.SampleRate < MinSampleRate || w.SampleRate > MaxSampleRate:
		return fmt.Errorf("sample rate %d Hz outside %d-%d Hz", w.SampleRate, MinSampleRate, MaxSampleRate)
	case len(w.Samples)%w.Channels != 0:
		return fmt.Errorf("%d samples do not divide into %d channels", len(w.Samples), w.Channels)
	case len(w.Samples) == 0:
		return fmt.Errorf("no audio samples decoded")
	}
	return nil
}

// Mixdown collapses a multi-channel waveform to mono by taking the
// arithmetic mean of all channels at each frame. Mono input is returned as is.
func Mixdown(w *Waveform) *Waveform {
	if w.Channels == 1 {
		return w
	}

	frames := w.Frames()
	mono := make([]float64, frames)
	inv := 1 / float64(w.Channels)
	for i := 0; i < frames; i++ {
		var sum float64
		frame := w.Samples[i*w.Channels : (i+1)*w.Channels]
		for _, s := range frame {
			sum += s
		}
		mono[i] = sum * inv
	}

	return &Waveform{
		Samples:    mono,
		Channels:   1,
		SampleRate: w.SampleRate,
	}
}
