package audio

import (
	"context"
	"fmt"

	goresampler "github.com/tphakala/go-audio-resampler"

	"github.com/oszuidwest/zwfm-voice/internal/config"
)

// Resampler converts a waveform to another sample rate, keeping its duration.
type Resampler interface {
	Resample(ctx context.Context, w *Waveform, targetRate int) (*Waveform, error)
	Name() string
}

// NewResampler returns the resampling strategy for kind.
func NewResampler(kind config.ResamplerKind, ff *FFmpeg) (Resampler, error) {
	switch kind {
	case config.ResamplerPolyphase, "":
		return NewPolyphaseResampler(), nil
	case config.ResamplerLinear:
		return LinearResampler{}, nil
	case config.ResamplerFFmpeg:
		if ff == nil {
			return nil, fmt.Errorf("ffmpeg resampler requires an ffmpeg runner")
		}
		return FFmpegResampler{FFmpeg: ff}, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q", kind)
	}
}

// ResampledLength is the output frame count for n input frames, rounded to nearest.
func ResampledLength(n, from, to int) int {
	return int((int64(n)*int64(to) + int64(from)/2) / int64(from))
}

// PolyphaseResampler converts rates with go-audio-resampler's soxr-style
// engine: DFT stages for integer ratios, DFT pre-stage plus polyphase FIR
// otherwise. Output is trimmed or padded to ResampledLength.
type PolyphaseResampler struct {
	Quality goresampler.QualityPreset
}

// NewPolyphaseResampler creates a polyphase resampler at high quality.
func NewPolyphaseResampler() *PolyphaseResampler {
	return &PolyphaseResampler{Quality: goresampler.QualityHigh}
}

// Name implements Resampler.
func (r *PolyphaseResampler) Name() string { return string(config.ResamplerPolyphase) }

// Resample implements Resampler.
func (r *PolyphaseResampler) Resample(ctx context.Context, w *Waveform, targetRate int) (*Waveform, error) {
	if err := checkResampleArgs(w, targetRate); err != nil {
		return nil, err
	}
	if w.SampleRate == targetRate {
		return w, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, NewResampleError("", err)
	}

	from, to := float64(w.SampleRate), float64(targetRate)
	out, err := resampleChannels(w, targetRate, func(in, dst []float64) error {
		res, err := goresampler.ResampleMono(in, from, to, r.Quality)
		if err != nil {
			return err
		}
		// zero-fills the tail when the engine returns fewer samples
		n := copy(dst, res)
		clear(dst[n:])
		return nil
	})
	if err != nil {
		return nil, NewResampleError("", err)
	}
	return out, nil
}

// LinearResampler interpolates linearly between neighbouring samples.
type LinearResampler struct{}

// Name implements Resampler.
func (LinearResampler) Name() string { return string(config.ResamplerLinear) }

// Resample implements Resampler.
func (LinearResampler) Resample(ctx context.Context, w *Waveform, targetRate int) (*Waveform, error) {
	if err := checkResampleArgs(w, targetRate); err != nil {
		return nil, err
	}
	if w.SampleRate == targetRate {
		return w, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, NewResampleError("", err)
	}

	step := float64(w.SampleRate) / float64(targetRate)
	return resampleChannels(w, targetRate, func(in, dst []float64) error {
		last := len(in) - 1
		for i := range dst {
			t := float64(i) * step
			idx := int(t)
			if idx >= last {
				dst[i] = in[last]
				continue
			}
			frac := t - float64(idx)
			dst[i] = in[idx]*(1-frac) + in[idx+1]*frac
		}
		return nil
	})
}

// FFmpegResampler delegates rate conversion to ffmpeg's aresample filter.
type FFmpegResampler struct {
	FFmpeg *FFmpeg
}

// Name implements Resampler.
func (FFmpegResampler) Name() string { return string(config.ResamplerFFmpeg) }

// Resample implements Resampler.
func (r FFmpegResampler) Resample(ctx context.Context, w *Waveform, targetRate int) (*Waveform, error) {
	if err := checkResampleArgs(w, targetRate); err != nil {
		return nil, err
	}
	if w.SampleRate == targetRate {
		return w, nil
	}
	return r.FFmpeg.Resample(ctx, w, targetRate)
}

func checkResampleArgs(w *Waveform, targetRate int) error {
	if targetRate < MinSampleRate || targetRate > MaxSampleRate {
		return NewResampleError("", fmt.Errorf("invalid target rate %d", targetRate))
	}
	if err := w.Validate(); err != nil {
		return NewResampleError("", err)
	}
	return nil
}

// resampleChannels runs fn over each deinterleaved channel and re-interleaves the result.
func resampleChannels(w *Waveform, targetRate int, fn func(in, dst []float64) error) (*Waveform, error) {
	frames := w.Frames()
	outFrames := ResampledLength(frames, w.SampleRate, targetRate)
	ch := w.Channels

	if ch == 1 {
		dst := make([]float64, outFrames)
		if err := fn(w.Samples, dst); err != nil {
			return nil, err
		}
		return &Waveform{Samples: dst, Channels: 1, SampleRate: targetRate}, nil
	}

	out := make([]float64, outFrames*ch)
	in := make([]float64, frames)
	dst := make([]float64, outFrames)
	for c := 0; c < ch; c++ {
		for i := 0; i < frames; i++ {
			in[i] = w.Samples[i*ch+c]
		}
		if err := fn(in, dst); err != nil {
			return nil, err
		}
		for i, s := range dst {
			out[i*ch+c] = s
		}
	}
	return &Waveform{Samples: out, Channels: ch, SampleRate: targetRate}, nil
}
