package audio

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when neither sniffing nor the hint identify
// the payload as a supported audio container.
var ErrUnknownFormat = errors.New("unrecognized audio container")

// Decoder turns container bytes into a waveform at the native rate and layout.
type Decoder interface {
	Decode(ctx context.Context, data []byte, container Container) (*Waveform, error)
}

// WAVDecoder decodes integer PCM WAV in-process.
type WAVDecoder struct{}

// Decode implements Decoder.
func (WAVDecoder) Decode(_ context.Context, data []byte, _ Container) (*Waveform, error) {
	return DecodeWAV(data)
}

// FFmpegDecoder decodes any container ffmpeg understands.
type FFmpegDecoder struct {
	FFmpeg *FFmpeg
}

// Decode implements Decoder.
func (d FFmpegDecoder) Decode(ctx context.Context, data []byte, container Container) (*Waveform, error) {
	info, err := d.FFmpeg.Probe(ctx, data, container)
	if err != nil {
		return nil, err
	}
	return d.FFmpeg.DecodeF32(ctx, data, container, info)
}

// Decode detects the container of data and decodes it with the matching
// decoder. WAV files the native decoder rejects as non-PCM fall through to ffmpeg.
func Decode(ctx context.Context, data []byte, hint string, ff *FFmpeg) (*Waveform, Container, error) {
	container := DetectContainer(data, hint)
	if container == ContainerUnknown {
		return nil, ContainerUnknown, &AudioError{Op: OpDetect, Underlying: ErrUnknownFormat}
	}

	fallback := FFmpegDecoder{FFmpeg: ff}
	if container == ContainerWAV {
		w, err := WAVDecoder{}.Decode(ctx, data, container)
		if err == nil {
			return w, container, nil
		}
		if !errors.Is(err, ErrUnsupportedWAV) || ff == nil {
			return nil, container, err
		}
	}

	if ff == nil {
		return nil, container, NewDecodeError(container, "", fmt.Errorf("no decoder available for %s", container))
	}
	w, err := fallback.Decode(ctx, data, container)
	if err != nil {
		return nil, container, err
	}
	return w, container, nil
}
