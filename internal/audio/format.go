package audio

import "fmt"

// Codec represents the audio encoding format.
type Codec string

// Audio codecs for encoding and decoding.
const (
	// CodecPCM16LE is 16-bit signed little-endian PCM
	CodecPCM16LE Codec = "pcm_s16le"
	// CodecF32LE is 32-bit float little-endian PCM, the ffmpeg interchange format
	CodecF32LE Codec = "f32le"
)

// Format defines complete audio format specification.
type Format struct {
	SampleRate int
	Channels   int
	Codec      Codec
}

// BitDepth returns the bits per sample of the format's codec.
func (f Format) BitDepth() int {
	switch f.Codec {
	case CodecF32LE:
		return 32
	default:
		return 16
	}
}

func (f Format) String() string {
	return fmt.Sprintf("%s %d Hz %dch", f.Codec, f.SampleRate, f.Channels)
}

// NormalizedFormat is the canonical backend input: mono 16-bit PCM WAV at rate.
func NormalizedFormat(rate int) Format {
	return Format{
		SampleRate: rate,
		Channels:   1,
		Codec:      CodecPCM16LE,
	}
}
