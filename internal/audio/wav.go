package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

const wavFormatPCM = 1

// ErrUnsupportedWAV marks WAV files the native decoder cannot read (float or
// compressed payloads). They are handed to ffmpeg instead.
var ErrUnsupportedWAV = errors.New("unsupported WAV encoding")

// EncodeWAV writes a waveform as a 16-bit PCM RIFF/WAVE file. The sample
// rate and channel count travel in the fmt chunk.
func EncodeWAV(w *Waveform) ([]byte, error) {
	if err := w.Validate(); err != nil {
		return nil, NewEncodeError(err)
	}

	f := Format{SampleRate: w.SampleRate, Channels: w.Channels, Codec: CodecPCM16LE}
	bitDepth := f.BitDepth()
	scale := float64(goaudio.IntMaxSignedValue(bitDepth))

	ints := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		ints[i] = int(math.Round(s * scale))
	}

	// the encoder seeks back to patch chunk sizes once all samples are written
	out := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(out, f.SampleRate, bitDepth, f.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Data:           ints,
		Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, NewEncodeError(err)
	}
	if err := enc.Close(); err != nil {
		return nil, NewEncodeError(err)
	}

	data, err := io.ReadAll(out.Reader())
	if err != nil {
		return nil, NewEncodeError(err)
	}
	return data, nil
}

// DecodeWAV reads an integer PCM WAV file into a waveform.
func DecodeWAV(data []byte) (*Waveform, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, NewDecodeError(ContainerWAV, "", err)
		}
		return nil, NewDecodeError(ContainerWAV, "", fmt.Errorf("invalid WAV header"))
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, NewDecodeError(ContainerWAV, "", fmt.Errorf("%w: format tag %d", ErrUnsupportedWAV, dec.WavAudioFormat))
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, NewDecodeError(ContainerWAV, "", err)
	}

	channels := int(dec.NumChans)
	// drop a trailing partial frame rather than misalign channels
	n := len(buf.Data) - len(buf.Data)%channels

	bitDepth := int(dec.BitDepth)
	samples := make([]float64, n)
	if bitDepth == 8 {
		// 8-bit WAV is unsigned
		for i := 0; i < n; i++ {
			samples[i] = float64(buf.Data[i]-128) / 128
		}
	} else {
		scale := float64(goaudio.IntMaxSignedValue(bitDepth)) + 1
		for i := 0; i < n; i++ {
			samples[i] = float64(buf.Data[i]) / scale
		}
	}

	w := &Waveform{
		Samples:    samples,
		Channels:   channels,
		SampleRate: int(dec.SampleRate),
	}
	if err := w.Validate(); err != nil {
		return nil, NewDecodeError(ContainerWAV, "", err)
	}
	return w, nil
}
