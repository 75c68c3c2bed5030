// Package audio normalizes browser-recorded audio into mono PCM WAV at a fixed
// sample rate, using native decoders where possible and FFmpeg otherwise.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// maxStderr bounds how much ffmpeg/ffprobe diagnostic output is kept for logs.
const maxStderr = 2048

// FFmpeg runs the ffmpeg and ffprobe binaries over in-memory audio. Input is
// fed on stdin and output read from stdout, so nothing touches disk.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	// MaxDuration stops decoding after this much audio; 0 decodes everything
	MaxDuration time.Duration
}

// NewFFmpeg creates an FFmpeg runner with the given binary paths.
func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// StreamInfo describes the first audio stream of a file.
type StreamInfo struct {
	SampleRate int
	Channels   int
	Codec      string
}

type probeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// Probe retrieves the native sample rate and channel count of the first audio
// stream using ffprobe.
func (f *FFmpeg) Probe(ctx context.Context, data []byte, container Container) (*StreamInfo, error) {
	// #nosec G204 - FFprobePath is from config, arguments are constant
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,sample_rate,channels",
		"-of", "json",
		"-i", "pipe:0",
	)

	stdout, stderr, err := run(cmd, data)
	if err != nil {
		return nil, NewProbeError(container, stderr, err)
	}

	var out probeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, NewProbeError(container, stderr, fmt.Errorf("parse ffprobe output: %w", err))
	}
	if len(out.Streams) == 0 {
		return nil, NewProbeError(container, stderr, fmt.Errorf("no audio stream found"))
	}

	s := out.Streams[0]
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil {
		return nil, NewProbeError(container, stderr, fmt.Errorf("invalid sample rate %q", s.SampleRate))
	}
	if rate < MinSampleRate || rate > MaxSampleRate {
		return nil, NewProbeError(container, stderr, fmt.Errorf("sample rate %d Hz outside %d-%d Hz", rate, MinSampleRate, MaxSampleRate))
	}
	if s.Channels <= 0 {
		return nil, NewProbeError(container, stderr, fmt.Errorf("invalid channel count %d", s.Channels))
	}

	return &StreamInfo{SampleRate: rate, Channels: s.Channels, Codec: s.CodecName}, nil
}

// DecodeF32 decodes the first audio stream to interleaved float samples at its
// native rate and channel layout. No resampling or downmixing happens here.
func (f *FFmpeg) DecodeF32(ctx context.Context, data []byte, container Container, info *StreamInfo) (*Waveform, error) {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if fmtName := demuxerName(container); fmtName != "" {
		args = append(args, "-f", fmtName)
	}
	args = append(args,
		"-i", "pipe:0",
		"-vn",
		"-map", "0:a:0",
		"-ac", strconv.Itoa(info.Channels),
		"-ar", strconv.Itoa(info.SampleRate),
	)
	if f.MaxDuration > 0 {
		// one second past the limit so the caller can tell the input was too long
		args = append(args, "-t", strconv.FormatFloat((f.MaxDuration+time.Second).Seconds(), 'f', 3, 64))
	}
	args = append(args,
		"-f", string(CodecF32LE),
		"-acodec", "pcm_f32le",
		"pipe:1",
	)

	// #nosec G204 - FFmpegPath is from config, arguments are constructed internally
	cmd := exec.CommandContext(ctx, f.FFmpegPath, args...)
	stdout, stderr, err := run(cmd, data)
	if err != nil {
		return nil, NewDecodeError(container, stderr, err)
	}

	samples, err := parseF32LE(stdout)
	if err != nil {
		return nil, NewDecodeError(container, stderr, err)
	}
	// ffmpeg always emits whole frames; guard against a truncated pipe anyway
	samples = samples[:len(samples)-len(samples)%info.Channels]

	w := &Waveform{Samples: samples, Channels: info.Channels, SampleRate: info.SampleRate}
	if err := w.Validate(); err != nil {
		return nil, NewDecodeError(container, stderr, err)
	}
	return w, nil
}

// Resample converts a mono waveform to the target rate with ffmpeg's aresample filter.
func (f *FFmpeg) Resample(ctx context.Context, w *Waveform, targetRate int) (*Waveform, error) {
	// #nosec G204 - FFmpegPath is from config, arguments are constructed internally
	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-f", string(CodecF32LE),
		"-ar", strconv.Itoa(w.SampleRate),
		"-ac", strconv.Itoa(w.Channels),
		"-i", "pipe:0",
		"-af", "aresample="+strconv.Itoa(targetRate),
		"-f", string(CodecF32LE),
		"-acodec", "pcm_f32le",
		"pipe:1",
	)

	stdout, stderr, err := run(cmd, encodeF32LE(w.Samples))
	if err != nil {
		return nil, NewResampleError(stderr, err)
	}

	samples, err := parseF32LE(stdout)
	if err != nil {
		return nil, NewResampleError(stderr, err)
	}
	samples = samples[:len(samples)-len(samples)%w.Channels]

	return &Waveform{Samples: samples, Channels: w.Channels, SampleRate: targetRate}, nil
}

// Check runs "-version" on both binaries and reports, per binary name, nil
// when it is usable or the error that prevented it from running.
func (f *FFmpeg) Check(ctx context.Context) map[string]error {
	result := make(map[string]error, 2)
	for name, path := range map[string]string{"ffmpeg": f.FFmpegPath, "ffprobe": f.FFprobePath} {
		// #nosec G204 - path is from config
		_, _, err := run(exec.CommandContext(ctx, path, "-version"), nil)
		result[name] = err
	}
	return result
}

// run executes cmd with data on stdin and returns stdout and a trimmed stderr.
func run(cmd *exec.Cmd, data []byte) ([]byte, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	msg := strings.TrimSpace(stderr.String())
	if len(msg) > maxStderr {
		msg = msg[:maxStderr]
	}
	if err != nil {
		return nil, msg, fmt.Errorf("%s failed: %w", cmd.Path, err)
	}
	return stdout.Bytes(), msg, nil
}

// demuxerName forces the input demuxer for containers that ffmpeg cannot
// always identify from a non-seekable pipe.
func demuxerName(c Container) string {
	switch c {
	case ContainerAAC:
		return "aac"
	case ContainerMP3:
		return "mp3"
	default:
		return ""
	}
}

func parseF32LE(b []byte) ([]float64, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("f32le stream length %d is not a multiple of 4", len(b))
	}
	out := make([]float64, len(b)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
	return out, nil
}

func encodeF32LE(samples []float64) []byte {
	b := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(s)))
	}
	return b
}
