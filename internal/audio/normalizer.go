package audio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-voice/internal/apperrors"
	"github.com/oszuidwest/zwfm-voice/internal/config"
)

// Normalized is the canonical backend input produced from one request.
type Normalized struct {
	WAV      []byte
	Format   Format
	Frames   int
	Duration time.Duration

	// Source describes what came in, for logging and metrics.
	Source      Container
	SourceRate  int
	SourceChans int
	Resampled   bool
	Resampler   string
}

// Base64 returns the WAV container in standard base64.
func (n *Normalized) Base64() string {
	return base64.StdEncoding.EncodeToString(n.WAV)
}

// Normalizer converts browser audio into mono 16-bit PCM WAV at a fixed rate.
// It holds no per-request state and is safe for concurrent use.
type Normalizer struct {
	targetRate  int
	maxBytes    int
	maxDuration time.Duration
	ffmpeg      *FFmpeg
	resampler   Resampler
}

// defaultMaxDuration applies when the configuration leaves the limit unset.
const defaultMaxDuration = 10 * time.Minute

// NewNormalizer creates a normalizer from the audio configuration. The
// resampling strategy is chosen here, once.
func NewNormalizer(cfg config.AudioConfig) (*Normalizer, error) {
	if cfg.TargetSampleRate < MinSampleRate || cfg.TargetSampleRate > MaxSampleRate {
		return nil, fmt.Errorf("invalid target sample rate %d", cfg.TargetSampleRate)
	}
	maxDuration := cfg.MaxAudioDuration
	if maxDuration <= 0 {
		maxDuration = defaultMaxDuration
	}
	ff := NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath)
	ff.MaxDuration = maxDuration
	r, err := NewResampler(cfg.Resampler, ff)
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		targetRate:  cfg.TargetSampleRate,
		maxBytes:    cfg.MaxAudioBytes,
		maxDuration: maxDuration,
		ffmpeg:      ff,
		resampler:   r,
	}, nil
}

// TargetRate returns the sample rate every normalized container carries.
func (n *Normalizer) TargetRate() int {
	return n.targetRate
}

// Normalize decodes a base64 audio payload and re-encodes it as mono PCM WAV
// at the target rate. Every failure is returned as an apperrors conversion
// error; the stage-specific cause stays reachable through errors.As.
func (n *Normalizer) Normalize(ctx context.Context, payload, hint string) (*Normalized, error) {
	data, err := n.decodePayload(payload)
	if err != nil {
		return nil, apperrors.Conversion(err)
	}

	src, container, err := Decode(ctx, data, hint, n.ffmpeg)
	if err != nil {
		return nil, apperrors.Conversion(
			apperrors.Format(fmt.Sprintf("decode %d bytes (hint %q)", len(data), hint)).Wrap(err),
		)
	}

	// bounds the resampler's output allocation before it happens
	limit := int(n.maxDuration.Seconds() * float64(n.targetRate))
	if frames := ResampledLength(src.Frames(), src.SampleRate, n.targetRate); frames > limit {
		return nil, apperrors.Conversion(
			apperrors.Format(fmt.Sprintf("audio of %d frames at %d Hz exceeds %s", src.Frames(), src.SampleRate, n.maxDuration)),
		)
	}

	mono := Mixdown(src)

	out := &Normalized{
		Source:      container,
		SourceRate:  src.SampleRate,
		SourceChans: src.Channels,
	}

	if mono.SampleRate != n.targetRate {
		mono, err = n.resampler.Resample(ctx, mono, n.targetRate)
		if err != nil {
			return nil, apperrors.Conversion(err)
		}
		out.Resampled = true
		out.Resampler = n.resampler.Name()
	}

	wav, err := EncodeWAV(mono)
	if err != nil {
		return nil, apperrors.Conversion(err)
	}

	out.WAV = wav
	out.Format = NormalizedFormat(mono.SampleRate)
	out.Frames = mono.Frames()
	out.Duration = mono.Duration()
	return out, nil
}

// decodePayload strips an optional data URL prefix and decodes the base64
// body, accepting both alphabets with or without padding.
func (n *Normalizer) decodePayload(payload string) ([]byte, error) {
	s := strings.TrimSpace(payload)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ";base64,")
		if i < 0 {
			return nil, apperrors.Decode("data URL without base64 marker")
		}
		s = s[i+len(";base64,"):]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)

	if s == "" {
		return nil, apperrors.Decode("empty payload")
	}
	if n.maxBytes > 0 && base64.RawStdEncoding.DecodedLen(len(s)) > n.maxBytes+2 {
		return nil, apperrors.Decode(fmt.Sprintf("payload exceeds %d bytes", n.maxBytes))
	}

	data, err := decodeBase64(s)
	if err != nil {
		return nil, apperrors.Decode("invalid base64").Wrap(err)
	}
	if n.maxBytes > 0 && len(data) > n.maxBytes {
		return nil, apperrors.Decode(fmt.Sprintf("payload of %d bytes exceeds %d bytes", len(data), n.maxBytes))
	}
	return data, nil
}

func decodeBase64(s string) ([]byte, error) {
	enc := base64.StdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.URLEncoding
	}
	if !strings.HasSuffix(s, "=") && len(s)%4 != 0 {
		enc = enc.WithPadding(base64.NoPadding)
	}
	data, err := enc.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("decoded payload is empty")
	}
	return data, nil
}
