// Package services provides the voice-to-voice business logic.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oszuidwest/zwfm-voice/internal/apperrors"
	"github.com/oszuidwest/zwfm-voice/internal/audio"
	"github.com/oszuidwest/zwfm-voice/internal/backend"
	"github.com/oszuidwest/zwfm-voice/internal/metrics"
	"github.com/oszuidwest/zwfm-voice/internal/requestid"
	"github.com/oszuidwest/zwfm-voice/pkg/logger"
)

// Normalizer turns a base64 browser recording into canonical WAV.
type Normalizer interface {
	Normalize(ctx context.Context, payload, hint string) (*audio.Normalized, error)
}

// Backend performs the remote transcription, reply and synthesis.
type Backend interface {
	Process(ctx context.Context, audioB64 string) (*backend.Result, error)
}

// VoiceRequest is one inbound recording.
type VoiceRequest struct {
	AudioB64 string
	// Format is the client's container hint, e.g. "webm".
	Format string
}

// VoiceService runs the normalize-then-backend pipeline for a single request.
// It keeps no per-request state.
type VoiceService struct {
	normalizer Normalizer
	backend    Backend
	metrics    *metrics.Metrics
}

// NewVoiceService creates a new voice service instance
func NewVoiceService(n Normalizer, b Backend, m *metrics.Metrics) *VoiceService {
	return &VoiceService{
		normalizer: n,
		backend:    b,
		metrics:    m,
	}
}

// Process normalizes the recording and forwards it to the backend. Every
// failure is an *apperrors.Error whose Message is safe to return to callers.
func (s *VoiceService) Process(ctx context.Context, req VoiceRequest) (*backend.Result, error) {
	const op = "VoiceService.Process"
	id := requestid.FromContext(ctx)

	start := time.Now()
	normalized, err := s.normalizer.Normalize(ctx, req.AudioB64, req.Format)
	if err != nil {
		s.metrics.RecordConversionFailure(ConversionStage(err))
		return nil, s.fail(op, id, err)
	}
	s.metrics.RecordNormalization(containerLabel(normalized.Source), normalized.Duration.Seconds(), time.Since(start).Seconds())

	logger.Debug("Request %s: normalized %s %dHz/%dch to %d frames of %s (resampler %q) in %s",
		id, containerLabel(normalized.Source), normalized.SourceRate, normalized.SourceChans,
		normalized.Frames, normalized.Format, normalized.Resampler, time.Since(start))

	callStart := time.Now()
	result, err := s.backend.Process(ctx, normalized.Base64())
	s.metrics.RecordBackendCall(Outcome(err), time.Since(callStart).Seconds())
	if err != nil {
		return nil, s.fail(op, id, err)
	}

	logger.Info("Request %s: %.2fs of audio processed, backend replied in %s",
		id, normalized.Duration.Seconds(), time.Since(callStart))
	s.metrics.RecordVoiceRequest(Outcome(nil))
	return result, nil
}

// fail logs the internal detail of err and returns it annotated with op.
func (s *VoiceService) fail(op, id string, err error) error {
	s.metrics.RecordVoiceRequest(Outcome(err))

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		logger.Warn("Request %s failed: %s", id, appErr.Detail())
		return fmt.Errorf("%s: %w", op, appErr)
	}

	logger.Error("Request %s failed with unclassified error: %v", id, err)
	return fmt.Errorf("%s: %w", op, &apperrors.Error{
		Code:    apperrors.CodeUnknown,
		Message: apperrors.MsgInternal,
		Err:     err,
	})
}

func containerLabel(c audio.Container) string {
	if c == audio.ContainerUnknown {
		return "unknown"
	}
	return string(c)
}
