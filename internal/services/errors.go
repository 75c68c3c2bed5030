package services

import (
	"errors"

	"github.com/oszuidwest/zwfm-voice/internal/apperrors"
	"github.com/oszuidwest/zwfm-voice/internal/audio"
)

// Outcome labels a request result for metrics: "ok" or the error code name.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Code.String()
	}
	return apperrors.CodeUnknown.String()
}

// ConversionStage reports which normalization step produced err.
func ConversionStage(err error) string {
	var audioErr *audio.AudioError
	if errors.As(err, &audioErr) {
		return string(audioErr.Op)
	}
	// base64 and size checks fail before any audio stage runs
	if errors.Is(err, &apperrors.Error{Code: apperrors.CodeDecode}) {
		return "payload"
	}
	return "unknown"
}

// UserMessage returns the caller-safe message for err.
func UserMessage(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return apperrors.MsgInternal
}
