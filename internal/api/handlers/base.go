// Package handlers provides HTTP request handlers for all API endpoints.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-voice/internal/api/responses"
	"github.com/oszuidwest/zwfm-voice/internal/backend"
	"github.com/oszuidwest/zwfm-voice/internal/config"
	"github.com/oszuidwest/zwfm-voice/internal/services"
)

// bodyOverhead covers the JSON envelope and format hint around the base64 audio.
const bodyOverhead = 64 * 1024

// VoiceProcessor runs one voice-to-voice exchange.
type VoiceProcessor interface {
	Process(ctx context.Context, req services.VoiceRequest) (*backend.Result, error)
}

// ToolStatus reports the availability of external audio tools by name.
type ToolStatus interface {
	Status() map[string]bool
}

// Handlers contains all the dependencies needed by the API handlers.
type Handlers struct {
	voiceSvc     VoiceProcessor
	tools        ToolStatus
	staticPath   string
	maxBodyBytes int64
}

// NewHandlers creates a new Handlers instance with all required dependencies.
// tools may be nil when availability checks are disabled.
func NewHandlers(voiceSvc VoiceProcessor, tools ToolStatus, cfg *config.Config) *Handlers {
	InitializeValidators()

	// base64 inflates the decoded limit by 4/3
	maxBody := int64(cfg.Audio.MaxAudioBytes)/3*4 + 4 + bodyOverhead
	return &Handlers{
		voiceSvc:     voiceSvc,
		tools:        tools,
		staticPath:   cfg.Server.StaticPath,
		maxBodyBytes: maxBody,
	}
}

// handleServiceError reports err in-band. Only the user-safe message leaves
// the process; the service layer already logged the internal detail.
func handleServiceError(c *gin.Context, err error) {
	responses.InBandError(c, services.UserMessage(err))
}
