package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-voice/internal/api/responses"
	"github.com/oszuidwest/zwfm-voice/internal/apperrors"
	"github.com/oszuidwest/zwfm-voice/internal/requestid"
	"github.com/oszuidwest/zwfm-voice/internal/services"
	"github.com/oszuidwest/zwfm-voice/pkg/logger"
)

// VoiceToVoiceRequest is the browser's recording upload.
type VoiceToVoiceRequest struct {
	AudioB64 string `json:"audio_b64" binding:"required,notblank"`
	// Format is a container hint such as "webm" or "audio/ogg; codecs=opus".
	Format string `json:"format" binding:"max=64"`
}

// VoiceToVoice normalizes the uploaded recording, forwards it to the voice
// backend and returns the synthesized reply. Every failure is reported
// in-band as {"error": ...} with status 200.
func (h *Handlers) VoiceToVoice(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req VoiceToVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Request %s: rejected body: %v", requestid.FromGin(c), err)
		handleServiceError(c, apperrors.InvalidInput("Invalid request: "+formatBindingError(err)).Wrap(err))
		return
	}

	result, err := h.voiceSvc.Process(c.Request.Context(), services.VoiceRequest{
		AudioB64: req.AudioB64,
		Format:   req.Format,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	responses.Success(c, result)
}
