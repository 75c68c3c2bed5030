package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-voice/internal/api/responses"
	"github.com/oszuidwest/zwfm-voice/pkg/version"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	// Tools lists external tool availability when checks are enabled
	Tools map[string]bool `json:"tools,omitempty"`
}

// Health reports that the process is serving requests. A missing ffmpeg
// only degrades compressed input, so status stays "ok" and the tool map
// shows what is unavailable.
func (h *Handlers) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "ok",
		Service: "zwfm-voice",
		Version: version.Version,
	}
	if h.tools != nil {
		resp.Tools = h.tools.Status()
	}
	responses.Success(c, resp)
}
