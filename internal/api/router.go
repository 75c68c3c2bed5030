// Package api wires the HTTP routes and middleware of the voice bridge.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-voice/internal/api/handlers"
	"github.com/oszuidwest/zwfm-voice/internal/config"
	"github.com/oszuidwest/zwfm-voice/internal/metrics"
	"github.com/oszuidwest/zwfm-voice/internal/requestid"
)

// SetupRouter configures and returns the main API router with all routes and middleware.
// m may be nil, in which case nothing is recorded and /metrics is not served.
// tools may be nil when tool checks are disabled.
func SetupRouter(cfg *config.Config, voiceSvc handlers.VoiceProcessor, tools handlers.ToolStatus, m *metrics.Metrics) *gin.Engine {
	h := handlers.NewHandlers(voiceSvc, tools, cfg)

	// Set Gin mode based on environment
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Request ID first so every later middleware can log it
	r.Use(requestIDMiddleware())
	r.Use(accessLogMiddleware())
	r.Use(recoveryMiddleware())
	r.Use(metricsMiddleware(m))

	// CORS is disabled unless origins are configured (secure by default)
	if origins := cfg.Server.Origins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestid.Header},
			ExposeHeaders: []string{requestid.Header},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/", h.Index)
	r.Static("/static", cfg.Server.StaticPath)
	r.POST("/voice_to_voice", h.VoiceToVoice)

	r.GET("/health", h.Health)
	if cfg.Metrics.Enabled && m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	return r
}
