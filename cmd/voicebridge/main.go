// Package main is the entry point for the voice-to-voice bridge server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oszuidwest/zwfm-voice/internal/api"
	"github.com/oszuidwest/zwfm-voice/internal/audio"
	"github.com/oszuidwest/zwfm-voice/internal/backend"
	"github.com/oszuidwest/zwfm-voice/internal/config"
	"github.com/oszuidwest/zwfm-voice/internal/metrics"
	"github.com/oszuidwest/zwfm-voice/internal/scheduler"
	"github.com/oszuidwest/zwfm-voice/internal/services"
	"github.com/oszuidwest/zwfm-voice/pkg/logger"
	"github.com/oszuidwest/zwfm-voice/pkg/version"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.InitializeWithOptions(logger.Options{
		Level:       cfg.Log.Level,
		Development: !cfg.Environment.IsProduction(),
		FilePath:    cfg.Log.File,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Log configuration (without sensitive data)
	logger.Info("zwfm-voice %s (%s, built %s)", version.Version, version.Commit, version.BuildTime)
	logger.Info("Server config: Address=%s, StaticPath=%s", cfg.Server.Address, cfg.Server.StaticPath)
	logger.Info("Audio config: TargetSampleRate=%d, Resampler=%s, MaxAudioBytes=%d, MaxAudioDuration=%s",
		cfg.Audio.TargetSampleRate, cfg.Audio.Resampler, cfg.Audio.MaxAudioBytes, cfg.Audio.MaxAudioDuration)
	logger.Info("Backend config: URL=%s, Protocol=%s, Timeout=%s, APIKey set=%t",
		cfg.Backend.URL, cfg.Backend.Protocol, cfg.Backend.Timeout, cfg.Backend.APIKey != "")

	normalizer, err := audio.NewNormalizer(cfg.Audio)
	if err != nil {
		logger.Fatal("Failed to create audio normalizer: %v", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics()
	}

	// Check the external audio tools once now and then on an interval
	tools := scheduler.NewToolCheckService(
		audio.NewFFmpeg(cfg.Audio.FFmpegPath, cfg.Audio.FFprobePath), m, cfg.Audio.ToolCheckInterval)
	tools.Start()
	defer tools.Stop()

	voiceSvc := services.NewVoiceService(normalizer, backend.NewClient(cfg.Backend), m)
	router := api.SetupRouter(cfg, voiceSvc, tools, m)

	// Create HTTP server. WriteTimeout leaves room for the slowest backend reply.
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting voice bridge on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server error: %v", err)
	}

	logger.Info("Server exited")
}
