package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VOICE_BACKEND_URL", "https://backend.example/runsync")
	t.Setenv("VOICE_BACKEND_PROTOCOL", "runpod")
	t.Setenv("VOICE_BACKEND_TIMEOUT", "45s")
	t.Setenv("VOICE_TARGET_SAMPLE_RATE", "22050")
	t.Setenv("VOICE_RESAMPLER", "linear")
	t.Setenv("VOICE_METRICS_ENABLED", "false")
	t.Setenv("VOICE_MAX_AUDIO_DURATION", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://backend.example/runsync", cfg.Backend.URL)
	assert.Equal(t, ProtocolRunPod, cfg.Backend.Protocol)
	assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 22050, cfg.Audio.TargetSampleRate)
	assert.Equal(t, ResamplerLinear, cfg.Audio.Resampler)
	assert.Equal(t, 2*time.Minute, cfg.Audio.MaxAudioDuration)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 24000, cfg.Backend.DefaultSampleRate)
	assert.Equal(t, 75*time.Second, cfg.WriteTimeout())
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voice.yaml")
	yamlDoc := `
server:
  address: ":9090"
  static_path: /srv/static
audio:
  target_sample_rate: 16000
  resampler: ffmpeg
backend:
  url: http://yaml.example/process
  timeout: 30s
  default_sample_rate: 22050
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))
	t.Setenv("VOICE_CONFIG_FILE", path)
	t.Setenv("VOICE_SERVER_ADDRESS", ":7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "/srv/static", cfg.Server.StaticPath)
	assert.Equal(t, ResamplerFFmpeg, cfg.Audio.Resampler)
	assert.Equal(t, "http://yaml.example/process", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 22050, cfg.Backend.DefaultSampleRate)
	// untouched keys keep their defaults
	assert.Equal(t, "ffmpeg", cfg.Audio.FFmpegPath)
	assert.Equal(t, ProtocolPlain, cfg.Backend.Protocol)
	assert.Equal(t, 10*time.Minute, cfg.Audio.MaxAudioDuration)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing backend url", env: map[string]string{}},
		{name: "bad protocol", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_BACKEND_PROTOCOL": "grpc"}},
		{name: "bad resampler", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_RESAMPLER": "cubic"}},
		{name: "non numeric rate", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_TARGET_SAMPLE_RATE": "fast"}},
		{name: "rate out of range", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_TARGET_SAMPLE_RATE": "100"}},
		{name: "zero max duration", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_MAX_AUDIO_DURATION": "0s"}},
		{name: "bad timeout", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_BACKEND_TIMEOUT": "soon"}},
		{name: "non http url", env: map[string]string{"VOICE_BACKEND_URL": "ftp://b"}},
		{name: "bad environment", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_ENV": "staging"}},
		{name: "origin without scheme", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_ALLOWED_ORIGINS": "example.com"}},
		{name: "missing config file", env: map[string]string{"VOICE_BACKEND_URL": "http://b", "VOICE_CONFIG_FILE": "/nonexistent/voice.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VOICE_BACKEND_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestOrigins(t *testing.T) {
	s := ServerConfig{AllowedOrigins: " https://a.example , ,http://localhost:3000,"}
	assert.Equal(t, []string{"https://a.example", "http://localhost:3000"}, s.Origins())
	assert.Empty(t, ServerConfig{}.Origins())
}

func TestEnums(t *testing.T) {
	assert.True(t, EnvProduction.IsProduction())
	assert.False(t, EnvDevelopment.IsProduction())
	assert.True(t, ResamplerPolyphase.IsValid())
	assert.False(t, ResamplerKind("").IsValid())
	assert.True(t, ProtocolRunPod.IsValid())
	assert.False(t, BackendProtocol("soap").IsValid())
}
