// Package config handles application configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
// Values come from defaults, an optional YAML file and environment variables, in that order.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Audio   AudioConfig   `yaml:"audio"`
	Backend BackendConfig `yaml:"backend"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	Environment Environment `yaml:"environment"`
}

// ServerConfig holds HTTP server, static files and CORS configuration.
type ServerConfig struct {
	Address string `yaml:"address"`
	// AllowedOrigins is a comma-separated list of allowed origins for CORS
	AllowedOrigins string `yaml:"allowed_origins"`
	// StaticPath is the directory holding index.html and the browser assets
	StaticPath string `yaml:"static_path"`
}

// AudioConfig holds the normalization parameters.
type AudioConfig struct {
	TargetSampleRate int `yaml:"target_sample_rate"`
	MaxAudioBytes    int `yaml:"max_audio_bytes"`
	// MaxAudioDuration bounds the decoded recording length
	MaxAudioDuration time.Duration `yaml:"max_audio_duration"`
	Resampler        ResamplerKind `yaml:"resampler"`
	FFmpegPath       string        `yaml:"ffmpeg_path"`
	FFprobePath      string        `yaml:"ffprobe_path"`
	// ToolCheckInterval is how often ffmpeg/ffprobe availability is re-checked; 0 disables the check
	ToolCheckInterval time.Duration `yaml:"tool_check_interval"`
}

// BackendConfig holds the external voice-processing backend parameters.
type BackendConfig struct {
	URL      string          `yaml:"url"`
	APIKey   string          `yaml:"api_key"`
	Protocol BackendProtocol `yaml:"protocol"`
	// Timeout bounds the single synchronous backend call
	Timeout           time.Duration `yaml:"timeout"`
	DefaultSampleRate int           `yaml:"default_sample_rate"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:    ":8080",
			StaticPath: "./static",
		},
		Audio: AudioConfig{
			TargetSampleRate:  16000,
			MaxAudioBytes:     25 * 1024 * 1024,
			MaxAudioDuration:  10 * time.Minute,
			Resampler:         ResamplerPolyphase,
			FFmpegPath:        "ffmpeg",
			FFprobePath:       "ffprobe",
			ToolCheckInterval: 5 * time.Minute,
		},
		Backend: BackendConfig{
			Protocol:          ProtocolPlain,
			Timeout:           120 * time.Second,
			DefaultSampleRate: 24000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Environment: EnvDevelopment,
	}
}

// Load reads the optional YAML file named by VOICE_CONFIG_FILE, applies
// environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("VOICE_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	// #nosec G304 - path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Address = getEnv("VOICE_SERVER_ADDRESS", c.Server.Address)
	c.Server.AllowedOrigins = getEnv("VOICE_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.StaticPath = getEnv("VOICE_STATIC_PATH", c.Server.StaticPath)

	c.Environment = Environment(getEnv("VOICE_ENV", string(c.Environment)))
	c.Log.Level = getEnv("VOICE_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("VOICE_LOG_FILE", c.Log.File)

	c.Audio.Resampler = ResamplerKind(getEnv("VOICE_RESAMPLER", string(c.Audio.Resampler)))
	c.Audio.FFmpegPath = getEnv("VOICE_FFMPEG_PATH", c.Audio.FFmpegPath)
	c.Audio.FFprobePath = getEnv("VOICE_FFPROBE_PATH", c.Audio.FFprobePath)

	c.Backend.URL = getEnv("VOICE_BACKEND_URL", c.Backend.URL)
	c.Backend.APIKey = getEnv("VOICE_BACKEND_API_KEY", c.Backend.APIKey)
	c.Backend.Protocol = BackendProtocol(getEnv("VOICE_BACKEND_PROTOCOL", string(c.Backend.Protocol)))

	var err error
	if c.Audio.TargetSampleRate, err = getEnvInt("VOICE_TARGET_SAMPLE_RATE", c.Audio.TargetSampleRate); err != nil {
		return err
	}
	if c.Audio.MaxAudioBytes, err = getEnvInt("VOICE_MAX_AUDIO_BYTES", c.Audio.MaxAudioBytes); err != nil {
		return err
	}
	if c.Audio.MaxAudioDuration, err = getEnvDuration("VOICE_MAX_AUDIO_DURATION", c.Audio.MaxAudioDuration); err != nil {
		return err
	}
	if c.Backend.DefaultSampleRate, err = getEnvInt("VOICE_BACKEND_DEFAULT_SAMPLE_RATE", c.Backend.DefaultSampleRate); err != nil {
		return err
	}
	if c.Backend.Timeout, err = getEnvDuration("VOICE_BACKEND_TIMEOUT", c.Backend.Timeout); err != nil {
		return err
	}
	if c.Audio.ToolCheckInterval, err = getEnvDuration("VOICE_TOOL_CHECK_INTERVAL", c.Audio.ToolCheckInterval); err != nil {
		return err
	}
	if c.Metrics.Enabled, err = getEnvBool("VOICE_METRICS_ENABLED", c.Metrics.Enabled); err != nil {
		return err
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if !c.Environment.IsValid() {
		return fmt.Errorf("environment must be development or production, got %q", c.Environment)
	}
	for _, origin := range c.Server.Origins() {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("allowed origin must be * or start with http(s)://, got %q", origin)
		}
	}
	if c.Audio.TargetSampleRate < 8000 || c.Audio.TargetSampleRate > 192000 {
		return fmt.Errorf("target_sample_rate must be between 8000 and 192000, got %d", c.Audio.TargetSampleRate)
	}
	if c.Audio.MaxAudioBytes <= 0 {
		return fmt.Errorf("max_audio_bytes must be positive, got %d", c.Audio.MaxAudioBytes)
	}
	if c.Audio.MaxAudioDuration <= 0 {
		return fmt.Errorf("max_audio_duration must be positive, got %s", c.Audio.MaxAudioDuration)
	}
	if !c.Audio.Resampler.IsValid() {
		return fmt.Errorf("resampler must be one of polyphase, linear, ffmpeg, got %q", c.Audio.Resampler)
	}
	if c.Audio.ToolCheckInterval < 0 {
		return fmt.Errorf("tool_check_interval cannot be negative, got %s", c.Audio.ToolCheckInterval)
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("backend url is required (VOICE_BACKEND_URL)")
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return fmt.Errorf("backend url must be http(s), got %q", c.Backend.URL)
	}
	if !c.Backend.Protocol.IsValid() {
		return fmt.Errorf("backend protocol must be plain or runpod, got %q", c.Backend.Protocol)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Backend.DefaultSampleRate <= 0 {
		return fmt.Errorf("backend default_sample_rate must be positive, got %d", c.Backend.DefaultSampleRate)
	}
	return nil
}

// Origins splits AllowedOrigins into a trimmed list without empty entries.
func (s ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(s.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// WriteTimeout is the HTTP server write timeout. It leaves headroom above the
// backend timeout so a slow but successful backend reply is still delivered.
func (c *Config) WriteTimeout() time.Duration {
	return c.Backend.Timeout + 30*time.Second
}

// getEnv returns the value of the environment variable key, or defaultValue if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 90s: %w", key, err)
	}
	return d, nil
}
