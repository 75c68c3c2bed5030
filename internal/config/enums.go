package config

// Environment represents the runtime environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvProduction:
		return true
	}
	return false
}

func (e Environment) IsProduction() bool {
	return e == EnvProduction
}

// ResamplerKind selects the sample-rate conversion strategy.
type ResamplerKind string

const (
	// ResamplerPolyphase is the soxr-style multi-stage polyphase resampler
	ResamplerPolyphase ResamplerKind = "polyphase"
	// ResamplerLinear is linear interpolation
	ResamplerLinear ResamplerKind = "linear"
	// ResamplerFFmpeg delegates to the ffmpeg aresample filter
	ResamplerFFmpeg ResamplerKind = "ffmpeg"
)

func (r ResamplerKind) IsValid() bool {
	switch r {
	case ResamplerPolyphase, ResamplerLinear, ResamplerFFmpeg:
		return true
	}
	return false
}

// BackendProtocol selects the request/response envelope spoken to the backend.
type BackendProtocol string

const (
	// ProtocolPlain posts {"audio_b64"} and reads the result object directly
	ProtocolPlain BackendProtocol = "plain"
	// ProtocolRunPod wraps the payload in {"input"} and unwraps {"output"}
	ProtocolRunPod BackendProtocol = "runpod"
)

func (p BackendProtocol) IsValid() bool {
	switch p {
	case ProtocolPlain, ProtocolRunPod:
		return true
	}
	return false
}
