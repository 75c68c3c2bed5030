package audio

import "fmt"

// Operation represents the type of audio operation
type Operation string

const (
	OpDetect   Operation = "detect"
	OpProbe    Operation = "probe"
	OpDecode   Operation = "decode"
	OpResample Operation = "resample"
	OpEncode   Operation = "encode"
)

// AudioError represents a structured audio processing error
type AudioError struct {
	Op         Operation
	Container  Container
	Stderr     string
	Underlying error
}

func (e *AudioError) Error() string {
	msg := fmt.Sprintf("audio %s failed", e.Op)
	if e.Container != "" {
		msg += fmt.Sprintf(" for %s", e.Container)
	}
	if e.Underlying != nil {
		msg += fmt.Sprintf(": %v", e.Underlying)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf(" (stderr: %s)", e.Stderr)
	}
	return msg
}

func (e *AudioError) Unwrap() error {
	return e.Underlying
}

// NewProbeError creates an error for ffprobe failures
func NewProbeError(container Container, stderr string, err error) *AudioError {
	return &AudioError{
		Op:         OpProbe,
		Container:  container,
		Stderr:     stderr,
		Underlying: err,
	}
}

// NewDecodeError creates an error for container or codec decoding failures
func NewDecodeError(container Container, stderr string, err error) *AudioError {
	return &AudioError{
		Op:         OpDecode,
		Container:  container,
		Stderr:     stderr,
		Underlying: err,
	}
}

// NewResampleError creates an error for sample rate conversion failures
func NewResampleError(stderr string, err error) *AudioError {
	return &AudioError{
		Op:         OpResample,
		Stderr:     stderr,
		Underlying: err,
	}
}

// NewEncodeError creates an error for WAV encoding failures
func NewEncodeError(err error) *AudioError {
	return &AudioError{
		Op:         OpEncode,
		Container:  ContainerWAV,
		Underlying: err,
	}
}
