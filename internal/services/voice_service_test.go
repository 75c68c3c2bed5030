package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-voice/internal/apperrors"
	"github.com/oszuidwest/zwfm-voice/internal/audio"
	"github.com/oszuidwest/zwfm-voice/internal/backend"
	"github.com/oszuidwest/zwfm-voice/internal/metrics"
	"github.com/oszuidwest/zwfm-voice/internal/requestid"
)

type fakeNormalizer struct {
	out       *audio.Normalized
	err       error
	gotHint   string
	callCount int
}

func (f *fakeNormalizer) Normalize(_ context.Context, _ string, hint string) (*audio.Normalized, error) {
	f.callCount++
	f.gotHint = hint
	return f.out, f.err
}

type fakeBackend struct {
	res      *backend.Result
	err      error
	gotAudio string
	gotID    string
	called   bool
}

func (f *fakeBackend) Process(ctx context.Context, audioB64 string) (*backend.Result, error) {
	f.called = true
	f.gotAudio = audioB64
	f.gotID = requestid.FromContext(ctx)
	return f.res, f.err
}

func normalized() *audio.Normalized {
	return &audio.Normalized{
		WAV:         []byte("RIFF"),
		Format:      audio.NormalizedFormat(16000),
		Frames:      16000,
		Duration:    time.Second,
		Source:      audio.ContainerWebM,
		SourceRate:  48000,
		SourceChans: 2,
		Resampled:   true,
		Resampler:   "polyphase",
	}
}

func TestProcessSuccess(t *testing.T) {
	n := &fakeNormalizer{out: normalized()}
	b := &fakeBackend{res: &backend.Result{AudioB64: "QUJD", SampleRate: 24000, Transcription: "hello", LLMResponse: "hi there"}}
	svc := NewVoiceService(n, b, metrics.NewMetrics())

	ctx := requestid.WithContext(context.Background(), "req-7")
	res, err := svc.Process(ctx, VoiceRequest{AudioB64: "xxxx", Format: "webm"})
	require.NoError(t, err)

	assert.Equal(t, "webm", n.gotHint)
	assert.Equal(t, "UklGRg==", b.gotAudio)
	assert.Equal(t, "req-7", b.gotID)
	assert.Equal(t, "hello", res.Transcription)
}

func TestProcessConversionFailureSkipsBackend(t *testing.T) {
	cause := apperrors.Format("no audio stream").Wrap(audio.NewProbeError(audio.ContainerWebM, "EBML header parsing failed", errors.New("exit status 1")))
	n := &fakeNormalizer{err: apperrors.Conversion(cause)}
	b := &fakeBackend{}
	svc := NewVoiceService(n, b, nil)

	_, err := svc.Process(context.Background(), VoiceRequest{AudioB64: "xxxx"})
	require.Error(t, err)
	assert.False(t, b.called)
	assert.Equal(t, "Audio conversion failed", UserMessage(err))
	assert.Equal(t, "conversion", Outcome(err))
	assert.Equal(t, "probe", ConversionStage(err))
}

func TestProcessBackendFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		outcome string
	}{
		{"transport", apperrors.BackendTransport("Voice backend returned status 502: bad gateway"), "Voice backend returned status 502: bad gateway", "backend_transport"},
		{"logical", apperrors.BackendLogical("response has no audio_b64"), "Voice processing failed", "backend_logical"},
		{"unclassified", errors.New("boom"), "Internal server error", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewVoiceService(&fakeNormalizer{out: normalized()}, &fakeBackend{err: tt.err}, nil)

			res, err := svc.Process(context.Background(), VoiceRequest{AudioB64: "xxxx"})
			assert.Nil(t, res)
			assert.Equal(t, tt.message, UserMessage(err))
			assert.Equal(t, tt.outcome, Outcome(err))
		})
	}
}

func TestConversionStage(t *testing.T) {
	assert.Equal(t, "payload", ConversionStage(apperrors.Conversion(apperrors.Decode("invalid base64"))))
	assert.Equal(t, "resample", ConversionStage(apperrors.Conversion(audio.NewResampleError("", errors.New("x")))))
	assert.Equal(t, "encode", ConversionStage(apperrors.Conversion(audio.NewEncodeError(errors.New("x")))))
	assert.Equal(t, "unknown", ConversionStage(errors.New("x")))
}

func TestOutcomeAndMessageForNil(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "Internal server error", UserMessage(nil))
}
