package audio

import (
	"context"
	"math"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-voice/internal/config"
)

func TestResampledLength(t *testing.T) {
	tests := []struct {
		n, from, to int
		want        int
	}{
		{44100, 44100, 16000, 16000},
		{48000, 48000, 16000, 16000},
		{16000, 16000, 48000, 48000},
		{22050, 44100, 16000, 8000},
		{1, 44100, 16000, 0},
		{3, 44100, 16000, 1},
		{441, 44100, 16000, 160},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResampledLength(tt.n, tt.from, tt.to), "%d@%d->%d", tt.n, tt.from, tt.to)
	}
}

func TestNewResampler(t *testing.T) {
	ff := NewFFmpeg("", "")

	r, err := NewResampler(config.ResamplerPolyphase, ff)
	require.NoError(t, err)
	assert.Equal(t, "polyphase", r.Name())

	r, err = NewResampler("", ff)
	require.NoError(t, err)
	assert.Equal(t, "polyphase", r.Name())

	r, err = NewResampler(config.ResamplerLinear, ff)
	require.NoError(t, err)
	assert.Equal(t, "linear", r.Name())

	r, err = NewResampler(config.ResamplerFFmpeg, ff)
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg", r.Name())

	_, err = NewResampler(config.ResamplerFFmpeg, nil)
	assert.Error(t, err)

	_, err = NewResampler("cubic", ff)
	assert.Error(t, err)
}

// assertTone checks the interior of w against an ideal sine, skipping the
// filter's edge transients.
func assertTone(t *testing.T, w *Waveform, freq, amp, tol float64) {
	t.Helper()
	margin := w.SampleRate / 100
	var maxErr float64
	for i := margin; i < len(w.Samples)-margin; i++ {
		want := amp * math.Sin(2*math.Pi*freq*float64(i)/float64(w.SampleRate))
		if d := math.Abs(w.Samples[i] - want); d > maxErr {
			maxErr = d
		}
	}
	assert.Less(t, maxErr, tol, "max deviation from ideal tone")
}

// interior returns the middle half of s, away from filter warm-up and tail.
func interior(s []float64) []float64 {
	return s[len(s)/4 : len(s)-len(s)/4]
}

func rms(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

func TestPolyphaseResampler(t *testing.T) {
	tests := []struct {
		name     string
		freq     float64
		from, to int
	}{
		{"44.1k to 16k", 440, 44100, 16000},
		{"48k to 16k", 1000, 48000, 16000},
		{"22.05k to 16k", 440, 22050, 16000},
		{"8k to 16k", 1000, 8000, 16000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := sine(tt.freq, tt.from, 1, time.Second, 0.5)

			out, err := NewPolyphaseResampler().Resample(context.Background(), src, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.to, out.SampleRate)
			assert.Equal(t, 1, out.Channels)
			assert.Len(t, out.Samples, tt.to)
			// a 0.5 amplitude sine has an RMS of 0.5/sqrt(2)
			assert.InDelta(t, 0.5/math.Sqrt2, rms(interior(out.Samples)), 0.01)
		})
	}
}

func TestPolyphaseResamplerRejectsAboveNyquist(t *testing.T) {
	// 12 kHz survives at 48 kHz but sits above the 8 kHz Nyquist of 16 kHz
	src := sine(12000, 48000, 1, time.Second, 0.5)

	out, err := NewPolyphaseResampler().Resample(context.Background(), src, 16000)
	require.NoError(t, err)
	assert.Less(t, rms(interior(out.Samples)), 0.01)
}

func TestPolyphaseResamplerPreservesDC(t *testing.T) {
	src := &Waveform{Samples: make([]float64, 44100), Channels: 1, SampleRate: 44100}
	for i := range src.Samples {
		src.Samples[i] = 0.25
	}

	out, err := NewPolyphaseResampler().Resample(context.Background(), src, 16000)
	require.NoError(t, err)
	for i, v := range interior(out.Samples) {
		if !assert.InDelta(t, 0.25, v, 1e-3, "sample %d", i) {
			break
		}
	}
}

func TestResamplerMultiChannel(t *testing.T) {
	src := sine(300, 48000, 2, 500*time.Millisecond, 0.5)

	out, err := NewPolyphaseResampler().Resample(context.Background(), src, 16000)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Channels)
	assert.Equal(t, 8000, out.Frames())
	for i := 0; i < out.Frames(); i++ {
		assert.Equal(t, out.Samples[2*i], out.Samples[2*i+1])
	}
}

func TestLinearResampler(t *testing.T) {
	src := &Waveform{Samples: []float64{0, 1, 0, -1}, Channels: 1, SampleRate: 4000}

	out, err := LinearResampler{}.Resample(context.Background(), src, 8000)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0.5, 0, -0.5, -1, -1}, out.Samples, 1e-12)

	long := sine(440, 44100, 1, time.Second, 0.5)
	out, err = LinearResampler{}.Resample(context.Background(), long, 16000)
	require.NoError(t, err)
	assert.Len(t, out.Samples, 16000)
	assertTone(t, out, 440, 0.5, 2e-2)

	_, err = LinearResampler{}.Resample(context.Background(), long, 1)
	var audioErr *AudioError
	require.ErrorAs(t, err, &audioErr)
	assert.Equal(t, OpResample, audioErr.Op)
}

func TestResamplerSameRate(t *testing.T) {
	src := sine(440, 16000, 1, 10*time.Millisecond, 0.5)
	out, err := NewPolyphaseResampler().Resample(context.Background(), src, 16000)
	require.NoError(t, err)
	assert.Same(t, src, out)
}

func TestResamplerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPolyphaseResampler().Resample(ctx, sine(440, 44100, 1, 10*time.Millisecond, 0.5), 16000)
	var audioErr *AudioError
	require.ErrorAs(t, err, &audioErr)
	assert.Equal(t, OpResample, audioErr.Op)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFFmpegResampler(t *testing.T) {
	requireFFmpeg(t)

	src := sine(440, 44100, 1, time.Second, 0.5)
	out, err := FFmpegResampler{FFmpeg: NewFFmpeg("", "")}.Resample(context.Background(), src, 16000)
	require.NoError(t, err)
	assert.Equal(t, 16000, out.SampleRate)
	assert.InDelta(t, 16000, len(out.Samples), 64)
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available: %v", bin, err)
		}
	}
}

func TestFFmpegCheck(t *testing.T) {
	missing := NewFFmpeg("/nonexistent/ffmpeg", "/nonexistent/ffprobe").Check(context.Background())
	require.Len(t, missing, 2)
	assert.Error(t, missing["ffmpeg"])
	assert.Error(t, missing["ffprobe"])

	requireFFmpeg(t)
	found := NewFFmpeg("", "").Check(context.Background())
	assert.NoError(t, found["ffmpeg"])
	assert.NoError(t, found["ffprobe"])
}
