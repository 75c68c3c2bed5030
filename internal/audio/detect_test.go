package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pad(prefix string, n int) []byte {
	b := make([]byte, n)
	copy(b, prefix)
	return b
}

func TestDetectContainer(t *testing.T) {
	wavBytes, err := EncodeWAV(sine(440, 16000, 1, 10*time.Millisecond, 0.5))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		hint string
		want Container
	}{
		{"wav", wavBytes, "", ContainerWAV},
		{"wav beats wrong hint", wavBytes, "webm", ContainerWAV},
		{"flac", pad("fLaC\x00\x00\x00\x22", 64), "", ContainerFLAC},
		{"ogg", pad("OggS\x00", 64), "", ContainerOgg},
		{"mp3 id3", pad("ID3\x03\x00", 64), "", ContainerMP3},
		{"unknown bytes use hint", []byte("not really audio at all"), "audio/webm;codecs=opus", ContainerWebM},
		{"unknown bytes no hint", []byte("not really audio at all"), "", ContainerUnknown},
		{"unknown bytes bad hint", []byte("not really audio at all"), "text/plain", ContainerUnknown},
		{"too short", []byte{0x1a}, "ogg", ContainerOgg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContainer(tt.data, tt.hint))
		})
	}
}

func TestParseHint(t *testing.T) {
	tests := []struct {
		hint string
		want Container
	}{
		{"webm", ContainerWebM},
		{"WebM", ContainerWebM},
		{" audio/ogg; codecs=opus ", ContainerOgg},
		{"video/webm", ContainerWebM},
		{".m4a", ContainerMP4},
		{"audio/mp4", ContainerMP4},
		{"audio/mpeg", ContainerMP3},
		{"wave", ContainerWAV},
		{"opus", ContainerOgg},
		{"", ContainerUnknown},
		{"midi", ContainerUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseHint(tt.hint), tt.hint)
	}
}
