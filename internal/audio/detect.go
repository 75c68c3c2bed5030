package audio

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Container identifies an audio file format.
type Container string

// Containers accepted from browsers and uploads.
const (
	ContainerUnknown  Container = ""
	ContainerWAV      Container = "wav"
	ContainerWebM     Container = "webm"
	ContainerMatroska Container = "matroska"
	ContainerOgg      Container = "ogg"
	ContainerMP3      Container = "mp3"
	ContainerFLAC     Container = "flac"
	ContainerMP4      Container = "mp4"
	ContainerAAC      Container = "aac"
)

// allowedMimeTypes maps the detectable MIME types onto containers.
// Order matters: the first match wins, so specific types come before parents.
var allowedMimeTypes = []struct {
	mime      string
	container Container
}{
	{"audio/wav", ContainerWAV},
	{"audio/webm", ContainerWebM},
	{"video/x-matroska", ContainerMatroska},
	{"audio/ogg", ContainerOgg},
	{"application/ogg", ContainerOgg},
	{"audio/mpeg", ContainerMP3},
	{"audio/flac", ContainerFLAC},
	{"audio/x-m4a", ContainerMP4},
	{"audio/mp4", ContainerMP4},
	{"video/mp4", ContainerMP4},
	{"audio/aac", ContainerAAC},
}

// hintAliases maps client-supplied format hints onto containers.
var hintAliases = map[string]Container{
	"wav":      ContainerWAV,
	"wave":     ContainerWAV,
	"webm":     ContainerWebM,
	"mkv":      ContainerMatroska,
	"matroska": ContainerMatroska,
	"ogg":      ContainerOgg,
	"oga":      ContainerOgg,
	"opus":     ContainerOgg,
	"mp3":      ContainerMP3,
	"mpeg":     ContainerMP3,
	"flac":     ContainerFLAC,
	"mp4":      ContainerMP4,
	"m4a":      ContainerMP4,
	"aac":      ContainerAAC,
}

// DetectContainer sniffs the container from the payload bytes. When the bytes
// are not recognized the client hint is used, if it names a known format.
func DetectContainer(data []byte, hint string) Container {
	if c := sniff(data); c != ContainerUnknown {
		return c
	}
	return ParseHint(hint)
}

// ParseHint normalizes a client format hint such as "webm" or "audio/webm;codecs=opus".
func ParseHint(hint string) Container {
	h := strings.ToLower(strings.TrimSpace(hint))
	if i := strings.IndexByte(h, ';'); i >= 0 {
		h = h[:i]
	}
	h = strings.TrimPrefix(h, "audio/")
	h = strings.TrimPrefix(h, "video/")
	h = strings.TrimPrefix(h, ".")
	return hintAliases[h]
}

func sniff(data []byte) Container {
	if len(data) < 4 {
		return ContainerUnknown
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		for _, allowed := range allowedMimeTypes {
			if m.Is(allowed.mime) {
				return allowed.container
			}
		}
	}
	return ContainerUnknown
}
