package transcribe

import (
	"context"
	"path/filepath"
	"strings"
)

// Request carries the raw audio handed to the external transcription
// capability.
type Request struct {
	Audio    []byte
	Filename string
	Format   string
}

// Client is the external speech-to-text capability. Failures are opaque
// and passed through; the service wraps them in a TranscriptionError.
type Client interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}

var supportedMIMEs = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/wave":  true,
	"audio/x-m4a": true,
	"audio/mp4":   true,
}

var supportedExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".m4a": true,
}

// IsAudioFile reports whether the upload is a supported audio format,
// checking the MIME type first and the filename extension as a fallback.
func IsAudioFile(mime, filename string) bool {
	if mime != "" && supportedMIMEs[strings.ToLower(mime)] {
		return true
	}
	if filename != "" && supportedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return true
	}
	return false
}

// FormatOf returns the lowercased extension without the dot, or
// "unknown" when the filename has none.
func FormatOf(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
