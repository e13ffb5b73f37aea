package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/atcdesk/radioscribe/internal/pipeline"
	"github.com/atcdesk/radioscribe/internal/transcribe"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

// AudioHandler accepts recording uploads and returns the transcribed,
// structured conversation.
type AudioHandler struct {
	pipeline  *pipeline.Pipeline
	maxUpload int64
	logger    *logging.Logger
}

func NewAudioHandler(p *pipeline.Pipeline, maxUpload int64, logger *logging.Logger) *AudioHandler {
	if p == nil {
		panic("handlers: pipeline cannot be nil")
	}
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AudioHandler{
		pipeline:  p,
		maxUpload: maxUpload,
		logger:    logger.Component("handlers.audio"),
	}
}

// Upload handles POST /v1/audio. Expects a multipart form with a "file"
// field holding the recording.
func (h *AudioHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or not multipart")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	mime := header.Header.Get("Content-Type")
	if !transcribe.IsAudioFile(mime, header.Filename) {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported audio format, expected .mp3, .wav, or .m4a")
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read upload", "file", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	result, err := h.pipeline.Process(r.Context(), audio, header.Filename)
	if err != nil {
		var terr *transcribe.TranscriptionError
		if errors.As(err, &terr) {
			h.logger.Error("transcription failed", "file", header.Filename, "error", err)
			writeError(w, http.StatusBadGateway, "transcription failed")
			return
		}
		h.logger.Error("audio processing failed", "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "audio processing failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
