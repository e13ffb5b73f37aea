package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atcdesk/radioscribe/internal/assistant"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

// MessageRequest is one inbound chat turn. Attachments carry their
// payload base64-encoded.
type MessageRequest struct {
	SessionID   string              `json:"session_id"`
	UserID      string              `json:"user_id,omitempty"`
	Text        string              `json:"text"`
	Attachments []messageAttachment `json:"attachments,omitempty"`
}

type messageAttachment struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Data string `json:"data"`
}

type messageReply struct {
	Text      string `json:"text"`
	Image     string `json:"image,omitempty"`
	ImageName string `json:"image_name,omitempty"`
}

type messageResponse struct {
	Branch  string         `json:"branch"`
	Replies []messageReply `json:"replies"`
}

// MessagesHandler routes chat turns through the dispatcher.
type MessagesHandler struct {
	dispatcher *assistant.Dispatcher
	logger     *logging.Logger
}

func NewMessagesHandler(d *assistant.Dispatcher, logger *logging.Logger) *MessagesHandler {
	if d == nil {
		panic("handlers: dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MessagesHandler{
		dispatcher: d,
		logger:     logger.Component("handlers.messages"),
	}
}

// Post handles POST /v1/messages.
func (h *MessagesHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	turn := assistant.Turn{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Text:      req.Text,
	}
	for _, att := range req.Attachments {
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, "attachment data is not valid base64")
			return
		}
		turn.Attachments = append(turn.Attachments, assistant.Attachment{
			Name: att.Name,
			MIME: att.MIME,
			Data: data,
		})
	}

	result := h.dispatcher.Dispatch(r.Context(), turn)

	resp := messageResponse{Branch: result.Branch}
	for _, reply := range result.Replies {
		out := messageReply{Text: reply.Text, ImageName: reply.ImageName}
		if len(reply.Image) > 0 {
			out.Image = base64.StdEncoding.EncodeToString(reply.Image)
		}
		resp.Replies = append(resp.Replies, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (h *MessagesHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
