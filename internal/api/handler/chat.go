package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/waypoint-labs/waypoint/internal/api/models"
	"github.com/waypoint-labs/waypoint/internal/api/response"
	"github.com/waypoint-labs/waypoint/internal/assistant"
	"github.com/waypoint-labs/waypoint/internal/provider/resilience"
)

// ChatEngine runs one conversation turn. *assistant.Engine satisfies it.
type ChatEngine interface {
	Converse(ctx context.Context, sessionID string, history []assistant.Message) (*assistant.ChatResult, error)
}

// ChatHandler handles the conversational endpoint.
type ChatHandler struct {
	engine ChatEngine
	logger zerolog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(engine ChatEngine, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{engine: engine, logger: logger}
}

// Chat handles POST /v1/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if len(req.Messages) == 0 {
		response.BadRequest(w, r, "messages must not be empty", []models.FieldError{
			{Field: "messages", Message: "at least one message is required", Code: "required"},
		})
		return
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != assistant.RoleUser || last.Content == "" {
		response.BadRequest(w, r, "the final message must be a non-empty user message", []models.FieldError{
			{Field: "messages", Message: "final message must have role user and non-empty content", Code: "invalid"},
		})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "sess_" + uuid.NewString()
	}

	result, err := h.engine.Converse(r.Context(), sessionID, req.Messages)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("conversation turn failed")
		if errors.Is(err, resilience.ErrCircuitOpen) {
			response.ServiceUnavailable(w, r, "assistant temporarily unavailable")
			return
		}
		response.BadGateway(w, r, "assistant request failed")
		return
	}

	resp := models.ChatResponse{
		SessionID: sessionID,
		Content:   result.Content,
	}
	if !result.MapData.IsEmpty() {
		resp.MapData = &result.MapData
	}
	response.JSON(w, r, http.StatusOK, resp)
}
