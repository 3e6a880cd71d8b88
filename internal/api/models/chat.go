package models

import "github.com/waypoint-labs/waypoint/internal/assistant"

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	// SessionID scopes conversation state such as the current route. A new
	// one is issued when absent.
	SessionID string `json:"session_id"`

	// Messages is the conversation history, newest last. The final entry
	// must be a user message.
	Messages []assistant.Message `json:"messages"`
}

// ChatResponse is the body of a successful POST /v1/chat.
type ChatResponse struct {
	SessionID string             `json:"session_id"`
	Content   string             `json:"content"`
	MapData   *assistant.MapData `json:"map_data,omitempty"`
}
