package model

// ChatMessage is one turn of prior conversation passed through to the
// generation step. Role is "user" or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound payload of POST /api/v1/chat.
type ChatRequest struct {
	Message   string        `json:"message" binding:"required"`
	SessionID string        `json:"session_id,omitempty"`
	History   []ChatMessage `json:"history,omitempty"`
}

// ChatResponse is returned to the chat endpoint consumer. SourcesUsed is
// empty when no context could be retrieved, so the caller can pick a
// fallback strategy.
type ChatResponse struct {
	Response      string           `json:"response"`
	SourcesUsed   []map[string]any `json:"sources_used"`
	Intent        Intent           `json:"intent"`
	Confidence    float64          `json:"confidence"`
	Parameters    map[string]any   `json:"parameters,omitempty"`
	LowConfidence bool             `json:"low_confidence,omitempty"`
	Degraded      bool             `json:"degraded,omitempty"`
	Took          int64            `json:"took_ms"`
}
