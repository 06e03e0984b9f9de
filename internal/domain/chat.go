package domain

import (
	"context"
	"time"
)

// ChatMessage is a single turn of the health-assistant conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatHistoryRepository is the port for durable per-user chat transcripts.
// Guest transcripts live inside the guest session's AssessmentData until
// conversion copies them here.
type ChatHistoryRepository interface {
	AppendChatMessages(ctx context.Context, userID int64, msgs []ChatMessage) error
	ListChatMessages(ctx context.Context, userID int64, limit int) ([]ChatMessage, error)
}

// ChatClient is the port to the external LLM provider: conversation history
// in, assistant text out. No orchestration happens behind it.
type ChatClient interface {
	Reply(ctx context.Context, history []ChatMessage) (string, error)
}
