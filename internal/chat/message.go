// Package chat orchestrates a chat turn: document context assembly,
// the LLM call, figure citation resolution, and persistence.
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"figment/internal/figures"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted chat turn. References is nil for user
// messages and for answers that cite nothing; it round-trips through
// storage as a JSON array or null.
type Message struct {
	ID         uuid.UUID                `json:"id"`
	DocumentID string                   `json:"documentId,omitempty"`
	Role       string                   `json:"role"`
	Content    string                   `json:"content"`
	References []figures.ImageReference `json:"references"`
	CreatedAt  time.Time                `json:"createdAt"`
}

// Store persists messages. History returns newest-last so a
// conversation reads top to bottom.
type Store interface {
	Save(ctx context.Context, msg Message) error
	History(ctx context.Context, documentID string, limit int) ([]Message, error)
}
