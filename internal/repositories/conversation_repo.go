package repositories

import (
	"tanam/internal/models"
)

// ConversationRepository defines the interface for transcript data access.
// Append must be atomic at the storage boundary: a read-modify-write of the
// whole message array under concurrent producers loses messages and is not an
// acceptable implementation.
type ConversationRepository interface {
	Get(conversationID string) (*models.Conversation, error)
	Append(conversationID string, msg models.Message) error
	Replace(conversationID string, msgs []models.Message) error
}
