package repositories

import (
	"sort"
	"sync"
	"time"

	"tanam/internal/models"

	"github.com/google/uuid"
)

// MockConversationRepository is an in-memory implementation of
// ConversationRepository. Appends happen under the write lock, so concurrent
// producers never lose a message.
type MockConversationRepository struct {
	conversations map[string][]models.Message
	mu            sync.RWMutex
}

// NewMockConversationRepository creates a new instance of MockConversationRepository.
func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{
		conversations: make(map[string][]models.Message),
	}
}

// Get returns the transcript ordered by timestamp.
func (r *MockConversationRepository) Get(conversationID string) (*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs, ok := r.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	out := append([]models.Message(nil), msgs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return &models.Conversation{ID: conversationID, Messages: out}, nil
}

// Append adds one message to the transcript. A missing conversation is
// created lazily on first append.
func (r *MockConversationRepository) Append(conversationID string, msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msg.ConversationID = conversationID
	r.conversations[conversationID] = append(r.conversations[conversationID], msg)
	return nil
}

// Replace overwrites the whole transcript with the given messages.
func (r *MockConversationRepository) Replace(conversationID string, msgs []models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}
		msg.ConversationID = conversationID
		out = append(out, msg)
	}
	r.conversations[conversationID] = out
	return nil
}
