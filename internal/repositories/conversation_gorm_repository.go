package repositories

import (
	"fmt"
	"time"

	"tanam/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMConversationRepository stores each message as its own row, so Append is
// a single INSERT and concurrent producers cannot overwrite each other. The
// ordered transcript is reassembled at read time.
type GORMConversationRepository struct {
	db *gorm.DB
}

// NewGORMConversationRepository creates a new instance of GORMConversationRepository.
func NewGORMConversationRepository(db *gorm.DB) *GORMConversationRepository {
	return &GORMConversationRepository{db: db}
}

// Get retrieves the transcript ordered by timestamp.
func (r *GORMConversationRepository) Get(conversationID string) (*models.Conversation, error) {
	var msgs []models.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("timestamp asc").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", conversationID, err)
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return &models.Conversation{ID: conversationID, Messages: msgs}, nil
}

// Append inserts one message row.
func (r *GORMConversationRepository) Append(conversationID string, msg models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msg.ConversationID = conversationID
	if err := r.db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to append message to conversation %s: %w", conversationID, err)
	}
	return nil
}

// Replace swaps the whole transcript inside one transaction.
func (r *GORMConversationRepository) Replace(conversationID string, msgs []models.Message) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		for i := range msgs {
			if msgs[i].ID == "" {
				msgs[i].ID = uuid.New().String()
			}
			if msgs[i].Timestamp.IsZero() {
				msgs[i].Timestamp = time.Now()
			}
			msgs[i].ConversationID = conversationID
		}
		if len(msgs) == 0 {
			return nil
		}
		return tx.Create(&msgs).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace conversation %s: %w", conversationID, err)
	}
	return nil
}
