package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MessageRole identifies the author class of a transcript message.
type MessageRole string

const (
	RoleCustomer MessageRole = "customer"
	RoleVendor   MessageRole = "vendor"
	RoleSystem   MessageRole = "system"
)

// ProductSnapshot captures a selected product's name and price as they were
// when a bid message was written; later catalog edits must not rewrite chat
// history.
type ProductSnapshot struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
}

// Message is a single entry in a conversation transcript. The transcript is
// append-only and ordered by Timestamp.
type Message struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ConversationID string       `json:"conversation_id" gorm:"type:varchar(36);index"`
	Role           MessageRole  `json:"role" gorm:"type:varchar(16)"`
	Content        string       `json:"content" gorm:"type:text"`
	Timestamp      time.Time    `json:"timestamp" gorm:"index"`
	BidStatus      BidStatus    `json:"bid_status,omitempty" gorm:"type:varchar(16)"`
	Price          *int64       `json:"price,omitempty"`
	Products       SnapshotList `json:"products,omitempty" gorm:"type:text"`
	Images         StringList   `json:"images,omitempty" gorm:"type:text"`
}

// Conversation is the transcript read model returned to callers.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

// StringList stores a []string as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// SnapshotList stores a []ProductSnapshot as a JSON text column.
type SnapshotList []ProductSnapshot

// Value implements driver.Valuer.
func (l SnapshotList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product snapshots: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *SnapshotList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
