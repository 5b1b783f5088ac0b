package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatMessage is the durable record of a course-room message. The realtime
// relay never reads this table; it routes transient payloads only.
type ChatMessage struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	SenderID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID *uuid.UUID     `gorm:"type:uuid;index" json:"receiver_id,omitempty"`
	Content    string         `gorm:"column:content;not null" json:"content"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChatMessage) TableName() string { return "chat_message" }
