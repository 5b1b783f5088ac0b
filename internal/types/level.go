package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Level is a course difficulty level (beginner, intermediate, ...).
type Level struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Rank      int            `gorm:"column:rank;not null;default:0" json:"rank"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Level) TableName() string { return "level" }
