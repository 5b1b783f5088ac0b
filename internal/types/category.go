package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string         `gorm:"column:external_id;uniqueIndex" json:"external_id"`
	Name       string         `gorm:"column:name;not null" json:"name"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Category) TableName() string { return "category" }

// CategoryRef is the reduced category projection embedded in API responses.
type CategoryRef struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Category) Ref() CategoryRef {
	if c == nil {
		return CategoryRef{}
	}
	return CategoryRef{
		ID:         c.ID,
		ExternalID: c.ExternalID,
		Name:       c.Name,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
