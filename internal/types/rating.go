package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Rating struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index:idx_course_user_rating,unique,priority:1" json:"course_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_course_user_rating,unique,priority:2" json:"user_id"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Stars    int       `gorm:"column:stars;not null" json:"stars"`
	Comment  string    `gorm:"column:comment" json:"comment,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Rating) TableName() string { return "rating" }
