package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID  *string    `gorm:"column:external_id;index" json:"external_id,omitempty"`
	Name        string     `gorm:"column:name;not null;index" json:"name"`
	Description string     `gorm:"column:description" json:"description"`
	Price       *float64   `gorm:"column:price" json:"price,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category    *Category  `gorm:"constraint:OnDelete:SET NULL;foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	LevelID     *uuid.UUID `gorm:"type:uuid;index" json:"level_id,omitempty"`
	Level       *Level     `gorm:"constraint:OnDelete:SET NULL;foreignKey:LevelID;references:ID" json:"level,omitempty"`
	Tags        []*Tag     `gorm:"many2many:course_tag" json:"tags,omitempty"`
	Ratings     []*Rating  `gorm:"foreignKey:CourseID;references:ID" json:"ratings,omitempty"`

	// StudentCount is denormalized from enrollment rows; maintained by
	// EnrollmentService in the same transaction as the enrollment insert.
	StudentCount   int            `gorm:"column:student_count;not null;default:0" json:"student_count"`
	CompletionRate *float64       `gorm:"column:completion_rate" json:"completion_rate,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

// AverageStars is the arithmetic mean of the course's rating entries, 0 when
// the course has no ratings yet.
func (c *Course) AverageStars() float64 {
	if c == nil || len(c.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range c.Ratings {
		if r == nil {
			continue
		}
		sum += r.Stars
	}
	return float64(sum) / float64(len(c.Ratings))
}

// TagIDSet returns the course's tag identifiers as a membership set.
func (c *Course) TagIDSet() map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(c.Tags))
	for _, t := range c.Tags {
		if t == nil {
			continue
		}
		set[t.ID] = true
	}
	return set
}
