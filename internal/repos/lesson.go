package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error)
	GetByID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error)
	ListForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Lesson, error)
	Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	repoLog := baseLog.With("repo", "LessonRepo")
	return &lessonRepo{db: db, log: repoLog}
}

func (lr *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&lessons).Error; err != nil {
		return nil, err
	}

	return lessons, nil
}

func (lr *lessonRepo) GetByID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var result types.Lesson
	if err := transaction.WithContext(ctx).
		Where("id = ?", lessonID).
		First(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (lr *lessonRepo) ListForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Lesson
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (lr *lessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *types.Lesson) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	if lesson == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(lesson).Error
}

func (lr *lessonRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", lessonID).
		Delete(&types.Lesson{}).Error
}
