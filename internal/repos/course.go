package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

// CatalogFilter narrows catalog listings; zero value means "everything".
type CatalogFilter struct {
	CategoryID *uuid.UUID
	LevelID    *uuid.UUID
}

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
	GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	// ListCatalog returns the full course catalog with category, level, tags
	// and rating collections resolved, in stable (created_at, id) order.
	ListCatalog(ctx context.Context, tx *gorm.DB, filter CatalogFilter) ([]*types.Course, error)
	ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *types.Course) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
	IncrementStudentCount(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, delta int) error
	ReplaceTags(ctx context.Context, tx *gorm.DB, course *types.Course, tags []*types.Tag) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (cr *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(courses) == 0 {
		return []*types.Course{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (cr *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Course
	if err := transaction.WithContext(ctx).
		Preload("Category").
		Preload("Level").
		Preload("Tags").
		Preload("Ratings").
		Where("id = ?", courseID).
		First(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (cr *courseRepo) ListCatalog(ctx context.Context, tx *gorm.DB, filter CatalogFilter) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	query := transaction.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Preload("Level").
		Preload("Tags").
		Preload("Ratings")

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.LevelID != nil {
		query = query.Where("level_id = ?", *filter.LevelID)
	}

	var results []*types.Course
	if err := query.
		Order("created_at ASC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (cr *courseRepo) ListByInstructor(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Preload("Category").
		Preload("Level").
		Preload("Tags").
		Where("user_id = ?", instructorID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (cr *courseRepo) Update(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if course == nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(course).
		Omit("Tags", "Ratings").
		Save(course).Error
}

func (cr *courseRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", courseID).
		Delete(&types.Course{}).Error
}

func (cr *courseRepo) IncrementStudentCount(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, delta int) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("student_count", gorm.Expr("student_count + ?", delta)).Error
}

func (cr *courseRepo) ReplaceTags(ctx context.Context, tx *gorm.DB, course *types.Course, tags []*types.Tag) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if course == nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(course).
		Association("Tags").
		Replace(tags)
}
