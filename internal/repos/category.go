package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

type CategoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, categories []*types.Category) ([]*types.Category, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) ([]*types.Category, error)
	GetByExternalIDs(ctx context.Context, tx *gorm.DB, externalIDs []string) ([]*types.Category, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	repoLog := baseLog.With("repo", "CategoryRepo")
	return &categoryRepo{db: db, log: repoLog}
}

func (cr *categoryRepo) Create(ctx context.Context, tx *gorm.DB, categories []*types.Category) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(categories) == 0 {
		return []*types.Category{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}

func (cr *categoryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Category

	if len(categoryIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", categoryIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (cr *categoryRepo) GetByExternalIDs(ctx context.Context, tx *gorm.DB, externalIDs []string) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Category

	if len(externalIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("external_id IN ?", externalIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (cr *categoryRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Category
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
