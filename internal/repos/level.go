package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

type LevelRepo interface {
	Create(ctx context.Context, tx *gorm.DB, levels []*types.Level) ([]*types.Level, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, levelIDs []uuid.UUID) ([]*types.Level, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Level, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Level, error)
}

type levelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLevelRepo(db *gorm.DB, baseLog *logger.Logger) LevelRepo {
	repoLog := baseLog.With("repo", "LevelRepo")
	return &levelRepo{db: db, log: repoLog}
}

func (lr *levelRepo) Create(ctx context.Context, tx *gorm.DB, levels []*types.Level) ([]*types.Level, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	if len(levels) == 0 {
		return []*types.Level{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&levels).Error; err != nil {
		return nil, err
	}

	return levels, nil
}

func (lr *levelRepo) GetByIDs(ctx context.Context, tx *gorm.DB, levelIDs []uuid.UUID) ([]*types.Level, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Level

	if len(levelIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", levelIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (lr *levelRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Level, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var result types.Level
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (lr *levelRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Level, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var results []*types.Level
	if err := transaction.WithContext(ctx).
		Order("rank ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
