package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

type TagRepo interface {
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Tag, error)
	// GetOrCreateByNames upserts tags by name and returns the full set, in the
	// order the names were given.
	GetOrCreateByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Tag, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	repoLog := baseLog.With("repo", "TagRepo")
	return &tagRepo{db: db, log: repoLog}
}

func (tr *tagRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.Tag

	if len(names) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("name IN ?", names).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (tr *tagRepo) GetOrCreateByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if len(names) == 0 {
		return []*types.Tag{}, nil
	}

	toInsert := make([]*types.Tag, 0, len(names))
	for _, name := range names {
		toInsert = append(toInsert, &types.Tag{Name: name})
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&toInsert).Error; err != nil {
		return nil, err
	}

	found, err := tr.GetByNames(ctx, transaction, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*types.Tag, len(found))
	for _, t := range found {
		byName[t.Name] = t
	}
	ordered := make([]*types.Tag, 0, len(names))
	for _, name := range names {
		if t, ok := byName[name]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}
