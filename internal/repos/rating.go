package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

type RatingRepo interface {
	// Upsert inserts the rating or replaces the stars/comment of the user's
	// existing rating for the same course.
	Upsert(ctx context.Context, tx *gorm.DB, rating *types.Rating) (*types.Rating, error)
	ListForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Rating, error)
}

type ratingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	repoLog := baseLog.With("repo", "RatingRepo")
	return &ratingRepo{db: db, log: repoLog}
}

func (rr *ratingRepo) Upsert(ctx context.Context, tx *gorm.DB, rating *types.Rating) (*types.Rating, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if rating == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stars", "comment", "updated_at"}),
		}).
		Create(rating).Error; err != nil {
		return nil, err
	}

	return rating, nil
}

func (rr *ratingRepo) ListForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Rating, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Rating
	if err := transaction.WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
