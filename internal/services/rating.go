package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/repos"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

type RatingService interface {
	RateCourse(ctx context.Context, userID, courseID uuid.UUID, stars int, comment string) (*types.Rating, error)
	ListCourseRatings(ctx context.Context, courseID uuid.UUID) ([]*types.Rating, error)
}

type ratingService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	ratingRepo     repos.RatingRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewRatingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	ratingRepo repos.RatingRepo,
	enrollmentRepo repos.EnrollmentRepo,
) RatingService {
	serviceLog := baseLog.With("service", "RatingService")
	return &ratingService{
		db:             db,
		log:            serviceLog,
		courseRepo:     courseRepo,
		ratingRepo:     ratingRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (rs *ratingService) RateCourse(ctx context.Context, userID, courseID uuid.UUID, stars int, comment string) (*types.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("stars must be between 1 and 5")
	}
	if _, err := rs.courseRepo.GetByID(ctx, nil, courseID); err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}

	enrolled, err := rs.enrollmentRepo.ExistsForUserCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, fmt.Errorf("only enrolled learners can rate a course")
	}

	rating := &types.Rating{
		ID:       uuid.New(),
		CourseID: courseID,
		UserID:   userID,
		Stars:    stars,
		Comment:  comment,
	}
	if _, err := rs.ratingRepo.Upsert(ctx, nil, rating); err != nil {
		rs.log.Error("RateCourse failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("save rating: %w", err)
	}
	return rating, nil
}

func (rs *ratingService) ListCourseRatings(ctx context.Context, courseID uuid.UUID) ([]*types.Rating, error) {
	ratings, err := rs.ratingRepo.ListForCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}
