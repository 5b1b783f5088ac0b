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

type EnrollmentService interface {
	// Enroll registers the user on a course and bumps the course's
	// denormalized student_count in the same transaction.
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error)
	ListMyCourses(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
) EnrollmentService {
	serviceLog := baseLog.With("service", "EnrollmentService")
	return &enrollmentService{
		db:             db,
		log:            serviceLog,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

func (es *enrollmentService) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*types.Enrollment, error) {
	if _, err := es.courseRepo.GetByID(ctx, nil, courseID); err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}

	exists, err := es.enrollmentRepo.ExistsForUserCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("already enrolled in this course")
	}

	enrollment := &types.Enrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
	}
	if err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := es.enrollmentRepo.Create(ctx, tx, []*types.Enrollment{enrollment}); err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}
		if err := es.courseRepo.IncrementStudentCount(ctx, tx, courseID, 1); err != nil {
			return fmt.Errorf("bump student count: %w", err)
		}
		return nil
	}); err != nil {
		es.log.Error("Enroll failed", "course_id", courseID, "error", err)
		return nil, err
	}

	return enrollment, nil
}

func (es *enrollmentService) ListMyCourses(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
	enrollments, err := es.enrollmentRepo.ListForUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
