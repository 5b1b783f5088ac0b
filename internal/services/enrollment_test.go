package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/repos"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

func TestEnrollBumpsStudentCountOnce(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(db, log)
	enrollmentRepo := repos.NewEnrollmentRepo(db, log)
	svc := NewEnrollmentService(db, log, courseRepo, enrollmentRepo)

	course := &types.Course{Name: "Distributed Systems", UserID: uuid.New()}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}

	userID := uuid.New()
	if _, err := svc.Enroll(ctx, userID, course.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := svc.Enroll(ctx, userID, course.ID); err == nil {
		t.Fatal("second Enroll for the same user did not fail")
	}

	got, err := courseRepo.GetByID(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.StudentCount != 1 {
		t.Fatalf("StudentCount = %d, want 1", got.StudentCount)
	}

	mine, err := svc.ListMyCourses(ctx, userID)
	if err != nil {
		t.Fatalf("ListMyCourses: %v", err)
	}
	if len(mine) != 1 || mine[0].CourseID != course.ID {
		t.Fatalf("ListMyCourses = %+v, want one enrollment on the course", mine)
	}
}

func TestEnrollUnknownCourseFails(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)

	svc := NewEnrollmentService(db, log, repos.NewCourseRepo(db, log), repos.NewEnrollmentRepo(db, log))
	if _, err := svc.Enroll(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("Enroll on a missing course did not fail")
	}
}
