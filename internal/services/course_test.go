package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/repos"
)

func newCourseService(t *testing.T) (CourseService, uuid.UUID) {
	t.Helper()
	db := newTestDB(t)
	log := mustTestLogger(t)
	svc := NewCourseService(db, log, repos.NewCourseRepo(db, log), repos.NewTagRepo(db, log))
	return svc, uuid.New()
}

func TestCreateCourseResolvesTags(t *testing.T) {
	svc, instructorID := newCourseService(t)
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, instructorID, CourseInput{
		Name:        "  Practical SQL  ",
		Description: "joins and friends",
		Price:       fptr(49),
		Tags:        []string{"SQL", "sql", "  databases "},
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.Name != "Practical SQL" {
		t.Fatalf("name = %q, want trimmed", course.Name)
	}
	if course.UserID != instructorID {
		t.Fatalf("owner = %s, want %s", course.UserID, instructorID)
	}
	if len(course.Tags) != 2 {
		t.Fatalf("tags = %d, want 2 after case-insensitive dedupe", len(course.Tags))
	}

	if _, err := svc.CreateCourse(ctx, instructorID, CourseInput{Name: "   "}); err == nil {
		t.Fatal("CreateCourse accepted a blank name")
	}
}

func TestUpdateCourseEnforcesOwnership(t *testing.T) {
	svc, instructorID := newCourseService(t)
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, instructorID, CourseInput{Name: "Gophers 101"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	if _, err := svc.UpdateCourse(ctx, uuid.New(), course.ID, CourseInput{Name: "Hijacked"}); err == nil {
		t.Fatal("UpdateCourse accepted a different instructor")
	}
	if err := svc.DeleteCourse(ctx, uuid.New(), course.ID); err == nil {
		t.Fatal("DeleteCourse accepted a different instructor")
	}

	updated, err := svc.UpdateCourse(ctx, instructorID, course.ID, CourseInput{
		Description: "now with generics",
		Tags:        []string{"go"},
	})
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Name != "Gophers 101" {
		t.Fatalf("name changed unexpectedly to %q", updated.Name)
	}
	if updated.Description != "now with generics" {
		t.Fatalf("description = %q", updated.Description)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Name != "go" {
		t.Fatalf("tags = %+v, want [go]", updated.Tags)
	}
}

func TestDeleteCourseHidesFromCatalog(t *testing.T) {
	svc, instructorID := newCourseService(t)
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, instructorID, CourseInput{Name: "Ephemeral"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if err := svc.DeleteCourse(ctx, instructorID, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}

	catalog, err := svc.ListCatalog(ctx, repos.CatalogFilter{})
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(catalog) != 0 {
		t.Fatalf("catalog still lists %d courses after delete", len(catalog))
	}
	if _, err := svc.GetCourse(ctx, course.ID); err == nil {
		t.Fatal("GetCourse returned a soft-deleted course")
	}
}
