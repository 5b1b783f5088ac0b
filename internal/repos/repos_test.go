package repos

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Category{},
		&types.Level{},
		&types.Tag{},
		&types.Course{},
		&types.Lesson{},
		&types.Enrollment{},
		&types.Rating{},
		&types.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createCourse(t *testing.T, db *gorm.DB, course *types.Course) *types.Course {
	t.Helper()
	if course.UserID == uuid.Nil {
		course.UserID = uuid.New()
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course %q: %v", course.Name, err)
	}
	return course
}

func TestCourseRepoGetByIDPreloads(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	category := &types.Category{ExternalID: "cat-1", Name: "Programming"}
	level := &types.Level{Name: "beginner", Rank: 1}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := db.Create(level).Error; err != nil {
		t.Fatalf("create level: %v", err)
	}

	course := createCourse(t, db, &types.Course{
		Name:       "Go Basics",
		CategoryID: &category.ID,
		LevelID:    &level.ID,
		Tags:       []*types.Tag{{Name: "go"}, {Name: "beginner"}},
	})
	ratingRepo := NewRatingRepo(db, log)
	if _, err := ratingRepo.Upsert(ctx, nil, &types.Rating{CourseID: course.ID, UserID: uuid.New(), Stars: 5}); err != nil {
		t.Fatalf("upsert rating: %v", err)
	}

	courseRepo := NewCourseRepo(db, log)
	got, err := courseRepo.GetByID(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Category == nil || got.Category.Name != "Programming" {
		t.Fatalf("category not preloaded: %+v", got.Category)
	}
	if got.Level == nil || got.Level.Name != "beginner" {
		t.Fatalf("level not preloaded: %+v", got.Level)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("tags not preloaded, got %d", len(got.Tags))
	}
	if len(got.Ratings) != 1 || got.Ratings[0].Stars != 5 {
		t.Fatalf("ratings not preloaded: %+v", got.Ratings)
	}
	if got.AverageStars() != 5 {
		t.Fatalf("AverageStars = %v, want 5", got.AverageStars())
	}
}

func TestCourseRepoGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	courseRepo := NewCourseRepo(db, mustTestLogger(t))

	_, err := courseRepo.GetByID(context.Background(), nil, uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID error = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestCourseRepoListCatalogOrderAndFilter(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	category := &types.Category{ExternalID: "cat-1", Name: "Programming"}
	other := &types.Category{ExternalID: "cat-2", Name: "Design"}
	if err := db.Create([]*types.Category{category, other}).Error; err != nil {
		t.Fatalf("create categories: %v", err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	createCourse(t, db, &types.Course{Name: "Second", CategoryID: &category.ID, CreatedAt: base.Add(time.Hour)})
	createCourse(t, db, &types.Course{Name: "First", CategoryID: &category.ID, CreatedAt: base})
	createCourse(t, db, &types.Course{Name: "Other", CategoryID: &other.ID, CreatedAt: base.Add(2 * time.Hour)})

	courseRepo := NewCourseRepo(db, log)

	all, err := courseRepo.ListCatalog(ctx, nil, CatalogFilter{})
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("catalog size = %d, want 3", len(all))
	}
	if all[0].Name != "First" || all[1].Name != "Second" {
		t.Fatalf("catalog order = %q, %q; want First, Second", all[0].Name, all[1].Name)
	}

	filtered, err := courseRepo.ListCatalog(ctx, nil, CatalogFilter{CategoryID: &category.ID})
	if err != nil {
		t.Fatalf("ListCatalog filtered: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("filtered catalog size = %d, want 2", len(filtered))
	}
}

func TestCourseRepoIncrementStudentCount(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	course := createCourse(t, db, &types.Course{Name: "Counted"})
	courseRepo := NewCourseRepo(db, log)

	if err := courseRepo.IncrementStudentCount(ctx, nil, course.ID, 1); err != nil {
		t.Fatalf("IncrementStudentCount: %v", err)
	}
	if err := courseRepo.IncrementStudentCount(ctx, nil, course.ID, 1); err != nil {
		t.Fatalf("IncrementStudentCount: %v", err)
	}

	got, err := courseRepo.GetByID(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.StudentCount != 2 {
		t.Fatalf("StudentCount = %d, want 2", got.StudentCount)
	}
}

func TestEnrollmentRepoUniqueAndQueries(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	userID := uuid.New()
	course := createCourse(t, db, &types.Course{Name: "Enrolled Course"})
	repo := NewEnrollmentRepo(db, log)

	if _, err := repo.Create(ctx, nil, []*types.Enrollment{{UserID: userID, CourseID: course.ID}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, nil, []*types.Enrollment{{UserID: userID, CourseID: course.ID}}); err == nil {
		t.Fatal("duplicate enrollment did not fail")
	}

	ids, err := repo.CourseIDsForUser(ctx, nil, userID)
	if err != nil {
		t.Fatalf("CourseIDsForUser: %v", err)
	}
	if len(ids) != 1 || ids[0] != course.ID {
		t.Fatalf("CourseIDsForUser = %v, want [%s]", ids, course.ID)
	}

	exists, err := repo.ExistsForUserCourse(ctx, nil, userID, course.ID)
	if err != nil {
		t.Fatalf("ExistsForUserCourse: %v", err)
	}
	if !exists {
		t.Fatal("ExistsForUserCourse = false, want true")
	}
	exists, err = repo.ExistsForUserCourse(ctx, nil, uuid.New(), course.ID)
	if err != nil {
		t.Fatalf("ExistsForUserCourse: %v", err)
	}
	if exists {
		t.Fatal("ExistsForUserCourse = true for stranger, want false")
	}
}

func TestRatingRepoUpsertReplaces(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	courseID := uuid.New()
	userID := uuid.New()
	repo := NewRatingRepo(db, log)

	if _, err := repo.Upsert(ctx, nil, &types.Rating{CourseID: courseID, UserID: userID, Stars: 3}); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, nil, &types.Rating{CourseID: courseID, UserID: userID, Stars: 5, Comment: "better on rewatch"}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, err := repo.ListForCourse(ctx, nil, courseID)
	if err != nil {
		t.Fatalf("ListForCourse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ratings = %d, want 1 after upsert", len(got))
	}
	if got[0].Stars != 5 || got[0].Comment != "better on rewatch" {
		t.Fatalf("rating not replaced: %+v", got[0])
	}
}

func TestTagRepoGetOrCreateByNames(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	repo := NewTagRepo(db, log)

	first, err := repo.GetOrCreateByNames(ctx, nil, []string{"go", "backend"})
	if err != nil {
		t.Fatalf("GetOrCreateByNames: %v", err)
	}
	if len(first) != 2 || first[0].Name != "go" || first[1].Name != "backend" {
		t.Fatalf("tags = %+v, want go, backend in order", first)
	}

	second, err := repo.GetOrCreateByNames(ctx, nil, []string{"backend", "sql"})
	if err != nil {
		t.Fatalf("GetOrCreateByNames again: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("tags = %d, want 2", len(second))
	}
	if second[0].ID != first[1].ID {
		t.Fatal("existing tag was not reused")
	}
}

func TestChatMessageRepoListForCourse(t *testing.T) {
	db := newTestDB(t)
	log := mustTestLogger(t)
	ctx := context.Background()

	courseID := uuid.New()
	repo := NewChatMessageRepo(db, log)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	msgs := []*types.ChatMessage{
		{CourseID: courseID, SenderID: uuid.New(), Content: "third", CreatedAt: base.Add(2 * time.Minute)},
		{CourseID: courseID, SenderID: uuid.New(), Content: "first", CreatedAt: base},
		{CourseID: courseID, SenderID: uuid.New(), Content: "second", CreatedAt: base.Add(time.Minute)},
		{CourseID: uuid.New(), SenderID: uuid.New(), Content: "elsewhere", CreatedAt: base},
	}
	if _, err := repo.Create(ctx, nil, msgs); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ListForCourse(ctx, nil, courseID, 0, 0)
	if err != nil {
		t.Fatalf("ListForCourse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("messages = %d, want 3", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Content != want {
			t.Fatalf("message[%d] = %q, want %q", i, got[i].Content, want)
		}
	}

	page, err := repo.ListForCourse(ctx, nil, courseID, 2, 1)
	if err != nil {
		t.Fatalf("ListForCourse paged: %v", err)
	}
	if len(page) != 2 || page[0].Content != "second" {
		t.Fatalf("paged messages = %+v, want second, third", page)
	}
}
