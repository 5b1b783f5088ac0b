package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
	"github.com/coursebridge/coursebridge-backend/internal/repos"
	"github.com/coursebridge/coursebridge-backend/internal/types"
)

// CourseInput is the mutable surface of a course exposed to instructors.
type CourseInput struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Price          *float64   `json:"price,omitempty"`
	CategoryID     *uuid.UUID `json:"category_id,omitempty"`
	LevelID        *uuid.UUID `json:"level_id,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	ExternalID     *string    `json:"external_id,omitempty"`
	CompletionRate *float64   `json:"completion_rate,omitempty"`
}

type CourseService interface {
	CreateCourse(ctx context.Context, instructorID uuid.UUID, input CourseInput) (*types.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	ListCatalog(ctx context.Context, filter repos.CatalogFilter) ([]*types.Course, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*types.Course, error)
	UpdateCourse(ctx context.Context, instructorID, courseID uuid.UUID, input CourseInput) (*types.Course, error)
	DeleteCourse(ctx context.Context, instructorID, courseID uuid.UUID) error
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	tagRepo    repos.TagRepo
}

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, tagRepo repos.TagRepo) CourseService {
	serviceLog := baseLog.With("service", "CourseService")
	return &courseService{db: db, log: serviceLog, courseRepo: courseRepo, tagRepo: tagRepo}
}

func (cs *courseService) CreateCourse(ctx context.Context, instructorID uuid.UUID, input CourseInput) (*types.Course, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("course name is required")
	}

	course := &types.Course{
		ID:             uuid.New(),
		ExternalID:     input.ExternalID,
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
		Price:          input.Price,
		UserID:         instructorID,
		CategoryID:     input.CategoryID,
		LevelID:        input.LevelID,
		CompletionRate: input.CompletionRate,
	}

	if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.courseRepo.Create(ctx, tx, []*types.Course{course}); err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		if len(input.Tags) > 0 {
			tags, err := cs.tagRepo.GetOrCreateByNames(ctx, tx, normalizeTagNames(input.Tags))
			if err != nil {
				return fmt.Errorf("resolve tags: %w", err)
			}
			if err := cs.courseRepo.ReplaceTags(ctx, tx, course, tags); err != nil {
				return fmt.Errorf("attach tags: %w", err)
			}
		}
		return nil
	}); err != nil {
		cs.log.Error("CreateCourse failed", "instructor_id", instructorID, "error", err)
		return nil, err
	}

	return cs.courseRepo.GetByID(ctx, nil, course.ID)
}

func (cs *courseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	course, err := cs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	return course, nil
}

func (cs *courseService) ListCatalog(ctx context.Context, filter repos.CatalogFilter) ([]*types.Course, error) {
	courses, err := cs.courseRepo.ListCatalog(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return courses, nil
}

func (cs *courseService) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*types.Course, error) {
	courses, err := cs.courseRepo.ListByInstructor(ctx, nil, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return courses, nil
}

func (cs *courseService) UpdateCourse(ctx context.Context, instructorID, courseID uuid.UUID, input CourseInput) (*types.Course, error) {
	course, err := cs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course.UserID != instructorID {
		return nil, fmt.Errorf("course does not belong to this instructor")
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		course.Name = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		course.Description = desc
	}
	if input.Price != nil {
		course.Price = input.Price
	}
	if input.CategoryID != nil {
		course.CategoryID = input.CategoryID
	}
	if input.LevelID != nil {
		course.LevelID = input.LevelID
	}
	if input.CompletionRate != nil {
		course.CompletionRate = input.CompletionRate
	}

	if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.courseRepo.Update(ctx, tx, course); err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		if input.Tags != nil {
			tags, err := cs.tagRepo.GetOrCreateByNames(ctx, tx, normalizeTagNames(input.Tags))
			if err != nil {
				return fmt.Errorf("resolve tags: %w", err)
			}
			if err := cs.courseRepo.ReplaceTags(ctx, tx, course, tags); err != nil {
				return fmt.Errorf("replace tags: %w", err)
			}
		}
		return nil
	}); err != nil {
		cs.log.Error("UpdateCourse failed", "course_id", courseID, "error", err)
		return nil, err
	}

	return cs.courseRepo.GetByID(ctx, nil, courseID)
}

func (cs *courseService) DeleteCourse(ctx context.Context, instructorID, courseID uuid.UUID) error {
	course, err := cs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if course.UserID != instructorID {
		return fmt.Errorf("course does not belong to this instructor")
	}
	return cs.courseRepo.SoftDeleteByID(ctx, nil, courseID)
}

func normalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
