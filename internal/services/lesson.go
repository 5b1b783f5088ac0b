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

type LessonInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

type LessonService interface {
	CreateLesson(ctx context.Context, instructorID, courseID uuid.UUID, input LessonInput) (*types.Lesson, error)
	ListLessons(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error)
	UpdateLesson(ctx context.Context, instructorID, lessonID uuid.UUID, input LessonInput) (*types.Lesson, error)
	DeleteLesson(ctx context.Context, instructorID, lessonID uuid.UUID) error
}

type lessonService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	lessonRepo repos.LessonRepo
}

func NewLessonService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, lessonRepo repos.LessonRepo) LessonService {
	serviceLog := baseLog.With("service", "LessonService")
	return &lessonService{db: db, log: serviceLog, courseRepo: courseRepo, lessonRepo: lessonRepo}
}

func (ls *lessonService) CreateLesson(ctx context.Context, instructorID, courseID uuid.UUID, input LessonInput) (*types.Lesson, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("lesson title is required")
	}

	course, err := ls.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course.UserID != instructorID {
		return nil, fmt.Errorf("course does not belong to this instructor")
	}

	lesson := &types.Lesson{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    title,
		Content:  input.Content,
		Position: input.Position,
	}
	if _, err := ls.lessonRepo.Create(ctx, nil, []*types.Lesson{lesson}); err != nil {
		ls.log.Error("CreateLesson failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return lesson, nil
}

func (ls *lessonService) ListLessons(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
	lessons, err := ls.lessonRepo.ListForCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

func (ls *lessonService) UpdateLesson(ctx context.Context, instructorID, lessonID uuid.UUID, input LessonInput) (*types.Lesson, error) {
	lesson, err := ls.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if err := ls.requireOwnership(ctx, instructorID, lesson.CourseID); err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		lesson.Title = title
	}
	if input.Content != "" {
		lesson.Content = input.Content
	}
	if input.Position != 0 {
		lesson.Position = input.Position
	}

	if err := ls.lessonRepo.Update(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("update lesson: %w", err)
	}
	return lesson, nil
}

func (ls *lessonService) DeleteLesson(ctx context.Context, instructorID, lessonID uuid.UUID) error {
	lesson, err := ls.lessonRepo.GetByID(ctx, nil, lessonID)
	if err != nil {
		return fmt.Errorf("load lesson: %w", err)
	}
	if err := ls.requireOwnership(ctx, instructorID, lesson.CourseID); err != nil {
		return err
	}
	return ls.lessonRepo.SoftDeleteByID(ctx, nil, lessonID)
}

func (ls *lessonService) requireOwnership(ctx context.Context, instructorID, courseID uuid.UUID) error {
	course, err := ls.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if course.UserID != instructorID {
		return fmt.Errorf("course does not belong to this instructor")
	}
	return nil
}
