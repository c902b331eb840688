package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/internal/repository"
	"github.com/noah-isme/course-eval-api/internal/validation"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByIDOrCode(ctx context.Context, key string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type sheetRegistry interface {
	List(ctx context.Context) ([]models.SheetSet, error)
	FindByCourse(ctx context.Context, key string) (*models.SheetSet, error)
	Register(ctx context.Context, sheet models.SheetSet) error
	RenameSheets(ctx context.Context, oldCode, newCode string) (*models.SheetSet, error)
	DropSheets(ctx context.Context, code string) ([]string, error)
	AnalyzeAll(ctx context.Context) (int, error)
}

type evaluationSheets interface {
	EnsureSheet(ctx context.Context, table string) error
}

type instructorSheets interface {
	EnsureRoster(ctx context.Context, table string, template models.RosterTemplate) error
}

// CourseService handles catalog use-cases and the sheet provisioning that
// follows them.
type CourseService struct {
	courses     courseRepository
	sheets      sheetRegistry
	evaluations evaluationSheets
	instructors instructorSheets
	cache       *CacheService
	metrics     *MetricsService
	roster      models.RosterTemplate
	logger      *zap.Logger
}

// NewCourseService constructs a course service.
func NewCourseService(courses courseRepository, sheets sheetRegistry, evaluations evaluationSheets,
	instructors instructorSheets, cache *CacheService, metrics *MetricsService,
	roster models.RosterTemplate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		courses:     courses,
		sheets:      sheets,
		evaluations: evaluations,
		instructors: instructors,
		cache:       cache,
		metrics:     metrics,
		roster:      roster,
		logger:      logger,
	}
}

// List returns the full catalog.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	start := time.Now()
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list courses")
	}
	s.metrics.ObserveDBQuery("courses_list", time.Since(start))
	return courses, nil
}

// Create registers a new course, provisions its sheet pair and records
// them in the registry. The sheet names echo provisioning order.
func (s *CourseService) Create(ctx context.Context, input models.CourseInput) (*models.CreateCourseResult, error) {
	if result := validation.ValidateCourse(input); !result.Valid {
		return nil, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, result.Message())
	}

	exists, err := s.courses.ExistsByCode(ctx, input.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Course code already exists")
	}

	course := &models.Course{
		Code:        input.Code,
		Name:        input.Name,
		Category:    input.Category,
		Duration:    input.Duration.Int(),
		Description: input.Description,
		Status:      input.Status,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create course")
	}

	instructorSheet := repository.InstructorSheetName(course.Code)
	evaluationSheet := repository.EvaluationSheetName(course.Code)
	if err := s.instructors.EnsureRoster(ctx, instructorSheet, s.roster); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create instructor sheet")
	}
	if err := s.evaluations.EnsureSheet(ctx, evaluationSheet); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create evaluation sheet")
	}
	if err := s.sheets.Register(ctx, models.SheetSet{
		CourseID:        course.ID,
		CourseCode:      course.Code,
		EvaluationSheet: evaluationSheet,
		InstructorSheet: instructorSheet,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to register sheets")
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("course_code", course.Code))

	return &models.CreateCourseResult{
		Message:       "Course created successfully",
		CourseID:      course.ID,
		CourseCode:    course.Code,
		SheetsCreated: []string{instructorSheet, evaluationSheet},
	}, nil
}

// Update mutates a course and renames its sheets when the code changed.
// The target is looked up by id, then by the original code, then by the
// new code.
func (s *CourseService) Update(ctx context.Context, input models.CourseInput) (*models.UpdateCourseResult, error) {
	course, err := s.findCourse(ctx, input.ID, input.OriginalCode, input.Code)
	if err != nil {
		return nil, err
	}

	if input.Code != "" && input.Code != course.Code {
		taken, err := s.courses.ExistsByCode(ctx, input.Code, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to check course code")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Course code already exists")
		}
	}

	oldCode := course.Code
	applyCourseInput(course, input)

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update course")
	}

	renamed := false
	if course.Code != oldCode {
		if _, err := s.sheets.RenameSheets(ctx, oldCode, course.Code); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to rename sheets")
		}
		renamed = true
	}

	s.invalidateStats(ctx)
	s.logger.Info("course updated",
		zap.String("course_id", course.ID),
		zap.Bool("sheets_renamed", renamed))

	return &models.UpdateCourseResult{
		Message:       "Course updated successfully",
		CourseID:      course.ID,
		SheetsRenamed: renamed,
	}, nil
}

// Delete removes a course and drops its sheets in one cascade.
func (s *CourseService) Delete(ctx context.Context, key string) (*models.DeleteCourseResult, error) {
	course, err := s.findCourse(ctx, key)
	if err != nil {
		return nil, err
	}

	dropped, err := s.sheets.DropSheets(ctx, course.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to drop sheets")
	}
	if err := s.courses.Delete(ctx, course.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete course")
	}

	s.invalidateStats(ctx)
	s.logger.Info("course deleted",
		zap.String("course_code", course.Code),
		zap.Strings("sheets_deleted", dropped))

	return &models.DeleteCourseResult{
		Message:       "Course deleted successfully",
		CourseCode:    course.Code,
		SheetsDeleted: dropped,
	}, nil
}

// Maintain runs a storage maintenance pass over every registered sheet.
func (s *CourseService) Maintain(ctx context.Context) (*models.MaintenanceResult, error) {
	start := time.Now()
	processed, err := s.sheets.AnalyzeAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to maintain sheets")
	}
	s.metrics.ObserveDBQuery("sheets_maintain", time.Since(start))
	return &models.MaintenanceResult{
		Message:         "Sheets beautified successfully",
		SheetsProcessed: processed,
	}, nil
}

func (s *CourseService) findCourse(ctx context.Context, keys ...string) (*models.Course, error) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		course, err := s.courses.FindByIDOrCode(ctx, key)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load course")
		}
		return course, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
}

func applyCourseInput(course *models.Course, input models.CourseInput) {
	if input.Code != "" {
		course.Code = input.Code
	}
	if input.Name != "" {
		course.Name = input.Name
	}
	if input.Category != "" {
		course.Category = input.Category
	}
	if input.Duration.Present {
		course.Duration = input.Duration.Int()
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Status != "" {
		course.Status = input.Status
	}
}

func (s *CourseService) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "stats:*"); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
