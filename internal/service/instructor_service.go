package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/internal/repository"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

// defaultRosterKey names the shared roster used when no course is given
// and nothing is registered yet.
const defaultRosterKey = "DEFAULT"

type instructorRepository interface {
	EnsureRoster(ctx context.Context, table string, template models.RosterTemplate) error
	List(ctx context.Context, table string) ([]models.ScheduleSlot, error)
	UpdateSlot(ctx context.Context, table string, slot models.ScheduleSlot) (int64, error)
}

// InstructorService handles roster reads and slot assignments.
type InstructorService struct {
	instructors instructorRepository
	sheets      sheetRegistry
	metrics     *MetricsService
	validator   *validator.Validate
	roster      models.RosterTemplate
	logger      *zap.Logger
}

// NewInstructorService constructs an instructor service.
func NewInstructorService(instructors instructorRepository, sheets sheetRegistry, metrics *MetricsService,
	validate *validator.Validate, roster models.RosterTemplate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{
		instructors: instructors,
		sheets:      sheets,
		metrics:     metrics,
		validator:   validate,
		roster:      roster,
		logger:      logger,
	}
}

// Roster returns the schedule grid for a course, materialising the
// template when the sheet is empty.
func (s *InstructorService) Roster(ctx context.Context, courseKey string) (*models.InstructorList, error) {
	table, err := s.resolveRoster(ctx, courseKey)
	if err != nil {
		return nil, err
	}
	if err := s.instructors.EnsureRoster(ctx, table, s.roster); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to prepare roster")
	}

	start := time.Now()
	slots, err := s.instructors.List(ctx, table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list instructors")
	}
	s.metrics.ObserveDBQuery("instructor_list", time.Since(start))

	return &models.InstructorList{Instructors: slots, Count: len(slots), SheetName: table}, nil
}

// UpdateSlot assigns instructor names to one grid slot.
func (s *InstructorService) UpdateSlot(ctx context.Context, req models.UpdateInstructorRequest) (*models.UpdateInstructorResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid instructor data")
	}

	table, err := s.resolveRoster(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.instructors.EnsureRoster(ctx, table, s.roster); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to prepare roster")
	}

	slot := models.ScheduleSlot{
		Center:      req.Center,
		Week:        req.Week,
		Day:         req.Day,
		Period:      req.Period,
		Instructor1: req.Instructor1,
		Instructor2: req.Instructor2,
	}
	affected, err := s.instructors.UpdateSlot(ctx, table, slot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update instructor")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Schedule slot not found")
	}

	s.logger.Info("instructor slot updated",
		zap.String("sheet", table),
		zap.String("center", slot.Center),
		zap.Int("week", slot.Week))

	return &models.UpdateInstructorResult{
		Message:   "Instructor updated successfully",
		SheetName: table,
	}, nil
}

// resolveRoster picks a roster table. A course key resolves through the
// registry; with no key the first registered course wins, then the shared
// default roster.
func (s *InstructorService) resolveRoster(ctx context.Context, courseKey string) (string, error) {
	if courseKey != "" {
		sheet, err := s.sheets.FindByCourse(ctx, courseKey)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to resolve sheet")
		}
		if sheet != nil {
			return sheet.InstructorSheet, nil
		}
		return repository.InstructorSheetName(courseKey), nil
	}

	sheets, err := s.sheets.List(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list sheets")
	}
	if len(sheets) > 0 {
		return sheets[0].InstructorSheet, nil
	}
	return repository.InstructorSheetName(defaultRosterKey), nil
}
