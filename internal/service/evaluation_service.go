package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/internal/repository"
	"github.com/noah-isme/course-eval-api/internal/validation"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

// Thai user-facing copy returned by the submission flow.
const (
	msgSubmitSuccess = "การประเมินสำเร็จ! ขอบคุณสำหรับความคิดเห็น"
	msgSlotTaken     = "คุณได้ประเมินในช่วงเวลานี้แล้ว กรุณาเลือกช่วงเวลาอื่น"
)

type evaluationRepository interface {
	EnsureSheet(ctx context.Context, table string) error
	List(ctx context.Context, table string) ([]models.Evaluation, error)
	SlotExists(ctx context.Context, table string, center string, week int, day, period string) (bool, error)
	Append(ctx context.Context, table string, eval *models.Evaluation) error
	Count(ctx context.Context, table string) (int, error)
}

// EvaluationService handles submission intake and listing.
type EvaluationService struct {
	evaluations evaluationRepository
	sheets      sheetRegistry
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewEvaluationService constructs an evaluation service.
func NewEvaluationService(evaluations evaluationRepository, sheets sheetRegistry,
	cache *CacheService, metrics *MetricsService, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		evaluations: evaluations,
		sheets:      sheets,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// Submit validates and stores one evaluation. The target sheet is created
// and registered on demand when the course was never provisioned, and the
// slot duplicate check rejects a second submission for the same
// center/week/day/period.
func (s *EvaluationService) Submit(ctx context.Context, req models.SubmitEvaluationRequest) (*models.SubmitResult, error) {
	if result := validation.ValidateEvaluation(req); !result.Valid {
		return nil, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, result.Message())
	}

	courseKey := req.Course.Code
	if courseKey == "" {
		courseKey = req.Course.ID
	}

	sheet, err := s.resolveSheet(ctx, courseKey, req.Course)
	if err != nil {
		return nil, err
	}

	taken, err := s.evaluations.SlotExists(ctx, sheet.EvaluationSheet, req.Center, req.Week.Int(), req.Day, req.Period)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to check evaluation slot")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, msgSlotTaken)
	}

	eval := &models.Evaluation{
		CourseCode:     sheet.CourseCode,
		Center:         req.Center,
		Week:           req.Week.Int(),
		Day:            req.Day,
		Period:         req.Period,
		Instructor:     req.Instructor,
		Clarity:        req.Ratings["clarity"].Value,
		Preparation:    req.Ratings["preparation"].Value,
		Interaction:    req.Ratings["interaction"].Value,
		Punctuality:    req.Ratings["punctuality"].Value,
		Satisfaction:   req.Ratings["satisfaction"].Value,
		Comment:        req.CommentText(),
		CourseName:     req.Course.Name,
		CourseCategory: req.Course.Category,
	}

	start := time.Now()
	if err := s.evaluations.Append(ctx, sheet.EvaluationSheet, eval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store evaluation")
	}
	s.metrics.ObserveDBQuery("evaluation_append", time.Since(start))

	count, err := s.evaluations.Count(ctx, sheet.EvaluationSheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to count evaluations")
	}

	if err := s.cache.Invalidate(ctx, "stats:*"); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}

	s.logger.Info("evaluation stored",
		zap.String("evaluation_id", eval.ID),
		zap.String("sheet", sheet.EvaluationSheet),
		zap.String("center", eval.Center),
		zap.Int("week", eval.Week))

	return &models.SubmitResult{
		Message:      msgSubmitSuccess,
		EvaluationID: eval.ID,
		Course:       req.Course.Name,
		Sheet:        sheet.EvaluationSheet,
		Row:          count + 1,
	}, nil
}

// List returns stored evaluations. With an empty key it walks every
// registered sheet; an unregistered course yields an empty list rather
// than an error.
func (s *EvaluationService) List(ctx context.Context, courseKey string) (*models.EvaluationList, error) {
	var tables []string
	if courseKey == "" {
		sheets, err := s.sheets.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list sheets")
		}
		for _, sheet := range sheets {
			tables = append(tables, sheet.EvaluationSheet)
		}
	} else {
		sheet, err := s.sheets.FindByCourse(ctx, courseKey)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to resolve sheet")
		}
		if sheet != nil {
			tables = append(tables, sheet.EvaluationSheet)
		}
	}

	evaluations := []models.Evaluation{}
	start := time.Now()
	for _, table := range tables {
		rows, err := s.evaluations.List(ctx, table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list evaluations")
		}
		evaluations = append(evaluations, rows...)
	}
	s.metrics.ObserveDBQuery("evaluation_list", time.Since(start))

	return &models.EvaluationList{Evaluations: evaluations, Count: len(evaluations)}, nil
}

// resolveSheet finds the registered sheet pair for a course, provisioning
// an evaluation sheet on demand for unregistered courses.
func (s *EvaluationService) resolveSheet(ctx context.Context, key string, course *models.EvaluationCourse) (*models.SheetSet, error) {
	sheet, err := s.sheets.FindByCourse(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to resolve sheet")
	}
	if sheet != nil {
		return sheet, nil
	}

	code := course.Code
	if code == "" {
		code = course.ID
	}
	table := repository.EvaluationSheetName(code)
	if err := s.evaluations.EnsureSheet(ctx, table); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create evaluation sheet")
	}
	sheet = &models.SheetSet{
		CourseID:        course.ID,
		CourseCode:      code,
		EvaluationSheet: table,
		InstructorSheet: repository.InstructorSheetName(code),
	}
	if err := s.sheets.Register(ctx, *sheet); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to register sheet")
	}
	s.logger.Info("evaluation sheet provisioned on demand", zap.String("sheet", table))
	return sheet, nil
}
