package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

// StatsService aggregates evaluation rows into the reporting payload,
// fronted by the Redis cache when enabled.
type StatsService struct {
	evaluations evaluationRepository
	sheets      sheetRegistry
	courses     courseRepository
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewStatsService constructs a stats service.
func NewStatsService(evaluations evaluationRepository, sheets sheetRegistry, courses courseRepository,
	cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		evaluations: evaluations,
		sheets:      sheets,
		courses:     courses,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// ParseStatsFilter builds a filter from raw query values. Dates accept
// RFC3339 or plain YYYY-MM-DD; a date-only end bound covers the whole day.
func ParseStatsFilter(courseID, startDate, endDate string) (models.StatsFilter, error) {
	filter := models.StatsFilter{CourseID: strings.TrimSpace(courseID)}

	if startDate != "" {
		start, _, err := parseFilterDate(startDate)
		if err != nil {
			return filter, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("Invalid startDate: %s", startDate))
		}
		filter.StartDate = &start
	}
	if endDate != "" {
		end, dateOnly, err := parseFilterDate(endDate)
		if err != nil {
			return filter, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("Invalid endDate: %s", endDate))
		}
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		filter.EndDate = &end
	}
	return filter, nil
}

func parseFilterDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Statistics computes the aggregated report for the given filter. The
// boolean indicates whether the payload came from cache.
func (s *StatsService) Statistics(ctx context.Context, filter models.StatsFilter) (*models.Statistics, bool, error) {
	cacheKey := statsCacheKey(filter)
	var cached models.Statistics
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	rows, err := s.collect(ctx, filter)
	if err != nil {
		return nil, false, err
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list courses")
	}
	nameByCode := make(map[string]string, len(courses))
	for _, course := range courses {
		nameByCode[strings.ToLower(course.Code)] = course.Name
	}

	// Course names come from the current catalog rather than the name
	// stored at intake, so renames show through. Unknown codes keep the
	// raw code as the name.
	for i := range rows {
		if name, ok := nameByCode[strings.ToLower(rows[i].CourseCode)]; ok {
			rows[i].CourseName = name
		} else {
			rows[i].CourseName = rows[i].CourseCode
		}
	}

	stats := aggregate(rows, len(courses))

	if err := s.cache.Set(ctx, cacheKey, stats, 0); err != nil {
		s.logger.Warn("stats cache store failed", zap.Error(err))
	}
	return stats, false, nil
}

// SystemMetrics returns the instrumentation snapshot for health payloads.
func (s *StatsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func (s *StatsService) collect(ctx context.Context, filter models.StatsFilter) ([]models.Evaluation, error) {
	var tables []string
	if filter.CourseID != "" {
		sheet, err := s.sheets.FindByCourse(ctx, filter.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to resolve sheet")
		}
		if sheet != nil {
			tables = append(tables, sheet.EvaluationSheet)
		}
	} else {
		sheets, err := s.sheets.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list sheets")
		}
		for _, sheet := range sheets {
			tables = append(tables, sheet.EvaluationSheet)
		}
	}

	rows := []models.Evaluation{}
	start := time.Now()
	for _, table := range tables {
		evals, err := s.evaluations.List(ctx, table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read evaluations")
		}
		for _, eval := range evals {
			if inWindow(eval.Timestamp, filter) {
				rows = append(rows, eval)
			}
		}
	}
	s.metrics.ObserveDBQuery("stats_collect", time.Since(start))
	return rows, nil
}

func inWindow(ts time.Time, filter models.StatsFilter) bool {
	if filter.StartDate != nil && ts.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && ts.After(*filter.EndDate) {
		return false
	}
	return true
}

// aggregate folds evaluation rows into the report in one pass.
func aggregate(rows []models.Evaluation, coursesCount int) *models.Statistics {
	stats := &models.Statistics{
		TotalEvaluations: len(rows),
		CoursesCount:     coursesCount,
		CourseAverages:   map[string]float64{},
		TimeSeriesData:   []models.TimeSeriesPoint{},
		Evaluations:      rows,
	}
	if len(rows) == 0 {
		return stats
	}

	var sumClarity, sumPreparation, sumInteraction, sumPunctuality, sumSatisfaction, sumOverall float64
	courseSums := map[string]float64{}
	courseCounts := map[string]int{}
	daySums := map[string]float64{}
	dayCounts := map[string]int{}

	for _, eval := range rows {
		sumClarity += eval.Clarity
		sumPreparation += eval.Preparation
		sumInteraction += eval.Interaction
		sumPunctuality += eval.Punctuality
		sumSatisfaction += eval.Satisfaction

		overall := eval.OverallScore()
		sumOverall += overall

		switch bucket := int(math.Round(overall)); bucket {
		case 1:
			stats.RatingDistribution.Rating1++
		case 2:
			stats.RatingDistribution.Rating2++
		case 3:
			stats.RatingDistribution.Rating3++
		case 4:
			stats.RatingDistribution.Rating4++
		case 5:
			stats.RatingDistribution.Rating5++
		}

		courseSums[eval.CourseCode] += overall
		courseCounts[eval.CourseCode]++

		day := eval.Timestamp.Format("2006-01-02")
		daySums[day] += overall
		dayCounts[day]++
	}

	n := float64(len(rows))
	stats.CategoryAverages = models.CategoryAverages{
		Clarity:      round2(sumClarity / n),
		Preparation:  round2(sumPreparation / n),
		Interaction:  round2(sumInteraction / n),
		Punctuality:  round2(sumPunctuality / n),
		Satisfaction: round2(sumSatisfaction / n),
	}

	for code, sum := range courseSums {
		stats.CourseAverages[code] = round2(sum / float64(courseCounts[code]))
	}

	days := make([]string, 0, len(daySums))
	for day := range daySums {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		stats.TimeSeriesData = append(stats.TimeSeriesData, models.TimeSeriesPoint{
			Date:    day,
			Average: round2(daySums[day] / float64(dayCounts[day])),
			Count:   dayCounts[day],
		})
	}

	overall := sumOverall / n
	stats.OverallAverage = &overall
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func statsCacheKey(filter models.StatsFilter) string {
	var builder strings.Builder
	builder.WriteString("stats")
	builder.WriteByte(':')
	builder.WriteString(strings.ToLower(filter.CourseID))
	builder.WriteByte(':')
	if filter.StartDate != nil {
		builder.WriteString(filter.StartDate.UTC().Format(time.RFC3339))
	}
	builder.WriteByte(':')
	if filter.EndDate != nil {
		builder.WriteString(filter.EndDate.UTC().Format(time.RFC3339))
	}
	return builder.String()
}
