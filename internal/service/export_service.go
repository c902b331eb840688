package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/pkg/export"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

// evaluationExportHeaders mirrors the storage column order.
var evaluationExportHeaders = []string{
	"Evaluation ID", "Course Code", "Center", "Week", "Day", "Period", "Instructor",
	"Clarity", "Preparation", "Interaction", "Punctuality", "Satisfaction",
	"Comment", "Timestamp", "Course Name", "Course Category",
}

// ExportService renders evaluation data and statistics into downloadable
// documents.
type ExportService struct {
	evaluations *EvaluationService
	stats       *StatsService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(evaluations *EvaluationService, stats *StatsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		evaluations: evaluations,
		stats:       stats,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// EvaluationsCSV renders all evaluations of a course (or every course) as
// a CSV document.
func (s *ExportService) EvaluationsCSV(ctx context.Context, courseKey string) ([]byte, error) {
	list, err := s.evaluations.List(ctx, courseKey)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: evaluationExportHeaders}
	for _, eval := range list.Evaluations {
		dataset.Rows = append(dataset.Rows, []string{
			eval.ID,
			eval.CourseCode,
			eval.Center,
			strconv.Itoa(eval.Week),
			eval.Day,
			eval.Period,
			eval.Instructor,
			formatRating(eval.Clarity),
			formatRating(eval.Preparation),
			formatRating(eval.Interaction),
			formatRating(eval.Punctuality),
			formatRating(eval.Satisfaction),
			eval.Comment,
			eval.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			eval.CourseName,
			eval.CourseCategory,
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	s.logger.Info("evaluations exported", zap.Int("rows", len(dataset.Rows)))
	return payload, nil
}

// StatsPDF renders the aggregated report for the given filter as a PDF
// document.
func (s *ExportService) StatsPDF(ctx context.Context, filter models.StatsFilter) ([]byte, error) {
	stats, _, err := s.stats.Statistics(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Evaluations", strconv.Itoa(stats.TotalEvaluations)},
			{"Courses", strconv.Itoa(stats.CoursesCount)},
		},
	}
	if stats.OverallAverage != nil {
		summary.Rows = append(summary.Rows, []string{"Overall Average", formatRating(*stats.OverallAverage)})
	}

	categories := export.Dataset{
		Headers: []string{"Category", "Average"},
		Rows: [][]string{
			{"Clarity", formatRating(stats.CategoryAverages.Clarity)},
			{"Preparation", formatRating(stats.CategoryAverages.Preparation)},
			{"Interaction", formatRating(stats.CategoryAverages.Interaction)},
			{"Punctuality", formatRating(stats.CategoryAverages.Punctuality)},
			{"Satisfaction", formatRating(stats.CategoryAverages.Satisfaction)},
		},
	}

	distribution := export.Dataset{
		Headers: []string{"Rating", "Count"},
		Rows: [][]string{
			{"1", strconv.Itoa(stats.RatingDistribution.Rating1)},
			{"2", strconv.Itoa(stats.RatingDistribution.Rating2)},
			{"3", strconv.Itoa(stats.RatingDistribution.Rating3)},
			{"4", strconv.Itoa(stats.RatingDistribution.Rating4)},
			{"5", strconv.Itoa(stats.RatingDistribution.Rating5)},
		},
	}

	trend := export.Dataset{Headers: []string{"Date", "Average", "Count"}}
	for _, point := range stats.TimeSeriesData {
		trend.Rows = append(trend.Rows, []string{point.Date, formatRating(point.Average), strconv.Itoa(point.Count)})
	}

	sections := []export.Section{
		{Title: "Summary", Data: summary},
		{Title: "Category Averages", Data: categories},
		{Title: "Rating Distribution", Data: distribution},
	}
	if len(trend.Rows) > 0 {
		sections = append(sections, export.Section{Title: "Daily Trend", Data: trend})
	}

	payload, err := s.pdf.Render("Course Evaluation Report", sections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

func formatRating(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
