package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

func evalRow(id string, day time.Time, ratings [5]float64) models.Evaluation {
	return models.Evaluation{
		ID:           id,
		CourseCode:   "GO101",
		CourseName:   "Intro to Go",
		Clarity:      ratings[0],
		Preparation:  ratings[1],
		Interaction:  ratings[2],
		Punctuality:  ratings[3],
		Satisfaction: ratings[4],
		Timestamp:    day,
	}
}

func newStatsService(evaluations *evaluationRepoStub, sheets *sheetRegistryStub, courses *courseRepoStub) *StatsService {
	return NewStatsService(evaluations, sheets, courses, nil, nil, nil)
}

func TestStatsServiceStatistics(t *testing.T) {
	day1 := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	evaluations := &evaluationRepoStub{rows: map[string][]models.Evaluation{
		"evaluations_GO101": {
			evalRow("e1", day1, [5]float64{5, 5, 5, 5, 5}),
			evalRow("e2", day1, [5]float64{4, 4, 4, 4, 4}),
			evalRow("e3", day2, [5]float64{2, 2, 2, 3, 3}),
		},
	}}
	sheets := &sheetRegistryStub{sheets: []models.SheetSet{{CourseCode: "GO101", EvaluationSheet: "evaluations_GO101"}}}
	courses := &courseRepoStub{courses: []models.Course{{ID: "course-1", Code: "GO101", Name: "Intro to Go"}}}
	svc := newStatsService(evaluations, sheets, courses)

	stats, cached, err := svc.Statistics(context.Background(), models.StatsFilter{})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 3, stats.TotalEvaluations)
	assert.Equal(t, 1, stats.CoursesCount)

	assert.Equal(t, 3.67, stats.CategoryAverages.Clarity)
	assert.Equal(t, 4.0, stats.CategoryAverages.Punctuality)

	assert.Equal(t, 1, stats.RatingDistribution.Rating2)
	assert.Equal(t, 1, stats.RatingDistribution.Rating4)
	assert.Equal(t, 1, stats.RatingDistribution.Rating5)

	assert.Equal(t, 3.8, stats.CourseAverages["GO101"])

	require.Len(t, stats.TimeSeriesData, 2)
	assert.Equal(t, "2026-03-07", stats.TimeSeriesData[0].Date)
	assert.Equal(t, 4.5, stats.TimeSeriesData[0].Average)
	assert.Equal(t, 2, stats.TimeSeriesData[0].Count)
	assert.Equal(t, "2026-03-08", stats.TimeSeriesData[1].Date)

	require.NotNil(t, stats.OverallAverage)
	assert.InDelta(t, 3.8, *stats.OverallAverage, 0.001)
}

func TestStatsServiceResolvesCourseNamesFromCatalog(t *testing.T) {
	day := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	stale := evalRow("e1", day, [5]float64{4, 4, 4, 4, 4})
	stale.CourseName = "Old Name"
	orphan := evalRow("e2", day, [5]float64{3, 3, 3, 3, 3})
	orphan.CourseCode = "GONE"
	orphan.CourseName = ""

	evaluations := &evaluationRepoStub{rows: map[string][]models.Evaluation{
		"evaluations_GO101": {stale, orphan},
	}}
	sheets := &sheetRegistryStub{sheets: []models.SheetSet{{CourseCode: "GO101", EvaluationSheet: "evaluations_GO101"}}}
	courses := &courseRepoStub{courses: []models.Course{{ID: "course-1", Code: "GO101", Name: "Advanced Go"}}}
	svc := newStatsService(evaluations, sheets, courses)

	stats, _, err := svc.Statistics(context.Background(), models.StatsFilter{})
	require.NoError(t, err)
	require.Len(t, stats.Evaluations, 2)
	assert.Equal(t, "Advanced Go", stats.Evaluations[0].CourseName)
	assert.Equal(t, "GONE", stats.Evaluations[1].CourseName)
	assert.Contains(t, stats.CourseAverages, "GO101")
	assert.Contains(t, stats.CourseAverages, "GONE")
}

func TestStatsServiceStatisticsEmpty(t *testing.T) {
	svc := newStatsService(&evaluationRepoStub{}, &sheetRegistryStub{}, &courseRepoStub{})

	stats, _, err := svc.Statistics(context.Background(), models.StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEvaluations)
	assert.Nil(t, stats.OverallAverage)
	assert.NotNil(t, stats.CourseAverages)
	assert.NotNil(t, stats.TimeSeriesData)
}

func TestStatsServiceDateWindow(t *testing.T) {
	inWindowDay := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	outOfWindowDay := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	evaluations := &evaluationRepoStub{rows: map[string][]models.Evaluation{
		"evaluations_GO101": {
			evalRow("e1", inWindowDay, [5]float64{5, 5, 5, 5, 5}),
			evalRow("e2", outOfWindowDay, [5]float64{1, 1, 1, 1, 1}),
		},
	}}
	sheets := &sheetRegistryStub{sheets: []models.SheetSet{{CourseCode: "GO101", EvaluationSheet: "evaluations_GO101"}}}
	svc := newStatsService(evaluations, sheets, &courseRepoStub{})

	filter, err := ParseStatsFilter("", "2026-03-07", "2026-03-07")
	require.NoError(t, err)

	stats, _, err := svc.Statistics(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEvaluations)
	require.NotNil(t, stats.OverallAverage)
	assert.Equal(t, 5.0, *stats.OverallAverage)
}

func TestParseStatsFilter(t *testing.T) {
	filter, err := ParseStatsFilter("GO101", "2026-03-01", "2026-03-07T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "GO101", filter.CourseID)
	require.NotNil(t, filter.StartDate)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *filter.StartDate)
	require.NotNil(t, filter.EndDate)
	assert.Equal(t, 12, filter.EndDate.Hour())
}

func TestParseStatsFilterDateOnlyEndCoversDay(t *testing.T) {
	filter, err := ParseStatsFilter("", "", "2026-03-07")
	require.NoError(t, err)
	require.NotNil(t, filter.EndDate)
	assert.True(t, filter.EndDate.After(time.Date(2026, 3, 7, 23, 59, 59, 0, time.UTC)))
	assert.True(t, filter.EndDate.Before(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)))
}

func TestParseStatsFilterInvalidDate(t *testing.T) {
	_, err := ParseStatsFilter("", "not-a-date", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
