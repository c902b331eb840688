package models

import "time"

// CategoryAverages holds the mean of each rating dimension across the
// considered evaluations, rounded to two decimals.
type CategoryAverages struct {
	Clarity      float64 `json:"clarity"`
	Preparation  float64 `json:"preparation"`
	Interaction  float64 `json:"interaction"`
	Punctuality  float64 `json:"punctuality"`
	Satisfaction float64 `json:"satisfaction"`
}

// RatingDistribution is the histogram over overall-score buckets 1-5,
// where an evaluation's bucket is its rounded overall score.
type RatingDistribution struct {
	Rating1 int `json:"rating1"`
	Rating2 int `json:"rating2"`
	Rating3 int `json:"rating3"`
	Rating4 int `json:"rating4"`
	Rating5 int `json:"rating5"`
}

// TimeSeriesPoint is the mean overall score and row count for one
// calendar date.
type TimeSeriesPoint struct {
	Date    string  `json:"date"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Statistics is the aggregated evaluation report. OverallAverage is
// unrounded and absent when no rows matched the filter.
type Statistics struct {
	TotalEvaluations   int                `json:"totalEvaluations"`
	CoursesCount       int                `json:"coursesCount"`
	CategoryAverages   CategoryAverages   `json:"categoryAverages"`
	RatingDistribution RatingDistribution `json:"ratingDistribution"`
	CourseAverages     map[string]float64 `json:"courseAverages"`
	TimeSeriesData     []TimeSeriesPoint  `json:"timeSeriesData"`
	OverallAverage     *float64           `json:"overallAverage,omitempty"`
	Evaluations        []Evaluation       `json:"evaluations"`
}

// StatsFilter narrows the aggregation to one course and/or a date window.
// Both window bounds are inclusive.
type StatsFilter struct {
	CourseID  string
	StartDate *time.Time
	EndDate   *time.Time
}

// SystemMetrics is a lightweight instrumentation snapshot surfaced by the
// health action.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// HealthStatus is the health action payload.
type HealthStatus struct {
	Message    string        `json:"message"`
	Version    string        `json:"version"`
	Timestamp  string        `json:"timestamp"`
	Database   string        `json:"database"`
	Cache      string        `json:"cache"`
	SheetCount int           `json:"sheetCount"`
	SheetNames []string      `json:"sheetNames"`
	Metrics    SystemMetrics `json:"metrics"`
}
