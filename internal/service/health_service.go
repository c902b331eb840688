package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

type databasePinger interface {
	PingContext(ctx context.Context) error
}

type cachePinger interface {
	Ping(ctx context.Context) error
}

// HealthService reports service liveness together with a registry and
// instrumentation snapshot.
type HealthService struct {
	db      databasePinger
	cache   cachePinger
	sheets  sheetRegistry
	metrics *MetricsService
	logger  *zap.Logger
}

// NewHealthService constructs a health service. The cache pinger may be
// nil when Redis is not configured.
func NewHealthService(db databasePinger, cache cachePinger, sheets sheetRegistry,
	metrics *MetricsService, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{db: db, cache: cache, sheets: sheets, metrics: metrics, logger: logger}
}

// Status assembles the health payload. Probe failures degrade the
// component state instead of failing the call.
func (s *HealthService) Status(ctx context.Context) models.HealthStatus {
	status := models.HealthStatus{
		Message:   "API is running",
		Version:   response.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  "ok",
		Cache:     "disabled",
		Metrics:   s.metrics.Snapshot(),
	}

	if err := s.db.PingContext(ctx); err != nil {
		status.Database = "unreachable"
		s.logger.Warn("database health probe failed", zap.Error(err))
	}

	if s.cache != nil {
		status.Cache = "ok"
		if err := s.cache.Ping(ctx); err != nil {
			status.Cache = "unreachable"
			s.logger.Warn("cache health probe failed", zap.Error(err))
		}
	}

	sheets, err := s.sheets.List(ctx)
	if err != nil {
		s.logger.Warn("sheet registry probe failed", zap.Error(err))
		return status
	}
	status.SheetCount = len(sheets)
	status.SheetNames = make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		status.SheetNames = append(status.SheetNames, sheet.EvaluationSheet)
	}
	return status
}
