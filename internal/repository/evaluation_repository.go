package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-eval-api/internal/models"
)

// evaluationColumns mirrors the fixed sheet header order.
const evaluationColumns = `evaluation_id, course_code, center, week, day, period, instructor,
    COALESCE(clarity, 0) AS clarity, COALESCE(preparation, 0) AS preparation,
    COALESCE(interaction, 0) AS interaction, COALESCE(punctuality, 0) AS punctuality,
    COALESCE(satisfaction, 0) AS satisfaction, COALESCE(comment, '') AS comment,
    "timestamp", COALESCE(course_name, '') AS course_name, COALESCE(course_category, '') AS course_category`

// EvaluationRepository stores evaluation rows in per-course tables. Table
// names come from the sheet registry and are always quoted.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// EnsureSheet creates the evaluation table when absent, including the
// unique slot index that backstops concurrent duplicate submissions.
func (r *EvaluationRepository) EnsureSheet(ctx context.Context, table string) error {
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    evaluation_id   text PRIMARY KEY,
    course_code     text NOT NULL,
    center          text NOT NULL,
    week            integer NOT NULL,
    day             text NOT NULL,
    period          text NOT NULL,
    instructor      text NOT NULL,
    clarity         double precision,
    preparation     double precision,
    interaction     double precision,
    punctuality     double precision,
    satisfaction    double precision,
    comment         text,
    "timestamp"     timestamptz NOT NULL,
    course_name     text,
    course_category text,
    UNIQUE (center, week, day, period)
)`, pq.QuoteIdentifier(table))
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure evaluation sheet %s: %w", table, err)
	}
	return nil
}

// List returns every row of a sheet in submission order.
func (r *EvaluationRepository) List(ctx context.Context, table string) ([]models.Evaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY "timestamp" ASC`, evaluationColumns, pq.QuoteIdentifier(table))
	evaluations := []models.Evaluation{}
	if err := r.db.SelectContext(ctx, &evaluations, query); err != nil {
		return nil, fmt.Errorf("list evaluations from %s: %w", table, err)
	}
	return evaluations, nil
}

// SlotExists reports whether the (center, week, day, period) slot already
// holds a submission.
func (r *EvaluationRepository) SlotExists(ctx context.Context, table string, center string, week int, day, period string) (bool, error) {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE center = $1 AND week = $2 AND day = $3 AND period = $4 LIMIT 1`,
		pq.QuoteIdentifier(table))
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, center, week, day, period); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check slot in %s: %w", table, err)
	}
	return true, nil
}

// Append inserts one evaluation row, generating id and timestamp when
// absent.
func (r *EvaluationRepository) Append(ctx context.Context, table string, eval *models.Evaluation) error {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	if eval.Timestamp.IsZero() {
		eval.Timestamp = time.Now().UTC()
	}
	query := fmt.Sprintf(`INSERT INTO %s (evaluation_id, course_code, center, week, day, period, instructor,
        clarity, preparation, interaction, punctuality, satisfaction, comment, "timestamp", course_name, course_category)
        VALUES (:evaluation_id, :course_code, :center, :week, :day, :period, :instructor,
        :clarity, :preparation, :interaction, :punctuality, :satisfaction, :comment, :timestamp, :course_name, :course_category)`,
		pq.QuoteIdentifier(table))
	if _, err := r.db.NamedExecContext(ctx, query, eval); err != nil {
		return fmt.Errorf("append evaluation to %s: %w", table, err)
	}
	return nil
}

// Count returns the number of data rows in a sheet.
func (r *EvaluationRepository) Count(ctx context.Context, table string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pq.QuoteIdentifier(table))
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count evaluations in %s: %w", table, err)
	}
	return count, nil
}
