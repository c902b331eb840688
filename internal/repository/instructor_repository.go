package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-eval-api/internal/models"
)

// InstructorRepository manages per-course roster tables.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// EnsureRoster creates the roster table when absent and fills it with the
// template grid when it holds no rows yet.
func (r *InstructorRepository) EnsureRoster(ctx context.Context, table string, template models.RosterTemplate) error {
	quoted := pq.QuoteIdentifier(table)
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    center       text NOT NULL,
    week         integer NOT NULL,
    day          text NOT NULL,
    period       text NOT NULL,
    instructor1  text NOT NULL DEFAULT '',
    instructor2  text NOT NULL DEFAULT '',
    PRIMARY KEY (center, week, day, period)
)`, quoted)
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure roster %s: %w", table, err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoted)); err != nil {
		return fmt.Errorf("count roster %s: %w", table, err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster fill %s: %w", table, err)
	}
	defer tx.Rollback()

	insert := fmt.Sprintf(`INSERT INTO %s (center, week, day, period, instructor1, instructor2)
        VALUES (:center, :week, :day, :period, :instructor1, :instructor2)
        ON CONFLICT (center, week, day, period) DO NOTHING`, quoted)
	for _, slot := range template.Slots() {
		if _, err := tx.NamedExecContext(ctx, insert, slot); err != nil {
			return fmt.Errorf("fill roster %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// List returns the full roster grid in template order.
func (r *InstructorRepository) List(ctx context.Context, table string) ([]models.ScheduleSlot, error) {
	query := fmt.Sprintf(`SELECT center, week, day, period, instructor1, instructor2 FROM %s
        ORDER BY week, center, day, period`, pq.QuoteIdentifier(table))
	slots := []models.ScheduleSlot{}
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list roster %s: %w", table, err)
	}
	return slots, nil
}

// UpdateSlot sets the instructor names on one slot and returns how many
// rows matched.
func (r *InstructorRepository) UpdateSlot(ctx context.Context, table string, slot models.ScheduleSlot) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET instructor1 = :instructor1, instructor2 = :instructor2
        WHERE center = :center AND week = :week AND day = :day AND period = :period`, pq.QuoteIdentifier(table))
	res, err := r.db.NamedExecContext(ctx, query, slot)
	if err != nil {
		return 0, fmt.Errorf("update roster slot in %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update roster slot in %s: %w", table, err)
	}
	return affected, nil
}
