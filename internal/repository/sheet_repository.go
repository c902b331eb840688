package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-eval-api/internal/models"
)

const sheetRegistrySchema = `
CREATE TABLE IF NOT EXISTS course_sheets (
    course_code      text PRIMARY KEY,
    course_id        text NOT NULL DEFAULT '',
    evaluation_sheet text NOT NULL,
    instructor_sheet text NOT NULL,
    created_at       timestamptz NOT NULL DEFAULT now()
);`

// EvaluationSheetName returns the evaluation table identifier for a
// course key. Used only when provisioning; lookups go through the
// registry.
func EvaluationSheetName(key string) string {
	return "evaluations_" + key
}

// InstructorSheetName returns the roster table identifier for a course
// key.
func InstructorSheetName(key string) string {
	return "Instructors_" + key
}

// SheetRepository maintains the sheet registry and the dynamic DDL for
// per-course tables. Each course owns one evaluation table and one
// instructor roster table; renames and drops cascade through here inside
// a single transaction.
type SheetRepository struct {
	db *sqlx.DB
}

// NewSheetRepository constructs a SheetRepository.
func NewSheetRepository(db *sqlx.DB) *SheetRepository {
	return &SheetRepository{db: db}
}

// EnsureSchema creates the registry table when absent.
func (r *SheetRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sheetRegistrySchema); err != nil {
		return fmt.Errorf("ensure sheet registry schema: %w", err)
	}
	return nil
}

// List returns all registry entries ordered by course code.
func (r *SheetRepository) List(ctx context.Context) ([]models.SheetSet, error) {
	const query = `SELECT course_code, course_id, evaluation_sheet, instructor_sheet, created_at
        FROM course_sheets ORDER BY course_code ASC`
	sheets := []models.SheetSet{}
	if err := r.db.SelectContext(ctx, &sheets, query); err != nil {
		return nil, fmt.Errorf("list sheet registry: %w", err)
	}
	return sheets, nil
}

// FindByCourse resolves a registry entry by course code first, then by
// course id.
func (r *SheetRepository) FindByCourse(ctx context.Context, key string) (*models.SheetSet, error) {
	const query = `SELECT course_code, course_id, evaluation_sheet, instructor_sheet, created_at
        FROM course_sheets WHERE LOWER(course_code) = LOWER($1)
        UNION ALL
        SELECT course_code, course_id, evaluation_sheet, instructor_sheet, created_at
        FROM course_sheets WHERE course_id = $1 AND LOWER(course_code) <> LOWER($1)
        LIMIT 1`
	var sheet models.SheetSet
	if err := r.db.GetContext(ctx, &sheet, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find sheet registry entry: %w", err)
	}
	return &sheet, nil
}

// Register records a sheet pair for a course; existing entries are left
// untouched.
func (r *SheetRepository) Register(ctx context.Context, sheet models.SheetSet) error {
	const query = `INSERT INTO course_sheets (course_code, course_id, evaluation_sheet, instructor_sheet)
        VALUES (:course_code, :course_id, :evaluation_sheet, :instructor_sheet)
        ON CONFLICT (course_code) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, sheet); err != nil {
		return fmt.Errorf("register sheets for %s: %w", sheet.CourseCode, err)
	}
	return nil
}

// RenameSheets moves a course's registry entry and both tables to a new
// code. The registry update and the table renames commit together.
func (r *SheetRepository) RenameSheets(ctx context.Context, oldCode, newCode string) (*models.SheetSet, error) {
	existing, err := r.FindByCourse(ctx, oldCode)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	renamed := models.SheetSet{
		CourseID:        existing.CourseID,
		CourseCode:      newCode,
		EvaluationSheet: EvaluationSheetName(newCode),
		InstructorSheet: InstructorSheetName(newCode),
		CreatedAt:       existing.CreatedAt,
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sheet rename: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, pair := range [][2]string{
		{existing.EvaluationSheet, renamed.EvaluationSheet},
		{existing.InstructorSheet, renamed.InstructorSheet},
	} {
		if !tableExistsTx(ctx, tx, pair[0]) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", pq.QuoteIdentifier(pair[0]), pq.QuoteIdentifier(pair[1]))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("rename sheet %s: %w", pair[0], err)
		}
	}

	const update = `UPDATE course_sheets SET course_code = $1, evaluation_sheet = $2, instructor_sheet = $3
        WHERE course_code = $4`
	if _, err := tx.ExecContext(ctx, update, renamed.CourseCode, renamed.EvaluationSheet, renamed.InstructorSheet, existing.CourseCode); err != nil {
		return nil, fmt.Errorf("update sheet registry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sheet rename: %w", err)
	}
	return &renamed, nil
}

// DropSheets removes a course's tables and registry entry in one
// transaction. It returns the names of the tables that actually existed.
func (r *SheetRepository) DropSheets(ctx context.Context, code string) ([]string, error) {
	existing, err := r.FindByCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sheet drop: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	dropped := []string{}
	for _, name := range []string{existing.InstructorSheet, existing.EvaluationSheet} {
		if !tableExistsTx(ctx, tx, name) {
			continue
		}
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s", pq.QuoteIdentifier(name))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("drop sheet %s: %w", name, err)
		}
		dropped = append(dropped, name)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM course_sheets WHERE course_code = $1", existing.CourseCode); err != nil {
		return nil, fmt.Errorf("delete sheet registry entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sheet drop: %w", err)
	}
	return dropped, nil
}

// AnalyzeAll refreshes planner statistics for every registered table that
// exists. Returns the number of tables processed.
func (r *SheetRepository) AnalyzeAll(ctx context.Context) (int, error) {
	sheets, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, sheet := range sheets {
		for _, name := range []string{sheet.EvaluationSheet, sheet.InstructorSheet} {
			if !r.tableExists(ctx, name) {
				continue
			}
			stmt := fmt.Sprintf("ANALYZE %s", pq.QuoteIdentifier(name))
			if _, err := r.db.ExecContext(ctx, stmt); err != nil {
				return processed, fmt.Errorf("analyze sheet %s: %w", name, err)
			}
			processed++
		}
	}
	return processed, nil
}

func (r *SheetRepository) tableExists(ctx context.Context, name string) bool {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		return false
	}
	return exists
}

func tableExistsTx(ctx context.Context, tx *sqlx.Tx, name string) bool {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`
	if err := tx.GetContext(ctx, &exists, query, name); err != nil {
		return false
	}
	return exists
}
