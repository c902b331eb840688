package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-eval-api/internal/models"
)

const coursesSchema = `
CREATE TABLE IF NOT EXISTS courses (
    id          text PRIMARY KEY,
    code        text NOT NULL,
    name        text NOT NULL,
    category    text NOT NULL DEFAULT '',
    duration    integer NOT NULL DEFAULT 0,
    description text NOT NULL DEFAULT '',
    status      text NOT NULL DEFAULT 'active',
    created_at  timestamptz NOT NULL,
    updated_at  timestamptz NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_courses_code ON courses (LOWER(code));`

// CourseRepository manages persistence for the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// EnsureSchema creates the catalog table when absent.
func (r *CourseRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, coursesSchema); err != nil {
		return fmt.Errorf("ensure courses schema: %w", err)
	}
	return nil
}

// List returns the full catalog ordered by creation time.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, code, name, category, duration, description, status, created_at, updated_at
        FROM courses ORDER BY created_at ASC`
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByIDOrCode fetches a course matching either its id or its code.
func (r *CourseRepository) FindByIDOrCode(ctx context.Context, key string) (*models.Course, error) {
	const query = `SELECT id, code, name, category, duration, description, status, created_at, updated_at
        FROM courses WHERE id = $1 OR LOWER(code) = LOWER($1) LIMIT 1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, key); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByCode checks case-insensitively whether a code is already taken,
// optionally excluding one course id.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE LOWER(code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a new catalog entry.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = models.CourseStatusActive
	}
	const query = `INSERT INTO courses (id, code, name, category, duration, description, status, created_at, updated_at)
        VALUES (:id, :code, :name, :category, :duration, :description, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing catalog entry, preserving created_at.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, name = :name, category = :category, duration = :duration,
        description = :description, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a catalog entry.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
