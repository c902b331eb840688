package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eval-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "code", "name", "category", "duration", "description", "status", "created_at", "updated_at"}).
		AddRow("course-1", "PS001", "Power Supply Repair", "junior", 8, "", "active", now, now)
	mock.ExpectQuery("SELECT id, code, name").WillReturnRows(rows)

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "PS001", result[0].Code)
}

func TestCourseRepositoryFindByIDOrCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "code", "name", "category", "duration", "description", "status", "created_at", "updated_at"}).
		AddRow("course-1", "PS001", "Power Supply Repair", "junior", 8, "", "active", now, now)
	mock.ExpectQuery("SELECT id, code, name").WithArgs("ps001").WillReturnRows(rows)

	course, err := repo.FindByIDOrCode(context.Background(), "ps001")
	require.NoError(t, err)
	assert.Equal(t, "course-1", course.ID)
}

func TestCourseRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectQuery("SELECT 1 FROM courses").
		WithArgs("PS001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "PS001", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM courses").
		WithArgs("NEW01", "course-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByCode(context.Background(), "NEW01", "course-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec("INSERT INTO courses").
		WithArgs(sqlmock.AnyArg(), "PS001", "Power Supply Repair", "junior", 8, "Basics", "active", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{
		Code:        "PS001",
		Name:        "Power Supply Repair",
		Category:    "junior",
		Duration:    8,
		Description: "Basics",
	}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, models.CourseStatusActive, course.Status)
}

func TestCourseRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db)
	mock.ExpectExec("DELETE FROM courses").
		WithArgs("course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "course-1"))
}
