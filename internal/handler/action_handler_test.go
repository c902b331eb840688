package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eval-api/internal/middleware"
	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/internal/service"
)

type courseRepoMock struct {
	courses []models.Course
}

func (m *courseRepoMock) List(ctx context.Context) ([]models.Course, error) {
	return m.courses, nil
}

func (m *courseRepoMock) FindByIDOrCode(ctx context.Context, key string) (*models.Course, error) {
	for i := range m.courses {
		if m.courses[i].ID == key || strings.EqualFold(m.courses[i].Code, key) {
			course := m.courses[i]
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *courseRepoMock) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	for _, course := range m.courses {
		if strings.EqualFold(course.Code, code) && course.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *courseRepoMock) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "course-" + course.Code
	}
	m.courses = append(m.courses, *course)
	return nil
}

func (m *courseRepoMock) Update(ctx context.Context, course *models.Course) error { return nil }
func (m *courseRepoMock) Delete(ctx context.Context, id string) error             { return nil }

type sheetRegistryMock struct {
	sheets []models.SheetSet
}

func (m *sheetRegistryMock) List(ctx context.Context) ([]models.SheetSet, error) {
	return m.sheets, nil
}

func (m *sheetRegistryMock) FindByCourse(ctx context.Context, key string) (*models.SheetSet, error) {
	for i := range m.sheets {
		if strings.EqualFold(m.sheets[i].CourseCode, key) || m.sheets[i].CourseID == key {
			sheet := m.sheets[i]
			return &sheet, nil
		}
	}
	return nil, nil
}

func (m *sheetRegistryMock) Register(ctx context.Context, sheet models.SheetSet) error {
	m.sheets = append(m.sheets, sheet)
	return nil
}

func (m *sheetRegistryMock) RenameSheets(ctx context.Context, oldCode, newCode string) (*models.SheetSet, error) {
	return &models.SheetSet{CourseCode: newCode}, nil
}

func (m *sheetRegistryMock) DropSheets(ctx context.Context, code string) ([]string, error) {
	return []string{"evaluations_" + code, "Instructors_" + code}, nil
}

func (m *sheetRegistryMock) AnalyzeAll(ctx context.Context) (int, error) {
	return len(m.sheets), nil
}

type evaluationRepoMock struct {
	rows map[string][]models.Evaluation
}

func (m *evaluationRepoMock) EnsureSheet(ctx context.Context, table string) error { return nil }

func (m *evaluationRepoMock) List(ctx context.Context, table string) ([]models.Evaluation, error) {
	return m.rows[table], nil
}

func (m *evaluationRepoMock) SlotExists(ctx context.Context, table string, center string, week int, day, period string) (bool, error) {
	for _, eval := range m.rows[table] {
		if eval.Center == center && eval.Week == week && eval.Day == day && eval.Period == period {
			return true, nil
		}
	}
	return false, nil
}

func (m *evaluationRepoMock) Append(ctx context.Context, table string, eval *models.Evaluation) error {
	if m.rows == nil {
		m.rows = map[string][]models.Evaluation{}
	}
	if eval.ID == "" {
		eval.ID = "eval-1"
	}
	m.rows[table] = append(m.rows[table], *eval)
	return nil
}

func (m *evaluationRepoMock) Count(ctx context.Context, table string) (int, error) {
	return len(m.rows[table]), nil
}

type instructorRepoMock struct{}

func (instructorRepoMock) EnsureRoster(ctx context.Context, table string, template models.RosterTemplate) error {
	return nil
}

func (instructorRepoMock) List(ctx context.Context, table string) ([]models.ScheduleSlot, error) {
	return []models.ScheduleSlot{{Center: "ลาดกระบัง", Week: 1, Day: "เสาร์", Period: "เช้า"}}, nil
}

func (instructorRepoMock) UpdateSlot(ctx context.Context, table string, slot models.ScheduleSlot) (int64, error) {
	return 1, nil
}

type pingerMock struct{}

func (pingerMock) PingContext(ctx context.Context) error { return nil }

type envelope struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Data    map[string]interface{} `json:"data"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, admin bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	courses := &courseRepoMock{courses: []models.Course{{ID: "course-1", Code: "GO101", Name: "Intro to Go"}}}
	sheets := &sheetRegistryMock{sheets: []models.SheetSet{{
		CourseID:        "course-1",
		CourseCode:      "GO101",
		EvaluationSheet: "evaluations_GO101",
		InstructorSheet: "Instructors_GO101",
	}}}
	evaluations := &evaluationRepoMock{}
	roster := models.DefaultRosterTemplate(2)

	courseSvc := service.NewCourseService(courses, sheets, evaluations, instructorRepoMock{}, nil, nil, roster, nil)
	evalSvc := service.NewEvaluationService(evaluations, sheets, nil, nil, nil)
	statsSvc := service.NewStatsService(evaluations, sheets, courses, nil, nil, nil)
	instructorSvc := service.NewInstructorService(instructorRepoMock{}, sheets, nil, nil, roster, nil)
	healthSvc := service.NewHealthService(pingerMock{}, nil, sheets, nil, nil)

	h := NewActionHandler(courseSvc, evalSvc, statsSvc, instructorSvc, healthSvc, nil, nil)

	r := gin.New()
	if admin {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{Username: "admin", Role: service.RoleAdmin})
		})
	}
	r.GET("/exec", h.Get)
	r.POST("/exec", h.Post)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestActionHandlerHealth(t *testing.T) {
	r := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodGet, "/exec", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "1.0.0", env.Version)
	assert.Equal(t, "API is running", env.Data["message"])
	assert.Equal(t, float64(1), env.Data["sheetCount"])
}

func TestActionHandlerGetCourses(t *testing.T) {
	r := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodGet, "/exec?action=getCourses", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), env.Data["count"])
}

func TestActionHandlerGetInstructors(t *testing.T) {
	r := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodGet, "/exec?action=getInstructors&courseId=GO101", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Instructors_GO101", env.Data["sheetName"])
}

func TestActionHandlerUnknownAction(t *testing.T) {
	r := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodPost, "/exec", gin.H{"action": "explode"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Unknown action: explode", env.Error.Message)
	assert.Equal(t, "protocol_error", env.Error.Type)
}

func TestActionHandlerSubmitEvaluation(t *testing.T) {
	r := newTestRouter(t, false)

	body := gin.H{
		"action": "submitEvaluation",
		"data": gin.H{
			"course":     gin.H{"id": "course-1", "code": "GO101", "name": "Intro to Go"},
			"center":     "ลาดกระบัง",
			"week":       2,
			"day":        "เสาร์",
			"period":     "เช้า",
			"instructor": "อ.สมชาย",
			"ratings": gin.H{
				"clarity": 5, "preparation": 4, "interaction": 5, "punctuality": 4, "satisfaction": 5,
			},
			"comments": "ดีมาก",
		},
	}
	w, env := doJSON(t, r, http.MethodPost, "/exec", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "การประเมินสำเร็จ! ขอบคุณสำหรับความคิดเห็น", env.Data["message"])
	assert.Equal(t, "Intro to Go", env.Data["course"])
	assert.Equal(t, "evaluations_GO101", env.Data["sheet"])
	assert.Equal(t, float64(2), env.Data["row"])
}

func TestActionHandlerSubmitEvaluationMissingData(t *testing.T) {
	r := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodPost, "/exec", gin.H{"action": "submitEvaluation"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "No evaluation data provided", env.Error.Message)
	assert.Equal(t, "validation_error", env.Error.Type)
}

func TestActionHandlerCreateCourse(t *testing.T) {
	r := newTestRouter(t, false)

	body := gin.H{
		"action": "createCourse",
		"data":   gin.H{"code": "PY201", "name": "Python Basics", "category": "junior"},
	}
	w, env := doJSON(t, r, http.MethodPost, "/exec", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Course created successfully", env.Data["message"])
	assert.Equal(t, "PY201", env.Data["courseCode"])
}

func TestActionHandlerDeleteCourseMissingID(t *testing.T) {
	r := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodPost, "/exec", gin.H{"action": "deleteCourse", "data": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "No course ID provided", env.Error.Message)
}

func TestActionHandlerBeautifySheetsRequiresAdmin(t *testing.T) {
	r := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodPost, "/exec", gin.H{"action": "beautifySheets"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Admin access required", env.Error.Message)
}

func TestActionHandlerBeautifySheetsAsAdmin(t *testing.T) {
	r := newTestRouter(t, true)

	w, env := doJSON(t, r, http.MethodPost, "/exec", gin.H{"action": "beautifySheets"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sheets beautified successfully", env.Data["message"])
	assert.Equal(t, float64(1), env.Data["sheetsProcessed"])
}

func TestActionHandlerGetStats(t *testing.T) {
	r := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodGet, "/exec?action=getStats&courseId=GO101", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), env.Data["totalEvaluations"])
	assert.Equal(t, float64(1), env.Data["coursesCount"])
}
