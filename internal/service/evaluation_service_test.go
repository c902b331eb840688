package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

func validSubmission() models.SubmitEvaluationRequest {
	return models.SubmitEvaluationRequest{
		Course:     &models.EvaluationCourse{ID: "course-1", Code: "GO101", Name: "Intro to Go", Category: "junior"},
		Center:     "ลาดกระบัง",
		Week:       flexValue(2),
		Day:        "เสาร์",
		Period:     "เช้า",
		Instructor: "อ.สมชาย",
		Ratings: map[string]models.FlexNumber{
			"clarity":      flexValue(5),
			"preparation":  flexValue(4),
			"interaction":  flexValue(5),
			"punctuality":  flexValue(4),
			"satisfaction": flexValue(5),
		},
		Comments: "สอนดีมาก",
	}
}

func registeredSheets() *sheetRegistryStub {
	return &sheetRegistryStub{sheets: []models.SheetSet{{
		CourseID:        "course-1",
		CourseCode:      "GO101",
		EvaluationSheet: "evaluations_GO101",
		InstructorSheet: "Instructors_GO101",
	}}}
}

func TestEvaluationServiceSubmit(t *testing.T) {
	evaluations := &evaluationRepoStub{}
	svc := NewEvaluationService(evaluations, registeredSheets(), nil, nil, nil)

	result, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "การประเมินสำเร็จ! ขอบคุณสำหรับความคิดเห็น", result.Message)
	assert.Equal(t, "Intro to Go", result.Course)
	assert.Equal(t, "evaluations_GO101", result.Sheet)
	assert.Equal(t, 2, result.Row)
	require.Len(t, evaluations.rows["evaluations_GO101"], 1)
	stored := evaluations.rows["evaluations_GO101"][0]
	assert.Equal(t, "สอนดีมาก", stored.Comment)
	assert.Equal(t, 5.0, stored.Clarity)
	assert.Equal(t, "Intro to Go", stored.CourseName)
}

func TestEvaluationServiceSubmitDuplicateSlot(t *testing.T) {
	evaluations := &evaluationRepoStub{rows: map[string][]models.Evaluation{
		"evaluations_GO101": {{Center: "ลาดกระบัง", Week: 2, Day: "เสาร์", Period: "เช้า"}},
	}}
	svc := NewEvaluationService(evaluations, registeredSheets(), nil, nil, nil)

	_, err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "คุณได้ประเมินในช่วงเวลานี้แล้ว กรุณาเลือกช่วงเวลาอื่น", appErr.Message)
}

func TestEvaluationServiceSubmitNearDuplicateSlot(t *testing.T) {
	taken := models.Evaluation{Center: "ลาดกระบัง", Week: 2, Day: "เสาร์", Period: "เช้า"}

	cases := map[string]func(*models.SubmitEvaluationRequest){
		"center": func(req *models.SubmitEvaluationRequest) { req.Center = "บางพลัด" },
		"week":   func(req *models.SubmitEvaluationRequest) { req.Week = flexValue(3) },
		"day":    func(req *models.SubmitEvaluationRequest) { req.Day = "อาทิตย์" },
		"period": func(req *models.SubmitEvaluationRequest) { req.Period = "บ่าย" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			evaluations := &evaluationRepoStub{rows: map[string][]models.Evaluation{
				"evaluations_GO101": {taken},
			}}
			svc := NewEvaluationService(evaluations, registeredSheets(), nil, nil, nil)

			req := validSubmission()
			mutate(&req)

			result, err := svc.Submit(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, "การประเมินสำเร็จ! ขอบคุณสำหรับความคิดเห็น", result.Message)
			assert.Len(t, evaluations.rows["evaluations_GO101"], 2)
		})
	}
}

func TestEvaluationServiceSubmitValidation(t *testing.T) {
	svc := NewEvaluationService(&evaluationRepoStub{}, registeredSheets(), nil, nil, nil)

	req := validSubmission()
	req.Week = models.FlexNumber{Present: true, Valid: false}
	req.Ratings["clarity"] = models.FlexNumber{}

	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Week must be a number between 1-52")
	assert.Contains(t, appErr.Message, "Rating for clarity is required")
}

func TestEvaluationServiceSubmitProvisionsSheet(t *testing.T) {
	evaluations := &evaluationRepoStub{}
	sheets := &sheetRegistryStub{}
	svc := NewEvaluationService(evaluations, sheets, nil, nil, nil)

	result, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "evaluations_GO101", result.Sheet)
	assert.Contains(t, evaluations.ensured, "evaluations_GO101")
	require.Len(t, sheets.sheets, 1)
	assert.Equal(t, "GO101", sheets.sheets[0].CourseCode)
}

func TestEvaluationServiceListAllSheets(t *testing.T) {
	evaluations := &evaluationRepoStub{rows: map[string][]models.Evaluation{
		"evaluations_GO101": {{ID: "e1"}, {ID: "e2"}},
		"evaluations_PY201": {{ID: "e3"}},
	}}
	sheets := &sheetRegistryStub{sheets: []models.SheetSet{
		{CourseCode: "GO101", EvaluationSheet: "evaluations_GO101"},
		{CourseCode: "PY201", EvaluationSheet: "evaluations_PY201"},
	}}
	svc := NewEvaluationService(evaluations, sheets, nil, nil, nil)

	list, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, list.Count)
}

func TestEvaluationServiceListUnknownCourse(t *testing.T) {
	svc := NewEvaluationService(&evaluationRepoStub{}, &sheetRegistryStub{}, nil, nil, nil)

	list, err := svc.List(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Evaluations)
}
