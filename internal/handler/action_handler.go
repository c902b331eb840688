package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/internal/service"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

// Dispatched action names.
const (
	ActionHealth           = "health"
	ActionGetCourses       = "getCourses"
	ActionGetEvaluations   = "getEvaluations"
	ActionGetInstructors   = "getInstructors"
	ActionGetStats         = "getStats"
	ActionGetEvalStats     = "getEvaluationStats"
	ActionSubmitEvaluation = "submitEvaluation"
	ActionCreateCourse     = "createCourse"
	ActionUpdateCourse     = "updateCourse"
	ActionDeleteCourse     = "deleteCourse"
	ActionUpdateInstructor = "updateInstructor"
	ActionBeautifySheets   = "beautifySheets"
)

// execRequest is the POST dispatch payload. Filter fields ride on the top
// level next to the action-specific data document.
type execRequest struct {
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data"`
	CourseID  string          `json:"courseId"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
}

type deleteCoursePayload struct {
	CourseID string `json:"courseId"`
	ID       string `json:"id"`
}

// ActionHandler dispatches the single /exec endpoint to the domain
// services, mirroring the action-parameter protocol the form clients
// already speak.
type ActionHandler struct {
	courses     *service.CourseService
	evaluations *service.EvaluationService
	stats       *service.StatsService
	instructors *service.InstructorService
	health      *service.HealthService
	metrics     *service.MetricsService
	logger      *zap.Logger
}

// NewActionHandler builds the dispatcher.
func NewActionHandler(courses *service.CourseService, evaluations *service.EvaluationService,
	stats *service.StatsService, instructors *service.InstructorService,
	health *service.HealthService, metrics *service.MetricsService, logger *zap.Logger) *ActionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActionHandler{
		courses:     courses,
		evaluations: evaluations,
		stats:       stats,
		instructors: instructors,
		health:      health,
		metrics:     metrics,
		logger:      logger,
	}
}

// Get godoc
// @Summary Dispatch a read action
// @Description Read side of the action protocol. Empty action behaves like health.
// @Tags Exec
// @Produce json
// @Param action query string false "Action name"
// @Param courseId query string false "Course id or code"
// @Param startDate query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param endDate query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /exec [get]
func (h *ActionHandler) Get(c *gin.Context) {
	action := c.Query("action")
	h.dispatch(c, action, execRequest{
		Action:    action,
		CourseID:  c.Query("courseId"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	})
}

// Post godoc
// @Summary Dispatch a write action
// @Tags Exec
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exec [post]
func (h *ActionHandler) Post(c *gin.Context) {
	var req execRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "", appErrors.Wrap(err, appErrors.ErrProtocol.Code, appErrors.ErrProtocol.Status, "Invalid request body"))
		return
	}
	h.dispatch(c, req.Action, req)
}

func (h *ActionHandler) dispatch(c *gin.Context, action string, req execRequest) {
	switch action {
	case "", ActionHealth:
		h.respond(c, action, h.health.Status(c.Request.Context()))

	case ActionGetCourses:
		courses, err := h.courses.List(c.Request.Context())
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, gin.H{"courses": courses, "count": len(courses)})

	case ActionGetEvaluations:
		list, err := h.evaluations.List(c.Request.Context(), req.CourseID)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, list)

	case ActionGetInstructors:
		list, err := h.instructors.Roster(c.Request.Context(), req.CourseID)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, list)

	case ActionGetStats, ActionGetEvalStats:
		filter, err := service.ParseStatsFilter(req.CourseID, req.StartDate, req.EndDate)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		stats, _, err := h.stats.Statistics(c.Request.Context(), filter)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, stats)

	case ActionSubmitEvaluation:
		var payload models.SubmitEvaluationRequest
		if !h.decodeData(c, action, req.Data, &payload, "No evaluation data provided") {
			return
		}
		result, err := h.evaluations.Submit(c.Request.Context(), payload)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, result)

	case ActionCreateCourse:
		var payload models.CourseInput
		if !h.decodeData(c, action, req.Data, &payload, "No course data provided") {
			return
		}
		result, err := h.courses.Create(c.Request.Context(), payload)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, result)

	case ActionUpdateCourse:
		var payload models.CourseInput
		if !h.decodeData(c, action, req.Data, &payload, "No course data provided") {
			return
		}
		result, err := h.courses.Update(c.Request.Context(), payload)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, result)

	case ActionDeleteCourse:
		var payload deleteCoursePayload
		if len(req.Data) > 0 {
			if err := json.Unmarshal(req.Data, &payload); err != nil {
				h.fail(c, action, appErrors.Wrap(err, appErrors.ErrProtocol.Code, appErrors.ErrProtocol.Status, "Invalid course data"))
				return
			}
		}
		key := payload.CourseID
		if key == "" {
			key = payload.ID
		}
		if key == "" {
			h.fail(c, action, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "No course ID provided"))
			return
		}
		result, err := h.courses.Delete(c.Request.Context(), key)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, result)

	case ActionUpdateInstructor:
		var payload models.UpdateInstructorRequest
		if !h.decodeData(c, action, req.Data, &payload, "No instructor data provided") {
			return
		}
		result, err := h.instructors.UpdateSlot(c.Request.Context(), payload)
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, result)

	case ActionBeautifySheets:
		claims := claimsFromContext(c)
		if claims == nil || claims.Role != service.RoleAdmin {
			h.fail(c, action, appErrors.Clone(appErrors.ErrUnauthorized, "Admin access required"))
			return
		}
		result, err := h.courses.Maintain(c.Request.Context())
		if err != nil {
			h.fail(c, action, err)
			return
		}
		h.respond(c, action, result)

	default:
		h.fail(c, action, appErrors.New(appErrors.ErrProtocol.Code, appErrors.ErrProtocol.Status,
			fmt.Sprintf("Unknown action: %s", action)))
	}
}

// decodeData unmarshals the action payload, failing with the given
// message when the document is absent.
func (h *ActionHandler) decodeData(c *gin.Context, action string, data json.RawMessage, dest interface{}, missingMsg string) bool {
	if len(data) == 0 || string(data) == "null" {
		h.fail(c, action, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, missingMsg))
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		h.fail(c, action, appErrors.Wrap(err, appErrors.ErrProtocol.Code, appErrors.ErrProtocol.Status, "Invalid action data"))
		return false
	}
	return true
}

func (h *ActionHandler) respond(c *gin.Context, action string, data interface{}) {
	h.metrics.ObserveAction(action, "success")
	response.Success(c, data)
}

func (h *ActionHandler) fail(c *gin.Context, action string, err error) {
	appErr := appErrors.FromError(err)
	h.metrics.ObserveAction(action, "error")
	h.logger.Warn("action failed",
		zap.String("action", action),
		zap.String("code", appErr.Code),
		zap.String("message", appErr.Message))
	response.Error(c, appErr)
}
