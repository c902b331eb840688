package response

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

// Version is reported in every response envelope and the health payload.
const Version = "1.0.0"

// Envelope is the uniform response contract: every reply carries a status,
// a timestamp, the API version and either a data or an error member.
type Envelope struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Success sends a 200 envelope wrapping the payload.
func Success(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created sends a 201 envelope wrapping the payload.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// JSON sends a success envelope with an explicit HTTP status.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{
		Status:    "success",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Data:      data,
	})
}

// Error converts the error to the common envelope shape.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, Envelope{
		Status:    "error",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Error: &ErrorBody{
			Message: appErr.Message,
			Type:    strings.ToLower(appErr.Code),
		},
	})
}
