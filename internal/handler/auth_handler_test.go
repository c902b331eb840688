package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-eval-api/internal/service"
	"github.com/noah-isme/course-eval-api/pkg/config"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	authSvc := service.NewAuthService(config.AuthConfig{
		JWTSecret:         "test-secret",
		TokenExpiration:   time.Hour,
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
	}, nil)

	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(authSvc).Login)
	return r
}

func TestAuthHandlerLogin(t *testing.T) {
	r := newAuthRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Bearer", env.Data["token_type"])
	assert.NotEmpty(t, env.Data["access_token"])
}

func TestAuthHandlerLoginRejected(t *testing.T) {
	r := newAuthRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Invalid username or password", env.Error.Message)
}

func TestAuthHandlerLoginMissingFields(t *testing.T) {
	r := newAuthRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
