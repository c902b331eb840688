package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/pkg/config"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

func newAuthService(t *testing.T, password string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AuthConfig{
		JWTSecret:         "test-secret",
		TokenExpiration:   time.Hour,
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
	}, nil)
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	svc := newAuthService(t, "s3cret")

	resp, err := svc.Login(models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t, "s3cret")

	_, err := svc.Login(models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
	assert.Equal(t, "Invalid username or password", appErr.Message)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := newAuthService(t, "s3cret")

	_, err := svc.Login(models.LoginRequest{Username: "guest", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t, "s3cret")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	issuer := newAuthService(t, "s3cret")
	resp, err := issuer.Login(models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	verifier := NewAuthService(config.AuthConfig{JWTSecret: "other-secret"}, nil)
	_, err = verifier.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
