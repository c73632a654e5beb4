package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type fakeAuthSrv struct {
	loginErr  error
	lastLogin models.LoginRequest
	lastReset struct {
		userID string
		req    models.ResetPasswordRequest
	}
}

func (f *fakeAuthSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{Message: "Login successful", UserID: "u-1", Username: req.Username, AccessToken: "tok"}, nil
}

func (f *fakeAuthSrv) Register(_ context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	return &models.RegisterResponse{}, nil
}

func (f *fakeAuthSrv) ResetPassword(_ context.Context, userID string, req models.ResetPasswordRequest) error {
	f.lastReset.userID = userID
	f.lastReset.req = req
	return nil
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAuthSrv{}
	handler := NewAuthHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret","role":"user"}`)
	c.Request.Header.Set("User-Agent", "unit-test")

	handler.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", srv.lastLogin.Username)
	assert.Equal(t, "unit-test", srv.lastLogin.UserAgent)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "tok", data["access_token"])
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{loginErr: appErrors.ErrInvalidCredentials})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`)

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials or role", errorMessage(t, rec))
}

func TestAuthHandlerRegisterCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/auth/register", `{"username":"bob","password":"secret1","email":"bob@example.com","role":"user"}`)

	handler.Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthHandlerRegisterMalformed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/auth/register", `not json`)

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerResetPasswordUsesTokenSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAuthSrv{}
	handler := NewAuthHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/users/reset-password", `{"current_password":"old","new_password":"newpass"}`)
	withClaims(c, "u-42", models.RoleCitizen)

	handler.ResetPassword(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-42", srv.lastReset.userID)
	assert.Equal(t, "newpass", srv.lastReset.req.NewPassword)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Password updated successfully", data["message"])
}

func TestAuthHandlerResetPasswordAcceptsCamelCaseBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAuthSrv{}
	handler := NewAuthHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/users/reset-password", `{"currentPassword":"old","newPassword":"newpass"}`)
	withClaims(c, "u-42", models.RoleCitizen)

	handler.ResetPassword(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old", srv.lastReset.req.CurrentPassword)
	assert.Equal(t, "newpass", srv.lastReset.req.NewPassword)
}

func TestAuthHandlerResetPasswordUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/users/reset-password", `{}`)

	handler.ResetPassword(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
