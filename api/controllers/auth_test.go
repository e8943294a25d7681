package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrenteria/storefront-backend/api/middleware"
	"github.com/davidrenteria/storefront-backend/internal/auth"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
)

type stubAuthService struct {
	registered  *auth.RegisterRequest
	loginErr    error
	loggedOutID string
	response    *auth.LoginResponse
}

func (s *stubAuthService) Register(_ context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	s.registered = &req
	return s.response, nil
}

func (s *stubAuthService) Login(_ context.Context, _ auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.response, nil
}

func (s *stubAuthService) Refresh(_ context.Context, _ auth.RefreshRequest) (*auth.LoginResponse, error) {
	return s.response, nil
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.loggedOutID = accessID
	return nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Level: zerolog.Disabled})
}

func sessionResponse() *auth.LoginResponse {
	return &auth.LoginResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         auth.UserDTO{ID: uuid.New(), Email: "ada@example.com", Role: "customer"},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestRegisterCreated(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{response: sessionResponse()}
	handler := Register(svc, quietLogger())

	body := `{"name":"Ada Lovelace","email":"ada@example.com","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.registered)
	assert.Equal(t, "ada@example.com", svc.registered.Email)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{response: sessionResponse()}
	handler := Register(svc, quietLogger())

	body := `{"name":"Ada","email":"ada@example.com","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.registered)
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := Login(svc, quietLogger())

	body := `{"email":"ada@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	payload := decodeEnvelope(t, rec)
	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", errObj["code"])
}

func TestLogoutRevokesSessionAndClearsCart(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{response: sessionResponse()}
	carts := &stubCartStore{}
	handler := Logout(svc, carts, quietLogger())

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithAccessID(ctx, "jti-1")
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jti-1", svc.loggedOutID)
	assert.True(t, carts.cleared[userID])
}
