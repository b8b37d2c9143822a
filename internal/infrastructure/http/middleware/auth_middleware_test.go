package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatthijsVer/company-manager/pkg/jwt"
)

func newTestManager() *jwt.Manager {
	return jwt.NewManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func runAuthed(t *testing.T, manager *jwt.Manager, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/meetings", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var inner echo.Context
	handler := EchoAuth(manager)(func(c echo.Context) error {
		inner = c
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, inner
}

func TestEchoAuth_MissingTokenIs401Envelope(t *testing.T) {
	rec, inner := runAuthed(t, newTestManager(), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, inner, "handler must not run")

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "UNAUTHENTICATED", body.Error.Code)
}

func TestEchoAuth_InvalidTokenIs401Envelope(t *testing.T) {
	rec, inner := runAuthed(t, newTestManager(), "Bearer not-a-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, inner)
	assert.Contains(t, rec.Body.String(), "AUTH_INVALID_TOKEN")
}

func TestEchoAuth_ValidTokenInjectsScope(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()
	orgID := uuid.New()
	token, err := manager.GenerateAccessToken(userID, orgID, "a@b.co", "member")
	require.NoError(t, err)

	rec, inner := runAuthed(t, manager, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, inner)

	gotUser, ok := UserID(inner)
	require.True(t, ok)
	assert.Equal(t, userID, gotUser)

	gotOrg, ok := OrganizationID(inner)
	require.True(t, ok)
	assert.Equal(t, orgID, gotOrg)
}
