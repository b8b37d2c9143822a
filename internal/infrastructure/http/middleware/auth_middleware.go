package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/MatthijsVer/company-manager/errors"
	"github.com/MatthijsVer/company-manager/pkg/jwt"
)

const (
	// UserIDKey is the echo context key for the authenticated user id
	UserIDKey = "user_id"
	// OrganizationIDKey is the echo context key for the caller's organization
	OrganizationIDKey = "organization_id"
)

// EchoAuth returns an Echo middleware that validates the bearer token and
// sets "user_id" and "organization_id" (uuid.UUID) into the Echo context.
// Rejections are written here as the standard error envelope: echo's default
// error handler only understands *echo.HTTPError and would turn a returned
// AppError into a 500.
func EchoAuth(manager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return reject(c, apperrors.ErrUnauthenticated())
			}

			claims, err := manager.ValidateAccessToken(token)
			if err != nil {
				return reject(c, apperrors.ErrInvalidToken())
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(OrganizationIDKey, claims.OrganizationID)

			return next(c)
		}
	}
}

// reject writes the error envelope with the AppError's own status code
func reject(c echo.Context, appErr apperrors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    appErr.Code.String(),
			"message": appErr.Message,
		},
	})
}

// UserID retrieves the authenticated user id from the Echo context
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(UserIDKey).(uuid.UUID)
	return id, ok
}

// OrganizationID retrieves the caller's organization id from the Echo
// context
func OrganizationID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(OrganizationIDKey).(uuid.UUID)
	return id, ok
}

// extractToken pulls the bearer token from the Authorization header, with
// the access_token cookie as fallback
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}
