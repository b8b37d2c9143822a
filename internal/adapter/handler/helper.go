package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MatthijsVer/company-manager/errors"
	"github.com/MatthijsVer/company-manager/internal/infrastructure/http/middleware"
)

// HandleSuccess sends a JSON success envelope
func HandleSuccess(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// HandleError maps an error to its JSON error envelope. AppErrors carry
// their own HTTP status and code; anything else is a 500.
func HandleError(c echo.Context, logger *zap.Logger, err error) error {
	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		appErr = errors.ErrInternal(err)
	}

	if logger != nil && appErr.HTTPCode >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.Request().URL.Path),
			zap.String("code", appErr.Code.String()),
			zap.Error(err),
		)
	}

	body := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":    appErr.Code.String(),
			"message": appErr.Message,
		},
	}
	if len(appErr.Details) > 0 {
		body["error"].(map[string]interface{})["details"] = appErr.Details
	}

	return c.JSON(appErr.HTTPCode, body)
}

// callerScope pulls the authenticated caller out of the request
func callerScope(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	orgID, ok := middleware.OrganizationID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, errors.ErrUnauthenticated()
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, errors.ErrUnauthenticated()
	}
	return orgID, userID, nil
}

// requestScope pulls the authenticated caller and the path resource id out
// of the request
func requestScope(c echo.Context) (uuid.UUID, uuid.UUID, uuid.UUID, error) {
	orgID, userID, err := callerScope(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, err
	}
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, errors.ErrInvalidArgument("invalid id")
	}
	return orgID, userID, resourceID, nil
}
