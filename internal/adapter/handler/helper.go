package handler

import (
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkline-team/inkline/errors"
	"github.com/inkline-team/inkline/internal/adapter/dto/common"
	usecaseErrors "github.com/inkline-team/inkline/internal/usecase/errors"
)

// RespondError maps an error to a JSON error response. AppErrors carry
// their own status and code; known sentinels are translated; everything
// else is a 500.
func RespondError(c echo.Context, err error) error {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return c.JSON(appErr.HTTPCode, common.ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code.String(),
			Details: appErr.Details,
		})
	}

	switch {
	case stdErrors.Is(err, usecaseErrors.ErrLessonNotFound):
		return RespondError(c, errors.ErrLessonNotFound(c.Param("id")))
	case stdErrors.Is(err, usecaseErrors.ErrSessionRecordNotFound):
		return RespondError(c, errors.ErrNotFound("Session"))
	}

	return RespondError(c, errors.ErrInternal(err))
}

// ExtractToken extracts the tab token from the request. The Authorization
// header wins; websocket clients that cannot set headers fall back to the
// token query parameter.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	return r.URL.Query().Get("token")
}

// GetQueryParam is a helper to get query parameter with a default value
func GetQueryParam(r *http.Request, key, defaultValue string) string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	return value
}
