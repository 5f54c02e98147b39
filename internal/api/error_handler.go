package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aquaflow/servicecrm/internal/api/handler"
	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors once, without leaking details to the client.
//   - Renders the envelope {"error": "<message>", "fields": {...}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, handler.ErrorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	if errors.Is(err, domain.ErrConflict) {
		log.Warn().Err(err).Str("path", c.Path()).Msg("request conflict")
	}
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			return m.code, handler.ErrorResponse{Error: m.err.Error()}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error"}
}

// errorStatuses maps domain sentinels to HTTP codes. Specific conflicts
// come before ErrConflict so the client sees the precise message.
var errorStatuses = []struct {
	err  error
	code int
}{
	{domain.ErrDuplicate, http.StatusConflict},
	{domain.ErrHasDependents, http.StatusConflict},
	{domain.ErrProtectedRole, http.StatusConflict},
	{domain.ErrConflict, http.StatusConflict},

	{domain.ErrCustomerNotFound, http.StatusNotFound},
	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrAssetNotFound, http.StatusNotFound},
	{domain.ErrServiceOrderNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrRoleNotFound, http.StatusNotFound},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrSessionExpired, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrProductNotInstallable, http.StatusUnprocessableEntity},
	{domain.ErrAssetCustomerMismatch, http.StatusUnprocessableEntity},
	{domain.ErrTechnicianIneligible, http.StatusUnprocessableEntity},
	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
}
