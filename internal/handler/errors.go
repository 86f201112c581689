package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/repository"
	"github.com/iliyamo/ecomm-delivery-backend/internal/service"
)

// statusFor maps domain errors to HTTP statuses.  Anything unknown is a
// dependency failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"message": ...}.  Client errors carry a specific
// message; server errors carry fallback and the cause goes only to the log.
func respondError(c echo.Context, log *zap.Logger, err error, fallback string) error {
	status := statusFor(err)
	msg := fallback
	switch status {
	case http.StatusBadRequest:
		msg = err.Error()
	case http.StatusNotFound:
		msg = "Not found"
	case http.StatusConflict:
		msg = "Email already in use"
	case http.StatusUnauthorized:
		msg = "Invalid credentials"
	default:
		log.Error(fallback,
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
	}
	return c.JSON(status, echo.Map{"message": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
}
