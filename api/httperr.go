package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskdeck-api/domain"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeDomainError maps service failures onto the REST error contract:
// per-field 400s for validation, 404 for absent-or-not-owned, 409 for
// duplicate registration, 401 for login failures.
func writeDomainError(c echo.Context, err error) error {
	var v *domain.ValidationError
	switch {
	case errors.As(err, &v):
		return c.JSON(http.StatusBadRequest, v.Fields)
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrEmailTaken):
		return c.JSON(http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: err.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}
