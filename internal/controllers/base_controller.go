package controllers

import (
	"errors"
	"net/http"

	"amani-server/internal/apperrors"
	"amani-server/internal/logics"
	"amani-server/internal/middlewares"
	"amani-server/internal/models"

	"github.com/labstack/echo/v4"
)

// BaseController provides principal resolution and error mapping shared by all
// controllers.
type BaseController struct {
	IdentityService *logics.IdentityService
}

// NewBaseController creates a new BaseController instance.
func NewBaseController(identityService *logics.IdentityService) BaseController {
	return BaseController{
		IdentityService: identityService,
	}
}

// PrincipalFromContext resolves the authenticated user id set by the JWT
// middleware into a principal. Unknown users fail closed.
func (bc *BaseController) PrincipalFromContext(c echo.Context) (*models.Principal, error) {
	userID, err := middlewares.GetUserIDFromContext(c)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return bc.IdentityService.Resolve(c.Request().Context(), userID)
}

// RespondError maps logics-layer errors onto HTTP statuses. Anything outside
// the known taxonomy becomes a 500 without leaking internals.
func (bc *BaseController) RespondError(c echo.Context, err error) error {
	var validationErr *apperrors.ValidationError
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	case errors.Is(err, apperrors.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, apperrors.ErrReferenceNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, apperrors.ErrDuplicateActiveAssignment):
		return c.JSON(http.StatusConflict, map[string]string{"error": "an active assignment already exists for this pair"})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, map[string]string{"error": "invalid status transition"})
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "upstream service unavailable"})
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
