package controllers

import (
	"net/http"

	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/labstack/echo/v4"
)

// ProfileController handles profile-related HTTP requests.
type ProfileController struct {
	BaseController
}

// NewProfileController creates a new ProfileController instance.
func NewProfileController(identityService *logics.IdentityService) *ProfileController {
	return &ProfileController{
		BaseController: NewBaseController(identityService),
	}
}

// GetProfile returns the caller's own profile.
// GET /profile
func (pc *ProfileController) GetProfile(c echo.Context) error {
	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	profile, err := pc.IdentityService.Profile(c.Request().Context(), *principal)
	if err != nil {
		return pc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies a partial update to the caller's own profile.
// PUT /profile
func (pc *ProfileController) UpdateProfile(c echo.Context) error {
	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	var updates models.ProfileUpdate
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	profile, err := pc.IdentityService.UpdateProfile(c.Request().Context(), *principal, updates)
	if err != nil {
		return pc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}
