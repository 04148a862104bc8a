package controllers

import (
	"net/http"

	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/labstack/echo/v4"
)

// AdminController handles account provisioning and admin dashboard listings.
type AdminController struct {
	BaseController
	provisioningService *logics.ProvisioningService
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(provisioningService *logics.ProvisioningService, identityService *logics.IdentityService) *AdminController {
	return &AdminController{
		BaseController:      NewBaseController(identityService),
		provisioningService: provisioningService,
	}
}

// CreateUser provisions a donor or case-manager account and sends the
// invitation email.
// POST /admin/users
func (ac *AdminController) CreateUser(c echo.Context) error {
	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	var input struct {
		Email    string          `json:"email"`
		Name     string          `json:"name"`
		Role     string          `json:"role"`
		RoleData models.RoleData `json:"role_data"`
	}
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	role, err := models.ParseRole(input.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	profile, err := ac.provisioningService.CreateUserWithInvitation(
		c.Request().Context(), *principal, input.Email, input.Name, role, input.RoleData,
	)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

// DeleteUser removes a donor or case-manager account.
// DELETE /admin/users/:id
func (ac *AdminController) DeleteUser(c echo.Context) error {
	profileID := c.Param("id")
	if profileID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "profile id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	if err := ac.provisioningService.DeleteUser(c.Request().Context(), *principal, profileID); err != nil {
		return ac.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListDonors returns every donor account.
// GET /admin/donors
func (ac *AdminController) ListDonors(c echo.Context) error {
	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	donors, err := ac.provisioningService.ListDonors(c.Request().Context(), *principal)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, donors)
}

// ListCaseManagers returns every case-manager account.
// GET /admin/case-managers
func (ac *AdminController) ListCaseManagers(c echo.Context) error {
	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	cms, err := ac.provisioningService.ListCaseManagers(c.Request().Context(), *principal)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, cms)
}
