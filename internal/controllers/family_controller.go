package controllers

import (
	"net/http"

	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/labstack/echo/v4"
)

// FamilyController handles family and child HTTP requests.
type FamilyController struct {
	BaseController
	familyService *logics.FamilyService
}

// NewFamilyController creates a new FamilyController instance.
func NewFamilyController(familyService *logics.FamilyService, identityService *logics.IdentityService) *FamilyController {
	return &FamilyController{
		BaseController: NewBaseController(identityService),
		familyService:  familyService,
	}
}

// ListFamilies returns the families visible to the caller, optionally filtered
// by status.
// GET /families?status=active
func (fc *FamilyController) ListFamilies(c echo.Context) error {
	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	var status *models.FamilyStatus
	if raw := c.QueryParam("status"); raw != "" {
		parsed, err := models.ParseFamilyStatus(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		status = &parsed
	}

	families, err := fc.familyService.ListFamilies(c.Request().Context(), *principal, status)
	if err != nil {
		return fc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, families)
}

// GetFamily returns one family with its children.
// GET /families/:id
func (fc *FamilyController) GetFamily(c echo.Context) error {
	familyID := c.Param("id")
	if familyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family id is required"})
	}

	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	family, err := fc.familyService.GetFamily(c.Request().Context(), *principal, familyID)
	if err != nil {
		return fc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, family)
}

// CreateFamily inserts a new family.
// POST /families
func (fc *FamilyController) CreateFamily(c echo.Context) error {
	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	var family models.Family
	if err := c.Bind(&family); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if family.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	created, err := fc.familyService.CreateFamily(c.Request().Context(), *principal, &family)
	if err != nil {
		return fc.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateFamily applies a partial update to a family.
// PUT /families/:id
func (fc *FamilyController) UpdateFamily(c echo.Context) error {
	familyID := c.Param("id")
	if familyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family id is required"})
	}

	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	var updates models.FamilyUpdate
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	family, err := fc.familyService.UpdateFamily(c.Request().Context(), *principal, familyID, updates)
	if err != nil {
		return fc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, family)
}

// GetChild returns one child.
// GET /children/:id
func (fc *FamilyController) GetChild(c echo.Context) error {
	childID := c.Param("id")
	if childID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "child id is required"})
	}

	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	child, err := fc.familyService.GetChild(c.Request().Context(), *principal, childID)
	if err != nil {
		return fc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, child)
}

// CreateChild adds a child to a family.
// POST /families/:id/children
func (fc *FamilyController) CreateChild(c echo.Context) error {
	familyID := c.Param("id")
	if familyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family id is required"})
	}

	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	var child models.Child
	if err := c.Bind(&child); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	child.FamilyID = familyID
	if child.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	created, err := fc.familyService.CreateChild(c.Request().Context(), *principal, &child)
	if err != nil {
		return fc.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateChild applies a partial update to a child.
// PUT /children/:id
func (fc *FamilyController) UpdateChild(c echo.Context) error {
	childID := c.Param("id")
	if childID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "child id is required"})
	}

	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	var updates models.ChildUpdate
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	child, err := fc.familyService.UpdateChild(c.Request().Context(), *principal, childID, updates)
	if err != nil {
		return fc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, child)
}

// DeleteFamily removes a family and its dependent rows. Admin only.
// DELETE /families/:id
func (fc *FamilyController) DeleteFamily(c echo.Context) error {
	familyID := c.Param("id")
	if familyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family id is required"})
	}

	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	if err := fc.familyService.DeleteFamily(c.Request().Context(), *principal, familyID); err != nil {
		return fc.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteChild removes a child from its family.
// DELETE /children/:id
func (fc *FamilyController) DeleteChild(c echo.Context) error {
	childID := c.Param("id")
	if childID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "child id is required"})
	}

	principal, err := fc.PrincipalFromContext(c)
	if err != nil {
		return fc.RespondError(c, err)
	}

	if err := fc.familyService.DeleteChild(c.Request().Context(), *principal, childID); err != nil {
		return fc.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
