package controllers

import (
	"net/http"

	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/labstack/echo/v4"
)

// UpdateRequestController handles the update-request workflow HTTP requests.
type UpdateRequestController struct {
	BaseController
	updateRequestService *logics.UpdateRequestService
}

// NewUpdateRequestController creates a new UpdateRequestController instance.
func NewUpdateRequestController(updateRequestService *logics.UpdateRequestService, identityService *logics.IdentityService) *UpdateRequestController {
	return &UpdateRequestController{
		BaseController:       NewBaseController(identityService),
		updateRequestService: updateRequestService,
	}
}

// Submit files a new request for news about a family.
// POST /update-requests
func (uc *UpdateRequestController) Submit(c echo.Context) error {
	principal, err := uc.PrincipalFromContext(c)
	if err != nil {
		return uc.RespondError(c, err)
	}

	var input struct {
		FamilyID    string `json:"family_id"`
		RequestText string `json:"request_text"`
	}
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if input.FamilyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family_id is required"})
	}

	req, err := uc.updateRequestService.Submit(c.Request().Context(), *principal, input.FamilyID, input.RequestText)
	if err != nil {
		return uc.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

// Claim takes ownership of a pending request.
// POST /update-requests/:id/claim
func (uc *UpdateRequestController) Claim(c echo.Context) error {
	requestID := c.Param("id")
	if requestID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "request id is required"})
	}

	principal, err := uc.PrincipalFromContext(c)
	if err != nil {
		return uc.RespondError(c, err)
	}

	req, err := uc.updateRequestService.Claim(c.Request().Context(), *principal, requestID)
	if err != nil {
		return uc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// Resolve completes an in-progress request, optionally linking the responding
// post.
// POST /update-requests/:id/resolve
func (uc *UpdateRequestController) Resolve(c echo.Context) error {
	requestID := c.Param("id")
	if requestID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "request id is required"})
	}

	principal, err := uc.PrincipalFromContext(c)
	if err != nil {
		return uc.RespondError(c, err)
	}

	var input struct {
		RespondedPostID *string `json:"responded_post_id"`
	}
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	req, err := uc.updateRequestService.Resolve(c.Request().Context(), *principal, requestID, input.RespondedPostID)
	if err != nil {
		return uc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// List returns the requests visible to the caller: their own for donors, their
// managed families' for case managers.
// GET /update-requests
func (uc *UpdateRequestController) List(c echo.Context) error {
	principal, err := uc.PrincipalFromContext(c)
	if err != nil {
		return uc.RespondError(c, err)
	}

	var reqs []models.UpdateRequest
	switch principal.Role {
	case models.RoleDonor:
		reqs, err = uc.updateRequestService.ListForDonor(c.Request().Context(), *principal)
	default:
		reqs, err = uc.updateRequestService.ListForCaseManager(c.Request().Context(), *principal)
	}
	if err != nil {
		return uc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, reqs)
}
