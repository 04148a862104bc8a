package controllers

import (
	"net/http"

	"amani-server/internal/logics"

	"github.com/labstack/echo/v4"
)

// AssignmentController handles assignment graph HTTP requests.
type AssignmentController struct {
	BaseController
	assignmentService *logics.AssignmentService
}

// NewAssignmentController creates a new AssignmentController instance.
func NewAssignmentController(assignmentService *logics.AssignmentService, identityService *logics.IdentityService) *AssignmentController {
	return &AssignmentController{
		BaseController:    NewBaseController(identityService),
		assignmentService: assignmentService,
	}
}

// AssignDonor links a donor to a family.
// POST /assignments/donor
func (ac *AssignmentController) AssignDonor(c echo.Context) error {
	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	var input struct {
		DonorID  string `json:"donor_id"`
		FamilyID string `json:"family_id"`
	}
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if input.DonorID == "" || input.FamilyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "donor_id and family_id are required"})
	}

	assignment, err := ac.assignmentService.AssignDonor(c.Request().Context(), *principal, input.DonorID, input.FamilyID)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, assignment)
}

// AssignCaseManager links a case manager to a family.
// POST /assignments/case-manager
func (ac *AssignmentController) AssignCaseManager(c echo.Context) error {
	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	var input struct {
		CaseManagerID string `json:"case_manager_id"`
		FamilyID      string `json:"family_id"`
	}
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if input.CaseManagerID == "" || input.FamilyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "case_manager_id and family_id are required"})
	}

	assignment, err := ac.assignmentService.AssignCaseManager(c.Request().Context(), *principal, input.CaseManagerID, input.FamilyID)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, assignment)
}

// EndDonorAssignment ends a donor assignment and stamps its end date.
// PUT /assignments/donor/:id/end
func (ac *AssignmentController) EndDonorAssignment(c echo.Context) error {
	assignmentID := c.Param("id")
	if assignmentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "assignment id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	assignment, err := ac.assignmentService.EndDonorAssignment(c.Request().Context(), *principal, assignmentID)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, assignment)
}

// PauseDonorAssignment suspends a donor assignment.
// PUT /assignments/donor/:id/pause
func (ac *AssignmentController) PauseDonorAssignment(c echo.Context) error {
	assignmentID := c.Param("id")
	if assignmentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "assignment id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	assignment, err := ac.assignmentService.PauseDonorAssignment(c.Request().Context(), *principal, assignmentID)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, assignment)
}

// ResumeDonorAssignment reactivates a paused donor assignment.
// PUT /assignments/donor/:id/resume
func (ac *AssignmentController) ResumeDonorAssignment(c echo.Context) error {
	assignmentID := c.Param("id")
	if assignmentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "assignment id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	assignment, err := ac.assignmentService.ResumeDonorAssignment(c.Request().Context(), *principal, assignmentID)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, assignment)
}

// RemoveDonorAssignment deletes a donor edge outright.
// DELETE /assignments/donor/:id
func (ac *AssignmentController) RemoveDonorAssignment(c echo.Context) error {
	assignmentID := c.Param("id")
	if assignmentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "assignment id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	if err := ac.assignmentService.RemoveDonorAssignment(c.Request().Context(), *principal, assignmentID); err != nil {
		return ac.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveCaseManagerAssignment deletes a case-manager edge.
// DELETE /assignments/case-manager/:id
func (ac *AssignmentController) RemoveCaseManagerAssignment(c echo.Context) error {
	assignmentID := c.Param("id")
	if assignmentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "assignment id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	if err := ac.assignmentService.RemoveCaseManagerAssignment(c.Request().Context(), *principal, assignmentID); err != nil {
		return ac.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListDonorFamilies returns a donor's assignments.
// GET /donors/:id/families
func (ac *AssignmentController) ListDonorFamilies(c echo.Context) error {
	donorID := c.Param("id")
	if donorID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "donor id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	assignments, err := ac.assignmentService.FamiliesForDonor(c.Request().Context(), *principal, donorID)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, assignments)
}

// ListCaseManagerFamilies returns a case manager's assignments.
// GET /case-managers/:id/families
func (ac *AssignmentController) ListCaseManagerFamilies(c echo.Context) error {
	cmID := c.Param("id")
	if cmID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "case manager id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	assignments, err := ac.assignmentService.FamiliesForCaseManager(c.Request().Context(), *principal, cmID)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, assignments)
}

// ListFamilyDonors returns the donor edges of a family.
// GET /families/:id/donors
func (ac *AssignmentController) ListFamilyDonors(c echo.Context) error {
	familyID := c.Param("id")
	if familyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family id is required"})
	}

	principal, err := ac.PrincipalFromContext(c)
	if err != nil {
		return ac.RespondError(c, err)
	}

	assignments, err := ac.assignmentService.DonorsForFamily(c.Request().Context(), *principal, familyID)
	if err != nil {
		return ac.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, assignments)
}
