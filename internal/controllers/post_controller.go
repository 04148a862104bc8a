package controllers

import (
	"net/http"

	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/labstack/echo/v4"
)

// PostController handles family post and media HTTP requests.
type PostController struct {
	BaseController
	postService *logics.PostService
}

// NewPostController creates a new PostController instance.
func NewPostController(postService *logics.PostService, identityService *logics.IdentityService) *PostController {
	return &PostController{
		BaseController: NewBaseController(identityService),
		postService:    postService,
	}
}

// ListFamilyPosts returns a family's posts scoped to the caller's role.
// GET /families/:id/posts
func (pc *PostController) ListFamilyPosts(c echo.Context) error {
	familyID := c.Param("id")
	if familyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family id is required"})
	}

	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	posts, err := pc.postService.ListFamilyPosts(c.Request().Context(), *principal, familyID)
	if err != nil {
		return pc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// DonorFeed returns the visible posts across the caller's assigned families.
// GET /feed
func (pc *PostController) DonorFeed(c echo.Context) error {
	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	posts, err := pc.postService.DonorFeed(c.Request().Context(), *principal)
	if err != nil {
		return pc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost returns one post.
// GET /posts/:id
func (pc *PostController) GetPost(c echo.Context) error {
	postID := c.Param("id")
	if postID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "post id is required"})
	}

	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	post, err := pc.postService.GetPost(c.Request().Context(), *principal, postID)
	if err != nil {
		return pc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost adds a post to a family.
// POST /families/:id/posts
func (pc *PostController) CreatePost(c echo.Context) error {
	familyID := c.Param("id")
	if familyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "family id is required"})
	}

	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	var post models.Post
	if err := c.Bind(&post); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	post.FamilyID = familyID
	if post.Body == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "body is required"})
	}

	created, err := pc.postService.CreatePost(c.Request().Context(), *principal, &post)
	if err != nil {
		return pc.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdatePost applies a partial update to a post.
// PUT /posts/:id
func (pc *PostController) UpdatePost(c echo.Context) error {
	postID := c.Param("id")
	if postID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "post id is required"})
	}

	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	var updates models.PostUpdate
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	post, err := pc.postService.UpdatePost(c.Request().Context(), *principal, postID, updates)
	if err != nil {
		return pc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post and its media.
// DELETE /posts/:id
func (pc *PostController) DeletePost(c echo.Context) error {
	postID := c.Param("id")
	if postID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "post id is required"})
	}

	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	if err := pc.postService.DeletePost(c.Request().Context(), *principal, postID); err != nil {
		return pc.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AttachMedia uploads an attachment and links it to the post.
// POST /posts/:id/media
func (pc *PostController) AttachMedia(c echo.Context) error {
	postID := c.Param("id")
	if postID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "post id is required"})
	}

	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to open uploaded file"})
	}

	media, err := pc.postService.AttachMedia(
		c.Request().Context(), *principal, postID, file, fileHeader, c.FormValue("caption"),
	)
	if err != nil {
		return pc.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, media)
}

// DetachMedia removes an attachment from a post.
// DELETE /posts/:id/media/:mediaID
func (pc *PostController) DetachMedia(c echo.Context) error {
	postID := c.Param("id")
	mediaID := c.Param("mediaID")
	if postID == "" || mediaID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "post id and media id are required"})
	}

	principal, err := pc.PrincipalFromContext(c)
	if err != nil {
		return pc.RespondError(c, err)
	}

	if err := pc.postService.DetachMedia(c.Request().Context(), *principal, postID, mediaID); err != nil {
		return pc.RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
