package server

import (
	"leanvote/internal/models"
	"leanvote/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create a feedback post on a board
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{board_slug=string,title=string,description=string,category=string} true "Post details"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		BoardSlug   string `json:"board_slug"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectRepo.GetBySlug(c.Context(), service.NormalizeLookup(req.BoardSlug))
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:     userID,
		BoardOwnerID: project.OwnerID,
		ProjectID:    &project.ID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a single post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// ToggleVote handles POST /api/posts/:id/vote
// @Summary Toggle the caller's vote on a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/vote [post]
func (s *Server) ToggleVote(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.ToggleVote(c.Context(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePostStatus handles PUT /api/posts/:id/status
// @Summary Move a post between roadmap columns
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{status=string} true "Target status"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id}/status [put]
func (s *Server) UpdatePostStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePostStatus(c.Context(), userID, postID, models.PostStatus(req.Status))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// PromoteToRoadmap handles POST /api/posts/:id/promote
// @Summary Promote an open post onto the roadmap
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{status=string,title=string,description=string} false "Target column (default Planned) plus optional rewrites"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id}/promote [post]
func (s *Server) PromoteToRoadmap(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status      string `json:"status"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	// Empty body means the default target column with no rewrites.
	_ = c.BodyParser(&req)

	post, err := s.postService.PromoteToRoadmap(c.Context(), userID, postID, service.PromotePostInput{
		Target:      models.PostStatus(req.Status),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), userID, postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}
