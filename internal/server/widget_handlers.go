package server

import (
	"leanvote/internal/models"
	"leanvote/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetWidgetPosts handles GET /api/widget/:slug/posts
// @Summary Get the embeddable widget feed for a board
// @Description Returns the newest posts, capped at five
// @Tags widget
// @Produce json
// @Param slug path string true "Board slug"
// @Success 200 {object} service.WidgetFeed
// @Failure 404 {object} models.ErrorResponse
// @Router /widget/{slug}/posts [get]
func (s *Server) GetWidgetPosts(c *fiber.Ctx) error {
	feed, err := s.widgetService.ListWidgetPosts(c.Context(), c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// SubmitWidgetPost handles POST /api/widget/:slug/posts
// @Summary Submit anonymous feedback from the embedded widget
// @Description Long fields are truncated, unknown types map to "feature"
// @Tags widget
// @Accept json
// @Produce json
// @Param slug path string true "Board slug"
// @Param request body object{title=string,description=string,type=string} true "Submission"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /widget/{slug}/posts [post]
func (s *Server) SubmitWidgetPost(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.widgetService.Submit(c.Context(), service.WidgetSubmissionInput{
		BoardSlug:   c.Params("slug"),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}
