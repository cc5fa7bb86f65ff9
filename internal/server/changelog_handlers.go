package server

import (
	"leanvote/internal/models"
	"leanvote/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateChangelogEntry handles POST /api/projects/:id/changelog
// @Summary Create a changelog entry
// @Tags changelog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body object{title=string,body=string,publish=bool} true "Entry"
// @Success 201 {object} models.ChangelogEntry
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /projects/{id}/changelog [post]
func (s *Server) CreateChangelogEntry(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Body    string `json:"body"`
		Publish bool   `json:"publish"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.changelogService.CreateEntry(c.Context(), service.ChangelogEntryInput{
		OwnerID:   userID,
		ProjectID: projectID,
		Title:     req.Title,
		Body:      req.Body,
		Publish:   req.Publish,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetAllChangelogEntries handles GET /api/projects/:id/changelog
// @Summary List all changelog entries including drafts
// @Tags changelog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {array} models.ChangelogEntry
// @Failure 403 {object} models.ErrorResponse
// @Router /projects/{id}/changelog [get]
func (s *Server) GetAllChangelogEntries(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	entries, err := s.changelogService.ListAll(c.Context(), userID, projectID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entries)
}

// PublishChangelogEntry handles POST /api/changelog/:id/publish
// @Summary Publish a draft entry
// @Tags changelog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} models.ChangelogEntry
// @Failure 403 {object} models.ErrorResponse
// @Router /changelog/{id}/publish [post]
func (s *Server) PublishChangelogEntry(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	entryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	entry, err := s.changelogService.Publish(c.Context(), userID, entryID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entry)
}

// UpdateChangelogEntry handles PUT /api/changelog/:id
// @Summary Update a changelog entry
// @Tags changelog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Param request body object{title=string,body=string} true "Fields to update"
// @Success 200 {object} models.ChangelogEntry
// @Failure 403 {object} models.ErrorResponse
// @Router /changelog/{id} [put]
func (s *Server) UpdateChangelogEntry(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	entryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.changelogService.UpdateEntry(c.Context(), userID, entryID, req.Title, req.Body)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entry)
}

// DeleteChangelogEntry handles DELETE /api/changelog/:id
// @Summary Delete a changelog entry
// @Tags changelog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /changelog/{id} [delete]
func (s *Server) DeleteChangelogEntry(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	entryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.changelogService.DeleteEntry(c.Context(), userID, entryID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Entry deleted"})
}
