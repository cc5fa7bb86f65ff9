package server

import (
	"leanvote/internal/models"
	"leanvote/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateProject handles POST /api/projects
// @Summary Create a board
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,slug=string,company_name=string,company_url=string} true "Board details"
// @Success 201 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		CompanyName string `json:"company_name"`
		CompanyURL  string `json:"company_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.CreateProject(c.Context(), service.CreateProjectInput{
		OwnerID:     userID,
		Name:        req.Name,
		Slug:        req.Slug,
		CompanyName: req.CompanyName,
		CompanyURL:  req.CompanyURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProjects handles GET /api/projects
// @Summary List own boards
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Project
// @Router /projects [get]
func (s *Server) GetProjects(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	projects, err := s.projectService.ListProjects(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(projects)
}

// GetProject handles GET /api/projects/:id
// @Summary Get one of your boards
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id} [get]
func (s *Server) GetProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projectService.GetProject(c.Context(), userID, projectID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
// @Summary Update a board
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body object{name=string,company_name=string,company_url=string} true "Fields to update"
// @Success 200 {object} models.Project
// @Router /projects/{id} [put]
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        string `json:"name"`
		CompanyName string `json:"company_name"`
		CompanyURL  string `json:"company_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	project, err := s.projectService.UpdateProject(c.Context(), service.UpdateProjectInput{
		OwnerID:     userID,
		ProjectID:   projectID,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		CompanyURL:  req.CompanyURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// SetDefaultProject handles POST /api/projects/:id/default
// @Summary Make a board the default
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} object{message=string}
// @Router /projects/{id}/default [post]
func (s *Server) SetDefaultProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.projectService.SetDefaultProject(c.Context(), userID, projectID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Default board updated"})
}

// DeleteProject handles DELETE /api/projects/:id
// @Summary Delete a board
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /projects/{id} [delete]
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	projectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.projectService.DeleteProject(c.Context(), userID, projectID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Board deleted"})
}
