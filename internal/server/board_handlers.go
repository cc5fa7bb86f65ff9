package server

import (
	"leanvote/internal/models"
	"leanvote/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ResolveBoard handles GET /api/boards/resolve?q=
// @Summary Resolve a free-form identifier to a board
// @Description Accepts a slug, product name, company name, or company URL
// @Tags boards
// @Produce json
// @Param q query string true "Board identifier"
// @Success 200 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /boards/resolve [get]
func (s *Server) ResolveBoard(c *fiber.Ctx) error {
	project, err := s.boardService.ResolveBoard(c.Context(), c.Query("q"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(project)
}

// BoardExists handles GET /api/boards/exists?slug=
// @Summary Check slug availability
// @Tags boards
// @Produce json
// @Param slug query string true "Board slug"
// @Success 200 {object} object{exists=bool}
// @Router /boards/exists [get]
func (s *Server) BoardExists(c *fiber.Ctx) error {
	exists, err := s.boardService.BoardExists(c.Context(), c.Query("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"exists": exists})
}

// SearchBoards handles GET /api/boards/search?q=
// @Summary Search public boards
// @Tags boards
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Max results (default 10)"
// @Success 200 {array} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Router /boards/search [get]
func (s *Server) SearchBoards(c *fiber.Ctx) error {
	projects, err := s.boardService.SearchBoards(c.Context(), c.Query("q"), c.QueryInt("limit", 10))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(projects)
}

// GetBoardPosts handles GET /api/boards/:slug/posts
// @Summary List a board's posts
// @Tags boards
// @Produce json
// @Param slug path string true "Board slug"
// @Param sort query string false "Sort order: new, top, trending"
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /boards/{slug}/posts [get]
func (s *Server) GetBoardPosts(c *fiber.Ctx) error {
	project, err := s.projectRepo.GetBySlug(c.Context(), service.NormalizeLookup(c.Params("slug")))
	if err != nil {
		return respondServiceError(c, err)
	}

	p := parsePagination(c, 20)
	posts, err := s.postService.ListBoardPosts(c.Context(), service.ListBoardPostsInput{
		BoardOwnerID:  project.OwnerID,
		Limit:         p.Limit,
		Offset:        p.Offset,
		CurrentUserID: currentUserID(c),
		Sort:          c.Query("sort"),
		Status:        models.PostStatus(c.Query("status")),
		Category:      c.Query("category"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetRoadmap handles GET /api/boards/:slug/roadmap
// @Summary Get a board's roadmap grouped into kanban columns
// @Tags boards
// @Produce json
// @Param slug path string true "Board slug"
// @Success 200 {object} map[string][]models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /boards/{slug}/roadmap [get]
func (s *Server) GetRoadmap(c *fiber.Ctx) error {
	project, err := s.projectRepo.GetBySlug(c.Context(), service.NormalizeLookup(c.Params("slug")))
	if err != nil {
		return respondServiceError(c, err)
	}

	columns, err := s.postService.ListRoadmap(c.Context(), project.OwnerID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(columns)
}

// GetPublishedChangelog handles GET /api/boards/:slug/changelog
// @Summary Get a board's published changelog entries
// @Tags boards
// @Produce json
// @Param slug path string true "Board slug"
// @Success 200 {array} models.ChangelogEntry
// @Failure 404 {object} models.ErrorResponse
// @Router /boards/{slug}/changelog [get]
func (s *Server) GetPublishedChangelog(c *fiber.Ctx) error {
	entries, err := s.changelogService.ListPublished(c.Context(), c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entries)
}
