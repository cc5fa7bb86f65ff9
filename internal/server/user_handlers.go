package server

import (
	"leanvote/internal/models"
	"leanvote/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get own profile with the evaluated entitlement
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Profile
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	profile, err := s.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// Onboard handles POST /api/users/me/onboard
// @Summary Onboard as a board owner
// @Description Promote the account to admin, create the default board, start the trial
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{board_name=string,board_slug=string,company_name=string,company_url=string} true "Onboarding details"
// @Success 201 {object} object{user=models.User,project=models.Project}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/onboard [post]
func (s *Server) Onboard(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		BoardName   string `json:"board_name"`
		BoardSlug   string `json:"board_slug"`
		CompanyName string `json:"company_name"`
		CompanyURL  string `json:"company_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, project, err := s.userService.Onboard(c.Context(), service.OnboardInput{
		UserID:      userID,
		BoardName:   req.BoardName,
		BoardSlug:   req.BoardSlug,
		CompanyName: req.CompanyName,
		CompanyURL:  req.CompanyURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"project": project,
	})
}

// GetAccessStatus handles GET /api/users/me/access
// @Summary Get entitlement status
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entitlement.AccessStatus
// @Router /users/me/access [get]
func (s *Server) GetAccessStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status, err := s.userService.GetAccessStatus(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(status)
}

// GetPricing handles GET /api/users/me/pricing
// @Summary Quote the subscription price for the current board count
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entitlement.SubscriptionPrice
// @Router /users/me/pricing [get]
func (s *Server) GetPricing(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	price, err := s.userService.GetPricing(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(price)
}

// UpdateMySettings handles PUT /api/users/me
// @Summary Update profile settings
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string} true "Settings"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMySettings(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateSettings(c.Context(), userID, req.Username)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetFeatureFlags handles GET /api/feature-flags
// @Summary Get evaluated feature flags for the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return c.JSON(s.featureFlags.Snapshot(userID))
}
