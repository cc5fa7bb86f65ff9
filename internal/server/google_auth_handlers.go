package server

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"leanvote/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const oauthStateCookie = "oauth_state"

// GoogleLogin handles GET /api/auth/google/login
// @Summary Google OAuth login
// @Description Initiate the Google OAuth login flow
// @Tags auth
// @Produce json
// @Success 200 {object} object{auth_url=string,state=string}
// @Router /auth/google/login [get]
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	if s.oauthConfig == nil {
		return models.RespondWithError(c, fiber.StatusNotImplemented,
			models.NewValidationError("Google login is not configured"))
	}

	// State parameter for CSRF protection. The cookie is the server-side
	// record; Google echoes the same value back on the callback.
	state := uuid.New().String()
	authURL := s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"auth_url": authURL,
		"state":    state,
	})
}

// GoogleCallback handles GET /api/auth/google/callback
// @Summary Google OAuth callback
// @Description Exchange the authorization code and log the user in
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State echoed back from the login step"
// @Success 200 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/google/callback [get]
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	if s.oauthConfig == nil {
		return models.RespondWithError(c, fiber.StatusNotImplemented,
			models.NewValidationError("Google login is not configured"))
	}

	state := c.Query("state")
	expected := c.Cookies(oauthStateCookie)
	if expected == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid OAuth state"))
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Authorization code is required"))
	}

	token, err := s.oauthConfig.Exchange(c.Context(), code)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid authorization code"))
	}

	info, err := s.fetchGoogleUserInfo(c, token.AccessToken)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user, err := s.findOrCreateGoogleUser(c, info)
	if err != nil {
		return respondServiceError(c, err)
	}

	jwtToken, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": jwtToken,
		"user":  user,
	})
}

func (s *Server) fetchGoogleUserInfo(c *fiber.Ctx, accessToken string) (*googleoauth.Userinfo, error) {
	svc, err := googleoauth.NewService(c.Context(), option.WithTokenSource(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})))
	if err != nil {
		return nil, err
	}
	return svc.Userinfo.Get().Do()
}

// findOrCreateGoogleUser links the Google identity to an existing account by
// google_id, then by email, and creates a fresh voter account otherwise.
func (s *Server) findOrCreateGoogleUser(c *fiber.Ctx, info *googleoauth.Userinfo) (*models.User, error) {
	if info.Email == "" {
		return nil, models.NewValidationError("Google account has no email")
	}

	user, err := s.userRepo.GetByGoogleID(c.Context(), info.Id)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = s.userRepo.GetByEmail(c.Context(), info.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if user.GoogleID == "" {
			user.GoogleID = info.Id
			if err := s.userRepo.Update(c.Context(), user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}

	user = &models.User{
		Username: googleUsername(info.Email),
		Email:    info.Email,
		UserType: models.UserTypeVoter,
		GoogleID: info.Id,
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return nil, err
	}
	return user, nil
}

// googleUsername derives a unique-enough username from the email local part.
func googleUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '-'
	}, local)
	if len(local) > 20 {
		local = local[:20]
	}
	return fmt.Sprintf("%s-%s", strings.Trim(local, "-"), uuid.New().String()[:6])
}
