package service

import (
	"context"
	"strings"
	"time"

	"leanvote/internal/entitlement"
	"leanvote/internal/models"
	"leanvote/internal/repository"
	"leanvote/internal/validation"
)

// UserService handles onboarding, profile settings, and access status reads.
type UserService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	trialDays   int
	now         func() time.Time
}

type OnboardInput struct {
	UserID      uint
	BoardName   string
	BoardSlug   string
	CompanyName string
	CompanyURL  string
}

func NewUserService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, trialDays int) *UserService {
	return &UserService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		trialDays:   trialDays,
		now:         time.Now,
	}
}

// Profile is the /users/me payload: the account plus its entitlement
// evaluated at read time.
type Profile struct {
	User   *models.User             `json:"user"`
	Access entitlement.AccessStatus `json:"access"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Access: entitlement.Evaluate(user, s.now())}, nil
}

// Onboard promotes a voter to a board-owning admin: it creates the default
// board, starts the trial clock, and mirrors the board slug onto the profile.
func (s *UserService) Onboard(ctx context.Context, in OnboardInput) (*models.User, *models.Project, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user.OnboardedAt != nil {
		return nil, nil, models.NewValidationError("Account is already onboarded")
	}

	boardName := strings.TrimSpace(in.BoardName)
	if boardName == "" {
		return nil, nil, models.NewValidationError("Board name is required")
	}
	slug := NormalizeLookup(in.BoardSlug)
	if err := validation.ValidateBoardSlug(slug); err != nil {
		return nil, nil, err
	}

	now := s.now()
	trialEnd := now.Add(time.Duration(s.trialDays) * 24 * time.Hour)

	user.UserType = models.UserTypeAdmin
	user.TrialEndsAt = &trialEnd
	user.ProjectLimit = entitlement.DefaultProjectLimit
	user.OnboardedAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	project := &models.Project{
		OwnerID:              user.ID,
		Name:                 boardName,
		Slug:                 slug,
		CompanyName:          strings.TrimSpace(in.CompanyName),
		CompanyURL:           strings.TrimSpace(in.CompanyURL),
		CompanyURLNormalized: NormalizeCompanyURL(in.CompanyURL),
		IsDefault:            true,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, nil, err
	}

	// Write-through of the default board slug onto the profile.
	if err := s.projectRepo.SetDefault(ctx, user.ID, project.ID); err != nil {
		return nil, nil, err
	}
	user.BoardSlug = slug

	return user, project, nil
}

// GetAccessStatus evaluates the caller's entitlement at the current instant.
func (s *UserService) GetAccessStatus(ctx context.Context, userID uint) (entitlement.AccessStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return entitlement.AccessStatus{}, err
	}
	return entitlement.Evaluate(user, s.now()), nil
}

// GetPricing quotes the subscription price for the caller's current board count.
func (s *UserService) GetPricing(ctx context.Context, userID uint) (entitlement.SubscriptionPrice, error) {
	count, err := s.projectRepo.CountByOwner(ctx, userID)
	if err != nil {
		return entitlement.SubscriptionPrice{}, err
	}
	if count < 1 {
		count = 1
	}
	return entitlement.SubscriptionPriceFor(int(count)), nil
}

// UpdateSettings changes the mutable profile fields.
func (s *UserService) UpdateSettings(ctx context.Context, userID uint, username string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if trimmed := strings.TrimSpace(username); trimmed != "" && trimmed != user.Username {
		if err := validation.ValidateUsername(trimmed); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByUsername(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, models.NewValidationError("Username is already taken")
		}
		user.Username = trimmed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
