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

// ProjectService manages an admin's boards, including the project limit and
// the default-board slug mirror.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

type CreateProjectInput struct {
	OwnerID     uint
	Name        string
	Slug        string
	CompanyName string
	CompanyURL  string
}

type UpdateProjectInput struct {
	OwnerID     uint
	ProjectID   uint
	Name        string
	CompanyName string
	CompanyURL  string
}

func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// CreateProject adds a board for an entitled admin. The first board becomes
// the default and its slug is mirrored onto the owner profile.
func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Project name is required")
	}

	slug := NormalizeLookup(in.Slug)
	if err := validation.ValidateBoardSlug(slug); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if !owner.IsAdmin() {
		return nil, models.NewForbiddenError("Only board owners can create projects")
	}

	access := entitlement.Evaluate(owner, s.now())
	if !access.HasAccess {
		return nil, models.NewForbiddenError("Your trial has ended. Upgrade to create more boards")
	}

	count, err := s.projectRepo.CountByOwner(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if count >= int64(access.ProjectLimit) {
		return nil, models.NewForbiddenError("Project limit reached. Upgrade your plan to add more boards")
	}

	project := &models.Project{
		OwnerID:              in.OwnerID,
		Name:                 name,
		Slug:                 slug,
		CompanyName:          strings.TrimSpace(in.CompanyName),
		CompanyURL:           strings.TrimSpace(in.CompanyURL),
		CompanyURLNormalized: NormalizeCompanyURL(in.CompanyURL),
		IsDefault:            count == 0,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	if project.IsDefault {
		if err := s.projectRepo.SetDefault(ctx, in.OwnerID, project.ID); err != nil {
			return nil, err
		}
	}

	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, ownerID uint) ([]models.Project, error) {
	return s.projectRepo.ListByOwner(ctx, ownerID)
}

func (s *ProjectService) GetProject(ctx context.Context, ownerID, projectID uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, models.NewForbiddenError("You do not own this project")
	}
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(ctx, in.OwnerID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		project.Name = name
	}
	if company := strings.TrimSpace(in.CompanyName); company != "" {
		project.CompanyName = company
	}
	if rawURL := strings.TrimSpace(in.CompanyURL); rawURL != "" {
		project.CompanyURL = rawURL
		project.CompanyURLNormalized = NormalizeCompanyURL(rawURL)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// SetDefaultProject flips which board is the owner's default. The slug mirror
// on the profile is updated in the same transaction as the flag.
func (s *ProjectService) SetDefaultProject(ctx context.Context, ownerID, projectID uint) error {
	return s.projectRepo.SetDefault(ctx, ownerID, projectID)
}

func (s *ProjectService) DeleteProject(ctx context.Context, ownerID, projectID uint) error {
	project, err := s.GetProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}
	if project.IsDefault {
		return models.NewValidationError("The default board cannot be deleted. Make another board the default first")
	}
	return s.projectRepo.Delete(ctx, projectID)
}
