package service

import (
	"context"
	"strings"
	"time"

	"leanvote/internal/entitlement"
	"leanvote/internal/models"
	"leanvote/internal/repository"
)

// ChangelogService manages release notes. Drafts are visible only to the
// board owner; the public feed lists published entries newest-first.
// Writes re-check the owner's entitlement like every other board-management
// mutation.
type ChangelogService struct {
	changelogRepo repository.ChangelogRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	now           func() time.Time
}

type ChangelogEntryInput struct {
	OwnerID   uint
	ProjectID uint
	Title     string
	Body      string
	Publish   bool
}

func NewChangelogService(changelogRepo repository.ChangelogRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ChangelogService {
	return &ChangelogService{
		changelogRepo: changelogRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		now:           time.Now,
	}
}

func (s *ChangelogService) CreateEntry(ctx context.Context, in ChangelogEntryInput) (*models.ChangelogEntry, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Body is required")
	}

	if err := s.requireOwnership(ctx, in.OwnerID, in.ProjectID); err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, in.OwnerID); err != nil {
		return nil, err
	}

	entry := &models.ChangelogEntry{
		ProjectID: in.ProjectID,
		Title:     title,
		Body:      body,
	}
	if in.Publish {
		now := s.now()
		entry.PublishedAt = &now
	}
	if err := s.changelogRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListPublished returns the public changelog feed for a board slug.
func (s *ChangelogService) ListPublished(ctx context.Context, boardSlug string) ([]models.ChangelogEntry, error) {
	project, err := s.projectRepo.GetBySlug(ctx, NormalizeLookup(boardSlug))
	if err != nil {
		return nil, err
	}
	return s.changelogRepo.ListByProject(ctx, project.ID, true)
}

// ListAll returns every entry including drafts; owner only.
func (s *ChangelogService) ListAll(ctx context.Context, ownerID, projectID uint) ([]models.ChangelogEntry, error) {
	if err := s.requireOwnership(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.changelogRepo.ListByProject(ctx, projectID, false)
}

// Publish stamps a draft with the current time. Publishing an already
// published entry is a no-op.
func (s *ChangelogService) Publish(ctx context.Context, ownerID, entryID uint) (*models.ChangelogEntry, error) {
	entry, err := s.changelogRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, ownerID, entry.ProjectID); err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, ownerID); err != nil {
		return nil, err
	}
	if entry.PublishedAt != nil {
		return entry, nil
	}
	now := s.now()
	entry.PublishedAt = &now
	if err := s.changelogRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ChangelogService) UpdateEntry(ctx context.Context, ownerID, entryID uint, title, body string) (*models.ChangelogEntry, error) {
	entry, err := s.changelogRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, ownerID, entry.ProjectID); err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, ownerID); err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(title); t != "" {
		entry.Title = t
	}
	if b := strings.TrimSpace(body); b != "" {
		entry.Body = b
	}
	if err := s.changelogRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ChangelogService) DeleteEntry(ctx context.Context, ownerID, entryID uint) error {
	entry, err := s.changelogRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, ownerID, entry.ProjectID); err != nil {
		return err
	}
	if err := s.requireAccess(ctx, ownerID); err != nil {
		return err
	}
	return s.changelogRepo.Delete(ctx, entryID)
}

// requireAccess re-reads the owner profile and evaluates entitlement at the
// current instant, so an expired trial loses management rights immediately.
func (s *ChangelogService) requireAccess(ctx context.Context, ownerID uint) error {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if !entitlement.Evaluate(owner, s.now()).HasAccess {
		return models.NewForbiddenError("Your trial has ended. Upgrade to keep managing your board")
	}
	return nil
}

func (s *ChangelogService) requireOwnership(ctx context.Context, ownerID, projectID uint) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != ownerID {
		return models.NewForbiddenError("You do not own this project")
	}
	return nil
}
