// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"leanvote/internal/entitlement"
	"leanvote/internal/models"
	"leanvote/internal/observability"
	"leanvote/internal/repository"
)

const (
	maxPostTitleLen       = 100
	maxPostDescriptionLen = 1000
	maxCommentLen         = 2000
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

type CreatePostInput struct {
	AuthorID     uint
	BoardOwnerID uint
	ProjectID    *uint
	Title        string
	Description  string
	Category     string
}

type ListBoardPostsInput struct {
	BoardOwnerID  uint
	Limit         int
	Offset        int
	CurrentUserID uint
	Sort          string
	Status        models.PostStatus
	Category      string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxPostTitleLen {
		return nil, models.NewValidationError("Title too long (max 100 characters)")
	}
	if len(in.Description) > maxPostDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 1000 characters)")
	}

	post := &models.Post{
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Category:     models.NormalizeCategory(in.Category),
		Status:       models.PostStatusOpen,
		BoardOwnerID: in.BoardOwnerID,
		ProjectID:    in.ProjectID,
		AuthorID:     in.AuthorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.AuthorID)
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *PostService) ListBoardPosts(ctx context.Context, in ListBoardPostsInput) ([]*models.Post, error) {
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	return s.postRepo.ListByBoardOwner(ctx, repository.PostQuery{
		BoardOwnerID:  in.BoardOwnerID,
		CurrentUserID: in.CurrentUserID,
		Status:        in.Status,
		Category:      in.Category,
		Sort:          in.Sort,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
}

// ListRoadmap returns the board's posts grouped into the kanban columns.
func (s *PostService) ListRoadmap(ctx context.Context, boardOwnerID uint, currentUserID uint) (map[models.PostStatus][]*models.Post, error) {
	posts, err := s.postRepo.ListRoadmap(ctx, boardOwnerID, currentUserID)
	if err != nil {
		return nil, err
	}

	columns := make(map[models.PostStatus][]*models.Post, len(models.RoadmapStatuses))
	for _, status := range models.RoadmapStatuses {
		columns[status] = []*models.Post{}
	}
	for _, p := range posts {
		columns[p.Status] = append(columns[p.Status], p)
	}
	return columns, nil
}

// ToggleVote flips the caller's vote on a post. The decision is re-derived
// from the votes table on every call rather than trusting any client-sent
// state, and the insert/delete paths report whether a row actually changed
// so concurrent toggles converge.
func (s *PostService) ToggleVote(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	hasVoted, err := s.postRepo.HasVoted(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	outcome := "noop"
	if hasVoted {
		removed, err := s.postRepo.Unvote(ctx, userID, postID)
		if err != nil {
			return nil, err
		}
		if removed {
			outcome = "unvoted"
		}
	} else {
		inserted, err := s.postRepo.Vote(ctx, userID, postID)
		if err != nil {
			return nil, err
		}
		if inserted {
			outcome = "voted"
		}
	}
	observability.VoteToggles.WithLabelValues(outcome).Inc()

	return s.postRepo.GetByID(ctx, postID, userID)
}

// UpdatePostStatus moves a post between kanban columns. Only the board owner
// may move posts, the owner's entitlement is re-checked on every move, and
// open posts must go through PromoteToRoadmap first.
func (s *PostService) UpdatePostStatus(ctx context.Context, userID, postID uint, status models.PostStatus) (*models.Post, error) {
	if !models.IsRoadmapStatus(status) {
		return nil, models.NewValidationError("Status must be one of Planned, In Progress, Complete")
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.BoardOwnerID != userID {
		return nil, models.NewForbiddenError("Only the board owner can move posts")
	}
	if post.Status == models.PostStatusOpen {
		return nil, models.NewValidationError("Open posts must be promoted to the roadmap first")
	}

	if err := s.requireAccess(ctx, userID); err != nil {
		return nil, err
	}

	// Same-column drops are a no-op, not an error.
	if post.Status == status {
		return post, nil
	}

	if err := s.postRepo.UpdateStatus(ctx, postID, status); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// PromotePostInput carries the promotion target plus optional edits. Raw
// submissions often need a cleanup pass before they are presentable on the
// public roadmap, so promotion doubles as the curation step.
type PromotePostInput struct {
	Target      models.PostStatus
	Title       string
	Description string
}

// PromoteToRoadmap moves an open post onto the roadmap, optionally rewriting
// its title and description. Promotion is one-way; there is no path back
// to Open.
func (s *PostService) PromoteToRoadmap(ctx context.Context, userID, postID uint, in PromotePostInput) (*models.Post, error) {
	target := in.Target
	if target == "" {
		target = models.PostStatusPlanned
	}
	if !models.IsRoadmapStatus(target) {
		return nil, models.NewValidationError("Status must be one of Planned, In Progress, Complete")
	}

	title := strings.TrimSpace(in.Title)
	if len(title) > maxPostTitleLen {
		return nil, models.NewValidationError("Title too long (max 100 characters)")
	}
	description := strings.TrimSpace(in.Description)
	if len(description) > maxPostDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 1000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.BoardOwnerID != userID {
		return nil, models.NewForbiddenError("Only the board owner can promote posts")
	}
	if post.Status != models.PostStatusOpen {
		return nil, models.NewValidationError("Only open posts can be promoted")
	}

	if err := s.requireAccess(ctx, userID); err != nil {
		return nil, err
	}

	if title == "" && description == "" {
		if err := s.postRepo.UpdateStatus(ctx, postID, target); err != nil {
			return nil, err
		}
		return s.postRepo.GetByID(ctx, postID, userID)
	}

	post.Status = target
	if title != "" {
		post.Title = title
	}
	if description != "" {
		post.Description = description
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.BoardOwnerID != userID && post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// requireAccess re-reads the owner profile and evaluates entitlement at the
// current instant, so an expired trial loses management rights immediately.
func (s *PostService) requireAccess(ctx context.Context, userID uint) error {
	owner, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	access := entitlement.Evaluate(owner, s.now())
	if !access.HasAccess {
		return models.NewForbiddenError("Your trial has ended. Upgrade to keep managing your board")
	}
	return nil
}
