package service

import (
	"context"
	"strings"

	"leanvote/internal/cache"
	"leanvote/internal/featureflags"
	"leanvote/internal/models"
	"leanvote/internal/observability"
	"leanvote/internal/repository"
)

// widgetFeedLimit caps the embeddable widget's feed at the newest posts.
const widgetFeedLimit = 5

// WidgetService backs the embeddable feedback widget: a capped public feed
// and anonymous submissions, both keyed by board slug.
type WidgetService struct {
	projectRepo repository.ProjectRepository
	postRepo    repository.PostRepository
	flags       *featureflags.Manager
}

type WidgetSubmissionInput struct {
	BoardSlug   string
	Title       string
	Description string
	// Type is the widget's submission type; unknown values map to "feature".
	Type string
}

// WidgetPost is the trimmed feed item served to embedded widgets. Internal
// fields like the board owner ID never leave the API here.
type WidgetPost struct {
	ID       uint              `json:"id"`
	Title    string            `json:"title"`
	Category string            `json:"category"`
	Status   models.PostStatus `json:"status"`
	Votes    int               `json:"votes"`
}

// WidgetFeed is the widget feed response body.
type WidgetFeed struct {
	Posts []WidgetPost `json:"posts"`
}

func NewWidgetService(projectRepo repository.ProjectRepository, postRepo repository.PostRepository, flags *featureflags.Manager) *WidgetService {
	return &WidgetService{
		projectRepo: projectRepo,
		postRepo:    postRepo,
		flags:       flags,
	}
}

// ListWidgetPosts returns the board's newest posts, capped and trimmed for
// the widget.
func (s *WidgetService) ListWidgetPosts(ctx context.Context, boardSlug string) (*WidgetFeed, error) {
	slug := NormalizeLookup(boardSlug)
	project, err := s.projectRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	feed := &WidgetFeed{Posts: []WidgetPost{}}
	err = cache.Aside(ctx, cache.WidgetFeedKey(slug), feed, cache.WidgetFeedTTL, func() error {
		posts, fetchErr := s.postRepo.ListNewest(ctx, project.OwnerID, widgetFeedLimit)
		if fetchErr != nil {
			return fetchErr
		}
		for _, p := range posts {
			feed.Posts = append(feed.Posts, WidgetPost{
				ID:       p.ID,
				Title:    p.Title,
				Category: p.Category,
				Status:   p.Status,
				Votes:    p.VotesCount,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// Submit records an anonymous widget submission. Titles and descriptions are
// truncated rather than rejected so embedded forms never error on length.
func (s *WidgetService) Submit(ctx context.Context, in WidgetSubmissionInput) (*models.Post, error) {
	if s.flags != nil && !s.flags.Enabled("widget_submissions", 0) {
		return nil, models.NewForbiddenError("Widget submissions are currently disabled")
	}

	title := truncateRunes(strings.TrimSpace(in.Title), maxPostTitleLen)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	description := truncateRunes(strings.TrimSpace(in.Description), maxPostDescriptionLen)

	slug := NormalizeLookup(in.BoardSlug)
	project, err := s.projectRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	category := models.NormalizeCategory(strings.ToLower(strings.TrimSpace(in.Type)))
	post := &models.Post{
		Title:        title,
		Description:  description,
		Category:     category,
		Status:       models.PostStatusOpen,
		BoardOwnerID: project.OwnerID,
		ProjectID:    &project.ID,
		AuthorID:     0,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	cache.InvalidateBoard(ctx, slug)
	observability.WidgetSubmissions.WithLabelValues(category).Inc()

	return s.postRepo.GetByID(ctx, post.ID, 0)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
