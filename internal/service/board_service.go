package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"leanvote/internal/models"
	"leanvote/internal/observability"
	"leanvote/internal/repository"
)

// BoardService answers public board lookups: resolution of a free-form
// identifier to a single board, existence checks, and search.
type BoardService struct {
	projectRepo repository.ProjectRepository
}

func NewBoardService(projectRepo repository.ProjectRepository) *BoardService {
	return &BoardService{projectRepo: projectRepo}
}

// NormalizeLookup lowercases and trims a board lookup term so "ACME" and
// "acme " resolve identically.
func NormalizeLookup(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeCompanyURL reduces a company URL to a comparable form: lowercased
// host plus path, scheme and "www." and trailing slashes stripped.
func NormalizeCompanyURL(raw string) string {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(strings.ToLower(raw)), "www."), "/")
	}
	host := strings.TrimPrefix(parsed.Host, "www.")
	return strings.TrimSuffix(host+parsed.Path, "/")
}

// ResolveBoard maps a free-form identifier (slug, product name, company name,
// or company URL) to exactly one board. Candidates are scored in a single
// ranked query; exact slug matches always win and ties break on the oldest
// board.
func (s *BoardService) ResolveBoard(ctx context.Context, query string) (*models.Project, error) {
	normalized := NormalizeLookup(query)
	if normalized == "" {
		return nil, models.NewValidationError("Board identifier is required")
	}

	// URLs resolve through the same ranked query via the normalized column.
	if strings.Contains(normalized, "://") || strings.Contains(normalized, "www.") {
		normalized = NormalizeCompanyURL(normalized)
	}

	project, err := s.projectRepo.ResolveBoard(ctx, normalized)
	if err != nil {
		observability.BoardLookups.WithLabelValues("miss").Inc()
		return nil, err
	}
	observability.BoardLookups.WithLabelValues("hit").Inc()
	return project, nil
}

// BoardExists reports whether a slug is taken. Used by onboarding to validate
// slug availability without leaking board contents.
func (s *BoardService) BoardExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.projectRepo.GetBySlug(ctx, NormalizeLookup(slug))
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *BoardService) SearchBoards(ctx context.Context, query string, limit int) ([]models.Project, error) {
	normalized := NormalizeLookup(query)
	if normalized == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 || limit > 25 {
		limit = 10
	}
	return s.projectRepo.SearchBoards(ctx, normalized, limit)
}
