package service

import (
	"context"
	"testing"

	"leanvote/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCompanyURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.acme.com", "acme.com"},
		{"http://acme.com/", "acme.com"},
		{"ACME.com", "acme.com"},
		{"www.acme.com/feedback/", "acme.com/feedback"},
		{"acme.com", "acme.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCompanyURL(tt.in), "input %q", tt.in)
	}
}

func TestBoardService_ResolveBoard(t *testing.T) {
	ctx := context.Background()

	t.Run("Lowercases And Trims The Lookup", func(t *testing.T) {
		repo := noopProjectRepo()
		var got string
		repo.resolveBoardFn = func(_ context.Context, query string) (*models.Project, error) {
			got = query
			return &models.Project{ID: 4, Slug: "acme", MatchRank: 1}, nil
		}
		svc := NewBoardService(repo)

		project, err := svc.ResolveBoard(ctx, "  ACME ")
		require.NoError(t, err)
		assert.Equal(t, "acme", got)
		assert.Equal(t, uint(4), project.ID)
	})

	t.Run("URL Lookup Uses Normalized Form", func(t *testing.T) {
		repo := noopProjectRepo()
		var got string
		repo.resolveBoardFn = func(_ context.Context, query string) (*models.Project, error) {
			got = query
			return &models.Project{ID: 4}, nil
		}
		svc := NewBoardService(repo)

		_, err := svc.ResolveBoard(ctx, "https://www.acme.com/")
		require.NoError(t, err)
		assert.Equal(t, "acme.com", got)
	})

	t.Run("Empty Query", func(t *testing.T) {
		svc := NewBoardService(noopProjectRepo())
		_, err := svc.ResolveBoard(ctx, "   ")
		assertValidationError(t, err)
	})

	t.Run("Miss Propagates Not Found", func(t *testing.T) {
		repo := noopProjectRepo()
		repo.resolveBoardFn = func(_ context.Context, query string) (*models.Project, error) {
			return nil, models.NewNotFoundError("Board", query)
		}
		svc := NewBoardService(repo)

		_, err := svc.ResolveBoard(ctx, "ghost")
		require.Error(t, err)
	})
}

func TestBoardService_BoardExists(t *testing.T) {
	ctx := context.Background()

	t.Run("Taken", func(t *testing.T) {
		svc := NewBoardService(noopProjectRepo())
		exists, err := svc.BoardExists(ctx, "Acme")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Available", func(t *testing.T) {
		repo := noopProjectRepo()
		repo.getBySlugFn = func(_ context.Context, slug string) (*models.Project, error) {
			return nil, models.NewNotFoundError("Board", slug)
		}
		svc := NewBoardService(repo)

		exists, err := svc.BoardExists(ctx, "open-slug")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
