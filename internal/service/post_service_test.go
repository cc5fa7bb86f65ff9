package service

import (
	"context"
	"testing"
	"time"

	"leanvote/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entitledOwner(id uint) *models.User {
	return &models.User{
		ID:                id,
		UserType:          models.UserTypeAdmin,
		HasLifetimeAccess: true,
	}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopUserRepo())
	ctx := context.Background()

	t.Run("Empty Title", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, BoardOwnerID: 1})
		assertValidationError(t, err)
	})

	t.Run("Title Too Long", func(t *testing.T) {
		long := make([]byte, 101)
		for i := range long {
			long[i] = 'a'
		}
		_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, BoardOwnerID: 1, Title: string(long)})
		assertValidationError(t, err)
	})

	t.Run("Unknown Category Defaults To Feature", func(t *testing.T) {
		repo := noopPostRepo()
		var created *models.Post
		repo.createFn = func(_ context.Context, p *models.Post) error {
			created = p
			return nil
		}
		svc := NewPostService(repo, noopUserRepo())

		_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, BoardOwnerID: 1, Title: "Dark mode", Category: "rant"})
		require.NoError(t, err)
		assert.Equal(t, models.PostCategoryFeature, created.Category)
		assert.Equal(t, models.PostStatusOpen, created.Status)
	})
}

func TestPostService_ToggleVote(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds Vote When None Exists", func(t *testing.T) {
		repo := noopPostRepo()
		voted := false
		repo.hasVotedFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }
		repo.voteFn = func(_ context.Context, userID, postID uint) (bool, error) {
			voted = true
			return true, nil
		}
		repo.unvoteFn = func(_ context.Context, _, _ uint) (bool, error) {
			t.Fatal("unvote must not be called when no vote exists")
			return false, nil
		}
		svc := NewPostService(repo, noopUserRepo())

		_, err := svc.ToggleVote(ctx, 2, 1)
		require.NoError(t, err)
		assert.True(t, voted)
	})

	t.Run("Removes Vote When One Exists", func(t *testing.T) {
		repo := noopPostRepo()
		unvoted := false
		repo.hasVotedFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
		repo.unvoteFn = func(_ context.Context, _, _ uint) (bool, error) {
			unvoted = true
			return true, nil
		}
		repo.voteFn = func(_ context.Context, _, _ uint) (bool, error) {
			t.Fatal("vote must not be called when a vote already exists")
			return false, nil
		}
		svc := NewPostService(repo, noopUserRepo())

		_, err := svc.ToggleVote(ctx, 2, 1)
		require.NoError(t, err)
		assert.True(t, unvoted)
	})

	t.Run("Missing Post", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := NewPostService(repo, noopUserRepo())

		_, err := svc.ToggleVote(ctx, 2, 99)
		require.Error(t, err)
	})
}

func TestPostService_UpdatePostStatus(t *testing.T) {
	ctx := context.Background()

	ownedPost := func(status models.PostStatus) *models.Post {
		return &models.Post{ID: 1, BoardOwnerID: 1, Status: status}
	}

	ownerRepo := func() *userRepoStub {
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return entitledOwner(id), nil
		}
		return repo
	}

	t.Run("Invalid Target Status", func(t *testing.T) {
		svc := NewPostService(noopPostRepo(), ownerRepo())
		_, err := svc.UpdatePostStatus(ctx, 1, 1, "Open")
		assertValidationError(t, err)
	})

	t.Run("Non Owner Forbidden", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, BoardOwnerID: 99, Status: models.PostStatusPlanned}, nil
		}
		svc := NewPostService(repo, ownerRepo())

		_, err := svc.UpdatePostStatus(ctx, 1, 1, models.PostStatusComplete)
		assertForbiddenError(t, err)
	})

	t.Run("Open Post Rejected", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return ownedPost(models.PostStatusOpen), nil
		}
		svc := NewPostService(repo, ownerRepo())

		_, err := svc.UpdatePostStatus(ctx, 1, 1, models.PostStatusPlanned)
		assertValidationError(t, err)
	})

	t.Run("Same Status Is A NoOp", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return ownedPost(models.PostStatusPlanned), nil
		}
		repo.updateStatusFn = func(_ context.Context, _ uint, _ models.PostStatus) error {
			t.Fatal("no write should happen for a same-status move")
			return nil
		}
		svc := NewPostService(repo, ownerRepo())

		post, err := svc.UpdatePostStatus(ctx, 1, 1, models.PostStatusPlanned)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusPlanned, post.Status)
	})

	t.Run("Expired Trial Forbidden", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return ownedPost(models.PostStatusPlanned), nil
		}
		userRepo := noopUserRepo()
		expired := time.Now().Add(-24 * time.Hour)
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, UserType: models.UserTypeAdmin, TrialEndsAt: &expired}, nil
		}
		svc := NewPostService(repo, userRepo)

		_, err := svc.UpdatePostStatus(ctx, 1, 1, models.PostStatusComplete)
		assertForbiddenError(t, err)
	})

	t.Run("Valid Move Persists", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return ownedPost(models.PostStatusPlanned), nil
		}
		var written models.PostStatus
		repo.updateStatusFn = func(_ context.Context, _ uint, status models.PostStatus) error {
			written = status
			return nil
		}
		svc := NewPostService(repo, ownerRepo())

		_, err := svc.UpdatePostStatus(ctx, 1, 1, models.PostStatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusInProgress, written)
	})
}

func TestPostService_PromoteToRoadmap(t *testing.T) {
	ctx := context.Background()

	ownerRepo := func() *userRepoStub {
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return entitledOwner(id), nil
		}
		return repo
	}

	t.Run("Promotes Open Post To Planned By Default", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, BoardOwnerID: 1, Status: models.PostStatusOpen}, nil
		}
		var written models.PostStatus
		repo.updateStatusFn = func(_ context.Context, _ uint, status models.PostStatus) error {
			written = status
			return nil
		}
		svc := NewPostService(repo, ownerRepo())

		_, err := svc.PromoteToRoadmap(ctx, 1, 1, PromotePostInput{})
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusPlanned, written)
	})

	t.Run("Rewrites Title And Description", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, BoardOwnerID: 1, Status: models.PostStatusOpen, Title: "dark mode pls!!"}, nil
		}
		var saved *models.Post
		repo.updateFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		repo.updateStatusFn = func(_ context.Context, _ uint, _ models.PostStatus) error {
			t.Fatal("rewrite promotions must go through Update")
			return nil
		}
		svc := NewPostService(repo, ownerRepo())

		_, err := svc.PromoteToRoadmap(ctx, 1, 1, PromotePostInput{
			Target:      models.PostStatusInProgress,
			Title:       "Dark mode",
			Description: "Theme toggle in settings",
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, models.PostStatusInProgress, saved.Status)
		assert.Equal(t, "Dark mode", saved.Title)
		assert.Equal(t, "Theme toggle in settings", saved.Description)
	})

	t.Run("Rewrite Title Too Long", func(t *testing.T) {
		svc := NewPostService(noopPostRepo(), ownerRepo())

		_, err := svc.PromoteToRoadmap(ctx, 1, 1, PromotePostInput{
			Title: string(make([]byte, 101)),
		})
		assertValidationError(t, err)
	})

	t.Run("Already On Roadmap", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, BoardOwnerID: 1, Status: models.PostStatusComplete}, nil
		}
		svc := NewPostService(repo, ownerRepo())

		_, err := svc.PromoteToRoadmap(ctx, 1, 1, PromotePostInput{Target: models.PostStatusPlanned})
		assertValidationError(t, err)
	})
}

func TestPostService_ListRoadmap_GroupsColumns(t *testing.T) {
	repo := noopPostRepo()
	repo.listRoadmapFn = func(_ context.Context, _, _ uint) ([]*models.Post, error) {
		return []*models.Post{
			{ID: 1, Status: models.PostStatusPlanned},
			{ID: 2, Status: models.PostStatusComplete},
			{ID: 3, Status: models.PostStatusPlanned},
		}, nil
	}
	svc := NewPostService(repo, noopUserRepo())

	columns, err := svc.ListRoadmap(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, columns[models.PostStatusPlanned], 2)
	assert.Len(t, columns[models.PostStatusInProgress], 0)
	assert.Len(t, columns[models.PostStatusComplete], 1)
}
