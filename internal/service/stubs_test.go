package service

import (
	"context"
	"errors"
	"testing"

	"leanvote/internal/models"
	"leanvote/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn           func(context.Context, *models.Post) error
	getByIDFn          func(context.Context, uint, uint) (*models.Post, error)
	listByBoardOwnerFn func(context.Context, repository.PostQuery) ([]*models.Post, error)
	listRoadmapFn      func(context.Context, uint, uint) ([]*models.Post, error)
	listNewestFn       func(context.Context, uint, int) ([]*models.Post, error)
	updateFn           func(context.Context, *models.Post) error
	updateStatusFn     func(context.Context, uint, models.PostStatus) error
	deleteFn           func(context.Context, uint) error
	hasVotedFn         func(context.Context, uint, uint) (bool, error)
	countVotesFn       func(context.Context, uint) (int, error)
	voteFn             func(context.Context, uint, uint) (bool, error)
	unvoteFn           func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) ListByBoardOwner(ctx context.Context, q repository.PostQuery) ([]*models.Post, error) {
	return s.listByBoardOwnerFn(ctx, q)
}
func (s *postRepoStub) ListRoadmap(ctx context.Context, boardOwnerID, currentUserID uint) ([]*models.Post, error) {
	return s.listRoadmapFn(ctx, boardOwnerID, currentUserID)
}
func (s *postRepoStub) ListNewest(ctx context.Context, boardOwnerID uint, limit int) ([]*models.Post, error) {
	return s.listNewestFn(ctx, boardOwnerID, limit)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) HasVoted(ctx context.Context, userID, postID uint) (bool, error) {
	return s.hasVotedFn(ctx, userID, postID)
}
func (s *postRepoStub) CountVotes(ctx context.Context, postID uint) (int, error) {
	return s.countVotesFn(ctx, postID)
}
func (s *postRepoStub) Vote(ctx context.Context, userID, postID uint) (bool, error) {
	return s.voteFn(ctx, userID, postID)
}
func (s *postRepoStub) Unvote(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unvoteFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, _, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		listByBoardOwnerFn: func(_ context.Context, _ repository.PostQuery) ([]*models.Post, error) {
			return nil, nil
		},
		listRoadmapFn:  func(_ context.Context, _, _ uint) ([]*models.Post, error) { return nil, nil },
		listNewestFn:   func(_ context.Context, _ uint, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		updateStatusFn: func(_ context.Context, _ uint, _ models.PostStatus) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		hasVotedFn:     func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countVotesFn:   func(_ context.Context, _ uint) (int, error) { return 0, nil },
		voteFn:         func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unvoteFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn                   func(context.Context, uint) (*models.User, error)
	getByEmailFn                func(context.Context, string) (*models.User, error)
	getByUsernameFn             func(context.Context, string) (*models.User, error)
	getByGoogleIDFn             func(context.Context, string) (*models.User, error)
	getByStripeCustomerIDFn     func(context.Context, string) (*models.User, error)
	getByStripeSubscriptionIDFn func(context.Context, string) (*models.User, error)
	createFn                    func(context.Context, *models.User) error
	updateFn                    func(context.Context, *models.User) error
	deleteFn                    func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return s.getByGoogleIDFn(ctx, googleID)
}
func (s *userRepoStub) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	return s.getByStripeCustomerIDFn(ctx, customerID)
}
func (s *userRepoStub) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	return s.getByStripeSubscriptionIDFn(ctx, subscriptionID)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:                   func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:                func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn:             func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByGoogleIDFn:             func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByStripeCustomerIDFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByStripeSubscriptionIDFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:                    func(_ context.Context, _ *models.User) error { return nil },
		updateFn:                    func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:                    func(_ context.Context, _ uint) error { return nil },
	}
}

// projectRepoStub is a stub for repository.ProjectRepository.
type projectRepoStub struct {
	createFn            func(context.Context, *models.Project) error
	getByIDFn           func(context.Context, uint) (*models.Project, error)
	getBySlugFn         func(context.Context, string) (*models.Project, error)
	getDefaultByOwnerFn func(context.Context, uint) (*models.Project, error)
	listByOwnerFn       func(context.Context, uint) ([]models.Project, error)
	countByOwnerFn      func(context.Context, uint) (int64, error)
	updateFn            func(context.Context, *models.Project) error
	deleteFn            func(context.Context, uint) error
	resolveBoardFn      func(context.Context, string) (*models.Project, error)
	searchBoardsFn      func(context.Context, string, int) ([]models.Project, error)
	setDefaultFn        func(context.Context, uint, uint) error
}

func (s *projectRepoStub) Create(ctx context.Context, project *models.Project) error {
	return s.createFn(ctx, project)
}
func (s *projectRepoStub) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	return s.getByIDFn(ctx, id)
}
func (s *projectRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *projectRepoStub) GetDefaultByOwner(ctx context.Context, ownerID uint) (*models.Project, error) {
	return s.getDefaultByOwnerFn(ctx, ownerID)
}
func (s *projectRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *projectRepoStub) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	return s.countByOwnerFn(ctx, ownerID)
}
func (s *projectRepoStub) Update(ctx context.Context, project *models.Project) error {
	return s.updateFn(ctx, project)
}
func (s *projectRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *projectRepoStub) ResolveBoard(ctx context.Context, query string) (*models.Project, error) {
	return s.resolveBoardFn(ctx, query)
}
func (s *projectRepoStub) SearchBoards(ctx context.Context, query string, limit int) ([]models.Project, error) {
	return s.searchBoardsFn(ctx, query, limit)
}
func (s *projectRepoStub) SetDefault(ctx context.Context, ownerID, projectID uint) error {
	return s.setDefaultFn(ctx, ownerID, projectID)
}

func noopProjectRepo() *projectRepoStub {
	return &projectRepoStub{
		createFn:            func(_ context.Context, _ *models.Project) error { return nil },
		getByIDFn:           func(_ context.Context, _ uint) (*models.Project, error) { return &models.Project{}, nil },
		getBySlugFn:         func(_ context.Context, _ string) (*models.Project, error) { return &models.Project{}, nil },
		getDefaultByOwnerFn: func(_ context.Context, _ uint) (*models.Project, error) { return nil, nil },
		listByOwnerFn:       func(_ context.Context, _ uint) ([]models.Project, error) { return nil, nil },
		countByOwnerFn:      func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:            func(_ context.Context, _ *models.Project) error { return nil },
		deleteFn:            func(_ context.Context, _ uint) error { return nil },
		resolveBoardFn:      func(_ context.Context, _ string) (*models.Project, error) { return &models.Project{}, nil },
		searchBoardsFn:      func(_ context.Context, _ string, _ int) ([]models.Project, error) { return nil, nil },
		setDefaultFn:        func(_ context.Context, _, _ uint) error { return nil },
	}
}

// purchaseRepoStub is a stub for repository.PurchaseRepository.
type purchaseRepoStub struct {
	recordFn               func(context.Context, *models.Purchase) (bool, error)
	getByProviderEventIDFn func(context.Context, string) (*models.Purchase, error)
	listByUserFn           func(context.Context, uint, int, int) ([]models.Purchase, error)
}

func (s *purchaseRepoStub) Record(ctx context.Context, purchase *models.Purchase) (bool, error) {
	return s.recordFn(ctx, purchase)
}
func (s *purchaseRepoStub) GetByProviderEventID(ctx context.Context, eventID string) (*models.Purchase, error) {
	return s.getByProviderEventIDFn(ctx, eventID)
}
func (s *purchaseRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Purchase, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}

func noopPurchaseRepo() *purchaseRepoStub {
	return &purchaseRepoStub{
		recordFn:               func(_ context.Context, _ *models.Purchase) (bool, error) { return true, nil },
		getByProviderEventIDFn: func(_ context.Context, _ string) (*models.Purchase, error) { return nil, nil },
		listByUserFn:           func(_ context.Context, _ uint, _, _ int) ([]models.Purchase, error) { return nil, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByPostFn  func(context.Context, uint) ([]*models.Comment, error)
	countByPostFn func(context.Context, uint) (int64, error)
	deleteFn      func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:     func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByPostFn:  func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		countByPostFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// changelogRepoStub is a stub for repository.ChangelogRepository.
type changelogRepoStub struct {
	createFn        func(context.Context, *models.ChangelogEntry) error
	getByIDFn       func(context.Context, uint) (*models.ChangelogEntry, error)
	listByProjectFn func(context.Context, uint, bool) ([]models.ChangelogEntry, error)
	updateFn        func(context.Context, *models.ChangelogEntry) error
	deleteFn        func(context.Context, uint) error
}

func (s *changelogRepoStub) Create(ctx context.Context, entry *models.ChangelogEntry) error {
	return s.createFn(ctx, entry)
}
func (s *changelogRepoStub) GetByID(ctx context.Context, id uint) (*models.ChangelogEntry, error) {
	return s.getByIDFn(ctx, id)
}
func (s *changelogRepoStub) ListByProject(ctx context.Context, projectID uint, publishedOnly bool) ([]models.ChangelogEntry, error) {
	return s.listByProjectFn(ctx, projectID, publishedOnly)
}
func (s *changelogRepoStub) Update(ctx context.Context, entry *models.ChangelogEntry) error {
	return s.updateFn(ctx, entry)
}
func (s *changelogRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopChangelogRepo() *changelogRepoStub {
	return &changelogRepoStub{
		createFn:  func(_ context.Context, _ *models.ChangelogEntry) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.ChangelogEntry, error) { return &models.ChangelogEntry{}, nil },
		listByProjectFn: func(_ context.Context, _ uint, _ bool) ([]models.ChangelogEntry, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.ChangelogEntry) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}
