package repository

import (
	"context"
	"errors"

	"leanvote/internal/cache"
	"leanvote/internal/models"

	"gorm.io/gorm"
)

// PostQuery selects, filters and orders a board's posts. Zero-value Status
// and Category mean no filter.
type PostQuery struct {
	BoardOwnerID  uint
	CurrentUserID uint
	Status        models.PostStatus
	Category      string
	Sort          string
	Limit         int
	Offset        int
}

// PostRepository defines the interface for feedback post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	ListByBoardOwner(ctx context.Context, q PostQuery) ([]*models.Post, error)
	ListRoadmap(ctx context.Context, boardOwnerID uint, currentUserID uint) ([]*models.Post, error)
	ListNewest(ctx context.Context, boardOwnerID uint, limit int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error
	Delete(ctx context.Context, id uint) error
	HasVoted(ctx context.Context, userID, postID uint) (bool, error)
	CountVotes(ctx context.Context, postID uint) (int, error)
	Vote(ctx context.Context, userID, postID uint) (bool, error)
	Unvote(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post

	var err error
	if currentUserID == 0 {
		// Anonymous reads share one cached shape; has_voted is always false.
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
			return r.applyPostDetails(readDB(r.db).WithContext(ctx), 0).First(&post, id).Error
		})
	} else {
		err = r.applyPostDetails(readDB(r.db).WithContext(ctx), currentUserID).First(&post, id).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListByBoardOwner(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	var posts []*models.Post
	base := r.applyPostDetails(readDB(r.db).WithContext(ctx), q.CurrentUserID).
		Where("board_owner_id = ?", q.BoardOwnerID)
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.Category != "" {
		base = base.Where("category = ?", q.Category)
	}
	err := r.applySort(base, q.Sort).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListRoadmap(ctx context.Context, boardOwnerID uint, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), currentUserID).
		Where("board_owner_id = ? AND status IN ?", boardOwnerID, models.RoadmapStatuses).
		Order("votes_count DESC, created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListNewest(ctx context.Context, boardOwnerID uint, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), 0).
		Where("board_owner_id = ?", boardOwnerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applySort appends the ORDER BY clause for the requested sort type.
// votes_count and comments_count are SELECT aliases from applyPostDetails;
// PostgreSQL allows referencing them in ORDER BY within the same query level.
func (r *postRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "top":
		return db.Order("votes_count DESC, created_at DESC")
	case "trending":
		return db.Order(gorm.Expr(
			"(votes_count + comments_count * 2.0) / POWER(EXTRACT(EPOCH FROM (NOW() - posts.created_at)) / 3600.0 + 2, 1.5) DESC",
		))
	default: // "new" and anything unrecognized
		return db.Order("created_at DESC")
	}
}

// applyPostDetails adds subqueries to fetch counts and voted status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id) as votes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM votes WHERE votes.post_id = posts.id AND votes.user_id = ?) as has_voted", currentUserID)
	}

	return db.Select(selectQuery + ", false as has_voted")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PostKey(post.ID))
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PostKey(id))
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PostKey(id))
	return nil
}

func (r *postRepository) HasVoted(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) CountVotes(ctx context.Context, postID uint) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return int(count), nil
}

// Vote inserts a vote row, relying on the composite unique index to absorb
// concurrent duplicates. Returns whether a row was actually inserted.
func (r *postRepository) Vote(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO votes (user_id, post_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return result.RowsAffected > 0, nil
}

// Unvote hard-deletes the vote row. Returns whether a row was actually removed.
func (r *postRepository) Unvote(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Vote{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected > 0 {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return result.RowsAffected > 0, nil
}
