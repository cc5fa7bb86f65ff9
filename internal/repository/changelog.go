package repository

import (
	"context"
	"errors"

	"leanvote/internal/cache"
	"leanvote/internal/models"

	"gorm.io/gorm"
)

// ChangelogRepository defines persistence operations for release notes.
type ChangelogRepository interface {
	Create(ctx context.Context, entry *models.ChangelogEntry) error
	GetByID(ctx context.Context, id uint) (*models.ChangelogEntry, error)
	ListByProject(ctx context.Context, projectID uint, publishedOnly bool) ([]models.ChangelogEntry, error)
	Update(ctx context.Context, entry *models.ChangelogEntry) error
	Delete(ctx context.Context, id uint) error
}

type changelogRepository struct {
	db *gorm.DB
}

// NewChangelogRepository returns a new ChangelogRepository implementation.
func NewChangelogRepository(db *gorm.DB) ChangelogRepository {
	return &changelogRepository{db: db}
}

func (r *changelogRepository) Create(ctx context.Context, entry *models.ChangelogEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *changelogRepository) GetByID(ctx context.Context, id uint) (*models.ChangelogEntry, error) {
	var entry models.ChangelogEntry
	if err := readDB(r.db).WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Changelog entry", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &entry, nil
}

func (r *changelogRepository) ListByProject(ctx context.Context, projectID uint, publishedOnly bool) ([]models.ChangelogEntry, error) {
	var entries []models.ChangelogEntry
	q := readDB(r.db).WithContext(ctx).Where("project_id = ?", projectID)
	if publishedOnly {
		q = q.Where("published_at IS NOT NULL").Order("published_at DESC")
	} else {
		q = q.Order("created_at DESC")
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *changelogRepository) Update(ctx context.Context, entry *models.ChangelogEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.invalidateProject(ctx, entry.ProjectID)
	return nil
}

func (r *changelogRepository) Delete(ctx context.Context, id uint) error {
	entry, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.ChangelogEntry{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.invalidateProject(ctx, entry.ProjectID)
	return nil
}

func (r *changelogRepository) invalidateProject(ctx context.Context, projectID uint) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, projectID).Error; err == nil {
		cache.InvalidateChangelog(ctx, project.Slug)
	}
}
