package repository

import (
	"context"
	"errors"

	"leanvote/internal/cache"
	"leanvote/internal/models"

	"gorm.io/gorm"
)

// ProjectRepository defines persistence operations for feedback boards.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	GetDefaultByOwner(ctx context.Context, ownerID uint) (*models.Project, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error
	ResolveBoard(ctx context.Context, query string) (*models.Project, error)
	SearchBoards(ctx context.Context, query string, limit int) ([]models.Project, error)
	SetDefault(ctx context.Context, ownerID, projectID uint) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository returns a new ProjectRepository implementation.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Board slug is already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := readDB(r.db).WithContext(ctx).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Project", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

func (r *projectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	key := cache.BoardKey(slug)

	err := cache.Aside(ctx, key, &project, cache.BoardTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Where("slug = ?", slug).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Board", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) GetDefaultByOwner(ctx context.Context, ownerID uint) (*models.Project, error) {
	var project models.Project
	err := readDB(r.db).WithContext(ctx).
		Where("owner_id = ? AND is_default = ?", ownerID, true).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &project, nil
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Project, error) {
	var projects []models.Project
	err := readDB(r.db).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("is_default DESC, created_at ASC").
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Board slug is already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateBoard(ctx, project.Slug)
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Project{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBoard(ctx, project.Slug)
	return nil
}

// boardMatchRank scores a project against a lowercased lookup term. Exact
// matches outrank partial ones, and within each group slug beats name beats
// company beats URL. Ties break on the lowest ID so resolution stays
// deterministic.
const boardMatchRank = `CASE
	WHEN LOWER(slug) = @q THEN 1
	WHEN LOWER(name) = @q THEN 2
	WHEN LOWER(company_name) = @q THEN 3
	WHEN company_url_normalized = @q THEN 4
	WHEN LOWER(name) LIKE @like THEN 5
	WHEN LOWER(company_name) LIKE @like THEN 6
	WHEN company_url_normalized LIKE @like THEN 7
	ELSE 0
END`

func (r *projectRepository) ResolveBoard(ctx context.Context, query string) (*models.Project, error) {
	var project models.Project
	result := readDB(r.db).WithContext(ctx).Raw(
		"SELECT projects.*, "+boardMatchRank+" AS match_rank FROM projects WHERE "+boardMatchRank+" > 0 ORDER BY match_rank ASC, id ASC LIMIT 1",
		map[string]any{"q": query, "like": "%" + query + "%"},
	).Scan(&project)
	if result.Error != nil {
		return nil, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Board", query)
	}
	return &project, nil
}

func (r *projectRepository) SearchBoards(ctx context.Context, query string, limit int) ([]models.Project, error) {
	var projects []models.Project
	like := "%" + query + "%"
	err := readDB(r.db).WithContext(ctx).
		Where("LOWER(slug) LIKE ? OR LOWER(name) LIKE ? OR LOWER(company_name) LIKE ?", like, like, like).
		Order("id ASC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

// SetDefault flips the default flag to the given project and mirrors its slug
// onto the owner's board_slug in the same transaction. No trigger involved;
// this is the single write path for the mirror column.
func (r *projectRepository) SetDefault(ctx context.Context, ownerID, projectID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Where("id = ? AND owner_id = ?", projectID, ownerID).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Project", projectID)
			}
			return models.NewInternalError(err)
		}

		if err := tx.Model(&models.Project{}).
			Where("owner_id = ? AND id <> ?", ownerID, projectID).
			Update("is_default", false).Error; err != nil {
			return models.NewInternalError(err)
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			Update("is_default", true).Error; err != nil {
			return models.NewInternalError(err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", ownerID).
			Update("board_slug", project.Slug).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateUser(ctx, ownerID)
	return nil
}
