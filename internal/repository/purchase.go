package repository

import (
	"context"
	"errors"

	"leanvote/internal/models"

	"gorm.io/gorm"
)

// PurchaseRepository records payment provider events. The table is append-only.
type PurchaseRepository interface {
	// Record inserts the event and reports whether it was new. A false return
	// with nil error means the provider event was already recorded.
	Record(ctx context.Context, purchase *models.Purchase) (bool, error)
	GetByProviderEventID(ctx context.Context, eventID string) (*models.Purchase, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository returns a new PurchaseRepository implementation.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Record(ctx context.Context, purchase *models.Purchase) (bool, error) {
	err := r.db.WithContext(ctx).Create(purchase).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *purchaseRepository) GetByProviderEventID(ctx context.Context, eventID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := readDB(r.db).WithContext(ctx).
		Where("provider_event_id = ?", eventID).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &purchase, nil
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&purchases).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return purchases, nil
}
