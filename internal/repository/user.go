// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"leanvote/internal/cache"
	"leanvote/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for user profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByField(ctx, "email = ?", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getByField(ctx, "username = ?", username)
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.getByField(ctx, "google_id = ?", googleID)
}

func (r *userRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	return r.getByField(ctx, "stripe_customer_id = ?", customerID)
}

func (r *userRepository) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	return r.getByField(ctx, "stripe_subscription_id = ?", subscriptionID)
}

// getByField returns (nil, nil) when no row matches so callers can branch on
// existence without unwrapping errors.
func (r *userRepository) getByField(ctx context.Context, query string, value string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where(query, value).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}
