package repository

import (
	"context"
	"strings"

	"github.com/talentbridge/talentbridge-api/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByEmail retrieves a user by their email address. Gateway payloads are
// not guaranteed to preserve the casing used at registration.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	normalized := models.NormalizeEmail(email)
	if strings.TrimSpace(normalized) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", normalized).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
