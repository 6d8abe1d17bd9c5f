package repository

import (
	"context"

	"github.com/talentbridge/talentbridge-api/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user lookups needed by billing.
// Registration and login live outside this service.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProfileRepository links role profiles to subscriptions. The upserts only
// touch the subscription reference; descriptive fields are never overwritten.
type ProfileRepository interface {
	LinkTalentSubscription(ctx context.Context, userID, subscriptionID uint) error
	LinkEmployerSubscription(ctx context.Context, userID, subscriptionID uint) error
	GetTalentProfile(ctx context.Context, userID uint) (*models.TalentProfile, error)
	GetEmployerProfile(ctx context.Context, userID uint) (*models.EmployerProfile, error)
}

// Repositories holds all repository instances
type Repositories struct {
	User UserRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User: NewUserRepository(db),
	}
}
