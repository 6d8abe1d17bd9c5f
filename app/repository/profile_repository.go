package repository

import (
	"context"

	"github.com/talentbridge/talentbridge-api/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a profile repository. Pass a transaction
// handle to make the links part of a larger unit of work.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// LinkTalentSubscription points the user's talent profile at subscriptionID,
// creating a placeholder profile when none exists.
func (r *profileRepository) LinkTalentSubscription(ctx context.Context, userID, subscriptionID uint) error {
	subID := subscriptionID
	profile := &models.TalentProfile{
		UserID:         userID,
		FirstName:      "",
		LastName:       "",
		Location:       "",
		SubscriptionID: &subID,
	}
	return r.db.WithContext(ctx).Clauses(subscriptionLinkConflict()).Create(profile).Error
}

// LinkEmployerSubscription points the user's employer profile at
// subscriptionID, creating a placeholder profile when none exists.
func (r *profileRepository) LinkEmployerSubscription(ctx context.Context, userID, subscriptionID uint) error {
	subID := subscriptionID
	profile := &models.EmployerProfile{
		UserID:         userID,
		CompanyName:    "",
		Industry:       "",
		CompanySize:    "",
		Location:       "",
		SubscriptionID: &subID,
	}
	return r.db.WithContext(ctx).Clauses(subscriptionLinkConflict()).Create(profile).Error
}

func (r *profileRepository) GetTalentProfile(ctx context.Context, userID uint) (*models.TalentProfile, error) {
	var profile models.TalentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetEmployerProfile(ctx context.Context, userID uint) (*models.EmployerProfile, error) {
	var profile models.EmployerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func subscriptionLinkConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subscription_id",
			"updated_at",
		}),
	}
}
