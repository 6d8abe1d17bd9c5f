package models

import "time"

// TalentProfile is edited by the profiles service; billing only maintains
// SubscriptionID.
type TalentProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	FirstName      string    `gorm:"type:varchar(100);not null;default:''" json:"first_name"`
	LastName       string    `gorm:"type:varchar(100);not null;default:''" json:"last_name"`
	Location       string    `gorm:"type:varchar(150);not null;default:''" json:"location"`
	Headline       string    `gorm:"type:varchar(200);default:''" json:"headline"`
	Bio            string    `gorm:"type:text" json:"bio"`
	SubscriptionID *uint     `gorm:"index" json:"subscription_id,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EmployerProfile mirrors TalentProfile for company accounts.
type EmployerProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	CompanyName    string    `gorm:"type:varchar(150);not null;default:''" json:"company_name"`
	Industry       string    `gorm:"type:varchar(100);not null;default:''" json:"industry"`
	CompanySize    string    `gorm:"type:varchar(50);not null;default:''" json:"company_size"`
	Location       string    `gorm:"type:varchar(150);not null;default:''" json:"location"`
	Website        string    `gorm:"type:varchar(255);default:''" json:"website"`
	Description    string    `gorm:"type:text" json:"description"`
	SubscriptionID *uint     `gorm:"index" json:"subscription_id,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
