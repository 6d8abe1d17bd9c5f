package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	ROLE_TALENT   = "TALENT"
	ROLE_EMPLOYER = "EMPLOYER"
	ROLE_ADMIN    = "ADMIN"
)

// User is owned by the auth service. Billing only reads it to resolve the
// payer of a gateway transaction.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Email         string         `gorm:"uniqueIndex;type:varchar(200)" json:"email"`
	Password      string         `gorm:"type:text" json:"-"`
	Role          string         `gorm:"type:varchar(20);not null;default:'TALENT'" json:"role"`
	EmailVerified *time.Time     `gorm:"default:null" json:"email_verified,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// NormalizeEmail lowercases and trims an address the same way registration does.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsTalent() bool {
	return u != nil && u.Role == ROLE_TALENT
}

func (u *User) IsEmployer() bool {
	return u != nil && u.Role == ROLE_EMPLOYER
}
