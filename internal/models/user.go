package models

import (
	"time"

	"gorm.io/gorm"
)

// User records federated logins for statistics and auditing.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	LoginID  string `gorm:"type:text;not null" json:"loginId"`       // Login id as first presented.
	LoginKey string `gorm:"type:text;not null;uniqueIndex" json:"-"` // Case-folded login id.

	LoginCount  int64     `gorm:"not null;default:1" json:"loginCount"` // Number of logins.
	LastLoginAt time.Time `gorm:"not null;index" json:"lastLoginAt"`    // Most recent login.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// TableName overrides the default table name.
func (User) TableName() string { return "sys_users" }

// BeforeSave keeps the folded login key in sync.
func (u *User) BeforeSave(*gorm.DB) error {
	u.LoginKey = LoginKey(u.LoginID)
	return nil
}
