package models

import (
	"time"

	"gorm.io/gorm"
)

// AdminAssignment grants a privileged role to a login id.
type AdminAssignment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	LoginID  string `gorm:"type:text;not null" json:"loginId"`       // Login id as entered.
	LoginKey string `gorm:"type:text;not null;uniqueIndex" json:"-"` // Case-folded login id.

	Role       string    `gorm:"type:varchar(16);not null" json:"role"` // ADMIN or MANAGER.
	AssignedBy string    `gorm:"type:text" json:"assignedBy"`           // Assigning principal.
	AssignedAt time.Time `gorm:"not null" json:"assignedAt"`            // Assignment time.
}

// TableName overrides the default table name.
func (AdminAssignment) TableName() string { return "cfg_admin_users" }

// BeforeSave keeps the folded login key in sync.
func (a *AdminAssignment) BeforeSave(*gorm.DB) error {
	a.LoginKey = LoginKey(a.LoginID)
	return nil
}
