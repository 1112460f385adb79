package models

import (
	"time"

	"gorm.io/gorm"
)

// GuestGrant is a time-bounded exception grant. One row per login key.
type GuestGrant struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	LoginID  string `gorm:"type:text;not null" json:"loginId"`       // Login id as entered.
	LoginKey string `gorm:"type:text;not null;uniqueIndex" json:"-"` // Case-folded login id.

	GrantedRole    string    `gorm:"type:varchar(16);not null;default:'GUEST'" json:"grantedRole"` // Role conferred while valid.
	DepartmentCode string    `gorm:"type:text" json:"deptCode"`                                    // Applicant department code.
	DepartmentName string    `gorm:"type:text" json:"deptName"`                                    // Applicant department name.
	Reason         string    `gorm:"type:text" json:"reason"`                                      // Justification.
	ValidUntil     time.Time `gorm:"not null;index" json:"validUntil"`                             // Inclusive expiry.

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`                // Grant (re)creation time.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// TableName overrides the default table name.
func (GuestGrant) TableName() string { return "cfg_guest_access" }

// BeforeSave keeps the folded login key in sync.
func (g *GuestGrant) BeforeSave(*gorm.DB) error {
	g.LoginKey = LoginKey(g.LoginID)
	return nil
}

// ActiveAt reports whether the grant confers access at t.
func (g *GuestGrant) ActiveAt(t time.Time) bool {
	return g != nil && !g.ValidUntil.Before(t)
}
