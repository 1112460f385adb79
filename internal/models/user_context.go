package models

import (
	"time"

	"gorm.io/gorm"
)

// Sdwt is a site/sub-division reference row.
type Sdwt struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	Site        string `gorm:"type:varchar(64);not null;uniqueIndex:idx_ref_sdwt_site_sdwt" json:"site"` // Site name.
	Sdwt        string `gorm:"type:varchar(64);not null;uniqueIndex:idx_ref_sdwt_site_sdwt" json:"sdwt"` // Sub-division name.
	Description string `gorm:"type:text" json:"description,omitempty"`                                   // Free-form note.
	IsUse       string `gorm:"type:varchar(1);not null;default:'Y'" json:"isUse"`                        // Y while selectable.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// TableName overrides the default table name.
func (Sdwt) TableName() string { return "ref_sdwts" }

// UserContext remembers the last operating context of a user.
type UserContext struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	LoginID  string `gorm:"type:text;not null" json:"loginId"`       // Login id as presented.
	LoginKey string `gorm:"type:text;not null;uniqueIndex" json:"-"` // Case-folded login id.

	LastSdwtID uint64 `gorm:"not null;index" json:"lastSdwtId"`            // Selected reference row.
	Sdwt       *Sdwt  `gorm:"foreignKey:LastSdwtID" json:"sdwt,omitempty"` // Selected site/sub-division.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// TableName overrides the default table name.
func (UserContext) TableName() string { return "sys_user_contexts" }

// BeforeSave keeps the folded login key in sync.
func (c *UserContext) BeforeSave(*gorm.DB) error {
	c.LoginKey = LoginKey(c.LoginID)
	return nil
}
