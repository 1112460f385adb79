package models

import "time"

// Access code kinds.
const (
	// AccessCodeKindCompany marks a company code.
	AccessCodeKindCompany = "COMPANY"
	// AccessCodeKindDepartment marks a department code.
	AccessCodeKindDepartment = "DEPARTMENT"
)

// AccessCode whitelists an organization code for login.
type AccessCode struct {
	Kind string `gorm:"type:varchar(16);primaryKey" json:"kind"` // COMPANY or DEPARTMENT.
	Code string `gorm:"type:varchar(64);primaryKey" json:"code"` // Organization code.

	IsActive    string `gorm:"type:varchar(1);not null;default:'Y'" json:"isActive"` // Y while effective.
	Description string `gorm:"type:text" json:"description"`                         // Free-form note.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// TableName overrides the default table name.
func (AccessCode) TableName() string { return "ref_access_codes" }

// Effective reports whether the code currently grants entry.
func (a *AccessCode) Effective() bool {
	return a != nil && a.IsActive == FlagYes
}
