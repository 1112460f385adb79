package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Guest request statuses.
const (
	GuestRequestPending  = "PENDING"
	GuestRequestApproved = "APPROVED"
	GuestRequestRejected = "REJECTED"
)

// GuestRequest is an application for guest access.
type GuestRequest struct {
	ReqID uint64 `gorm:"column:req_id;primaryKey;autoIncrement" json:"reqId"` // Primary key.

	LoginID  string `gorm:"type:text;not null" json:"loginId"` // Applicant login id.
	LoginKey string `gorm:"type:text;not null;index" json:"-"` // Case-folded login id.

	DepartmentCode string `gorm:"type:text" json:"deptCode"` // Applicant department code.
	DepartmentName string `gorm:"type:text" json:"deptName"` // Applicant department name.
	Reason         string `gorm:"type:text" json:"reason"`   // Justification.

	Status string `gorm:"type:varchar(16);not null;index" json:"status"` // PENDING, APPROVED or REJECTED.

	// PendingKey equals LoginKey while PENDING and is NULL afterwards; its unique index
	// allows at most one pending request per login id.
	PendingKey *string `gorm:"type:text;uniqueIndex" json:"-"`

	ProcessedBy string     `gorm:"type:text" json:"processedBy,omitempty"` // Approver login id.
	ProcessedAt *time.Time `json:"processedAt,omitempty"`                  // Transition time.

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`  // Submission time.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"` // Last update timestamp.
}

// TableName overrides the default table name.
func (GuestRequest) TableName() string { return "cfg_guest_requests" }

// BeforeSave keeps the folded login key in sync.
func (r *GuestRequest) BeforeSave(*gorm.DB) error {
	r.LoginKey = LoginKey(r.LoginID)
	return nil
}

// Terminal reports whether the request can no longer transition.
func (r *GuestRequest) Terminal() bool {
	return r.Status == GuestRequestApproved || r.Status == GuestRequestRejected
}

// GuestRequestEvent records one workflow transition.
type GuestRequestEvent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	ReqID      uint64         `gorm:"column:req_id;not null;index" json:"reqId"` // Related request.
	FromStatus string         `gorm:"type:varchar(16)" json:"from"`              // Empty on submission.
	ToStatus   string         `gorm:"type:varchar(16);not null" json:"to"`       // New status.
	Actor      string         `gorm:"type:text" json:"actor"`                    // Acting login id.
	Detail     datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`        // Transition payload.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Event time.
}

// TableName overrides the default table name.
func (GuestRequestEvent) TableName() string { return "log_guest_request_events" }
