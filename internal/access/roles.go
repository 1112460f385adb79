package access

import (
	"context"
	"errors"

	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
)

// RoleTable reads admin role assignments.
type RoleTable struct {
	db *gorm.DB
}

// NewRoleTable constructs a RoleTable.
func NewRoleTable(db *gorm.DB) *RoleTable {
	return &RoleTable{db: db}
}

// Assignment returns the admin assignment for loginID, or nil when none exists.
func (t *RoleTable) Assignment(ctx context.Context, loginID string) (*models.AdminAssignment, error) {
	var row models.AdminAssignment
	errFind := t.db.WithContext(ctx).Where("login_key = ?", models.LoginKey(loginID)).Take(&row).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, errFind
	}
	return &row, nil
}
