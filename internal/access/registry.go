package access

import (
	"context"
	"errors"
	"strings"

	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
)

// CodeRegistry answers whitelist lookups against ref_access_codes.
type CodeRegistry struct {
	db *gorm.DB
}

// NewCodeRegistry constructs a CodeRegistry.
func NewCodeRegistry(db *gorm.DB) *CodeRegistry {
	return &CodeRegistry{db: db}
}

// IsWhitelisted reports whether either code has an active entry. A lookup error is
// returned only when no other lookup matched.
func (r *CodeRegistry) IsWhitelisted(ctx context.Context, companyCode, departmentCode string) (bool, error) {
	companyActive, errCompany := r.active(ctx, models.AccessCodeKindCompany, companyCode)
	if companyActive {
		return true, nil
	}
	departmentActive, errDepartment := r.active(ctx, models.AccessCodeKindDepartment, departmentCode)
	if departmentActive {
		return true, nil
	}
	return false, errors.Join(errCompany, errDepartment)
}

// active reports whether (kind, code) exists with is_active = 'Y'.
func (r *CodeRegistry) active(ctx context.Context, kind, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, nil
	}
	var entry models.AccessCode
	errFind := r.db.WithContext(ctx).Where("kind = ? AND code = ?", kind, code).Take(&entry).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if errFind != nil {
		return false, errFind
	}
	return entry.Effective(), nil
}

// List returns all access codes, most recently updated first.
func (r *CodeRegistry) List(ctx context.Context) ([]models.AccessCode, error) {
	var rows []models.AccessCode
	if errFind := r.db.WithContext(ctx).Order("updated_at DESC").Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}
