package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantInput describes a guest grant to create or replace.
type GrantInput struct {
	LoginID        string
	Role           string
	ValidUntil     time.Time
	DepartmentCode string
	DepartmentName string
	Reason         string
}

// GrantStore reads and writes guest grants.
type GrantStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGrantStore constructs a GrantStore.
func NewGrantStore(db *gorm.DB) *GrantStore {
	return &GrantStore{db: db, now: time.Now}
}

// ActiveGrant returns the grant for loginID when it is still valid. Expired and absent
// grants both yield nil.
func (s *GrantStore) ActiveGrant(ctx context.Context, loginID string) (*models.GuestGrant, error) {
	var grant models.GuestGrant
	errFind := s.db.WithContext(ctx).Where("login_key = ?", models.LoginKey(loginID)).Take(&grant).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, errFind
	}
	if !grant.ActiveAt(s.now().UTC()) {
		return nil, nil
	}
	return &grant, nil
}

// UpsertGrant creates or fully replaces the grant row for in.LoginID.
func (s *GrantStore) UpsertGrant(ctx context.Context, in GrantInput) (*models.GuestGrant, error) {
	if errValidate := in.validate(); errValidate != nil {
		return nil, errValidate
	}
	var out *models.GuestGrant
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant, errUpsert := upsertGrant(tx, in, s.now().UTC())
		out = grant
		return errUpsert
	})
	if errTx != nil {
		return nil, errTx
	}
	return out, nil
}

// Delete removes the grant for loginID. It reports whether a row existed.
func (s *GrantStore) Delete(ctx context.Context, loginID string) (bool, error) {
	res := s.db.WithContext(ctx).Where("login_key = ?", models.LoginKey(loginID)).Delete(&models.GuestGrant{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns all grants, newest first.
func (s *GrantStore) List(ctx context.Context) ([]models.GuestGrant, error) {
	var rows []models.GuestGrant
	if errFind := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

func (in GrantInput) validate() error {
	if models.LoginKey(in.LoginID) == "" {
		return fmt.Errorf("%w: login id is required", ErrInvalidInput)
	}
	if in.ValidUntil.IsZero() {
		return fmt.Errorf("%w: valid until is required", ErrInvalidInput)
	}
	return nil
}

// upsertGrant writes the grant inside tx with replace semantics; created_at is reset.
func upsertGrant(tx *gorm.DB, in GrantInput, now time.Time) (*models.GuestGrant, error) {
	role := models.NormalizeRole(in.Role)
	if role == "" {
		role = models.RoleGuest
	}
	if role == models.RoleAdmin || role == models.RoleManager {
		return nil, fmt.Errorf("%w: guest grants cannot confer %s", ErrInvalidInput, role)
	}
	row := models.GuestGrant{
		LoginID:        strings.TrimSpace(in.LoginID),
		GrantedRole:    role,
		DepartmentCode: in.DepartmentCode,
		DepartmentName: in.DepartmentName,
		Reason:         in.Reason,
		ValidUntil:     in.ValidUntil.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	errCreate := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "login_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"login_id", "granted_role", "department_code", "department_name",
			"reason", "valid_until", "created_at", "updated_at",
		}),
	}).Create(&row).Error
	if errCreate != nil {
		return nil, fmt.Errorf("upsert guest grant: %w", errCreate)
	}

	var stored models.GuestGrant
	if errFind := tx.Where("login_key = ?", models.LoginKey(in.LoginID)).Take(&stored).Error; errFind != nil {
		return nil, fmt.Errorf("reload guest grant: %w", errFind)
	}
	return &stored, nil
}
