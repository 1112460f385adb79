package access

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itm-platform/itm-access/internal/db"
	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm/clause"
)

// CodeInput describes an access code to create or update.
type CodeInput struct {
	Kind        string
	Code        string
	Active      bool
	Description string
}

// Put creates or updates an access code.
func (r *CodeRegistry) Put(ctx context.Context, in CodeInput) (*models.AccessCode, error) {
	kind := strings.ToUpper(strings.TrimSpace(in.Kind))
	if kind != models.AccessCodeKindCompany && kind != models.AccessCodeKindDepartment {
		return nil, fmt.Errorf("%w: kind must be %s or %s", ErrInvalidInput, models.AccessCodeKindCompany, models.AccessCodeKindDepartment)
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	flag := models.FlagNo
	if in.Active {
		flag = models.FlagYes
	}
	row := models.AccessCode{Kind: kind, Code: code, IsActive: flag, Description: strings.TrimSpace(in.Description)}
	errCreate := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "description", "updated_at"}),
	}).Create(&row).Error
	if errCreate != nil {
		return nil, fmt.Errorf("put access code: %w", errCreate)
	}
	var stored models.AccessCode
	if errFind := r.db.WithContext(ctx).Where("kind = ? AND code = ?", kind, code).Take(&stored).Error; errFind != nil {
		return nil, fmt.Errorf("reload access code: %w", errFind)
	}
	return &stored, nil
}

// Delete removes an access code. It reports whether a row existed.
func (r *CodeRegistry) Delete(ctx context.Context, kind, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("kind = ? AND code = ?", strings.ToUpper(strings.TrimSpace(kind)), strings.TrimSpace(code)).
		Delete(&models.AccessCode{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns all admin assignments ordered by login id.
func (t *RoleTable) List(ctx context.Context) ([]models.AdminAssignment, error) {
	var rows []models.AdminAssignment
	if errFind := t.db.WithContext(ctx).Order("login_key ASC").Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

// Assign gives loginID the ADMIN or MANAGER role, replacing any earlier assignment.
func (t *RoleTable) Assign(ctx context.Context, loginID, role, assignedBy string) (*models.AdminAssignment, error) {
	loginID = strings.TrimSpace(loginID)
	if models.LoginKey(loginID) == "" {
		return nil, fmt.Errorf("%w: login id is required", ErrInvalidInput)
	}
	role = models.NormalizeRole(role)
	if role != models.RoleAdmin && role != models.RoleManager {
		return nil, fmt.Errorf("%w: role must be %s or %s", ErrInvalidInput, models.RoleAdmin, models.RoleManager)
	}
	row := models.AdminAssignment{
		LoginID:    loginID,
		Role:       role,
		AssignedBy: strings.TrimSpace(assignedBy),
		AssignedAt: time.Now().UTC(),
	}
	errCreate := t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"login_id", "role", "assigned_by", "assigned_at"}),
	}).Create(&row).Error
	if errCreate != nil {
		return nil, fmt.Errorf("assign role: %w", errCreate)
	}
	return t.Assignment(ctx, loginID)
}

// Remove deletes the assignment of loginID. It reports whether a row existed.
func (t *RoleTable) Remove(ctx context.Context, loginID string) (bool, error) {
	res := t.db.WithContext(ctx).Where("login_key = ?", models.LoginKey(loginID)).Delete(&models.AdminAssignment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetSiteUse toggles whether a reference row can be selected.
func (s *ContextStore) SetSiteUse(ctx context.Context, id uint64, use bool) (*models.Sdwt, error) {
	flag := models.FlagNo
	if use {
		flag = models.FlagYes
	}
	res := s.db.WithContext(ctx).Model(&models.Sdwt{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"is_use": flag, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return nil, fmt.Errorf("update site: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: site %d", ErrNotFound, id)
	}
	var row models.Sdwt
	if errFind := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; errFind != nil {
		return nil, fmt.Errorf("reload site: %w", errFind)
	}
	return &row, nil
}

// AllSites returns every reference row, selectable or not.
func (s *ContextStore) AllSites(ctx context.Context) ([]models.Sdwt, error) {
	var rows []models.Sdwt
	if errFind := s.db.WithContext(ctx).Order("site ASC").Order("sdwt ASC").Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

// UserSummary is a recorded login with its privileges and last context.
type UserSummary struct {
	models.User
	AdminRole  string     `json:"adminRole,omitempty"`
	GuestUntil *time.Time `json:"guestUntil,omitempty"`
	Site       string     `json:"site,omitempty"`
	Sdwt       string     `json:"sdwt,omitempty"`
}

// Users lists recorded logins, most recent first, joined with roles, grants and contexts.
// A non-empty search keeps login ids containing it, ignoring case.
func (s *Service) Users(ctx context.Context, search string, limit int) ([]UserSummary, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	q := s.db.WithContext(ctx).Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where(db.CaseInsensitiveLikeExpr(s.db, "login_id"), db.ContainsPattern(s.db, search))
	}
	var users []models.User
	if errFind := q.Order("last_login_at DESC").Limit(limit).Find(&users).Error; errFind != nil {
		return nil, errFind
	}
	if len(users) == 0 {
		return []UserSummary{}, nil
	}
	keys := make([]string, 0, len(users))
	for _, u := range users {
		keys = append(keys, u.LoginKey)
	}

	var assignments []models.AdminAssignment
	if errFind := s.db.WithContext(ctx).Where("login_key IN ?", keys).Find(&assignments).Error; errFind != nil {
		return nil, errFind
	}
	var grants []models.GuestGrant
	if errFind := s.db.WithContext(ctx).Where("login_key IN ?", keys).Find(&grants).Error; errFind != nil {
		return nil, errFind
	}
	var contexts []models.UserContext
	if errFind := s.db.WithContext(ctx).Preload("Sdwt").Where("login_key IN ?", keys).Find(&contexts).Error; errFind != nil {
		return nil, errFind
	}

	roles := make(map[string]string, len(assignments))
	for _, a := range assignments {
		roles[a.LoginKey] = a.Role
	}
	until := make(map[string]time.Time, len(grants))
	for _, g := range grants {
		until[g.LoginKey] = g.ValidUntil
	}
	lastContext := make(map[string]*models.Sdwt, len(contexts))
	for _, c := range contexts {
		lastContext[c.LoginKey] = c.Sdwt
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summary := UserSummary{User: u, AdminRole: roles[u.LoginKey]}
		if v, ok := until[u.LoginKey]; ok {
			v := v
			summary.GuestUntil = &v
		}
		if ref := lastContext[u.LoginKey]; ref != nil {
			summary.Site = ref.Site
			summary.Sdwt = ref.Sdwt
		}
		out = append(out, summary)
	}
	return out, nil
}

// AdminRole returns the current privileged role of loginID: its admin assignment, or ADMIN
// through a configured admin group. It returns "" when neither applies.
func (s *Service) AdminRole(ctx context.Context, loginID string, groups []string) (string, error) {
	assignment, errAssignment := s.Roles.Assignment(ctx, loginID)
	if errAssignment != nil {
		return "", errAssignment
	}
	if assignment != nil {
		return models.NormalizeRole(assignment.Role), nil
	}
	return s.policy.groupRole(groups), nil
}
