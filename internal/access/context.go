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

// ContextStore remembers each user's last operating context.
type ContextStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewContextStore constructs a ContextStore.
func NewContextStore(db *gorm.DB) *ContextStore {
	return &ContextStore{db: db, now: time.Now}
}

// SaveContext stores (site, sdwt) as the last context of loginID. The pair must resolve to
// a selectable reference row. Last write wins.
func (s *ContextStore) SaveContext(ctx context.Context, loginID, site, sdwt string) (*models.UserContext, error) {
	loginID = strings.TrimSpace(loginID)
	if models.LoginKey(loginID) == "" {
		return nil, fmt.Errorf("%w: login id is required", ErrInvalidInput)
	}
	site = strings.TrimSpace(site)
	sdwt = strings.TrimSpace(sdwt)
	if site == "" || sdwt == "" {
		return nil, fmt.Errorf("%w: site and sdwt are required", ErrInvalidContext)
	}

	var ref models.Sdwt
	errFind := s.db.WithContext(ctx).
		Where("site = ? AND sdwt = ? AND is_use = ?", site, sdwt, models.FlagYes).
		Take(&ref).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrInvalidContext, site, sdwt)
	}
	if errFind != nil {
		return nil, fmt.Errorf("save context: lookup reference: %w", errFind)
	}

	row := models.UserContext{LoginID: loginID, LastSdwtID: ref.ID, UpdatedAt: s.now().UTC()}
	errCreate := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"login_id", "last_sdwt_id", "updated_at"}),
	}).Create(&row).Error
	if errCreate != nil {
		return nil, fmt.Errorf("save context: %w", errCreate)
	}

	var stored models.UserContext
	if errReload := s.db.WithContext(ctx).Preload("Sdwt").Where("login_key = ?", row.LoginKey).Take(&stored).Error; errReload != nil {
		return nil, fmt.Errorf("save context: reload: %w", errReload)
	}
	return &stored, nil
}

// LastContext returns the reference row of the user's last context, or nil when the user
// has none or the row no longer exists.
func (s *ContextStore) LastContext(ctx context.Context, loginID string) (*models.Sdwt, error) {
	var row models.UserContext
	errFind := s.db.WithContext(ctx).Preload("Sdwt").Where("login_key = ?", models.LoginKey(loginID)).Take(&row).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, errFind
	}
	return row.Sdwt, nil
}

// Sites returns selectable reference rows ordered by site and sdwt.
func (s *ContextStore) Sites(ctx context.Context) ([]models.Sdwt, error) {
	var rows []models.Sdwt
	errFind := s.db.WithContext(ctx).
		Where("is_use = ?", models.FlagYes).
		Order("site ASC").
		Order("sdwt ASC").
		Find(&rows).Error
	if errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

// CreateSite adds a reference row. An existing (site, sdwt) pair yields ErrConflict.
func (s *ContextStore) CreateSite(ctx context.Context, site, sdwt, description string) (*models.Sdwt, error) {
	site = strings.TrimSpace(site)
	sdwt = strings.TrimSpace(sdwt)
	if site == "" || sdwt == "" {
		return nil, fmt.Errorf("%w: site and sdwt are required", ErrInvalidInput)
	}
	var existing models.Sdwt
	errFind := s.db.WithContext(ctx).Where("site = ? AND sdwt = ?", site, sdwt).Take(&existing).Error
	if errFind == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrConflict, site, sdwt)
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("create site: lookup: %w", errFind)
	}
	row := models.Sdwt{Site: site, Sdwt: sdwt, Description: strings.TrimSpace(description), IsUse: models.FlagYes}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		return nil, fmt.Errorf("create site: %w", errCreate)
	}
	return &row, nil
}
