package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
)

// Ledger keeps one sys_users row per login key with login statistics.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedger constructs a Ledger.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// SyncLogin records a login and returns the canonical login id, which is the id as first
// recorded. On storage failure it returns the presented id together with the error so the
// caller can continue in degraded mode.
func (l *Ledger) SyncLogin(ctx context.Context, loginID string) (string, error) {
	key := models.LoginKey(loginID)
	if key == "" {
		return loginID, fmt.Errorf("sync login: empty login id")
	}
	now := l.now().UTC()

	canonical, errFind := l.touch(ctx, key, now)
	if errFind == nil {
		return canonical, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return loginID, fmt.Errorf("sync login: lookup: %w", errFind)
	}

	user := models.User{LoginID: loginID, LoginCount: 1, LastLoginAt: now}
	errCreate := l.db.WithContext(ctx).Create(&user).Error
	if errCreate == nil {
		return user.LoginID, nil
	}

	// A concurrent first login may have inserted the row between lookup and create.
	canonical, errFind = l.touch(ctx, key, now)
	if errFind == nil {
		return canonical, nil
	}
	return loginID, fmt.Errorf("sync login: create: %w", errCreate)
}

// touch increments the counter of an existing row and returns its login id.
func (l *Ledger) touch(ctx context.Context, key string, now time.Time) (string, error) {
	var user models.User
	if errFind := l.db.WithContext(ctx).Select("id", "login_id").Where("login_key = ?", key).Take(&user).Error; errFind != nil {
		return "", errFind
	}
	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumns(map[string]any{
			"login_count":   gorm.Expr("login_count + ?", 1),
			"last_login_at": now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return "", fmt.Errorf("increment login count: %w", res.Error)
	}
	return user.LoginID, nil
}

// Lookup returns the recorded user for a login id, or nil when none exists.
func (l *Ledger) Lookup(ctx context.Context, loginID string) (*models.User, error) {
	var user models.User
	errFind := l.db.WithContext(ctx).Where("login_key = ?", models.LoginKey(loginID)).Take(&user).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, errFind
	}
	return &user, nil
}
