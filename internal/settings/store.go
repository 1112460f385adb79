// Package settings reads and writes operator-tunable values kept in the settings table.
// Values are read on every call so changes apply without a restart.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidSetting indicates an empty key or a value that is not JSON.
var ErrInvalidSetting = errors.New("invalid setting")

// Store accesses the settings table.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Value returns the raw JSON for key. The boolean reports whether a row exists.
func (s *Store) Value(ctx context.Context, key string) (json.RawMessage, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	var row models.Setting
	errFind := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if errFind != nil {
		return nil, false, errFind
	}
	return row.Value, true, nil
}

// String returns the string value of key, or fallback when unset, empty or not a string.
func (s *Store) String(ctx context.Context, key, fallback string) (string, error) {
	raw, ok, err := s.Value(ctx, key)
	if err != nil || !ok {
		return fallback, err
	}
	var value string
	if errDecode := json.Unmarshal(raw, &value); errDecode != nil {
		return fallback, nil
	}
	if value = strings.TrimSpace(value); value == "" {
		return fallback, nil
	}
	return value, nil
}

// Int returns the integer value of key, or fallback when unset or not a positive number.
func (s *Store) Int(ctx context.Context, key string, fallback int) (int, error) {
	raw, ok, err := s.Value(ctx, key)
	if err != nil || !ok {
		return fallback, err
	}
	var value int
	if errDecode := json.Unmarshal(raw, &value); errDecode != nil || value <= 0 {
		return fallback, nil
	}
	return value, nil
}

// Put stores value as JSON under key.
func (s *Store) Put(ctx context.Context, key string, value json.RawMessage, updatedBy string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidSetting)
	}
	if !json.Valid(value) {
		return fmt.Errorf("%w: value for %s is not valid json", ErrInvalidSetting, key)
	}
	row := models.Setting{Key: key, Value: value, UpdatedBy: strings.TrimSpace(updatedBy), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&row).Error
}

// All returns every stored setting ordered by key.
func (s *Store) All(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	if errFind := s.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}
