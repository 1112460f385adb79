package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSettingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:settings_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Setting{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func TestStringFallsBackWhenUnset(t *testing.T) {
	store := NewStore(openSettingsTestDB(t))
	got, err := store.String(context.Background(), DefaultGuestRoleKey, DefaultGuestRole)
	if err != nil || got != DefaultGuestRole {
		t.Fatalf("String() = %q err=%v", got, err)
	}
}

func TestPutOverwritesAndIsReadBack(t *testing.T) {
	store := NewStore(openSettingsTestDB(t))
	ctx := context.Background()

	if err := store.Put(ctx, DefaultGuestRoleKey, json.RawMessage(`"VISITOR"`), "admin1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, DefaultGuestRoleKey, json.RawMessage(`"CONTRACTOR"`), "admin2"); err != nil {
		t.Fatalf("second put: %v", err)
	}
	got, err := store.String(ctx, DefaultGuestRoleKey, DefaultGuestRole)
	if err != nil || got != "CONTRACTOR" {
		t.Fatalf("String() = %q err=%v", got, err)
	}

	rows, err := store.All(ctx)
	if err != nil || len(rows) != 1 || rows[0].UpdatedBy != "admin2" {
		t.Fatalf("unexpected rows %+v err=%v", rows, err)
	}
}

func TestIntIgnoresInvalidValues(t *testing.T) {
	store := NewStore(openSettingsTestDB(t))
	ctx := context.Background()

	if err := store.Put(ctx, DefaultGuestDaysKey, json.RawMessage(`"soon"`), "admin"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got, _ := store.Int(ctx, DefaultGuestDaysKey, DefaultGuestDays); got != DefaultGuestDays {
		t.Fatalf("Int() = %d, want fallback", got)
	}
	if err := store.Put(ctx, DefaultGuestDaysKey, json.RawMessage(`14`), "admin"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got, _ := store.Int(ctx, DefaultGuestDaysKey, DefaultGuestDays); got != 14 {
		t.Fatalf("Int() = %d, want 14", got)
	}
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	store := NewStore(openSettingsTestDB(t))
	if err := store.Put(context.Background(), "X", json.RawMessage(`{`), "admin"); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
