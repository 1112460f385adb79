package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.User{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func TestSyncLoginCreatesRecordOnFirstLogin(t *testing.T) {
	db := openLedgerTestDB(t)
	ledger := NewLedger(db)

	canonical, err := ledger.SyncLogin(context.Background(), "User1")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if canonical != "User1" {
		t.Fatalf("canonical = %q, want User1", canonical)
	}

	var user models.User
	if errFind := db.Where("login_key = ?", "user1").Take(&user).Error; errFind != nil {
		t.Fatalf("find user: %v", errFind)
	}
	if user.LoginCount != 1 {
		t.Fatalf("LoginCount = %d, want 1", user.LoginCount)
	}
}

func TestSyncLoginCaseVariantsShareOneRecord(t *testing.T) {
	db := openLedgerTestDB(t)
	ledger := NewLedger(db)
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	second := first.Add(time.Hour)

	ledger.now = func() time.Time { return first }
	if _, err := ledger.SyncLogin(context.Background(), "User1"); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	ledger.now = func() time.Time { return second }
	canonical, err := ledger.SyncLogin(context.Background(), "user1")
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if canonical != "User1" {
		t.Fatalf("canonical = %q, want the first recorded casing", canonical)
	}

	var users []models.User
	if errFind := db.Find(&users).Error; errFind != nil {
		t.Fatalf("list users: %v", errFind)
	}
	if len(users) != 1 {
		t.Fatalf("expected one user row, got %d", len(users))
	}
	if users[0].LoginCount != 2 {
		t.Fatalf("LoginCount = %d, want 2", users[0].LoginCount)
	}
	if !users[0].LastLoginAt.Equal(second) {
		t.Fatalf("LastLoginAt = %v, want %v", users[0].LastLoginAt, second)
	}
}

func TestSyncLoginFallsBackWhenStorageFails(t *testing.T) {
	sqlDB, _, errMock := sqlmock.New()
	if errMock != nil {
		t.Fatalf("sqlmock: %v", errMock)
	}
	defer sqlDB.Close()
	db, errOpen := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if errOpen != nil {
		t.Fatalf("open gorm: %v", errOpen)
	}

	canonical, err := NewLedger(db).SyncLogin(context.Background(), "Presented")
	if err == nil {
		t.Fatalf("expected storage error")
	}
	if canonical != "Presented" {
		t.Fatalf("canonical = %q, want presented id", canonical)
	}
}

func TestLedgerLookup(t *testing.T) {
	db := openLedgerTestDB(t)
	ledger := NewLedger(db)

	missing, err := ledger.Lookup(context.Background(), "nobody")
	if err != nil || missing != nil {
		t.Fatalf("expected nil user, got %+v err=%v", missing, err)
	}
	if _, err = ledger.SyncLogin(context.Background(), "Someone"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	found, err := ledger.Lookup(context.Background(), "SOMEONE")
	if err != nil || found == nil || found.LoginID != "Someone" {
		t.Fatalf("unexpected lookup result %+v err=%v", found, err)
	}
}
