package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMigrateTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:migrate_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	return conn
}

func TestMigrateSQLiteCreatesAccessTables(t *testing.T) {
	conn := openMigrateTestDB(t)

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{
		"sys_users", "ref_access_codes", "cfg_admin_users", "cfg_guest_access",
		"cfg_guest_requests", "log_guest_request_events", "ref_sdwts", "sys_user_contexts", "settings",
	} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	if !conn.Migrator().HasColumn(&models.GuestRequest{}, "pending_key") {
		t.Fatalf("cfg_guest_requests missing pending_key")
	}
}

func TestMigrateSQLitePendingKeyIsUnique(t *testing.T) {
	conn := openMigrateTestDB(t)
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	key := "user1"
	first := models.GuestRequest{LoginID: "User1", Status: models.GuestRequestPending, PendingKey: &key}
	if errCreate := conn.Create(&first).Error; errCreate != nil {
		t.Fatalf("create first: %v", errCreate)
	}
	second := models.GuestRequest{LoginID: "user1", Status: models.GuestRequestPending, PendingKey: &key}
	if errCreate := conn.Create(&second).Error; errCreate == nil {
		t.Fatalf("expected unique violation for second pending request")
	}

	closed := models.GuestRequest{LoginID: "user1", Status: models.GuestRequestRejected}
	if errCreate := conn.Create(&closed).Error; errCreate != nil {
		t.Fatalf("terminal requests must not collide: %v", errCreate)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := openMigrateTestDB(t)
	for i := 0; i < 2; i++ {
		if errMigrate := Migrate(conn); errMigrate != nil {
			t.Fatalf("migrate run %d: %v", i+1, errMigrate)
		}
	}
}

func TestDetectDialectFromDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost/itm":       DialectPostgres,
		"host=localhost user=itm dbname=itm": DialectPostgres,
		"file:itm.db":                        DialectSQLite,
		"sqlite://data/itm.db":               DialectSQLite,
		"itm.db":                             DialectSQLite,
	}
	for dsn, want := range cases {
		got, err := detectDialectFromDSN(dsn)
		if err != nil {
			t.Fatalf("detectDialectFromDSN(%q): %v", dsn, err)
		}
		if got != want {
			t.Fatalf("detectDialectFromDSN(%q) = %q, want %q", dsn, got, want)
		}
	}
	if _, err := detectDialectFromDSN("mysql://localhost/itm"); err == nil {
		t.Fatalf("expected error for mysql dsn")
	}
}

func TestSQLitePathFromDSN(t *testing.T) {
	if got := sqlitePathFromDSN("file:data/itm.db?_busy_timeout=5000"); got != "data/itm.db" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := sqlitePathFromDSN("file:test?mode=memory&cache=shared"); got != "" {
		t.Fatalf("memory dsn should have no path, got %q", got)
	}
	if got := ensureSQLiteParams("file:itm.db"); got != "file:itm.db?_busy_timeout=5000&_foreign_keys=on" {
		t.Fatalf("unexpected params %q", got)
	}
}
