package access

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/itm-platform/itm-access/internal/db"
	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openAccessTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:access_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func seedAccessCode(t *testing.T, conn *gorm.DB, kind, code, active string) {
	t.Helper()
	row := models.AccessCode{Kind: kind, Code: code, IsActive: active}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		t.Fatalf("seed access code %s/%s: %v", kind, code, errCreate)
	}
}

func seedSdwt(t *testing.T, conn *gorm.DB, site, sdwt string) models.Sdwt {
	t.Helper()
	row := models.Sdwt{Site: site, Sdwt: sdwt, IsUse: models.FlagYes}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		t.Fatalf("seed sdwt %s/%s: %v", site, sdwt, errCreate)
	}
	return row
}

func submitForTest(t *testing.T, w *Workflow, loginID string) models.GuestRequest {
	t.Helper()
	res, err := w.Submit(context.Background(), SubmitInput{
		LoginID:        loginID,
		DepartmentCode: "D100",
		DepartmentName: "Yield Engineering",
		Reason:         "line support",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return res.Request
}
