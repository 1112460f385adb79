package db

import (
	"fmt"

	"github.com/itm-platform/itm-access/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table owned by the access service.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(
		&models.User{},
		&models.AccessCode{},
		&models.AdminAssignment{},
		&models.GuestGrant{},
		&models.GuestRequest{},
		&models.GuestRequestEvent{},
		&models.Sdwt{},
		&models.UserContext{},
		&models.Setting{},
	); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
