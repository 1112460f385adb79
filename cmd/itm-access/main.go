// Command itm-access serves federated login, access resolution and guest request
// administration for the ITM platform.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/itm-platform/itm-access/internal/app"
	"github.com/itm-platform/itm-access/internal/config"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath  string
		migrateOnly bool
	)
	flag.StringVar(&configPath, "config", "", "path to config.yaml (defaults to $ITM_CONFIG or ./config.yaml)")
	flag.BoolVar(&migrateOnly, "migrate", false, "run database migrations and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.AppConfig{ConfigPath: configPath}
	if migrateOnly {
		if errMigrate := app.Migrate(ctx, cfg); errMigrate != nil {
			log.WithError(errMigrate).Fatal("migration failed")
		}
		log.Info("migration completed")
		return
	}
	if errRun := app.RunServer(ctx, cfg); errRun != nil {
		log.WithError(errRun).Fatal("server stopped")
	}
}
