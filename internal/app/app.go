// Package app wires configuration, storage and HTTP routes into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	"github.com/itm-platform/itm-access/internal/config"
	"github.com/itm-platform/itm-access/internal/db"
	apphttp "github.com/itm-platform/itm-access/internal/http"
	"github.com/itm-platform/itm-access/internal/http/api/admin"
	"github.com/itm-platform/itm-access/internal/http/api/admin/handlers"
	"github.com/itm-platform/itm-access/internal/http/api/front"
	"github.com/itm-platform/itm-access/internal/identity"
	"github.com/itm-platform/itm-access/internal/logging"
	"github.com/itm-platform/itm-access/internal/metrics"
	"github.com/itm-platform/itm-access/internal/security"
	"github.com/itm-platform/itm-access/internal/settings"
	"github.com/itm-platform/itm-access/internal/sso"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 15 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn.WithContext(ctx))
}

// RunServer boots the access service and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	appCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logCloser, err := logging.Setup(appCfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	conn, err := db.Open(appCfg.Database.DSN)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	issuer, err := security.NewIssuer(appCfg.JWT.Secret, appCfg.JWT.Expiry, appCfg.JWT.TicketExpiry)
	if err != nil {
		return err
	}

	svc := access.NewService(conn, access.Policy{
		AdminGroups: appCfg.Access.AdminGroups,
		FailClosed:  appCfg.Access.FailClosed,
	}, m)

	engine := newEngine(appCfg, conn, svc, issuer, m, registry)

	server := &http.Server{
		Addr:              appCfg.Listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting access service on %s with config=%s", appCfg.Listen, configPath)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
		close(errCh)
	}()

	select {
	case errServe := <-errCh:
		return errServe
	case <-ctx.Done():
	}

	log.Info("shutting down access service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("shutdown: %w", errShutdown)
	}
	return nil
}

// newEngine builds the gin engine with every route registered.
func newEngine(cfg *config.Config, conn *gorm.DB, svc *access.Service, issuer *security.Issuer, m *metrics.Metrics, registry prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(logging.GinLogger(m), gin.Recovery(), apphttp.CORSMiddleware(cfg.CORS.AllowedOrigins))

	engine.GET("/healthz", handlers.NewHealthHandler(conn).Healthz)
	engine.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	deps := front.Deps{
		Service:     svc,
		Issuer:      issuer,
		Normalizer:  identity.NewNormalizer(attributeNames(cfg.SAML.Attributes)),
		FrontendURL: cfg.FrontendURL,
		Limiter:     apphttp.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
	}
	if cfg.SAMLEnabled() {
		sp, errSP := sso.NewServiceProvider(cfg.SAML)
		if errSP != nil {
			log.WithError(errSP).Error("saml service provider disabled")
		} else {
			deps.SP = sp
		}
	} else {
		log.Warn("saml not configured; login endpoints will answer 503")
	}
	front.RegisterFrontRoutes(engine, deps)
	admin.RegisterAdminRoutes(engine, svc, settings.NewStore(conn), issuer)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return engine
}

// attributeNames converts the configured attribute overrides.
func attributeNames(cfg config.SAMLAttributesConfig) identity.AttributeNames {
	one := func(name string) []string {
		if name = strings.TrimSpace(name); name == "" {
			return nil
		}
		return []string{name}
	}
	return identity.AttributeNames{
		LoginID:        one(cfg.LoginID),
		Email:          one(cfg.Email),
		DisplayName:    one(cfg.DisplayName),
		Groups:         one(cfg.Groups),
		DepartmentCode: one(cfg.DepartmentCode),
		DepartmentName: one(cfg.DepartmentName),
		CompanyCode:    one(cfg.CompanyCode),
		CompanyName:    one(cfg.CompanyName),
	}
}
