package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/itm-platform/itm-access/internal/access"
	"github.com/itm-platform/itm-access/internal/config"
	"github.com/itm-platform/itm-access/internal/db"
	"github.com/itm-platform/itm-access/internal/metrics"
	"github.com/itm-platform/itm-access/internal/security"
)

func TestAttributeNamesOnlySetsConfiguredFields(t *testing.T) {
	names := attributeNames(config.SAMLAttributesConfig{LoginID: " employeeId ", Groups: ""})
	if len(names.LoginID) != 1 || names.LoginID[0] != "employeeId" {
		t.Fatalf("login id names = %v", names.LoginID)
	}
	if names.Groups != nil || names.Email != nil {
		t.Fatalf("unset fields must stay nil: %+v", names)
	}
}

func TestEngineServesHealthMetricsAndRoutes(t *testing.T) {
	cfg := &config.Config{
		Database:  config.DatabaseConfig{DSN: fmt.Sprintf("file:app_engine_%d?mode=memory&cache=shared", time.Now().UnixNano())},
		RateLimit: config.RateLimitConfig{PerSecond: 100, Burst: 100},
	}
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	issuer, errIssuer := security.NewIssuer("app-secret", time.Hour, time.Minute)
	if errIssuer != nil {
		t.Fatalf("issuer: %v", errIssuer)
	}
	registry := metrics.NewRegistry()
	m := metrics.New(registry)
	engine := newEngine(cfg, conn, access.NewService(conn, access.Policy{}, m), issuer, m, registry)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/v0/auth/login", http.StatusServiceUnavailable},
		{http.MethodGet, "/v0/auth/access-codes", http.StatusOK},
		{http.MethodGet, "/v0/auth/session", http.StatusUnauthorized},
		{http.MethodGet, "/v0/admin/users", http.StatusUnauthorized},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "itm_access_http_requests_total") {
		t.Fatalf("metrics missing http counter: status=%d", rec.Code)
	}
}
