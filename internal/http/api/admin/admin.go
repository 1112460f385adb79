// Package admin registers the administration API.
package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	apphttp "github.com/itm-platform/itm-access/internal/http"
	"github.com/itm-platform/itm-access/internal/http/api/admin/handlers"
	"github.com/itm-platform/itm-access/internal/security"
	"github.com/itm-platform/itm-access/internal/settings"
)

// RegisterAdminRoutes registers the /v0/admin routes behind session and role checks.
func RegisterAdminRoutes(r *gin.Engine, svc *access.Service, store *settings.Store, issuer *security.Issuer) {
	if r == nil || svc == nil || issuer == nil {
		return
	}

	group := r.Group("/v0/admin")
	group.Use(apphttp.SessionAuthMiddleware(issuer))
	group.Use(adminPermissionMiddleware(svc))

	group.GET("/permissions", handlers.NewPermissionHandler().List)

	userHandler := handlers.NewUserHandler(svc)
	group.GET("/users", userHandler.List)

	adminHandler := handlers.NewAdminHandler(svc)
	group.GET("/admins", adminHandler.List)
	group.PUT("/admins/:loginId", adminHandler.Put)
	group.DELETE("/admins/:loginId", adminHandler.Delete)

	codeHandler := handlers.NewAccessCodeHandler(svc)
	group.GET("/access-codes", codeHandler.List)
	group.PUT("/access-codes/:kind/:code", codeHandler.Put)
	group.DELETE("/access-codes/:kind/:code", codeHandler.Delete)

	guestHandler := handlers.NewGuestHandler(svc, store)
	group.GET("/guests", guestHandler.List)
	group.PUT("/guests/:loginId", guestHandler.Put)
	group.DELETE("/guests/:loginId", guestHandler.Delete)

	requestHandler := handlers.NewGuestRequestHandler(svc, store)
	group.GET("/guest-requests", requestHandler.List)
	group.GET("/guest-requests/:reqId", requestHandler.Get)
	group.GET("/guest-requests/:reqId/events", requestHandler.Events)
	group.POST("/guest-requests/:reqId/approve", requestHandler.Approve)
	group.POST("/guest-requests/:reqId/reject", requestHandler.Reject)

	siteHandler := handlers.NewSiteHandler(svc)
	group.GET("/sites", siteHandler.List)
	group.POST("/sites", siteHandler.Create)
	group.PATCH("/sites/:id", siteHandler.Update)

	settingHandler := handlers.NewSettingHandler(store)
	group.GET("/settings", settingHandler.List)
	group.PUT("/settings/:key", settingHandler.Put)
}
