// Package front registers the login flow and the routes used by signed-in users.
package front

import (
	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	apphttp "github.com/itm-platform/itm-access/internal/http"
	"github.com/itm-platform/itm-access/internal/http/api/front/handlers"
	"github.com/itm-platform/itm-access/internal/identity"
	"github.com/itm-platform/itm-access/internal/security"
)

// Deps carries what the front routes need. SP may be nil when SAML is not configured.
type Deps struct {
	Service     *access.Service
	Issuer      *security.Issuer
	SP          handlers.AssertionReader
	Normalizer  *identity.Normalizer
	FrontendURL string
	Limiter     *apphttp.RateLimiter
}

// RegisterFrontRoutes registers public and authenticated front-end routes.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Service == nil || deps.Issuer == nil {
		return
	}

	auth := r.Group("/v0/auth")
	if deps.Limiter != nil {
		auth.Use(deps.Limiter.Middleware())
	}

	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = identity.NewNormalizer(identity.DefaultAttributeNames())
	}
	authHandler := handlers.NewAuthHandler(deps.Service, deps.Issuer, deps.SP, normalizer, deps.FrontendURL)
	auth.GET("/login", authHandler.Login)
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/metadata", authHandler.Metadata)

	guestHandler := handlers.NewGuestRequestHandler(deps.Service, deps.Issuer)
	auth.POST("/guest-requests", guestHandler.Submit)
	auth.GET("/access-codes", guestHandler.AccessCodes)

	authed := auth.Group("")
	authed.Use(apphttp.SessionAuthMiddleware(deps.Issuer))

	contextHandler := handlers.NewContextHandler(deps.Service, deps.Issuer)
	authed.GET("/session", contextHandler.Me)
	authed.GET("/sites", contextHandler.Sites)
	authed.POST("/context", contextHandler.Save)
}
