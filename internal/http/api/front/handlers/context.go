package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	apphttp "github.com/itm-platform/itm-access/internal/http"
	"github.com/itm-platform/itm-access/internal/models"
	"github.com/itm-platform/itm-access/internal/security"
	log "github.com/sirupsen/logrus"
)

// ContextHandler serves the session user's operating context.
type ContextHandler struct {
	svc    *access.Service
	issuer *security.Issuer
}

// NewContextHandler constructs a ContextHandler.
func NewContextHandler(svc *access.Service, issuer *security.Issuer) *ContextHandler {
	return &ContextHandler{svc: svc, issuer: issuer}
}

// saveContextRequest defines the request body for context selection.
type saveContextRequest struct {
	Site string `json:"site"`
	Sdwt string `json:"sdwt"`
}

// Save stores the selected site and sdwt and returns a session token carrying them.
func (h *ContextHandler) Save(c *gin.Context) {
	claims, ok := apphttp.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var body saveContextRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Site) == "" || strings.TrimSpace(body.Sdwt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing site or sdwt"})
		return
	}

	saved, errSave := h.svc.SaveUserContext(c.Request.Context(), getUserID(c), body.Site, body.Sdwt)
	if errSave != nil {
		writeServiceError(c, errSave, "save context")
		return
	}

	refreshed := *claims
	refreshed.Site = saved.Sdwt.Site
	refreshed.Sdwt = saved.Sdwt.Sdwt
	token, errToken := h.issuer.IssueSession(refreshed)
	if errToken != nil {
		log.WithError(errToken).Error("reissue session token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"site":      saved.Sdwt.Site,
		"sdwt":      saved.Sdwt.Sdwt,
		"updatedAt": saved.UpdatedAt,
		"token":     token,
	})
}

// Sites lists selectable site/sdwt pairs.
func (h *ContextHandler) Sites(c *gin.Context) {
	rows, errList := h.svc.Contexts.Sites(c.Request.Context())
	if errList != nil {
		log.WithError(errList).Error("list sites failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list sites failed"})
		return
	}
	if rows == nil {
		rows = []models.Sdwt{}
	}
	c.JSON(http.StatusOK, gin.H{"sites": rows})
}

// Me returns the claims of the current session.
func (h *ContextHandler) Me(c *gin.Context) {
	claims, ok := apphttp.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groups := claims.Groups
	if groups == nil {
		groups = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":      claims.UserID,
		"name":        claims.Name,
		"email":       claims.Email,
		"role":        claims.Role,
		"groups":      groups,
		"department":  claims.Department,
		"companyCode": claims.CompanyCode,
		"site":        claims.Site,
		"sdwt":        claims.Sdwt,
	})
}
