package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	"github.com/itm-platform/itm-access/internal/models"
	"github.com/itm-platform/itm-access/internal/settings"
)

// GuestHandler maintains guest grants directly, outside the request workflow.
type GuestHandler struct {
	svc      *access.Service
	settings *settings.Store
}

// NewGuestHandler constructs a GuestHandler.
func NewGuestHandler(svc *access.Service, store *settings.Store) *GuestHandler {
	return &GuestHandler{svc: svc, settings: store}
}

// putGuestRequest defines the request body for manual grants. Role falls back to the
// DEFAULT_GUEST_ROLE setting; validUntil to now plus DEFAULT_GUEST_DAYS.
type putGuestRequest struct {
	Role       string     `json:"role"`
	ValidUntil *time.Time `json:"validUntil"`
	DeptCode   string     `json:"deptCode"`
	DeptName   string     `json:"deptName"`
	Reason     string     `json:"reason"`
}

// List returns all guest grants including expired ones.
func (h *GuestHandler) List(c *gin.Context) {
	rows, errList := h.svc.Grants.List(c.Request.Context())
	if errList != nil {
		writeServiceError(c, errList, "list guests")
		return
	}
	now := time.Now().UTC()
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		out = append(out, gin.H{
			"loginId":     row.LoginID,
			"grantedRole": row.GrantedRole,
			"deptCode":    row.DepartmentCode,
			"deptName":    row.DepartmentName,
			"reason":      row.Reason,
			"validUntil":  row.ValidUntil,
			"createdAt":   row.CreatedAt,
			"active":      row.ActiveAt(now),
		})
	}
	c.JSON(http.StatusOK, gin.H{"guests": out})
}

// Put creates or replaces the grant of a login id.
func (h *GuestHandler) Put(c *gin.Context) {
	var body putGuestRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ctx := c.Request.Context()

	role, validUntil, ok := grantDefaults(c, h.settings, body.Role, body.ValidUntil)
	if !ok {
		return
	}

	grant, errGrant := h.svc.Grants.UpsertGrant(ctx, access.GrantInput{
		LoginID:        c.Param("loginId"),
		Role:           role,
		ValidUntil:     validUntil,
		DepartmentCode: strings.TrimSpace(body.DeptCode),
		DepartmentName: strings.TrimSpace(body.DeptName),
		Reason:         strings.TrimSpace(body.Reason),
	})
	if errGrant != nil {
		writeServiceError(c, errGrant, "grant guest")
		return
	}
	c.JSON(http.StatusOK, grant)
}

// Delete revokes the grant of a login id.
func (h *GuestHandler) Delete(c *gin.Context) {
	deleted, errDelete := h.svc.Grants.Delete(c.Request.Context(), c.Param("loginId"))
	if errDelete != nil {
		writeServiceError(c, errDelete, "revoke guest")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// grantDefaults fills the role from DEFAULT_GUEST_ROLE and validUntil from
// DEFAULT_GUEST_DAYS. It writes the error response itself and reports false on failure.
func grantDefaults(c *gin.Context, store *settings.Store, role string, validUntil *time.Time) (string, time.Time, bool) {
	ctx := c.Request.Context()
	role = strings.TrimSpace(role)
	if role == "" {
		var errRole error
		role, errRole = store.String(ctx, settings.DefaultGuestRoleKey, settings.DefaultGuestRole)
		if errRole != nil {
			writeServiceError(c, errRole, "read default guest role")
			return "", time.Time{}, false
		}
	}
	if r := models.NormalizeRole(role); r == models.RoleAdmin || r == models.RoleManager {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guest grants cannot confer admin roles"})
		return "", time.Time{}, false
	}
	if validUntil != nil && !validUntil.IsZero() {
		return role, validUntil.UTC(), true
	}
	days, errDays := store.Int(ctx, settings.DefaultGuestDaysKey, settings.DefaultGuestDays)
	if errDays != nil {
		writeServiceError(c, errDays, "read default guest days")
		return "", time.Time{}, false
	}
	return role, time.Now().UTC().AddDate(0, 0, days), true
}
