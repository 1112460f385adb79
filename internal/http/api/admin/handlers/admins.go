package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	"github.com/itm-platform/itm-access/internal/models"
)

// AdminHandler manages admin role assignments.
type AdminHandler struct {
	svc *access.Service
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *access.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// assignAdminRequest defines the request body for role assignment.
type assignAdminRequest struct {
	Role string `json:"role"`
}

// List returns all admin assignments.
func (h *AdminHandler) List(c *gin.Context) {
	rows, errList := h.svc.Roles.List(c.Request.Context())
	if errList != nil {
		writeServiceError(c, errList, "list admins")
		return
	}
	if rows == nil {
		rows = []models.AdminAssignment{}
	}
	c.JSON(http.StatusOK, gin.H{"admins": rows})
}

// Put assigns ADMIN or MANAGER to a login id.
func (h *AdminHandler) Put(c *gin.Context) {
	var body assignAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	row, errAssign := h.svc.Roles.Assign(c.Request.Context(), c.Param("loginId"), body.Role, adminID(c))
	if errAssign != nil {
		writeServiceError(c, errAssign, "assign admin")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes an admin assignment. Admins cannot remove their own assignment.
func (h *AdminHandler) Delete(c *gin.Context) {
	loginID := strings.TrimSpace(c.Param("loginId"))
	if models.LoginKey(loginID) == models.LoginKey(adminID(c)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove own admin role"})
		return
	}
	removed, errRemove := h.svc.Roles.Remove(c.Request.Context(), loginID)
	if errRemove != nil {
		writeServiceError(c, errRemove, "remove admin")
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
