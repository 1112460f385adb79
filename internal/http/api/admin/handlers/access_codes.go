package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	"github.com/itm-platform/itm-access/internal/models"
)

// AccessCodeHandler maintains the organization code whitelist.
type AccessCodeHandler struct {
	svc *access.Service
}

// NewAccessCodeHandler constructs an AccessCodeHandler.
func NewAccessCodeHandler(svc *access.Service) *AccessCodeHandler {
	return &AccessCodeHandler{svc: svc}
}

// putAccessCodeRequest defines the request body for code upserts. Active defaults to true.
type putAccessCodeRequest struct {
	Active      *bool  `json:"active"`
	Description string `json:"description"`
}

// List returns all access codes.
func (h *AccessCodeHandler) List(c *gin.Context) {
	rows, errList := h.svc.Codes.List(c.Request.Context())
	if errList != nil {
		writeServiceError(c, errList, "list access codes")
		return
	}
	if rows == nil {
		rows = []models.AccessCode{}
	}
	c.JSON(http.StatusOK, gin.H{"codes": rows})
}

// Put creates or updates an access code.
func (h *AccessCodeHandler) Put(c *gin.Context) {
	var body putAccessCodeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	active := true
	if body.Active != nil {
		active = *body.Active
	}
	row, errPut := h.svc.Codes.Put(c.Request.Context(), access.CodeInput{
		Kind:        c.Param("kind"),
		Code:        c.Param("code"),
		Active:      active,
		Description: body.Description,
	})
	if errPut != nil {
		writeServiceError(c, errPut, "save access code")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes an access code.
func (h *AccessCodeHandler) Delete(c *gin.Context) {
	deleted, errDelete := h.svc.Codes.Delete(c.Request.Context(), c.Param("kind"), c.Param("code"))
	if errDelete != nil {
		writeServiceError(c, errDelete, "delete access code")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
