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

// GuestRequestHandler processes guest access applications.
type GuestRequestHandler struct {
	svc      *access.Service
	settings *settings.Store
}

// NewGuestRequestHandler constructs a GuestRequestHandler.
func NewGuestRequestHandler(svc *access.Service, store *settings.Store) *GuestRequestHandler {
	return &GuestRequestHandler{svc: svc, settings: store}
}

// approveGuestRequest defines the request body for approvals.
type approveGuestRequest struct {
	ValidUntil *time.Time `json:"validUntil"`
	Role       string     `json:"role"`
}

// List returns guest requests, optionally filtered by ?status=.
func (h *GuestRequestHandler) List(c *gin.Context) {
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	switch status {
	case "", models.GuestRequestPending, models.GuestRequestApproved, models.GuestRequestRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	rows, errList := h.svc.Requests.List(c.Request.Context(), status)
	if errList != nil {
		writeServiceError(c, errList, "list guest requests")
		return
	}
	if rows == nil {
		rows = []models.GuestRequest{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": rows})
}

// Get returns one guest request.
func (h *GuestRequestHandler) Get(c *gin.Context) {
	reqID, ok := parseUintParam(c, "reqId")
	if !ok {
		return
	}
	row, errGet := h.svc.Requests.Get(c.Request.Context(), reqID)
	if errGet != nil {
		writeServiceError(c, errGet, "get guest request")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Events returns the transition history of a guest request.
func (h *GuestRequestHandler) Events(c *gin.Context) {
	reqID, ok := parseUintParam(c, "reqId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, errGet := h.svc.Requests.Get(ctx, reqID); errGet != nil {
		writeServiceError(c, errGet, "get guest request")
		return
	}
	rows, errEvents := h.svc.Requests.Events(ctx, reqID)
	if errEvents != nil {
		writeServiceError(c, errEvents, "list guest request events")
		return
	}
	if rows == nil {
		rows = []models.GuestRequestEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": rows})
}

// Approve approves a pending request. An empty body grants the default role for the
// default number of days.
func (h *GuestRequestHandler) Approve(c *gin.Context) {
	reqID, ok := parseUintParam(c, "reqId")
	if !ok {
		return
	}
	var body approveGuestRequest
	if c.Request.ContentLength != 0 {
		if errBind := c.ShouldBindJSON(&body); errBind != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}
	ctx := c.Request.Context()

	role, validUntil, ok := grantDefaults(c, h.settings, body.Role, body.ValidUntil)
	if !ok {
		return
	}

	row, errApprove := h.svc.ApproveGuestRequest(ctx, reqID, validUntil, role, adminID(c))
	if errApprove != nil {
		writeServiceError(c, errApprove, "approve guest request")
		return
	}
	c.JSON(http.StatusOK, row)
}

// Reject rejects a pending request.
func (h *GuestRequestHandler) Reject(c *gin.Context) {
	reqID, ok := parseUintParam(c, "reqId")
	if !ok {
		return
	}
	row, errReject := h.svc.RejectGuestRequest(c.Request.Context(), reqID, adminID(c))
	if errReject != nil {
		writeServiceError(c, errReject, "reject guest request")
		return
	}
	c.JSON(http.StatusOK, row)
}
