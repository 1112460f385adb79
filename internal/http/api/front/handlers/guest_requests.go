package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	"github.com/itm-platform/itm-access/internal/models"
	"github.com/itm-platform/itm-access/internal/security"
)

// GuestRequestHandler accepts guest access applications from denied principals.
type GuestRequestHandler struct {
	svc    *access.Service
	issuer *security.Issuer
}

// NewGuestRequestHandler constructs a GuestRequestHandler.
func NewGuestRequestHandler(svc *access.Service, issuer *security.Issuer) *GuestRequestHandler {
	return &GuestRequestHandler{svc: svc, issuer: issuer}
}

// submitGuestRequest defines the request body for guest applications. The ticket is the
// one handed out with the login denial; it pins the login id.
type submitGuestRequest struct {
	Ticket   string `json:"ticket"`
	Reason   string `json:"reason"`
	DeptCode string `json:"deptCode"`
	DeptName string `json:"deptName"`
}

// Submit files a guest request, or reports the pending one.
func (h *GuestRequestHandler) Submit(c *gin.Context) {
	var body submitGuestRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ticket := strings.TrimSpace(body.Ticket)
	if ticket == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing ticket"})
		return
	}
	claims, errTicket := h.issuer.ParseTicket(ticket)
	if errTicket != nil {
		if errors.Is(errTicket, security.ErrExpiredToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ticket expired"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ticket"})
		return
	}

	if strings.TrimSpace(body.Reason) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing reason"})
		return
	}

	deptCode := strings.TrimSpace(body.DeptCode)
	if deptCode == "" {
		deptCode = claims.DepartmentCode
	}
	deptName := strings.TrimSpace(body.DeptName)
	if deptName == "" {
		deptName = claims.DepartmentName
	}

	result, errSubmit := h.svc.SubmitGuestRequest(c.Request.Context(), access.SubmitInput{
		LoginID:        claims.LoginID,
		DepartmentCode: deptCode,
		DepartmentName: deptName,
		Reason:         body.Reason,
	})
	if errSubmit != nil {
		writeServiceError(c, errSubmit, "submit guest request")
		return
	}

	status := http.StatusCreated
	if result.AlreadyPending {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"reqId":          result.Request.ReqID,
		"status":         result.Request.Status,
		"alreadyPending": result.AlreadyPending,
		"createdAt":      result.Request.CreatedAt,
	})
}

// AccessCodes lists the effective organization codes so the login page can explain the gate.
func (h *GuestRequestHandler) AccessCodes(c *gin.Context) {
	rows, errList := h.svc.Codes.List(c.Request.Context())
	if errList != nil {
		writeServiceError(c, errList, "list access codes")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		if !row.Effective() {
			continue
		}
		out = append(out, gin.H{
			"kind":        row.Kind,
			"code":        row.Code,
			"description": row.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{"codes": out, "kinds": []string{models.AccessCodeKindCompany, models.AccessCodeKindDepartment}})
}
