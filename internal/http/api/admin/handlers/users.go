package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
)

// UserHandler lists recorded logins.
type UserHandler struct {
	svc *access.Service
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc *access.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// List returns recorded logins with their roles, grants and last context. The optional q
// query narrows the list to login ids containing it.
func (h *UserHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, errList := h.svc.Users(c.Request.Context(), c.Query("q"), limit)
	if errList != nil {
		writeServiceError(c, errList, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": rows})
}
