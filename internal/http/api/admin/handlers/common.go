package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	log "github.com/sirupsen/logrus"
)

// adminID returns the login id of the calling admin.
func adminID(c *gin.Context) string {
	return c.GetString("userID")
}

// parseUintParam parses a numeric path parameter.
func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// writeServiceError maps access errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, access.ErrInvalidInput), errors.Is(err, access.ErrInvalidContext):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, access.ErrRequestNotFound), errors.Is(err, access.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, access.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "request already processed"})
	case errors.Is(err, access.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Errorf("%s failed", action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}
