package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	log "github.com/sirupsen/logrus"
)

// getUserID extracts the session user id from gin context.
func getUserID(c *gin.Context) string {
	return c.GetString("userID")
}

// writeServiceError maps access errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, access.ErrInvalidContext):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid site or sdwt"})
	case errors.Is(err, access.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, access.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, access.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "request already processed"})
	default:
		log.WithError(err).Errorf("%s failed", action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}
