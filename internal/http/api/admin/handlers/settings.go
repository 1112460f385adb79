package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/models"
	"github.com/itm-platform/itm-access/internal/settings"
)

// SettingHandler reads and writes operator settings.
type SettingHandler struct {
	store *settings.Store
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(store *settings.Store) *SettingHandler {
	return &SettingHandler{store: store}
}

type putSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// List returns all stored settings.
func (h *SettingHandler) List(c *gin.Context) {
	rows, errList := h.store.All(c.Request.Context())
	if errList != nil {
		writeServiceError(c, errList, "list settings")
		return
	}
	if rows == nil {
		rows = []models.Setting{}
	}
	c.JSON(http.StatusOK, gin.H{"settings": rows})
}

// Put stores a setting value.
func (h *SettingHandler) Put(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	var body putSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || len(body.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing value"})
		return
	}
	if errPut := h.store.Put(c.Request.Context(), key, body.Value, adminID(c)); errPut != nil {
		if errors.Is(errPut, settings.ErrInvalidSetting) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errPut.Error()})
			return
		}
		writeServiceError(c, errPut, "save setting")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": body.Value})
}
