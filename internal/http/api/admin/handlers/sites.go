package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	"github.com/itm-platform/itm-access/internal/models"
)

// SiteHandler maintains the site/sdwt reference rows.
type SiteHandler struct {
	svc *access.Service
}

// NewSiteHandler constructs a SiteHandler.
func NewSiteHandler(svc *access.Service) *SiteHandler {
	return &SiteHandler{svc: svc}
}

type createSiteRequest struct {
	Site        string `json:"site"`
	Sdwt        string `json:"sdwt"`
	Description string `json:"description"`
}

type updateSiteRequest struct {
	IsUse *bool `json:"isUse"`
}

// List returns every reference row including unselectable ones.
func (h *SiteHandler) List(c *gin.Context) {
	rows, errList := h.svc.Contexts.AllSites(c.Request.Context())
	if errList != nil {
		writeServiceError(c, errList, "list sites")
		return
	}
	if rows == nil {
		rows = []models.Sdwt{}
	}
	c.JSON(http.StatusOK, gin.H{"sites": rows})
}

// Create adds a reference row.
func (h *SiteHandler) Create(c *gin.Context) {
	var body createSiteRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	row, errCreate := h.svc.Contexts.CreateSite(c.Request.Context(), body.Site, body.Sdwt, body.Description)
	if errCreate != nil {
		writeServiceError(c, errCreate, "create site")
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Update toggles whether a reference row is selectable.
func (h *SiteHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var body updateSiteRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.IsUse == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing isUse"})
		return
	}
	row, errUpdate := h.svc.Contexts.SetSiteUse(c.Request.Context(), id, *body.IsUse)
	if errUpdate != nil {
		writeServiceError(c, errUpdate, "update site")
		return
	}
	c.JSON(http.StatusOK, row)
}
