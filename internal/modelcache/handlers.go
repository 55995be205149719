package modelcache

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/notesmith/autotitle/internal/backends"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
)

// CatalogResponse is the JSON shape of a model catalogue read.
type CatalogResponse struct {
	Backend     string    `json:"backend"`
	Models      []string  `json:"models"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Loading     bool      `json:"loading"`
}

// Handler handles HTTP requests for model catalogues.
type Handler struct {
	cache  *Cache
	logger *logger.Logger
}

// NewHandler creates a model catalogue handler.
func NewHandler(cache *Cache, log *logger.Logger) *Handler {
	return &Handler{
		cache:  cache,
		logger: log,
	}
}

// GetModels handles GET /api/v1/models/:backend.
func (h *Handler) GetModels(c *gin.Context) {
	backendID := c.Param("backend")

	if _, err := backends.Describe(backendID); err != nil {
		apperrors.AbortWithError(c, err)
		return
	}

	models := h.cache.GetModels(c.Request.Context(), backendID)

	c.JSON(http.StatusOK, h.catalogResponse(backendID, models))
}

// RefreshModels handles POST /api/v1/models/:backend/refresh.
func (h *Handler) RefreshModels(c *gin.Context) {
	backendID := c.Param("backend")

	if _, err := backends.Describe(backendID); err != nil {
		apperrors.AbortWithError(c, err)
		return
	}

	models := h.cache.RefreshModels(c.Request.Context(), backendID)

	c.JSON(http.StatusOK, h.catalogResponse(backendID, models))
}

// ClearCache handles DELETE /api/v1/models.
func (h *Handler) ClearCache(c *gin.Context) {
	h.cache.Clear()
	c.Status(http.StatusNoContent)
}

func (h *Handler) catalogResponse(backendID string, models []string) CatalogResponse {
	resp := CatalogResponse{
		Backend: backendID,
		Models:  models,
		Loading: h.cache.IsLoading(backendID),
	}

	if entry, ok := h.cache.Lookup(backendID); ok {
		resp.LastUpdated = entry.LastUpdated
		resp.LastError = entry.LastError
	}

	return resp
}
