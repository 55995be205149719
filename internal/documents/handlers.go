package documents

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
)

// RetitleRequest is the body of POST /api/v1/documents/retitle.
type RetitleRequest struct {
	Paths []string `json:"paths" binding:"required,min=1"`
}

// RetitleResponse reports per-document outcomes for the batch.
type RetitleResponse struct {
	Results []Result `json:"results"`
	Errors  []string `json:"errors,omitempty"`
}

// Handler handles HTTP requests for document retitling.
type Handler struct {
	processor *Processor
	logger    *logger.Logger
}

// NewHandler creates a document processing handler.
func NewHandler(processor *Processor, log *logger.Logger) *Handler {
	return &Handler{
		processor: processor,
		logger:    log,
	}
}

// Retitle handles POST /api/v1/documents/retitle.
func (h *Handler) Retitle(c *gin.Context) {
	var req RetitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.AbortWithError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	results, errs := h.processor.RetitleAll(c.Request.Context(), req.Paths)

	resp := RetitleResponse{Results: results}
	for _, err := range errs {
		resp.Errors = append(resp.Errors, err.Error())
	}

	c.JSON(http.StatusOK, resp)
}
