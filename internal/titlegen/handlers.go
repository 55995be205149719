package titlegen

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/notesmith/autotitle/internal/config"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
)

// Handler handles HTTP requests for title generation.
type Handler struct {
	generator *Generator
	snapshot  func() config.GenerationConfig
	logger    *logger.Logger
}

// NewHandler creates a title generation handler. snapshot is called once per
// request so every call sees the current settings rather than a stale copy.
func NewHandler(generator *Generator, snapshot func() config.GenerationConfig, log *logger.Logger) *Handler {
	return &Handler{
		generator: generator,
		snapshot:  snapshot,
		logger:    log,
	}
}

// GenerateTitle handles POST /api/v1/titles.
func (h *Handler) GenerateTitle(c *gin.Context) {
	log := h.logger.WithContext(c.Request.Context()).WithComponent("title-handler")

	var req GenerateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", slog.String("error", err.Error()))
		apperrors.AbortWithError(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	cfg := h.snapshot()
	if req.Backend != "" {
		cfg = cfg.WithBackend(req.Backend)
	}
	if req.Model != "" {
		cfg = cfg.WithModel(req.Model)
	}
	if req.MaxLength > 0 {
		cfg = cfg.WithMaxTitleLength(req.MaxLength)
	}

	ctx := logger.WithBackend(c.Request.Context(), cfg.Backend)

	title, err := h.generator.Generate(ctx, req.Content, cfg)
	if err != nil {
		log.Error("title generation failed",
			slog.String("backend", cfg.Backend),
			slog.String("error", err.Error()))
		apperrors.AbortWithError(c, err)
		return
	}

	settings, _ := cfg.Active()

	c.JSON(http.StatusOK, GenerateTitleResponse{
		Title:   title,
		Backend: cfg.Backend,
		Model:   settings.Model,
	})
}
