package dedupe

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
	"github.com/notesmith/autotitle/internal/metrics"
)

// DetectRequest is the body of POST /api/v1/duplicates/detect and
// POST /api/v1/duplicates/remove.
type DetectRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Sensitivity string `json:"sensitivity"`
	ExactOnly   bool   `json:"exact_only"`
}

// DetectResponse lists the duplicate lines found.
type DetectResponse struct {
	Matches []Match `json:"matches"`
}

// RemoveResponse carries the rewritten document.
type RemoveResponse struct {
	Content      string `json:"content"`
	RemovedLines int    `json:"removed_lines"`
}

// Handler handles HTTP requests for duplicate title detection.
type Handler struct {
	detector *Detector
	logger   *logger.Logger
}

// NewHandler creates a duplicate detection handler.
func NewHandler(detector *Detector, log *logger.Logger) *Handler {
	return &Handler{
		detector: detector,
		logger:   log,
	}
}

// DetectDuplicates handles POST /api/v1/duplicates/detect.
func (h *Handler) DetectDuplicates(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	matches := h.detector.Detect(req.Title, req.Content, Sensitivity(req.Sensitivity))
	if req.ExactOnly {
		matches = h.detector.ExactOnly(matches)
	}
	if matches == nil {
		matches = []Match{}
	}

	c.JSON(http.StatusOK, DetectResponse{Matches: matches})
}

// RemoveDuplicates handles POST /api/v1/duplicates/remove.
func (h *Handler) RemoveDuplicates(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	matches := h.detector.Detect(req.Title, req.Content, Sensitivity(req.Sensitivity))
	if req.ExactOnly {
		matches = h.detector.ExactOnly(matches)
	}

	content := h.detector.RemoveMatches(req.Content, matches)

	removed := 0
	if content != req.Content {
		removed = len(matches)
		metrics.DuplicateLinesRemoved.Add(float64(removed))
	}

	h.logger.WithContext(c.Request.Context()).Debug("duplicate removal completed",
		slog.Int("matches", len(matches)),
		slog.Int("removed_lines", removed))

	c.JSON(http.StatusOK, RemoveResponse{
		Content:      content,
		RemovedLines: removed,
	})
}

func (h *Handler) bind(c *gin.Context) (DetectRequest, bool) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.AbortWithError(c, apperrors.Validation("invalid request body: %v", err))
		return req, false
	}
	return req, true
}
