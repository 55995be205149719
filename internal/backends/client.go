package backends

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/notesmith/autotitle/internal/config"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
)

// DefaultCatalogTimeout bounds model catalogue queries.
const DefaultCatalogTimeout = 10 * time.Second

// Client executes descriptor-built requests against the backends. It is the
// only place in the core that touches the network. All transport and HTTP
// failures are converted into the standardized error taxonomy before being
// returned.
type Client struct {
	httpClient     *http.Client
	catalogTimeout time.Duration
	logger         *logger.Logger
}

// NewClient creates a backend transport client. catalogTimeout bounds
// catalogue queries; generation calls inherit the caller's context deadline.
func NewClient(catalogTimeout time.Duration, log *logger.Logger) *Client {
	if catalogTimeout <= 0 {
		catalogTimeout = DefaultCatalogTimeout
	}

	return &Client{
		httpClient:     &http.Client{},
		catalogTimeout: catalogTimeout,
		logger:         log.WithComponent("backend-client"),
	}
}

// Generate sends one prompt to the named backend and returns the raw
// generated text, before any normalization.
func (c *Client) Generate(ctx context.Context, backendID, prompt string, cfg config.GenerationConfig) (string, error) {
	descriptor, err := Describe(backendID)
	if err != nil {
		return "", err
	}

	settings, ok := cfg.Backends[backendID]
	if !ok {
		return "", apperrors.Configuration("no settings configured for backend %q", backendID)
	}

	req, err := descriptor.BuildGenerationRequest(prompt, cfg, settings)
	if err != nil {
		return "", apperrors.Validation("build generation request for %s: %v", backendID, err)
	}

	body, err := c.do(ctx, backendID, req)
	if err != nil {
		return "", err
	}

	raw, err := descriptor.ParseGenerationResponse(body)
	if err != nil {
		return "", apperrors.Generation(backendID, err.Error())
	}

	return raw, nil
}

// ListModels queries the backend's model catalogue. The call is bounded by
// the catalogue timeout regardless of the caller's context.
func (c *Client) ListModels(ctx context.Context, backendID string, cfg config.GenerationConfig) ([]string, error) {
	descriptor, err := Describe(backendID)
	if err != nil {
		return nil, err
	}

	settings, ok := cfg.Backends[backendID]
	if !ok {
		return nil, apperrors.Configuration("no settings configured for backend %q", backendID)
	}

	if descriptor.RequiresCredential && settings.APIKey == "" {
		return nil, apperrors.Configuration("backend %q requires a credential", backendID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.catalogTimeout)
	defer cancel()

	req := descriptor.BuildCatalogRequest(settings)

	body, err := c.do(ctx, backendID, req)
	if err != nil {
		return nil, err
	}

	models, err := descriptor.ParseCatalogResponse(body)
	if err != nil {
		return nil, apperrors.API(backendID, http.StatusOK, err.Error())
	}

	return models, nil
}

// do executes a descriptor request and returns the response body for 2xx
// responses. Transport failures become NetworkError; non-2xx statuses become
// ApiError carrying the status code and backend id.
func (c *Client) do(ctx context.Context, backendID string, req *Request) ([]byte, error) {
	var reader io.Reader
	if len(req.Body) > 0 {
		reader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return nil, apperrors.Validation("create request for %s: %v", backendID, err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("backend request failed",
			slog.String("backend", backendID),
			slog.String("url", req.URL),
			slog.String("error", err.Error()))
		return nil, apperrors.Network(backendID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Network(backendID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("backend returned non-success status",
			slog.String("backend", backendID),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", time.Since(start)))
		return nil, apperrors.API(backendID, resp.StatusCode, string(body))
	}

	c.logger.Debug("backend request completed",
		slog.String("backend", backendID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	return body, nil
}
