package titlegen

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/notesmith/autotitle/internal/backends"
	"github.com/notesmith/autotitle/internal/config"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
	"github.com/notesmith/autotitle/internal/metrics"
	"github.com/notesmith/autotitle/internal/normalizer"
)

// backendClient dispatches a prompt to a backend and returns the raw
// completion text. Satisfied by *backends.Client.
type backendClient interface {
	Generate(ctx context.Context, backendID, prompt string, cfg config.GenerationConfig) (string, error)
}

// Generator turns document content into a short, filesystem-legal title.
//
// Each call walks a fixed pipeline: validate config, draft a title from the
// truncated content, normalize the raw completion, and if the result is over
// the length budget, perform exactly one refinement round-trip before
// post-processing. Worst case is therefore two model calls per title; the
// final truncation is the safety net, never an error.
type Generator struct {
	client backendClient
	logger *logger.Logger
}

// NewGenerator creates a title generator dispatching through client.
func NewGenerator(client backendClient, log *logger.Logger) *Generator {
	return &Generator{
		client: client,
		logger: log.WithComponent("title-generator"),
	}
}

// Generate produces a sanitized, length-bounded title for content using the
// snapshot cfg. There is no automatic retry: transport and API failures
// abort the pipeline and are returned classified.
func (g *Generator) Generate(ctx context.Context, content string, cfg config.GenerationConfig) (string, error) {
	start := time.Now()

	title, err := g.generate(ctx, content, cfg)
	if err != nil {
		metrics.TitleGenerationFailures.WithLabelValues(cfg.Backend, string(apperrors.KindOf(err))).Inc()
		return "", err
	}

	metrics.TitlesGenerated.WithLabelValues(cfg.Backend).Inc()
	metrics.TitleGenerationDuration.WithLabelValues(cfg.Backend).Observe(time.Since(start).Seconds())

	return title, nil
}

func (g *Generator) generate(ctx context.Context, content string, cfg config.GenerationConfig) (string, error) {
	log := g.logger.WithContext(ctx)

	// Validating: no network call is made for a broken configuration.
	if err := validate(cfg); err != nil {
		return "", err
	}

	// Drafting
	prompt := renderInitialPrompt(cfg, truncateContent(content, cfg.MaxContentLength))

	raw, err := g.client.Generate(ctx, cfg.Backend, prompt, cfg)
	if err != nil {
		return "", err
	}

	// Normalizing
	title := normalizer.Normalize(raw)
	if title == "" {
		return "", apperrors.Generation(cfg.Backend, "backend returned no usable text")
	}

	// CheckLength: at most one refinement round-trip, then truncation takes
	// over regardless of the refined length.
	if utf8.RuneCountInString(title) > cfg.MaxTitleLength {
		log.Debug("title over budget, refining once",
			slog.String("title", title),
			slog.Int("max_length", cfg.MaxTitleLength))

		raw, err = g.client.Generate(ctx, cfg.Backend, renderRefinePrompt(cfg, title), cfg)
		if err != nil {
			return "", err
		}

		if refined := normalizer.Normalize(raw); refined != "" {
			title = refined
		}
	}

	// PostProcessing
	title = PostProcess(title, cfg)

	log.Debug("title generated",
		slog.String("backend", cfg.Backend),
		slog.String("title", title))

	return title, nil
}

// validate confirms the active backend is usable before any network access.
func validate(cfg config.GenerationConfig) error {
	descriptor, err := backends.Describe(cfg.Backend)
	if err != nil {
		return err
	}

	settings, ok := cfg.Active()
	if !ok {
		return apperrors.Configuration("no settings configured for backend %q", cfg.Backend)
	}

	if settings.BaseURL == "" {
		return apperrors.Configuration("backend %q has no endpoint configured", cfg.Backend)
	}

	if descriptor.RequiresCredential && settings.APIKey == "" {
		return apperrors.Configuration("backend %q requires a credential", cfg.Backend)
	}

	if settings.Model == "" {
		return apperrors.Configuration("no model selected for backend %q", cfg.Backend)
	}

	if cfg.MaxTitleLength <= 0 {
		return apperrors.Configuration("max title length must be positive, got %d", cfg.MaxTitleLength)
	}

	return nil
}

// truncateContent cuts content to a rune prefix. Word boundaries only matter
// for the final title truncation, not here.
func truncateContent(content string, maxLength int) string {
	runes := []rune(content)
	if len(runes) <= maxLength {
		return content
	}
	return string(runes[:maxLength])
}

// renderInitialPrompt substitutes {max_length} and appends the content. A
// template missing its placeholder is sent as-is.
func renderInitialPrompt(cfg config.GenerationConfig, content string) string {
	prompt := strings.ReplaceAll(cfg.InitialPrompt, config.PlaceholderMaxLength, strconv.Itoa(cfg.MaxTitleLength))
	return prompt + "\n\n" + content
}

// renderRefinePrompt substitutes {max_length} and {title}. No document
// content is attached to refinement prompts.
func renderRefinePrompt(cfg config.GenerationConfig, title string) string {
	prompt := strings.ReplaceAll(cfg.RefinePrompt, config.PlaceholderMaxLength, strconv.Itoa(cfg.MaxTitleLength))
	return strings.ReplaceAll(prompt, config.PlaceholderTitle, title)
}
