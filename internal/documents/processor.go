package documents

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/notesmith/autotitle/internal/config"
	"github.com/notesmith/autotitle/internal/dedupe"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
	"github.com/notesmith/autotitle/internal/titlegen"
)

// Result reports what the retitle pipeline did to one document.
type Result struct {
	Path         string `json:"path"`
	NewPath      string `json:"new_path"`
	Title        string `json:"title"`
	RemovedLines int    `json:"removed_lines"`
	Renamed      bool   `json:"renamed"`
	Rewritten    bool   `json:"rewritten"`
}

// Processor runs the full retitle pipeline for stored documents: read, draft
// a title, strip near-exact duplicate lines, write back, rename.
type Processor struct {
	generator *titlegen.Generator
	detector  *dedupe.Detector
	store     Store
	snapshot  func() config.GenerationConfig
	logger    *logger.Logger

	// mu serializes batch runs so at most one generation is in flight;
	// backends like local model servers degrade badly under parallel load.
	mu sync.Mutex
}

// NewProcessor creates a document processor.
func NewProcessor(generator *titlegen.Generator, detector *dedupe.Detector, store Store, snapshot func() config.GenerationConfig, log *logger.Logger) *Processor {
	return &Processor{
		generator: generator,
		detector:  detector,
		store:     store,
		snapshot:  snapshot,
		logger:    log.WithComponent("document-processor"),
	}
}

// Retitle runs the pipeline for a single document and returns what changed.
func (p *Processor) Retitle(ctx context.Context, path string) (Result, error) {
	ctx = logger.WithDocument(ctx, path)

	log := p.logger.WithContext(ctx)
	result := Result{Path: path, NewPath: path}

	content, err := p.store.ReadContent(path)
	if err != nil {
		return result, err
	}
	if strings.TrimSpace(content) == "" {
		return result, apperrors.Validation("document %s is empty", path)
	}

	cfg := p.snapshot()

	title, err := p.generator.Generate(ctx, content, cfg)
	if err != nil {
		return result, err
	}
	result.Title = title

	// Only near-exact duplicates are removed automatically; weaker matches
	// need a human in the loop and stay untouched.
	matches := p.detector.ExactOnly(p.detector.Detect(title, content, dedupe.SensitivityNormal))
	if len(matches) > 0 {
		cleaned := p.detector.RemoveMatches(content, matches)
		if cleaned != content {
			if err := p.store.WriteContent(path, cleaned); err != nil {
				return result, err
			}
			result.RemovedLines = len(matches)
			result.Rewritten = true
		}
	}

	newPath := p.uniquePath(path, title)
	if newPath != path {
		if err := p.store.Rename(path, newPath); err != nil {
			return result, err
		}
		result.NewPath = newPath
		result.Renamed = true
	}

	log.Info("document retitled",
		slog.String("path", path),
		slog.String("title", title),
		slog.Bool("renamed", result.Renamed),
		slog.Int("removed_lines", result.RemovedLines))

	return result, nil
}

// RetitleAll processes documents one at a time. A failure is recorded against
// its document and the batch continues.
func (p *Processor) RetitleAll(ctx context.Context, paths []string) ([]Result, []error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx = logger.WithOperation(ctx, "retitle")

	results := make([]Result, 0, len(paths))
	var errs []error

	for _, path := range paths {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		result, err := p.Retitle(ctx, path)
		if err != nil {
			p.logger.LogError(ctx, err, "retitle failed", "path", path)
			errs = append(errs, err)
		}
		results = append(results, result)
	}

	return results, errs
}

// uniquePath builds the renamed path for a title, keeping the original
// extension and directory. Collisions get a numeric suffix.
func (p *Processor) uniquePath(path, title string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)

	name := titlegen.SanitizeFilename(title)

	candidate := joinName(dir, name+ext)
	if candidate == path || !p.store.Exists(candidate) {
		return candidate
	}

	for i := 1; ; i++ {
		candidate = joinName(dir, name+" "+strconv.Itoa(i)+ext)
		if candidate == path || !p.store.Exists(candidate) {
			return candidate
		}
	}
}

func joinName(dir, name string) string {
	if dir == "." {
		return name
	}
	return filepath.Join(dir, name)
}
