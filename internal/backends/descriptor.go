package backends

import (
	"sort"

	"github.com/notesmith/autotitle/internal/config"
	apperrors "github.com/notesmith/autotitle/internal/errors"
)

// Request is a backend-agnostic outbound HTTP request produced by a
// descriptor's builder functions. The transport client executes it without
// knowing which backend it belongs to.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Descriptor fully encapsulates how to talk to one AI backend. The title
// generator and the model cache dispatch through these functions and never
// branch on backend identity themselves. Adding a backend means adding one
// entry to the table, nothing else.
type Descriptor struct {
	// ID is the backend identifier used in configuration and API paths.
	ID string

	// RequiresCredential is true when the backend refuses unauthenticated
	// requests. Local runtimes like ollama leave it false.
	RequiresCredential bool

	// BuildGenerationRequest builds the outbound request for one prompt.
	BuildGenerationRequest func(prompt string, cfg config.GenerationConfig, settings config.BackendSettings) (*Request, error)

	// ParseGenerationResponse extracts the raw generated text from a
	// successful response body.
	ParseGenerationResponse func(body []byte) (string, error)

	// BuildCatalogRequest builds the model catalogue query.
	BuildCatalogRequest func(settings config.BackendSettings) *Request

	// ParseCatalogResponse extracts the model name list from a successful
	// catalogue response body.
	ParseCatalogResponse func(body []byte) ([]string, error)
}

// Describe returns the descriptor for a backend id.
func Describe(id string) (*Descriptor, error) {
	descriptor, ok := table[id]
	if !ok {
		return nil, apperrors.Configuration("unsupported backend %q", id)
	}
	return descriptor, nil
}

// IDs returns the ids of all registered backends, sorted.
func IDs() []string {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// dedupeAndSort removes duplicate model names (case-sensitive) and sorts the
// remainder lexicographically.
func dedupeAndSort(models []string) []string {
	seen := make(map[string]struct{}, len(models))
	out := make([]string, 0, len(models))

	for _, model := range models {
		if model == "" {
			continue
		}
		if _, exists := seen[model]; exists {
			continue
		}
		seen[model] = struct{}{}
		out = append(out, model)
	}

	sort.Strings(out)

	return out
}
