package modelcache

import (
	"context"
	"testing"
	"time"

	"github.com/notesmith/autotitle/internal/config"
	apperrors "github.com/notesmith/autotitle/internal/errors"
	"github.com/notesmith/autotitle/internal/logger"
)

// fakeCatalog replays a fixed model list or error and counts queries.
type fakeCatalog struct {
	models []string
	err    error
	calls  int
}

func (f *fakeCatalog) ListModels(_ context.Context, _ string, _ config.GenerationConfig) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func testSnapshot() func() config.GenerationConfig {
	cfg := config.DefaultGenerationConfig()
	return func() config.GenerationConfig { return cfg }
}

func testCacheLogger() *logger.Logger {
	return logger.New(logger.FromConfig("error", "text"))
}

func TestGetModels_FreshEntrySkipsQuery(t *testing.T) {
	catalog := &fakeCatalog{models: []string{"llama3.1", "mistral"}}
	cache := New(catalog, testSnapshot(), time.Hour, testCacheLogger())

	base := time.Now()
	cache.now = func() time.Time { return base }

	models := cache.GetModels(context.Background(), "ollama")
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if catalog.calls != 1 {
		t.Fatalf("expected 1 query, got %d", catalog.calls)
	}

	// Thirty minutes later the entry is still fresh.
	cache.now = func() time.Time { return base.Add(30 * time.Minute) }

	cache.GetModels(context.Background(), "ollama")
	if catalog.calls != 1 {
		t.Errorf("expected no new query for a fresh entry, got %d", catalog.calls)
	}
}

func TestGetModels_StaleEntryQueriesAgain(t *testing.T) {
	catalog := &fakeCatalog{models: []string{"llama3.1"}}
	cache := New(catalog, testSnapshot(), time.Hour, testCacheLogger())

	base := time.Now()
	cache.now = func() time.Time { return base }

	cache.GetModels(context.Background(), "ollama")

	cache.now = func() time.Time { return base.Add(61 * time.Minute) }

	cache.GetModels(context.Background(), "ollama")
	if catalog.calls != 2 {
		t.Errorf("expected stale entry to trigger a query, got %d calls", catalog.calls)
	}
}

func TestGetModels_FailurePreservesCachedList(t *testing.T) {
	catalog := &fakeCatalog{models: []string{"a", "b"}}
	cache := New(catalog, testSnapshot(), time.Hour, testCacheLogger())

	base := time.Now()
	cache.now = func() time.Time { return base }

	cache.GetModels(context.Background(), "ollama")

	// The backend goes away; stale reads keep serving the old list.
	catalog.err = apperrors.Network("ollama", context.DeadlineExceeded)
	cache.now = func() time.Time { return base.Add(2 * time.Hour) }

	models := cache.GetModels(context.Background(), "ollama")
	if len(models) != 2 || models[0] != "a" || models[1] != "b" {
		t.Errorf("expected previous list preserved, got %v", models)
	}

	entry, ok := cache.Lookup("ollama")
	if !ok {
		t.Fatal("expected a cache entry")
	}
	if entry.LastError == "" {
		t.Error("expected the failure to be recorded")
	}
	if !entry.LastUpdated.Equal(base) {
		t.Errorf("expected LastUpdated unchanged at %v, got %v", base, entry.LastUpdated)
	}
}

func TestGetModels_SuccessClearsRecordedError(t *testing.T) {
	catalog := &fakeCatalog{err: apperrors.Network("ollama", context.DeadlineExceeded)}
	cache := New(catalog, testSnapshot(), time.Hour, testCacheLogger())

	cache.GetModels(context.Background(), "ollama")

	entry, _ := cache.Lookup("ollama")
	if entry.LastError == "" {
		t.Fatal("expected recorded error after failed query")
	}

	catalog.err = nil
	catalog.models = []string{"llama3.1"}

	cache.GetModels(context.Background(), "ollama")

	entry, _ = cache.Lookup("ollama")
	if entry.LastError != "" {
		t.Errorf("expected error cleared after success, got %q", entry.LastError)
	}
}

func TestRefreshModels_IgnoresFreshness(t *testing.T) {
	catalog := &fakeCatalog{models: []string{"llama3.1"}}
	cache := New(catalog, testSnapshot(), time.Hour, testCacheLogger())

	cache.GetModels(context.Background(), "ollama")
	cache.RefreshModels(context.Background(), "ollama")

	if catalog.calls != 2 {
		t.Errorf("expected refresh to query unconditionally, got %d calls", catalog.calls)
	}
}

func TestRefreshModels_LoadingFlagCleared(t *testing.T) {
	catalog := &fakeCatalog{err: apperrors.Network("ollama", context.DeadlineExceeded)}
	cache := New(catalog, testSnapshot(), time.Hour, testCacheLogger())

	cache.RefreshModels(context.Background(), "ollama")

	// Cleared even when the query failed.
	if cache.IsLoading("ollama") {
		t.Error("expected loading flag cleared after refresh")
	}
}

func TestClear_DropsAllEntries(t *testing.T) {
	catalog := &fakeCatalog{models: []string{"llama3.1"}}
	cache := New(catalog, testSnapshot(), time.Hour, testCacheLogger())

	cache.GetModels(context.Background(), "ollama")
	cache.Clear()

	if _, ok := cache.Lookup("ollama"); ok {
		t.Error("expected no entries after Clear")
	}

	cache.GetModels(context.Background(), "ollama")
	if catalog.calls != 2 {
		t.Errorf("expected a live query after Clear, got %d calls", catalog.calls)
	}
}

func TestGetModels_ReturnedSliceIsACopy(t *testing.T) {
	catalog := &fakeCatalog{models: []string{"llama3.1", "mistral"}}
	cache := New(catalog, testSnapshot(), time.Hour, testCacheLogger())

	first := cache.GetModels(context.Background(), "ollama")
	first[0] = "mutated"

	second := cache.GetModels(context.Background(), "ollama")
	if second[0] != "llama3.1" {
		t.Errorf("cached list was mutated through a returned slice: %v", second)
	}
}

func TestEntry_Fresh(t *testing.T) {
	now := time.Now()

	empty := Entry{LastUpdated: now}
	if empty.Fresh(now, time.Hour) {
		t.Error("entry with no models must not be fresh")
	}

	populated := Entry{Models: []string{"m"}, LastUpdated: now.Add(-30 * time.Minute)}
	if !populated.Fresh(now, time.Hour) {
		t.Error("populated entry within TTL must be fresh")
	}

	stale := Entry{Models: []string{"m"}, LastUpdated: now.Add(-2 * time.Hour)}
	if stale.Fresh(now, time.Hour) {
		t.Error("entry past TTL must not be fresh")
	}
}
