package tasks

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/chainydev/chainyctl/internal/services"
	"github.com/chainydev/chainyctl/internal/shared"
	itesting "github.com/chainydev/chainyctl/internal/testing"
)

func TestBulkExport(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	links := []services.Link{
		{Code: "aaa", Target: "https://example.com/a"},
		{Code: "bbb", Target: "https://example.com/b"},
		{Code: "ccc", Target: "https://example.com/c"},
	}

	t.Run("exports the requested codes and writes a manifest", func(t *testing.T) {
		engine := NewExportEngine(&itesting.MockLinkService{Links: links}, logger)
		dir := t.TempDir()

		result, err := engine.BulkExport(ctx, nil, []string{"aaa", "bbb"}, ExportOpts{
			Format:    "json",
			OutputDir: dir,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalLinks != 2 || result.SuccessfulExports != 2 || result.FailedExports != 0 {
			t.Errorf("unexpected summary: %+v", result)
		}

		itesting.AssertFileExists(t, filepath.Join(dir, "aaa.json"))
		itesting.AssertFileExists(t, filepath.Join(dir, "bbb.json"))
		itesting.AssertFileExists(t, result.ManifestPath)
	})

	t.Run("exports everything when no codes are given", func(t *testing.T) {
		engine := NewExportEngine(&itesting.MockLinkService{Links: links}, logger)
		dir := t.TempDir()

		result, err := engine.BulkExport(ctx, nil, nil, ExportOpts{Format: "txt", OutputDir: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalLinks != 3 || result.SuccessfulExports != 3 {
			t.Errorf("unexpected summary: %+v", result)
		}
		itesting.AssertFileExists(t, filepath.Join(dir, "ccc.txt"))
	})

	t.Run("records partial failures without aborting", func(t *testing.T) {
		svc := &itesting.MockLinkService{
			Links: links[:1],
			Err:   errors.New("backend hiccup"),
		}
		engine := NewExportEngine(svc, logger)
		dir := t.TempDir()

		result, err := engine.BulkExport(ctx, nil, []string{"aaa", "missing"}, ExportOpts{
			Format:    "json",
			OutputDir: dir,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("unexpected summary: %+v", result)
		}
	})

	t.Run("reports progress to a listener", func(t *testing.T) {
		engine := NewExportEngine(&itesting.MockLinkService{Links: links}, logger)
		prog := make(chan ProgressUpdate, 16)

		_, err := engine.BulkExport(ctx, prog, []string{"aaa"}, ExportOpts{
			Format:    "json",
			OutputDir: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(prog)

		var seen int
		for range prog {
			seen++
		}
		if seen == 0 {
			t.Error("expected at least one progress update")
		}
	})

	t.Run("fails without a service", func(t *testing.T) {
		engine := NewExportEngine(nil, logger)

		if _, err := engine.BulkExport(ctx, nil, nil, ExportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected a service unavailable error, got %v", err)
		}
	})
}
