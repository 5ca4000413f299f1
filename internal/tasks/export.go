// package tasks contains long-running operations composed from the service client
package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/chainydev/chainyctl/internal/formatter"
	"github.com/chainydev/chainyctl/internal/services"
	"github.com/chainydev/chainyctl/internal/shared"
)

// ProgressUpdate reports bulk export progress to an optional channel.
type ProgressUpdate struct {
	Stage   string // fetching, exporting, done, failed
	Current int
	Total   int
	Detail  string
}

// ExportOpts contains configuration for bulk link exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: chainy_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Requests per second (default: 5)
}

// LinkExportResult records the outcome of exporting one link.
type LinkExportResult struct {
	Code    string `json:"code"`
	Success bool   `json:"success"`
	File    string `json:"file,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalLinks        int                `json:"total_links"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	Format            string             `json:"format"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"manifest_path,omitempty"`
	Results           []LinkExportResult `json:"results"`
}

// ExportEngine runs bulk exports against the backend.
type ExportEngine struct {
	svc    services.LinkService
	logger *log.Logger
}

// NewExportEngine creates an [ExportEngine] over the given service.
func NewExportEngine(svc services.LinkService, logger *log.Logger) *ExportEngine {
	return &ExportEngine{svc: svc, logger: logger}
}

// BulkExport fetches each requested link and writes it to disk concurrently.
//
// Workers share a rate limiter so the backend is never hammered, partial
// failures are recorded rather than aborting the run, and a manifest file
// summarizing the results is written last. When codes is empty the full
// link list is fetched and every link is exported.
func (e *ExportEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, codes []string, opts ExportOpts) (*BulkExportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("chainy_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = "json"
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if len(codes) == 0 {
		e.sendProgress(prog, ProgressUpdate{Stage: "fetching", Detail: "listing links"})
		links, err := e.svc.ListLinks(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list links: %w", err)
		}
		for _, link := range links {
			codes = append(codes, link.Code)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalLinks:      len(codes),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		Results:         make([]LinkExportResult, 0, len(codes)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(codes))
	results := make(chan LinkExportResult, len(codes))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	for _, code := range codes {
		jobs <- code
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, ProgressUpdate{Stage: "done", Current: completed, Total: len(codes), Detail: res.Code})
		} else {
			result.FailedExports++
			e.sendProgress(prog, ProgressUpdate{Stage: "failed", Current: completed, Total: len(codes), Detail: res.Code})
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}

	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker exports links from the jobs channel until it is drained.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan string,
	results chan<- LinkExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for code := range jobs {
		select {
		case <-ctx.Done():
			results <- LinkExportResult{Code: code, Error: ctx.Err().Error()}
			continue
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			results <- LinkExportResult{Code: code, Error: err.Error()}
			continue
		}

		results <- e.exportSingleLink(ctx, code, opts)
	}
}

// exportSingleLink fetches one link and writes it in the requested format.
func (e *ExportEngine) exportSingleLink(ctx context.Context, code string, opts ExportOpts) LinkExportResult {
	result := LinkExportResult{Code: code}

	link, err := e.svc.GetLink(ctx, code)
	if err != nil {
		result.Error = fmt.Sprintf("failed to fetch link: %v", err)
		return result
	}
	if link == nil {
		result.Error = fmt.Sprintf("link not found: %s", code)
		return result
	}

	ext := map[string]string{"csv": ".csv", "markdown": ".md", "txt": ".txt", "json": ".json"}[opts.Format]
	path := filepath.Join(opts.OutputDir, code+ext)

	written, err := formatter.WriteExport([]services.Link{*link}, opts.Format, path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to write export: %v", err)
		return result
	}

	result.File = written
	result.Success = true
	return result
}

// sendProgress delivers an update without blocking a slow listener.
func (e *ExportEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
