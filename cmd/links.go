package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chainydev/chainyctl/internal/models"
	"github.com/chainydev/chainyctl/internal/services"
	"github.com/chainydev/chainyctl/internal/shared"
	"github.com/chainydev/chainyctl/internal/tasks"
)

// LinksList fetches the account's links and prints them.
//
// A successful fetch refreshes the local cache so --cached keeps working
// when the backend is down.
func (r *Runner) LinksList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("cached") {
		return r.listCached(cmd)
	}

	links, err := r.svc.ListLinks(ctx)
	if err != nil {
		return r.renderLinkError(err)
	}

	if r.links != nil {
		if err := r.links.Replace(toModelLinks(links)); err != nil {
			r.logger.Warn("failed to refresh link cache", "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(links, cmd.Bool("pretty"))
	}

	r.writeLinkTable(links)
	return nil
}

// listCached serves links from the local database without network access.
func (r *Runner) listCached(cmd *cli.Command) error {
	if r.links == nil {
		return fmt.Errorf("%w: cache not available", shared.ErrConfiguration)
	}

	cached, err := r.links.List(map[string]any{})
	if err != nil {
		return fmt.Errorf("failed to read link cache: %w", err)
	}

	links := make([]services.Link, 0, len(cached))
	for _, link := range cached {
		links = append(links, services.Link{
			ID:        link.ID(),
			Code:      link.Code(),
			Target:    link.Target(),
			CreatedAt: link.CreatedAt(),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(links, cmd.Bool("pretty"))
	}

	r.writePlain("(cached copy, visits not tracked offline)\n")
	r.writeLinkTable(links)
	return nil
}

// LinksCreate shortens the URL given as the first argument.
func (r *Runner) LinksCreate(ctx context.Context, cmd *cli.Command) error {
	target := cmd.StringArg("url")
	if target == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	link, err := r.svc.CreateLink(ctx, target, cmd.String("code"))
	if err != nil {
		return r.renderLinkError(err)
	}

	if r.links != nil {
		cached := models.NewLink(0, link.Code, link.Target)
		cached.SetID(link.ID)
		if err := r.links.Create(cached); err != nil {
			r.logger.Warn("failed to cache link", "code", link.Code, "error", err)
		}
	}

	r.writePlain("✓ Created %s\n", link.Code)
	if link.ShortURL != "" {
		r.writePlain("%s -> %s\n", link.ShortURL, link.Target)
	}
	return nil
}

// LinksDelete removes the link whose short code is given as the first argument.
func (r *Runner) LinksDelete(ctx context.Context, cmd *cli.Command) error {
	code := cmd.StringArg("code")
	if code == "" {
		return fmt.Errorf("%w: code", shared.ErrMissingArgument)
	}

	if err := r.svc.DeleteLink(ctx, code); err != nil {
		if errors.Is(err, shared.ErrLinkNotFound) {
			return r.writePlain("✗ No link with code %s\n", code)
		}
		return r.renderLinkError(err)
	}

	if r.links != nil {
		if cached, err := r.links.GetByCode(code); err == nil {
			if err := r.links.Delete(cached.ID()); err != nil {
				r.logger.Warn("failed to evict cached link", "code", code, "error", err)
			}
		}
	}

	return r.writePlain("✓ Deleted %s\n", code)
}

// LinksExport runs a concurrent bulk export of links to local files.
func (r *Runner) LinksExport(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	r.writePlain("Starting bulk export...\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Stage {
			case "fetching":
				r.writePlain("📥 %s\n", update.Detail)
			case "done":
				r.writePlain("✓ [%d/%d] %s\n", update.Current, update.Total, update.Detail)
			case "failed":
				r.writePlain("✗ [%d/%d] %s\n", update.Current, update.Total, update.Detail)
			}
		}
	}()

	result, err := r.engine.BulkExport(ctx, progressCh, cmd.StringSlice("code"), opts)
	close(progressCh)

	if err != nil {
		return r.renderLinkError(err)
	}

	r.writePlainln("Exported %d of %d links to %s", result.SuccessfulExports, result.TotalLinks, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("%d exports failed, see %s\n", result.FailedExports, result.ManifestPath)
	} else if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return nil
}

// renderLinkError prints outage details or a login hint before returning
// the error unchanged for the exit path.
func (r *Runner) renderLinkError(err error) error {
	var down *services.ServiceDownError
	switch {
	case errors.As(err, &down):
		r.writeOutage(down.Status)
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrAuthInvalidated):
		r.writePlain("Run 'chainyctl auth login' to authenticate.\n")
	}
	return err
}

func (r *Runner) writeLinkTable(links []services.Link) {
	if len(links) == 0 {
		r.writePlain("No links yet. Create one with 'chainyctl links create <url>'.\n")
		return
	}

	r.writePlain("%-12s %-32s %-8s %s\n", "CODE", "TARGET", "VISITS", "CREATED")
	for _, link := range links {
		target := link.Target
		if len(target) > 32 {
			target = target[:29] + "..."
		}
		r.writePlain("%-12s %-32s %-8d %s\n", link.Code, target, link.Visits, link.CreatedAt.Format("2006-01-02"))
	}
	r.writePlain("\n%d link(s)\n", len(links))
}

// toModelLinks converts backend links into cache rows.
func toModelLinks(links []services.Link) []*models.Link {
	out := make([]*models.Link, 0, len(links))
	for i, link := range links {
		cached := models.NewLink(i+1, link.Code, link.Target)
		cached.SetID(link.ID)
		if !link.CreatedAt.IsZero() {
			cached.SetCreatedAt(link.CreatedAt)
		}
		out = append(out, cached)
	}
	return out
}
