package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/chainydev/chainyctl/internal/auth"
	"github.com/chainydev/chainyctl/internal/repositories"
	"github.com/chainydev/chainyctl/internal/services"
	"github.com/chainydev/chainyctl/internal/shared"
	"github.com/chainydev/chainyctl/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	db         *sql.DB
	svc        services.LinkService
	sessions   *auth.SessionManager
	pending    *repositories.PendingLoginRepository
	links      *repositories.LinkRepository
	redirector *auth.Redirector
	resolver   *auth.Resolver
	engine     *tasks.ExportEngine
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	DB         *sql.DB
	Service    services.LinkService
	Sessions   *auth.SessionManager
	Pending    *repositories.PendingLoginRepository
	Links      *repositories.LinkRepository
	Redirector *auth.Redirector
	Resolver   *auth.Resolver
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		db:         opts.DB,
		svc:        opts.Service,
		sessions:   opts.Sessions,
		pending:    opts.Pending,
		links:      opts.Links,
		redirector: opts.Redirector,
		resolver:   opts.Resolver,
		engine:     tasks.NewExportEngine(opts.Service, opts.Logger),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, linksCommand, healthCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeOutage renders a service outage in the configured locale.
func (r *Runner) writeOutage(status *services.ServiceStatus) {
	r.writePlainHeader(status.Title)
	r.writePlain("%s\n", status.Message)
	if status.Reason != "" {
		r.writePlain("Reason: %s\n", status.Reason)
	}
	if status.Timestamp != "" {
		r.writePlain("Since: %s\n", status.Timestamp)
	}
	r.writePlain("%s\n", status.Suggestion)
}
