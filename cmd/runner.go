package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"cratedig/internal/ratings"
	"cratedig/internal/repositories"
	"cratedig/internal/services"
	"cratedig/internal/shared"
	"cratedig/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	spotify services.LibraryService
	catalog ratings.Catalog
	logger  *log.Logger
	output  io.Writer

	// Injected in tests, opened lazily otherwise.
	db *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Spotify services.LibraryService
	Catalog ratings.Catalog
	Logger  *log.Logger
	Output  io.Writer
	DB      *sql.DB
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

	return &Runner{
		config:  opts.Config,
		spotify: opts.Spotify,
		catalog: opts.Catalog,
		logger:  opts.Logger,
		output:  opts.Output,
		db:      opts.DB,
	}
}

// SetLogger swaps the runner's logger, used by the TUI to redirect logs to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, albumsCommand, ratingCommand, ratingsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// database returns the open database handle, opening the configured SQLite
// file on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	return db, nil
}

// gate builds the rating cache gate backed by the database and the Discogs
// catalog.
func (r *Runner) gate(db *sql.DB) *ratings.CacheGate {
	resolver := ratings.NewResolver(r.catalog, r.logger)
	return ratings.NewCacheGate(resolver, repositories.NewRatingRepository(db), r.logger)
}

// engine assembles the library engine from the runner's dependencies.
func (r *Runner) engine() (*tasks.LibraryEngine, error) {
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	albums := repositories.NewAlbumRepository(db)
	return tasks.NewLibraryEngine(r.spotify, r.gate(db), albums, r.logger), nil
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
