package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/arofill/internal/browser"
	"github.com/desertthunder/arofill/internal/processor"
	"github.com/desertthunder/arofill/internal/repositories"
	"github.com/desertthunder/arofill/internal/shared"
	"github.com/desertthunder/arofill/internal/tracker"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
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
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, trackerCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the effective config for a command invocation.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if config, err := shared.LoadConfig(configPath); err == nil {
			return config
		} else {
			r.logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	return r.config
}

// Run executes the backfill pass: login, walk the id range, tear down.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	config := r.loadConfig(cmd)

	creds, err := shared.LoadCredentials()
	if err != nil {
		r.logger.Error("missing AroFlo credentials; set AROFLO_USERNAME and AROFLO_PASSWORD")
		return err
	}
	r.logger.Info("loaded AroFlo credentials from environment")

	config.Browser.Headless = cmd.Bool("headless")

	runID := shared.GenerateID()
	logger := shared.WithLogger(r.logger, "run_id", runID)

	jobTracker := tracker.New(config.Tracker.Path, config.Tracker.DefaultStart, logger)

	// History is an audit convenience; a broken database never blocks a run.
	var recorder processor.Recorder
	if db, err := shared.NewDatabase(config.Database.Path); err != nil {
		logger.Warn("history database unavailable, continuing without audit log", "error", err)
	} else {
		defer db.Close()
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := repositories.Migrate(db); err != nil {
			logger.Warn("history migration failed, continuing without audit log", "error", err)
		} else {
			recorder = repositories.NewHistoryRepository(db).ForRun(runID)
		}
	}

	session, err := browser.NewSession(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser session: %w", err)
	}
	defer session.Close()

	if err := session.Login(creds); err != nil {
		return err
	}
	if err := session.NavigateTasks(); err != nil {
		return err
	}

	engine := processor.New(processor.Opts{
		Page:         browser.NewTaskPage(session, logger),
		Tracker:      jobTracker,
		Recorder:     recorder,
		DefaultEmail: config.Site.DefaultEmail,
		RateLimit:    config.Rate.TasksPerSecond,
		Logger:       logger,
	})

	result, err := engine.Run(ctx, int(cmd.Int("from")), int(cmd.Int("to")))
	if err != nil {
		return err
	}

	logger.Info("all workflows completed")
	return r.writePlainln("processed %d jobs (%d filled, %d skipped, %d missing, %d failed), watermark %d",
		result.Processed, result.Filled, result.Skipped, result.NotFound, result.Failed, result.Watermark)
}

// TrackerShow prints the persisted watermark.
func (r *Runner) TrackerShow(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	jobTracker := tracker.New(config.Tracker.Path, config.Tracker.DefaultStart, r.logger)
	return r.writePlainln("last processed job id: %d", jobTracker.Load())
}

// TrackerReset overwrites the watermark with the given id.
func (r *Runner) TrackerReset(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	to := int(cmd.Int("to"))
	if to <= 0 {
		return fmt.Errorf("%w: --to must be a positive job id", shared.ErrInvalidArgument)
	}

	jobTracker := tracker.New(config.Tracker.Path, config.Tracker.DefaultStart, r.logger)
	jobTracker.Save(to)
	return r.writePlainln("watermark reset to %d", to)
}

// History lists recent outcomes from the audit database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if err := repositories.Migrate(db); err != nil {
		return fmt.Errorf("failed to prepare history database: %w", err)
	}

	entries, err := repositories.NewHistoryRepository(db).ListRecent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlainln("no history recorded yet")
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  job %d  %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.JobID, e.Outcome)
		if e.Email != "" {
			line += "  " + e.Email
		}
		if err := r.writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// Setup creates the config file and initializes the history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing history database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := repositories.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
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
