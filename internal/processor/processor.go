package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/arofill/internal/shared"
	"golang.org/x/time/rate"
)

// Page is the capability interface over the task list and detail views.
//
// Implementations drive a real browser (internal/browser) or fake the DOM in
// tests. Presence-style methods (ExistingEmail, GeneratedEmail) return a
// boolean instead of an error because absence is an expected state, not a
// failure.
type Page interface {
	// MaxJobID reads the job id of the first (newest) row in the task list.
	MaxJobID(ctx context.Context) (int, error)

	// FindTask reports whether a row for jobID is visible in the list.
	FindTask(ctx context.Context, jobID int) (bool, error)

	// OpenTask clicks through to the detail view for jobID.
	OpenTask(ctx context.Context, jobID int) error

	// IsExcludedType reports whether the open task is of the excluded
	// category (e.g. Installer Checkin).
	IsExcludedType(ctx context.Context) (bool, error)

	// ExistingEmail returns a valid, non-placeholder address already in
	// the task's email field, if any.
	ExistingEmail(ctx context.Context) (string, bool)

	// TriggerWorkflow clicks the in-page workflow action.
	TriggerWorkflow(ctx context.Context) error

	// TriggerCreate clicks the explicit Create action and waits for it to
	// take effect.
	TriggerCreate(ctx context.Context) error

	// GeneratedEmail scans the whole page for an address on the derived
	// domain.
	GeneratedEmail(ctx context.Context) (string, bool)

	// FillEmail writes value into the task's email field with read-back
	// verification and clipboard fallback.
	FillEmail(ctx context.Context, value string) error

	// SaveTask clicks the detail view's save control.
	SaveTask(ctx context.Context) error

	// CloseTask returns from the detail view to the list.
	CloseTask(ctx context.Context) error
}

// Watermarker persists forward progress between runs.
type Watermarker interface {
	Load() int
	Save(index int)
}

// Recorder captures one audit row per stepped-through job id. Recording is
// best-effort; the engine logs and ignores errors.
type Recorder interface {
	Record(jobID int, outcome string, email string) error
}

// Outcome classifies what happened to a single job id.
type Outcome string

const (
	OutcomeNotFound      Outcome = "not_found"
	OutcomeSkippedType   Outcome = "skipped_type"
	OutcomeSkippedFilled Outcome = "skipped_filled"
	OutcomeFilled        Outcome = "filled"
	OutcomeFilledDefault Outcome = "filled_default"
	OutcomeFailed        Outcome = "failed"
)

// TaskResult is the outcome of processing one job id.
type TaskResult struct {
	JobID   int
	Outcome Outcome
	Email   string
	Err     error
}

// RunResult summarizes a full pass.
type RunResult struct {
	From      int
	To        int
	Processed int
	Filled    int
	Skipped   int
	NotFound  int
	Failed    int
	Watermark int
}

// Opts configures an Engine.
type Opts struct {
	Page         Page
	Tracker      Watermarker
	Recorder     Recorder // optional
	DefaultEmail string
	RateLimit    float64 // tasks per second, <= 0 disables pacing
	Logger       *log.Logger
}

// Engine walks a job id range and applies the decision procedure to each id.
type Engine struct {
	page     Page
	tracker  Watermarker
	recorder Recorder
	chain    *Chain
	limiter  *rate.Limiter
	logger   *log.Logger
}

// New creates an Engine from opts. Page, Tracker, and Logger are required.
func New(opts Opts) *Engine {
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Engine{
		page:     opts.Page,
		tracker:  opts.Tracker,
		recorder: opts.Recorder,
		chain:    NewChain(opts.DefaultEmail, opts.Logger),
		limiter:  limiter,
		logger:   opts.Logger,
	}
}

// Run iterates job ids from `from` up to `to` inclusive, sequentially.
//
// A zero `from` resumes from the tracker's watermark; a zero `to` caps the
// range at the newest job visible in the list at loop start. Per-task
// failures are logged and the loop advances; only context cancellation and
// an unreadable list stop the pass.
func (e *Engine) Run(ctx context.Context, from, to int) (*RunResult, error) {
	if from <= 0 {
		from = e.tracker.Load()
	}

	if to <= 0 {
		maxID, err := e.page.MaxJobID(ctx)
		if errors.Is(err, shared.ErrNoJobRows) {
			// An empty list is a benign no-op: nothing to process, the
			// watermark stands.
			e.logger.Warn("no job rows visible, nothing to process")
			return &RunResult{From: from, To: from, Watermark: from}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read max job id: %w", err)
		}
		to = maxID
	}

	e.logger.Info("starting pass", "from", from, "to", to)

	result := &RunResult{From: from, To: to, Watermark: from}

	for jobID := from; jobID <= to; jobID++ {
		select {
		case <-ctx.Done():
			e.logger.Warn("run cancelled", "job_id", jobID)
			return result, ctx.Err()
		default:
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		tr := e.ProcessTask(ctx, jobID)
		result.Processed++

		switch tr.Outcome {
		case OutcomeNotFound:
			result.NotFound++
		case OutcomeFailed:
			result.Failed++
		case OutcomeSkippedType, OutcomeSkippedFilled:
			result.Skipped++
		case OutcomeFilled, OutcomeFilledDefault:
			result.Filled++
		}

		// Watermark and audit trail advance only for ids that stepped all
		// the way through the procedure. A failed id is reattempted on the
		// next run; an absent id may appear in a later pass.
		if tr.Outcome != OutcomeNotFound && tr.Outcome != OutcomeFailed {
			e.tracker.Save(jobID)
			result.Watermark = jobID
		}
		e.record(tr)
	}

	e.logger.Info("pass complete",
		"processed", result.Processed,
		"filled", result.Filled,
		"skipped", result.Skipped,
		"not_found", result.NotFound,
		"failed", result.Failed,
		"watermark", result.Watermark,
	)

	return result, nil
}

// ProcessTask applies the decision procedure to a single job id.
func (e *Engine) ProcessTask(ctx context.Context, jobID int) TaskResult {
	logger := e.logger.With("job_id", jobID)
	logger.Info("processing job")

	found, err := e.page.FindTask(ctx, jobID)
	if err != nil {
		logger.Error("failed to search task list", "error", err)
		return TaskResult{JobID: jobID, Outcome: OutcomeFailed, Err: err}
	}
	if !found {
		logger.Warn("task not found on the page, skipping")
		return TaskResult{JobID: jobID, Outcome: OutcomeNotFound}
	}

	if err := e.page.OpenTask(ctx, jobID); err != nil {
		logger.Error("failed to open task detail view", "error", err)
		return TaskResult{JobID: jobID, Outcome: OutcomeFailed, Err: err}
	}

	excluded, err := e.page.IsExcludedType(ctx)
	if err != nil {
		// Treat an unreadable type header as not excluded; the remaining
		// checks are idempotent either way.
		logger.Error("failed to check task type", "error", err)
	}
	if excluded {
		logger.Info("task is of excluded type, skipping")
		e.closeTask(ctx, logger)
		return TaskResult{JobID: jobID, Outcome: OutcomeSkippedType}
	}

	if email, ok := e.page.ExistingEmail(ctx); ok {
		logger.Info("task already has a valid email, skipping", "email", email)
		e.closeTask(ctx, logger)
		return TaskResult{JobID: jobID, Outcome: OutcomeSkippedFilled, Email: email}
	}

	logger.Info("no existing email found, resolving one")
	res := e.chain.Resolve(ctx, e.page)

	if err := e.page.FillEmail(ctx, res.Email); err != nil {
		logger.Error("failed to fill email field", "email", res.Email, "error", err)
	} else {
		logger.Info("email written to field", "email", res.Email, "strategy", res.Strategy)
	}

	if err := e.page.SaveTask(ctx); err != nil {
		logger.Warn("save control missing or unclickable", "error", err)
	} else {
		logger.Info("task saved")
	}

	e.closeTask(ctx, logger)

	outcome := OutcomeFilled
	if res.IsDefault() {
		outcome = OutcomeFilledDefault
	}
	return TaskResult{JobID: jobID, Outcome: outcome, Email: res.Email}
}

func (e *Engine) closeTask(ctx context.Context, logger *log.Logger) {
	if err := e.page.CloseTask(ctx); err != nil {
		logger.Warn("failed to return to task list", "error", err)
	}
}

func (e *Engine) record(tr TaskResult) {
	if e.recorder == nil || tr.Outcome == OutcomeNotFound {
		return
	}
	if err := e.recorder.Record(tr.JobID, string(tr.Outcome), tr.Email); err != nil {
		e.logger.Warn("failed to record history entry", "job_id", tr.JobID, "error", err)
	}
}
