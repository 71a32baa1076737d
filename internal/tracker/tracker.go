// package tracker persists the resume watermark between runs.
//
// The watermark is the highest job id fully stepped through in a prior run.
// Persistence is best-effort: the remote system is the source of truth and
// reprocessing an id is idempotent, so read and write failures degrade to
// defaults instead of aborting the run.
package tracker

import (
	"encoding/json"
	"os"

	"github.com/charmbracelet/log"
)

// state is the on-disk shape: a single JSON object with one field.
type state struct {
	LastIndex int `json:"last_index"`
}

// Tracker reads and writes the watermark file.
type Tracker struct {
	path         string
	defaultStart int
	logger       *log.Logger
}

// New creates a Tracker persisting to path, falling back to defaultStart
// when no usable state exists.
func New(path string, defaultStart int, logger *log.Logger) *Tracker {
	return &Tracker{path: path, defaultStart: defaultStart, logger: logger}
}

// Load returns the persisted watermark, or the configured default when the
// file is absent, unreadable, or malformed. Load never fails.
func (t *Tracker) Load() int {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.logger.Info("no existing job tracker found, starting from default", "default", t.defaultStart)
		} else {
			t.logger.Error("failed to read job tracker", "path", t.path, "error", err)
		}
		return t.defaultStart
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		t.logger.Error("failed to parse job tracker, using default", "path", t.path, "error", err)
		return t.defaultStart
	}

	if s.LastIndex <= 0 {
		t.logger.Warn("job tracker holds no usable index, using default", "default", t.defaultStart)
		return t.defaultStart
	}

	t.logger.Info("loaded last processed job index", "index", s.LastIndex)
	return s.LastIndex
}

// Save overwrites the watermark file with index. Failures are logged and
// swallowed; the run continues without durable progress.
func (t *Tracker) Save(index int) {
	data, err := json.MarshalIndent(state{LastIndex: index}, "", "  ")
	if err != nil {
		t.logger.Error("failed to encode job tracker", "error", err)
		return
	}

	if err := os.WriteFile(t.path, data, 0644); err != nil {
		t.logger.Error("failed to save job tracker", "path", t.path, "error", err)
		return
	}

	t.logger.Info("saved last processed job index", "index", index)
}
