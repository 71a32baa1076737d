// Package repositories implements SQLite persistence for run history.
//
// Every job id stepped through by the processor is recorded with its outcome
// so operators can audit what a run touched without replaying logs. Recording
// is best-effort from the caller's perspective: the run loop logs and ignores
// failures here.
package repositories
