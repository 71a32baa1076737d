// Package processor implements the per-task decision procedure and the
// sequential run loop over a job id range.
//
// # Decision Procedure
//
// For each job id, [Engine.ProcessTask] walks an ordered check list, first
// match wins:
//
//  1. Locate the task row; absent ids are skipped without advancing the
//     watermark.
//  2. Open the detail view.
//  3. Excluded task types (Installer Checkin) are closed and skipped.
//  4. A syntactically valid, non-placeholder value already in the email
//     field means the task is complete; close and skip.
//  5. Otherwise the [Chain] of email strategies produces a value
//     (workflow trigger → page scan → create → page scan → default
//     literal) which is written through the page's fill operation.
//  6. The detail view's save control is clicked if present.
//
// Steps 3-6 all persist the watermark and record a history row; failures
// inside 5/6 are logged and never abort the task.
//
// # Abstraction
//
// All DOM interaction goes through the [Page] interface so the procedure is
// unit-testable without a browser. The browser package provides the real
// implementation.
package processor
