// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/arofill/internal/shared"
)

// FakeTask is the remote-side state of one task as seen by [FakePage].
type FakeTask struct {
	Excluded      bool   // task is of the excluded type
	FieldValue    string // current content of the email field
	WorkflowErr   error  // TriggerWorkflow result
	CreateErr     error  // TriggerCreate result
	AfterWorkflow string // address visible on the page once the workflow ran
	AfterCreate   string // address visible only after Create
	OpenErr       error
	SaveErr       error
	FillErr       error
}

// FakePage is a test double for the processor's Page interface backed by an
// in-memory task map. It counts every mutation so idempotence can be
// asserted.
type FakePage struct {
	Tasks map[int]*FakeTask
	Max   int

	ValidEmail func(string) bool // usually processor.ValidEmail

	open              int
	workflowTriggered bool
	createTriggered   bool

	FillCalls     []string
	SaveCalls     int
	CloseCalls    int
	WorkflowCalls int
	CreateCalls   int

	MaxJobIDErr error
	FindTaskErr error
	ExcludedErr error
	CloseErr    error
}

func NewFakePage(valid func(string) bool) *FakePage {
	return &FakePage{Tasks: map[int]*FakeTask{}, ValidEmail: valid}
}

// Mutations returns the total number of remote-state writes performed.
func (p *FakePage) Mutations() int {
	return len(p.FillCalls) + p.SaveCalls + p.WorkflowCalls + p.CreateCalls
}

func (p *FakePage) current() *FakeTask {
	return p.Tasks[p.open]
}

func (p *FakePage) MaxJobID(ctx context.Context) (int, error) {
	if p.MaxJobIDErr != nil {
		return 0, p.MaxJobIDErr
	}
	if p.Max <= 0 {
		return 0, shared.ErrNoJobRows
	}
	return p.Max, nil
}

func (p *FakePage) FindTask(ctx context.Context, jobID int) (bool, error) {
	if p.FindTaskErr != nil {
		return false, p.FindTaskErr
	}
	_, ok := p.Tasks[jobID]
	return ok, nil
}

func (p *FakePage) OpenTask(ctx context.Context, jobID int) error {
	task, ok := p.Tasks[jobID]
	if !ok {
		return fmt.Errorf("task %d not present", jobID)
	}
	if task.OpenErr != nil {
		return task.OpenErr
	}
	p.open = jobID
	p.workflowTriggered = false
	p.createTriggered = false
	return nil
}

func (p *FakePage) IsExcludedType(ctx context.Context) (bool, error) {
	if p.ExcludedErr != nil {
		return false, p.ExcludedErr
	}
	if t := p.current(); t != nil {
		return t.Excluded, nil
	}
	return false, errors.New("no task open")
}

func (p *FakePage) ExistingEmail(ctx context.Context) (string, bool) {
	t := p.current()
	if t == nil {
		return "", false
	}
	if p.ValidEmail != nil && p.ValidEmail(t.FieldValue) {
		return t.FieldValue, true
	}
	return "", false
}

func (p *FakePage) TriggerWorkflow(ctx context.Context) error {
	p.WorkflowCalls++
	t := p.current()
	if t == nil {
		return errors.New("no task open")
	}
	if t.WorkflowErr != nil {
		return t.WorkflowErr
	}
	p.workflowTriggered = true
	return nil
}

func (p *FakePage) TriggerCreate(ctx context.Context) error {
	p.CreateCalls++
	t := p.current()
	if t == nil {
		return errors.New("no task open")
	}
	if t.CreateErr != nil {
		return t.CreateErr
	}
	p.createTriggered = true
	return nil
}

func (p *FakePage) GeneratedEmail(ctx context.Context) (string, bool) {
	t := p.current()
	if t == nil {
		return "", false
	}
	if p.createTriggered && t.AfterCreate != "" {
		return t.AfterCreate, true
	}
	if p.workflowTriggered && t.AfterWorkflow != "" {
		return t.AfterWorkflow, true
	}
	return "", false
}

func (p *FakePage) FillEmail(ctx context.Context, value string) error {
	p.FillCalls = append(p.FillCalls, value)
	t := p.current()
	if t == nil {
		return errors.New("no task open")
	}
	if t.FillErr != nil {
		return t.FillErr
	}
	t.FieldValue = value
	return nil
}

func (p *FakePage) SaveTask(ctx context.Context) error {
	p.SaveCalls++
	t := p.current()
	if t == nil {
		return errors.New("no task open")
	}
	return t.SaveErr
}

func (p *FakePage) CloseTask(ctx context.Context) error {
	p.CloseCalls++
	p.open = 0
	if p.CloseErr != nil {
		return p.CloseErr
	}
	return nil
}

// MemoryTracker is an in-memory Watermarker recording every Save.
type MemoryTracker struct {
	Start int
	Saves []int
}

func (m *MemoryTracker) Load() int {
	if len(m.Saves) > 0 {
		return m.Saves[len(m.Saves)-1]
	}
	return m.Start
}

func (m *MemoryTracker) Save(index int) {
	m.Saves = append(m.Saves, index)
}

// MemoryRecorder collects history records, optionally failing.
type MemoryRecorder struct {
	Entries []RecordedEntry
	Err     error
}

type RecordedEntry struct {
	JobID   int
	Outcome string
	Email   string
}

func (m *MemoryRecorder) Record(jobID int, outcome string, email string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, RecordedEntry{JobID: jobID, Outcome: outcome, Email: email})
	return nil
}
