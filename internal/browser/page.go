package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/desertthunder/arofill/internal/processor"
	"github.com/desertthunder/arofill/internal/shared"
)

const (
	selJobNumberCell = "td.page-content-task-jobnumber"
	selCloseDetail   = ".afContainer__titlebar-actions-left > a:nth-of-type(1)"
	selWorkflowBtn   = "div:nth-of-type(2) > .afBtn > .afIcon"
	selSaveBtn       = "#update_btn"

	xpathCreateBtn = `//button[@role='button' and normalize-space()='Create']`
	xpathEmailCell = `//td[contains(text(),'Task Email Address')]/following-sibling::td//textarea` +
		` | //td[contains(text(),'Task Email Address')]/following-sibling::td//input`
)

// TaskPage implements processor.Page against a live session.
type TaskPage struct {
	session *Session
	cfg     *shared.Config
	logger  *log.Logger
}

var _ processor.Page = (*TaskPage)(nil)

// NewTaskPage wraps session for the processor.
func NewTaskPage(session *Session, logger *log.Logger) *TaskPage {
	return &TaskPage{session: session, cfg: session.cfg, logger: logger}
}

// MaxJobID reads the newest job id from the first list row. A list with no
// job rows at all returns [shared.ErrNoJobRows] so callers can treat the
// empty case as a no-op rather than a failure.
func (p *TaskPage) MaxJobID(ctx context.Context) (int, error) {
	var nodes []*cdp.Node
	if err := p.session.run(p.cfg.Timeouts.Find(),
		chromedp.Nodes(selJobNumberCell, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return 0, fmt.Errorf("failed to read task list: %w", err)
	}
	if len(nodes) == 0 {
		return 0, shared.ErrNoJobRows
	}

	var text string
	if err := p.session.run(p.cfg.Timeouts.Find(),
		chromedp.Text(selJobNumberCell, &text, chromedp.ByQuery),
	); err != nil {
		return 0, fmt.Errorf("failed to read first job row: %w", err)
	}

	id, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("first row job id %q is not numeric", text)
	}

	p.logger.Info("max job id from first row", "job_id", id)
	return id, nil
}

// FindTask reports whether a list row for jobID exists.
func (p *TaskPage) FindTask(ctx context.Context, jobID int) (bool, error) {
	var nodes []*cdp.Node
	xpath := fmt.Sprintf(`//td[contains(@class,'page-content-task-jobnumber') and text()='%d']`, jobID)

	if err := p.session.run(p.cfg.Timeouts.Field(),
		chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0)),
	); err != nil {
		return false, fmt.Errorf("failed to search task list: %w", err)
	}

	return len(nodes) > 0, nil
}

// OpenTask clicks the task name link in jobID's row.
func (p *TaskPage) OpenTask(ctx context.Context, jobID int) error {
	xpath := fmt.Sprintf(
		`//td[contains(@class,'page-content-task-jobnumber') and text()='%d']/..//td[contains(@class,'page-content-task-name')]//a`,
		jobID,
	)

	if err := p.session.run(p.cfg.Timeouts.Click(),
		chromedp.Click(xpath, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("%w: job %d: %v", shared.ErrTaskNotFound, jobID, err)
	}

	if err := p.session.run(p.cfg.Timeouts.Visible(),
		chromedp.WaitVisible(selCloseDetail, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("detail view did not render for job %d: %w", jobID, err)
	}

	return nil
}

// IsExcludedType checks the detail view header for the excluded category.
func (p *TaskPage) IsExcludedType(ctx context.Context) (bool, error) {
	html, err := p.outerHTML()
	if err != nil {
		return false, fmt.Errorf("failed to capture page for type check: %w", err)
	}
	return HasHeaderCell(html, p.cfg.Site.ExcludedTaskType), nil
}

// ExistingEmail inspects both candidate fields for a usable address.
func (p *TaskPage) ExistingEmail(ctx context.Context) (string, bool) {
	for _, sel := range existingValueSelectors {
		var value string
		if err := p.session.run(p.cfg.Timeouts.Field(),
			chromedp.Value(sel, &value, chromedp.ByQuery),
		); err != nil {
			continue
		}

		value = strings.TrimSpace(value)
		p.logger.Debug("email field content", "selector", sel, "value", value)

		if processor.ValidEmail(value) {
			return value, true
		}
	}

	p.logger.Info("no valid email found in any field")
	return "", false
}

// TriggerWorkflow clicks the in-page workflow button.
func (p *TaskPage) TriggerWorkflow(ctx context.Context) error {
	if err := p.session.click(selWorkflowBtn, p.cfg.Timeouts.Click()); err != nil {
		return fmt.Errorf("failed to click workflow button: %w", err)
	}
	return nil
}

// TriggerCreate clicks the Create button and waits briefly for the
// server-side workflow to mint an address. Absence of the address after the
// wait is not an error; the caller rescans.
func (p *TaskPage) TriggerCreate(ctx context.Context) error {
	if err := p.session.run(p.cfg.Timeouts.Create(),
		chromedp.ScrollIntoView(xpathCreateBtn, chromedp.BySearch),
		chromedp.Click(xpathCreateBtn, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("failed to click create button: %w", err)
	}

	if err := WaitFor(ctx, p.cfg.Timeouts.Create(), 500*time.Millisecond, func(ctx context.Context) (bool, error) {
		_, ok := p.GeneratedEmail(ctx)
		return ok, nil
	}); err != nil {
		p.logger.Warn("no generated address visible after create", "error", err)
	}

	return nil
}

// GeneratedEmail scans the full page markup for an address on the derived
// domain.
func (p *TaskPage) GeneratedEmail(ctx context.Context) (string, bool) {
	html, err := p.outerHTML()
	if err != nil {
		p.logger.Error("failed to capture page for email scan", "error", err)
		return "", false
	}

	email, ok := FindDomainEmail(html, p.cfg.Site.EmailDomain)
	if ok {
		p.logger.Info("found generated address on page", "email", email)
	}
	return email, ok
}

// FillEmail resolves the task's email field and writes value through the
// verified fill operation.
func (p *TaskPage) FillEmail(ctx context.Context, value string) error {
	field, err := p.emailField()
	if err != nil {
		return err
	}
	return Fill(ctx, field, value, p.logger)
}

// emailField picks the field the current task variant exposes, with a
// label-relative fallback when neither id-suffix selector resolves.
func (p *TaskPage) emailField() (Field, error) {
	html, err := p.outerHTML()
	if err != nil {
		return nil, fmt.Errorf("failed to capture page for field resolution: %w", err)
	}

	for _, sel := range EmailFieldSelectors(html) {
		if err := p.session.run(p.cfg.Timeouts.Field(),
			chromedp.WaitVisible(sel, chromedp.ByQuery),
		); err == nil {
			p.logger.Info("found email field", "selector", sel)
			return domField{
				session: p.session,
				sel:     sel,
				opts:    []chromedp.QueryOption{chromedp.ByQuery},
				timeout: p.cfg.Timeouts.Field(),
			}, nil
		}
	}

	p.logger.Warn("falling back to label-relative email field lookup")
	if err := p.session.run(p.cfg.Timeouts.Click(),
		chromedp.WaitVisible(xpathEmailCell, chromedp.BySearch),
	); err == nil {
		return domField{
			session: p.session,
			sel:     xpathEmailCell,
			opts:    []chromedp.QueryOption{chromedp.BySearch},
			timeout: p.cfg.Timeouts.Click(),
		}, nil
	}

	return nil, shared.ErrNoEmailField
}

// SaveTask clicks the detail view's update button.
func (p *TaskPage) SaveTask(ctx context.Context) error {
	if err := p.session.run(p.cfg.Timeouts.Field(),
		chromedp.WaitVisible(selSaveBtn, chromedp.ByQuery),
		chromedp.ScrollIntoView(selSaveBtn, chromedp.ByQuery),
		chromedp.Click(selSaveBtn, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
	); err != nil {
		return fmt.Errorf("save button not found: %w", err)
	}
	return nil
}

// CloseTask returns from the detail view to the list.
func (p *TaskPage) CloseTask(ctx context.Context) error {
	if err := p.session.click(selCloseDetail, p.cfg.Timeouts.Click()); err != nil {
		return fmt.Errorf("failed to close detail view: %w", err)
	}
	return nil
}

func (p *TaskPage) outerHTML() (string, error) {
	var html string
	err := p.session.run(p.cfg.Timeouts.Field(),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}
