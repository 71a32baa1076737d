// Package browser drives a headless Chrome session against the AroFlo
// office UI via chromedp.
//
// [Session] owns the browser lifecycle: allocator and tab contexts created
// together, torn down together by [Session.Close] on every exit path.
// [TaskPage] implements the processor's Page interface on top of a Session.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
	"github.com/desertthunder/arofill/internal/shared"
)

// Session is one logged-in browser tab, reused for the whole run.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	cfg     *shared.Config
	logger  *log.Logger
}

// NewSession launches Chrome with the deployment's flags and opens a tab.
//
// The returned Session is already attached to a live browser process;
// failure here is the fatal/startup class and nothing has been persisted.
func NewSession(parent context.Context, cfg *shared.Config, logger *log.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.Browser.WindowWidth, cfg.Browser.WindowHeight),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))

	// Run with no actions forces the browser process to start now so init
	// failures surface before login.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionInit, err)
	}

	logger.Info("browser session initialized", "headless", cfg.Browser.Headless)

	return &Session{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{cancelTab, cancelAlloc},
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Close tears the tab and browser process down. Safe to defer immediately
// after NewSession; it runs on every exit path.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.logger.Info("browser session closed")
}

// run executes chromedp actions on the session tab under an optional timeout.
func (s *Session) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, timeout)
		defer cancel()
	}
	return chromedp.Run(ctx, actions...)
}

// click scrolls a selector into view and clicks it, settling for a second
// afterwards the way the UI expects.
func (s *Session) click(sel string, timeout time.Duration) error {
	return s.run(timeout,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
	)
}

// Login authenticates through the rendered login form.
//
// A second confirmation screen appears for some tenants; it is submitted
// opportunistically and its absence is not an error.
func (s *Session) Login(creds *shared.Credentials) error {
	to := s.cfg.Timeouts
	s.logger.Info("navigating to login", "url", s.cfg.Site.LoginURL())

	if err := s.run(to.Login(),
		chromedp.Navigate(s.cfg.Site.LoginURL()),
		chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="username"]`, creds.Username, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, creds.Password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
	); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLoginFailed, err)
	}

	if err := s.run(to.Field(), chromedp.Click(`button[type="submit"]`, chromedp.ByQuery)); err == nil {
		s.logger.Info("second login screen submitted")
	}

	if err := s.run(to.Login(), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLoginFailed, err)
	}

	s.logger.Info("login successful")
	return nil
}

// NavigateTasks walks the mega menu from the home screen to the task list.
func (s *Session) NavigateTasks() error {
	to := s.cfg.Timeouts
	s.logger.Info("navigating to tasks page")

	if err := s.click(".afMegaMenu > button:nth-of-type(2)", to.Click()); err != nil {
		return fmt.Errorf("failed to open mega menu: %w", err)
	}
	if err := s.click("div:nth-of-type(1) .afMegaMenu__item .item-content .item-submenu a:nth-of-type(2)", to.Click()); err != nil {
		return fmt.Errorf("failed to open task list: %w", err)
	}

	return nil
}
