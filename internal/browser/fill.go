package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/desertthunder/arofill/internal/shared"
)

// Field is a writable form control. The two transports exist because some
// JS-managed fields silently drop synthetic keystrokes but honor a paste
// event.
type Field interface {
	Clear(ctx context.Context) error
	Type(ctx context.Context, value string) error
	Paste(ctx context.Context, value string) error
	Value(ctx context.Context) (string, error)
}

// Fill writes value into f with read-back verification.
//
// Direct text entry is tried first; if the field does not retain the value,
// exactly one clipboard-paste attempt follows. A mismatch after both
// transports returns [shared.ErrFieldMismatch].
func Fill(ctx context.Context, f Field, value string, logger *log.Logger) error {
	if err := f.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear field: %w", err)
	}

	if err := f.Type(ctx, value); err != nil {
		logger.Warn("direct entry failed", "error", err)
	} else if ok, err := verify(ctx, f, value); err != nil {
		logger.Warn("failed to read field back", "error", err)
	} else if ok {
		logger.Info("value written via direct entry", "value", value)
		return nil
	}

	logger.Warn("direct entry not retained, retrying via clipboard paste")

	if err := f.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear field before paste: %w", err)
	}
	if err := f.Paste(ctx, value); err != nil {
		return fmt.Errorf("clipboard paste failed: %w", err)
	}

	ok, err := verify(ctx, f, value)
	if err != nil {
		return fmt.Errorf("failed to read field back after paste: %w", err)
	}
	if !ok {
		got, _ := f.Value(ctx)
		return fmt.Errorf("%w: field holds %q, want %q", shared.ErrFieldMismatch, got, value)
	}

	logger.Info("value written via clipboard paste", "value", value)
	return nil
}

func verify(ctx context.Context, f Field, want string) (bool, error) {
	got, err := f.Value(ctx)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(got) == want, nil
}

// domField is the chromedp-backed Field.
type domField struct {
	session *Session
	sel     string
	opts    []chromedp.QueryOption
	timeout time.Duration
}

func (f domField) Clear(ctx context.Context) error {
	return f.session.run(f.timeout,
		chromedp.ScrollIntoView(f.sel, f.opts...),
		chromedp.Clear(f.sel, f.opts...),
	)
}

func (f domField) Type(ctx context.Context, value string) error {
	return f.session.run(f.timeout, chromedp.SendKeys(f.sel, value, f.opts...))
}

func (f domField) Paste(ctx context.Context, value string) error {
	if err := clipboard.WriteAll(value); err != nil {
		return fmt.Errorf("failed to place value on clipboard: %w", err)
	}
	return f.session.run(f.timeout,
		chromedp.Click(f.sel, f.opts...),
		chromedp.KeyEvent("v", chromedp.KeyModifiers(input.ModifierCtrl)),
	)
}

func (f domField) Value(ctx context.Context) (string, error) {
	var value string
	err := f.session.run(f.timeout, chromedp.Value(f.sel, &value, f.opts...))
	return value, err
}
