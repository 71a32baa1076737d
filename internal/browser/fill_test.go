package browser

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/arofill/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeField simulates a form control where each transport can be configured
// to retain or drop the written value.
type fakeField struct {
	content string

	retainType  bool
	retainPaste bool

	clearErr error
	typeErr  error
	pasteErr error
	valueErr error

	clearCalls int
	typeCalls  int
	pasteCalls int
}

func (f *fakeField) Clear(ctx context.Context) error {
	f.clearCalls++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.content = ""
	return nil
}

func (f *fakeField) Type(ctx context.Context, value string) error {
	f.typeCalls++
	if f.typeErr != nil {
		return f.typeErr
	}
	if f.retainType {
		f.content = value
	}
	return nil
}

func (f *fakeField) Paste(ctx context.Context, value string) error {
	f.pasteCalls++
	if f.pasteErr != nil {
		return f.pasteErr
	}
	if f.retainPaste {
		f.content = value
	}
	return nil
}

func (f *fakeField) Value(ctx context.Context) (string, error) {
	if f.valueErr != nil {
		return "", f.valueErr
	}
	return f.content, nil
}

func TestFill(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard)

	t.Run("DirectEntrySucceeds", func(t *testing.T) {
		f := &fakeField{retainType: true}

		err := Fill(ctx, f, "job3422@x.aroflo.com", logger)

		require.NoError(t, err)
		assert.Equal(t, "job3422@x.aroflo.com", f.content)
		assert.Zero(t, f.pasteCalls, "clipboard must not be used when direct entry sticks")
	})

	t.Run("ClipboardFallback", func(t *testing.T) {
		f := &fakeField{retainPaste: true}

		err := Fill(ctx, f, "job3422@x.aroflo.com", logger)

		require.NoError(t, err)
		assert.Equal(t, 1, f.typeCalls)
		assert.Equal(t, 1, f.pasteCalls, "clipboard path must be attempted exactly once")
		assert.Equal(t, "job3422@x.aroflo.com", f.content)
	})

	t.Run("BothTransportsFail", func(t *testing.T) {
		f := &fakeField{}

		err := Fill(ctx, f, "job3422@x.aroflo.com", logger)

		assert.ErrorIs(t, err, shared.ErrFieldMismatch)
		assert.Equal(t, 1, f.pasteCalls)
	})

	t.Run("TrimmedReadBackMatches", func(t *testing.T) {
		f := &fakeField{}
		f.retainType = true
		// Simulate a widget that pads the value.
		err := Fill(ctx, &paddingField{fakeField: f}, "bob@client.com", logger)

		require.NoError(t, err)
		assert.Zero(t, f.pasteCalls)
	})

	t.Run("ClearFailure", func(t *testing.T) {
		f := &fakeField{clearErr: errors.New("element detached")}

		err := Fill(ctx, f, "bob@client.com", logger)

		assert.Error(t, err)
		assert.Zero(t, f.typeCalls)
	})

	t.Run("PasteFailure", func(t *testing.T) {
		f := &fakeField{pasteErr: errors.New("clipboard unavailable")}

		err := Fill(ctx, f, "bob@client.com", logger)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrFieldMismatch)
	})
}

// paddingField wraps fakeField, returning the content with whitespace to
// exercise the trim-compare.
type paddingField struct {
	*fakeField
}

func (p *paddingField) Value(ctx context.Context) (string, error) {
	v, err := p.fakeField.Value(ctx)
	return "  " + v + "\n", err
}
