package processor

import (
	"context"

	"github.com/charmbracelet/log"
)

// Strategy is one attempt at producing an email value for the current task.
//
// Apply returns the value and true on success. Strategies never abort the
// chain; a failed strategy simply yields to the next one.
type Strategy struct {
	Name  string
	Apply func(ctx context.Context, p Page) (string, bool)
}

// Resolution is the chain's verdict: the value to write and which strategy
// produced it.
type Resolution struct {
	Email    string
	Strategy string
}

// IsDefault reports whether the value is the configured fallback literal
// rather than one generated by the remote system.
func (r Resolution) IsDefault() bool {
	return r.Strategy == strategyDefault
}

const (
	strategyWorkflow = "workflow-scan"
	strategyCreate   = "create-scan"
	strategyDefault  = "default"
)

// Chain tries strategies in a fixed order until one succeeds.
type Chain struct {
	defaultEmail string
	logger       *log.Logger
}

// NewChain builds the chain with the configured fallback literal.
func NewChain(defaultEmail string, logger *log.Logger) *Chain {
	return &Chain{defaultEmail: defaultEmail, logger: logger}
}

// Resolve runs the chain against the currently open task. The final default
// strategy cannot fail, so Resolve always returns a value.
//
// Order: trigger the in-page workflow and scan for a generated address; if
// the trigger succeeded but no address appeared, click Create and scan
// again; otherwise fall back to the default literal.
func (c *Chain) Resolve(ctx context.Context, p Page) Resolution {
	workflowTriggered := false

	strategies := []Strategy{
		{
			Name: strategyWorkflow,
			Apply: func(ctx context.Context, p Page) (string, bool) {
				if err := p.TriggerWorkflow(ctx); err != nil {
					c.logger.Error("failed to trigger workflow action", "error", err)
				} else {
					workflowTriggered = true
					c.logger.Info("workflow action triggered")
				}
				// Scan regardless: the address may already exist even when
				// the trigger itself failed.
				return p.GeneratedEmail(ctx)
			},
		},
		{
			Name: strategyCreate,
			Apply: func(ctx context.Context, p Page) (string, bool) {
				if !workflowTriggered {
					c.logger.Warn("workflow trigger failed, skipping create action")
					return "", false
				}
				if err := p.TriggerCreate(ctx); err != nil {
					c.logger.Error("failed to trigger create action", "error", err)
					return "", false
				}
				c.logger.Info("create action triggered")
				return p.GeneratedEmail(ctx)
			},
		},
		{
			Name: strategyDefault,
			Apply: func(ctx context.Context, p Page) (string, bool) {
				c.logger.Warn("no generated address found, using default", "email", c.defaultEmail)
				return c.defaultEmail, true
			},
		},
	}

	for _, s := range strategies {
		if email, ok := s.Apply(ctx, p); ok {
			c.logger.Info("email resolved", "strategy", s.Name, "email", email)
			return Resolution{Email: email, Strategy: s.Name}
		}
	}

	// Unreachable: the default strategy always succeeds.
	return Resolution{Email: c.defaultEmail, Strategy: strategyDefault}
}
