package aimediator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediahub/mediahub/internal/domain/apperr"
	"github.com/mediahub/mediahub/internal/domain/mediation"
)

// Chain tries each configured provider in order with a per-provider timeout
// and returns the first successful result. When every provider fails it
// reports ADAPTER_UNAVAILABLE; the caller decides what to degrade to.
type Chain struct {
	providers []mediation.Adapter
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewChain builds a provider chain. timeout bounds each provider attempt
// individually; zero disables the per-attempt bound and leaves only the
// caller's context deadline.
func NewChain(providers []mediation.Adapter, timeout time.Duration, logger zerolog.Logger) *Chain {
	return &Chain{
		providers: providers,
		timeout:   timeout,
		logger:    logger.With().Str("component", "aimediator").Logger(),
	}
}

func (c *Chain) GenerateReply(ctx context.Context, in mediation.ReplyInput) (mediation.ReplyResult, error) {
	var lastErr error
	for i, p := range c.providers {
		attemptCtx, cancel := c.attemptContext(ctx)
		result, err := p.GenerateReply(attemptCtx, in)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.logger.Warn().Err(err).Int("provider", i).Msg("reply provider failed")
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no providers configured")
	}
	return mediation.ReplyResult{}, apperr.AdapterUnavailable(fmt.Errorf("no provider produced a reply: %w", lastErr))
}

func (c *Chain) Summarize(ctx context.Context, in mediation.SummaryInput) (mediation.SummaryResult, error) {
	var lastErr error
	for i, p := range c.providers {
		attemptCtx, cancel := c.attemptContext(ctx)
		result, err := p.Summarize(attemptCtx, in)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.logger.Warn().Err(err).Int("provider", i).Msg("summary provider failed")
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no providers configured")
	}
	return mediation.SummaryResult{}, apperr.AdapterUnavailable(fmt.Errorf("no provider produced a summary: %w", lastErr))
}

func (c *Chain) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
