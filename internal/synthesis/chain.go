// internal/synthesis/chain.go

package synthesis

import (
	"context"

	"livestock-advisor/internal/common/logger"
	"livestock-advisor/internal/common/metrics"
)

// Chain is the primary/fallback strategy pair. Which primary to use is
// decided once at startup (an API key makes the completion service the
// primary); at runtime any primary failure falls through to the rule-based
// formatter so a request never ends without text.
type Chain struct {
	primary  Synthesizer
	fallback Synthesizer
	logger   logger.Logger
}

// NewChain builds the pair. primary may be nil, in which case the fallback
// is the only path and using it carries no penalty.
func NewChain(primary Synthesizer, fallback Synthesizer, log logger.Logger) *Chain {
	return &Chain{
		primary:  primary,
		fallback: fallback,
		logger:   log.WithFields(map[string]interface{}{"component": "synthesis"}),
	}
}

func (c *Chain) Synthesize(ctx context.Context, req Request) (Result, error) {
	if c.primary != nil {
		text, err := c.primary.Synthesize(ctx, req)
		if err == nil {
			return Result{Text: text}, nil
		}
		metrics.SynthesisFallbacks.Inc()
		c.logger.Warn("primary synthesizer failed, using fallback", map[string]interface{}{
			"primary": c.primary.Name(),
			"error":   err.Error(),
		})
		text, ferr := c.fallback.Synthesize(ctx, req)
		return Result{Text: text, Fallback: true}, ferr
	}

	text, err := c.fallback.Synthesize(ctx, req)
	return Result{Text: text}, err
}
