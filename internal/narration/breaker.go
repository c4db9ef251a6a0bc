package narration

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Outcome labels how a guarded generation ended.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeFallback    Outcome = "fallback"
	OutcomeBreakerOpen Outcome = "breaker_open"
)

type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      2,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// NewBreaker builds a breaker that logs state changes.
func NewBreaker(cfg BreakerConfig, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not the provider's fault.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Guard wraps a Generator with a timeout, a circuit breaker and the local
// fallback. Narrate never fails.
type Guard struct {
	gen     Generator
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	log     *zap.Logger
	observe func(Outcome)
}

func NewGuard(gen Generator, cb *gobreaker.CircuitBreaker, timeout time.Duration, log *zap.Logger) *Guard {
	return &Guard{gen: gen, cb: cb, timeout: timeout, log: log, observe: func(Outcome) {}}
}

// Observe registers a callback for every outcome, used for metrics.
func (g *Guard) Observe(fn func(Outcome)) { g.observe = fn }

// Narrate returns generated text, or the fallback for caption when the
// generator fails, times out or is short-circuited.
func (g *Guard) Narrate(ctx context.Context, caption, partnerName string) (string, Outcome) {
	if g.gen == nil {
		g.observe(OutcomeFallback)
		return Fallback(caption), OutcomeFallback
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := g.cb.Execute(func() (interface{}, error) {
		return g.gen.Generate(ctx, caption, partnerName)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.observe(OutcomeBreakerOpen)
		return Fallback(caption), OutcomeBreakerOpen
	case err != nil:
		g.log.Warn("narration generation failed", zap.Error(err))
		g.observe(OutcomeFallback)
		return Fallback(caption), OutcomeFallback
	}
	g.observe(OutcomeOK)
	return Clean(res.(string)), OutcomeOK
}
