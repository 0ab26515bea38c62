package bbref

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Policy is the politeness policy of one pipeline.
type Policy struct {
	// RequestDelay is the minimum gap between two outbound requests.
	RequestDelay time.Duration
	// BatchDelay is a pause taken once before the first request of a run.
	BatchDelay time.Duration
}

// Pacer enforces a Policy. Only requests that reach the network wait on it.
type Pacer struct {
	limiter *rate.Limiter
	batch   time.Duration
}

// NewPacer builds a pacer for p. A zero policy never waits.
func NewPacer(p Policy) *Pacer {
	limit := rate.Inf
	if p.RequestDelay > 0 {
		limit = rate.Every(p.RequestDelay)
	}
	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		batch:   p.BatchDelay,
	}
}

// Wait blocks until the next request may be sent.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// StartBatch takes the batch pause.
func (p *Pacer) StartBatch(ctx context.Context) error {
	if p == nil || p.batch <= 0 {
		return nil
	}
	t := time.NewTimer(p.batch)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
