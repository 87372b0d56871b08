package llm

import (
	"context"
	"fmt"
	"time"

	"mathquest/internal/common"
)

// TimeoutProvider bounds every call and reports any failure, timeouts
// included, as common.ErrGeneration.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p. A non-positive timeout leaves calls unbounded.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	resp, err := t.inner.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrGeneration, err)
	}
	return resp, nil
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
