package provider

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/resilience"
)

// WithBulkhead returns a Middleware that runs each Execute call inside bh.
// A call that cannot get a slot fails with SERVICE_UNAVAILABLE naming the
// bulkhead; the wrapped provider is not invoked.
func WithBulkhead[I, O any](bh *resilience.Bulkhead) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if bh == nil {
			return inner
		}
		return &bulkheadRR[I, O]{inner: inner, bh: bh}
	}
}

type bulkheadRR[I, O any] struct {
	inner RequestResponse[I, O]
	bh    *resilience.Bulkhead
}

func (b *bulkheadRR[I, O]) Name() string                         { return b.inner.Name() }
func (b *bulkheadRR[I, O]) IsAvailable(ctx context.Context) bool { return b.inner.IsAvailable(ctx) }

func (b *bulkheadRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ran := false
	output, err := resilience.ExecuteWithResult(b.bh, ctx, func() (O, error) {
		ran = true
		return b.inner.Execute(ctx, input)
	})
	if err != nil && !ran {
		return output, rejectionError(b.bh.Name(), err)
	}
	return output, err
}

func rejectionError(name string, err error) error {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.Timeout("wait for " + name).WithCause(err)
	default:
		return errors.ServiceUnavailable(name).
			WithCause(err).
			WithDetail("reason", "another tool session is running")
	}
}
