package provider

import (
	"context"

	"github.com/kbukum/edlflash/observability"
)

// WithTracing returns a Middleware that opens a span around each Execute
// call. The span name is "{serviceName}.{providerName}".
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, serviceName: serviceName}
	}
}

type tracingRR[I, O any] struct {
	inner       RequestResponse[I, O]
	serviceName string
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, t.serviceName+"."+t.inner.Name())
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.serviceName)
	observability.SetSpanAttribute(ctx, observability.AttrLabel, t.inner.Name())

	output, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanError(ctx, err)
		observability.SetSpanAttribute(ctx, observability.AttrStatus, observability.StatusError)
	} else {
		observability.SetSpanAttribute(ctx, observability.AttrStatus, observability.StatusOK)
	}

	return output, err
}
