package provider

import (
	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/observability"
	"github.com/kbukum/edlflash/resilience"
)

// Middleware wraps a provider with one cross-cutting concern.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares; the first one is outermost.
// Chain(a, b, c)(p) is a(b(c(p))).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// Step wraps p in the middleware every tool step runs under, outermost
// first: a span, run metrics, a log record, then the device bulkhead. A run
// rejected by the bulkhead is still traced, counted and logged.
func Step[I, O any](p RequestResponse[I, O], service string, metrics *observability.Metrics, log *logger.Logger, bh *resilience.Bulkhead) RequestResponse[I, O] {
	return Chain(
		WithTracing[I, O](service),
		WithMetrics[I, O](metrics),
		WithLogging[I, O](log),
		WithBulkhead[I, O](bh),
	)(p)
}
