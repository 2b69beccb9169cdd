// Package provider defines the request/response abstraction every tool
// backend is driven through, and the middleware stacked around it.
//
// A RequestResponse[I, O] takes one input and returns one output; a single
// vendor tool invocation is the canonical case. Middleware[I, O] wraps a
// provider to add cross-cutting behavior, and Chain composes them:
//
//	wrapped := provider.Chain(
//	    provider.WithTracing[process.Command, *process.Result]("edlflash"),
//	    provider.WithMetrics[process.Command, *process.Result](metrics),
//	    provider.WithLogging[process.Command, *process.Result](log),
//	    provider.WithBulkhead[process.Command, *process.Result](deviceLock),
//	)(adapter)
//
// The first middleware is outermost.
package provider
