// Package resilience provides the concurrency guard used around device
// sessions.
//
// A serial device accepts one Sahara or Firehose session at a time, so every
// tool invocation that talks to it runs inside a single-slot Bulkhead:
//
//	lock := resilience.NewBulkhead(resilience.DeviceLockConfig("device", 30*time.Second))
//	err := lock.Execute(ctx, func() error {
//	    return sendLoader(ctx)
//	})
package resilience
