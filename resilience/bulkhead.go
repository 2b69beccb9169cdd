package resilience

import (
	"context"
	"errors"
	"time"
)

// Common bulkhead errors.
var (
	ErrBulkheadFull    = errors.New("bulkhead is full")
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// WaitForever makes a bulkhead wait for a slot until the caller's context ends.
const WaitForever time.Duration = -1

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// Name identifies this bulkhead in errors and logs.
	Name string
	// MaxConcurrent is the maximum number of concurrent calls.
	MaxConcurrent int
	// MaxWait is how long to wait for a slot. 0 fails immediately,
	// WaitForever waits until the context is done.
	MaxWait time.Duration
	// OnReject is called when a request is rejected.
	OnReject func(name string)
	// OnAcquire is called when a slot is acquired.
	OnAcquire func(name string)
	// OnRelease is called when a slot is released.
	OnRelease func(name string)
}

// DeviceLockConfig returns the configuration for a bulkhead guarding a single
// serial device: one session at a time, waiting up to maxWait for the
// previous one to finish.
func DeviceLockConfig(name string, maxWait time.Duration) BulkheadConfig {
	return BulkheadConfig{
		Name:          name,
		MaxConcurrent: 1,
		MaxWait:       maxWait,
	}
}

// Bulkhead limits how many calls run at once.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}
}

// NewBulkhead creates a new bulkhead. MaxConcurrent below 1 is treated as 1.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}

	return &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Execute runs fn within the bulkhead.
// Returns ErrBulkheadFull, ErrBulkheadTimeout or the context error if no slot
// is available; fn is not called in that case.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		if b.config.OnReject != nil {
			b.config.OnReject(b.config.Name)
		}
		return err
	}

	if b.config.OnAcquire != nil {
		b.config.OnAcquire(b.config.Name)
	}

	defer func() {
		b.release()
		if b.config.OnRelease != nil {
			b.config.OnRelease(b.config.Name)
		}
	}()

	return fn()
}

// ExecuteWithResult runs a function that returns a value. The value is
// returned even when fn fails.
func ExecuteWithResult[T any](b *Bulkhead, ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	if b.config.MaxWait == 0 {
		return ErrBulkheadFull
	}

	var timeout <-chan time.Time
	if b.config.MaxWait > 0 {
		timer := time.NewTimer(b.config.MaxWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timeout:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bulkhead) release() {
	<-b.sem
}

// Name returns the bulkhead's name.
func (b *Bulkhead) Name() string {
	return b.config.Name
}

// Available returns the number of available slots.
func (b *Bulkhead) Available() int {
	return b.config.MaxConcurrent - len(b.sem)
}

// InUse returns the number of slots currently in use.
func (b *Bulkhead) InUse() int {
	return len(b.sem)
}

// MaxConcurrent returns the maximum concurrent calls allowed.
func (b *Bulkhead) MaxConcurrent() int {
	return b.config.MaxConcurrent
}
