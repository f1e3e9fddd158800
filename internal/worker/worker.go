package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Task is a unit of background work. It should return once ctx is done.
type Task func(ctx context.Context) error

// Pool runs background tasks (reset emails, periodic cleanup) and lets the
// server wait for them during shutdown.
type Pool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool creates a new worker pool
func NewPool(logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Submit runs a named task in the background
func (p *Pool) Submit(name string, task Task) error {
	return p.SubmitWithTimeout(name, 0, task)
}

// SubmitWithTimeout runs a named task whose context expires after timeout.
// A zero timeout only ends the task on shutdown.
func (p *Pool) SubmitWithTimeout(name string, timeout time.Duration, task Task) error {
	if !p.track() {
		return ErrPoolClosed
	}

	go func() {
		defer p.wg.Done()

		ctx, cancel := p.ctx, context.CancelFunc(func() {})
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(p.ctx, timeout)
		}
		defer cancel()

		p.run(ctx, name, task)
	}()

	return nil
}

// Schedule runs a named task every interval until shutdown
func (p *Pool) Schedule(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if !p.track() {
		return ErrPoolClosed
	}

	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				p.run(p.ctx, name, task)
			}
		}
	}()

	p.logger.Debug("⏱️ [Worker] Scheduled periodic task", "task", name, "interval", interval)
	return nil
}

// Context returns the pool's context
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Shutdown stops accepting work, cancels running tasks and waits up to
// timeout for them. It reports whether every task finished in time.
func (p *Pool) Shutdown(timeout time.Duration) bool {
	p.logger.Info("🛑 [Worker] Initiating graceful shutdown...")

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("✅ [Worker] All background tasks completed")
		return true
	case <-time.After(timeout):
		p.logger.Warn("⚠️ [Worker] Shutdown timeout exceeded, some tasks may not have completed",
			"timeout", timeout,
		)
		return false
	}
}

// track registers a task unless the pool is closed
func (p *Pool) track() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}
	p.wg.Add(1)
	return true
}

func (p *Pool) run(ctx context.Context, name string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("💥 [Worker] Task panicked", "task", name, "panic", r)
		}
	}()

	start := time.Now()
	if err := task(ctx); err != nil {
		p.logger.Error("❌ [Worker] Task failed",
			"task", name,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}

	p.logger.Debug("✅ [Worker] Task finished", "task", name, "duration", time.Since(start))
}

// Pool errors
var (
	ErrPoolClosed      = errors.New("worker pool is shut down")
	ErrInvalidInterval = errors.New("schedule interval must be positive")
)
