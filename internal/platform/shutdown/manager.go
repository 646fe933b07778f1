// Package shutdown implements graceful process shutdown (spec §5 "Graceful
// shutdown"). Adapted from the teacher's platform/shutdown package.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Manager runs registered shutdown functions in reverse registration order
// on SIGINT/SIGTERM, each bounded by the configured timeout.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger
	funcs   []shutdownFunc
	mu      sync.Mutex
}

type shutdownFunc struct {
	name string
	fn   func(context.Context) error
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{timeout: timeout, logger: logger}
}

// Add registers a named shutdown function. Functions run in reverse of
// registration order when a signal arrives.
func (m *Manager) Add(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, shutdownFunc{name: name, fn: fn})
}

// Wait blocks until SIGINT/SIGTERM, then runs every registered function.
func (m *Manager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	m.logger.Info("received shutdown signal, starting graceful shutdown")
	m.runAll()
}

// Run executes the shutdown sequence immediately, without waiting for a
// signal. Exposed for tests and for programmatic shutdown.
func (m *Manager) Run() {
	m.runAll()
}

func (m *Manager) runAll() {
	m.mu.Lock()
	funcs := make([]shutdownFunc, len(m.funcs))
	copy(funcs, m.funcs)
	m.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		fn := funcs[i]
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		start := time.Now()
		err := fn.fn(ctx)
		cancel()
		duration := time.Since(start)
		if err != nil {
			m.logger.Error("shutdown function failed",
				zap.String("name", fn.name), zap.Error(err), zap.Duration("duration", duration))
		} else {
			m.logger.Info("shutdown function completed",
				zap.String("name", fn.name), zap.Duration("duration", duration))
		}
	}
	m.logger.Info("graceful shutdown completed")
}

// ClosePool returns a shutdown function for anything with a no-arg Close.
func ClosePool(pool interface{ Close() }) func(context.Context) error {
	return func(ctx context.Context) error {
		pool.Close()
		return nil
	}
}
