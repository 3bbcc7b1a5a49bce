// Package pool runs a fixed-size set of worker instances for threaded
// presentation modules. Workers are extra instances of the same compiled
// module sharing the env memory; each runs the module's thread entry on
// its own goroutine. Callers only observe pool readiness, never
// individual workers.
package pool

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/engine"
	"github.com/surfdeck/surfdeck/errors"
)

// ThreadEntry is the export a worker instance runs after instantiation.
// Modules without it still get their instances; the workers then only
// serve as additional memory-sharing contexts.
const ThreadEntry = "wasm_thread_entry"

// Pool is a fixed-size worker pool backing a module's thread-pool
// initializer.
type Pool struct {
	module    *engine.Module
	logger    *zap.Logger
	instances []*engine.Instance
	wg        sync.WaitGroup
	cancel    context.CancelFunc
	workers   int
	started   bool
}

// New creates a pool of the given size. A non-positive size defaults to
// the number of CPUs, mirroring hardware concurrency in the browser.
func New(module *engine.Module, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{module: module, workers: workers, logger: logger}
}

// Size returns the configured worker count.
func (p *Pool) Size() int {
	return p.workers
}

// Start instantiates every worker and launches its thread entry. It
// returns once all workers are instantiated; that is the pool-ready
// signal awaited before the entry point runs.
func (p *Pool) Start(ctx context.Context) error {
	if p.started {
		return errors.InvalidInput(errors.PhasePool, "pool already started")
	}

	// Entries typically park or loop for the pool's whole lifetime, so
	// workers run on a context that Close cancels to unblock them.
	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		inst, err := p.module.Instantiate(ctx)
		if err != nil {
			p.cancel()
			p.close(ctx)
			return errors.Wrap(errors.PhasePool, errors.KindInstantiation, err, "instantiate worker")
		}
		p.instances = append(p.instances, inst)

		if inst.HasExport(ThreadEntry) {
			p.wg.Add(1)
			worker := i
			go func(inst *engine.Instance) {
				defer p.wg.Done()
				if _, err := inst.Call(workerCtx, ThreadEntry); err != nil {
					p.logger.Debug("worker thread entry returned",
						zap.Int("worker", worker),
						zap.Error(err))
				}
			}(inst)
		}
	}

	p.started = true
	p.logger.Info("worker pool ready", zap.Int("workers", p.workers))
	return nil
}

// Close cancels the worker context, tears down all worker instances and
// waits for their entries to return.
func (p *Pool) Close(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	err := p.close(ctx)
	p.wg.Wait()
	return err
}

func (p *Pool) close(ctx context.Context) error {
	var firstErr error
	for _, inst := range p.instances {
		if err := inst.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.instances = nil
	return firstErr
}
