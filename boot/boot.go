package boot

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/engine"
	"github.com/surfdeck/surfdeck/errors"
	"github.com/surfdeck/surfdeck/pool"
)

// Exports the loader looks for on the presentation module. Both are
// optional; absence skips the corresponding step.
const (
	EntryPoint = "wasm_main"
	PoolInit   = "initThreadPool"
)

// DefaultModulePath is the discovery fallback when no explicit module
// location is given.
const DefaultModulePath = "surfdeck_bg.wasm"

// Default shared-memory limits for the threaded profile, in 64KB pages.
// Fixed at build time by the wasm toolchain; 16384 pages caps the
// growable region at 1GB.
const (
	DefaultInitialPages uint32 = 17
	DefaultMaximumPages uint32 = 16384
)

// Profile selects one of the three bootstrap flavors.
type Profile int

const (
	// ProfileSimple loads the module and invokes the entry point.
	// Load failures are logged and swallowed.
	ProfileSimple Profile = iota

	// ProfileLogged is ProfileSimple with an explicit failure handler:
	// the rejection is logged exactly once and the loader degrades
	// silently, invoking nothing.
	ProfileLogged

	// ProfileThreaded configures shared growable memory and starts the
	// worker pool before the entry point is considered. No failure
	// handling: errors propagate to the caller.
	ProfileThreaded
)

func (p Profile) String() string {
	switch p {
	case ProfileSimple:
		return "simple"
	case ProfileLogged:
		return "logged"
	case ProfileThreaded:
		return "threaded"
	default:
		return "unknown"
	}
}

// Options configures a Loader.
type Options struct {
	// ModulePath is the module location; DefaultModulePath when empty.
	ModulePath string

	// Module supplies the binary directly, taking precedence over
	// ModulePath.
	Module []byte

	// Memory overrides the threaded profile's memory limits.
	Memory *engine.MemoryConfig

	// Workers is the pool size for the threaded profile; defaults to
	// the CPU count.
	Workers int

	// MemoryLimitPages caps per-instance memory at the engine level.
	MemoryLimitPages uint32

	Logger *zap.Logger
}

// Result reports what the boot sequence accomplished.
type Result struct {
	SharedMemory bool // capability probe outcome (informational only)
	Loaded       bool
	PoolStarted  bool
	EntryInvoked bool
}

// Loader drives the bootstrap sequence: capability probe, module load,
// optional worker-pool start, entry-point invocation. The sequence is
// strictly linear; each step depends only on the previous step's
// completion.
type Loader struct {
	profile Profile
	opts    Options
	logger  *zap.Logger
	eng     *engine.Engine
	pool    *pool.Pool
	mod     *engine.Module
	inst    *engine.Instance
}

// New creates a loader for the given profile.
func New(profile Profile, opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{profile: profile, opts: opts, logger: logger}
}

// Run executes the bootstrap sequence. For the simple and logged
// profiles a load failure is logged once and swallowed: Run returns a
// zero-invocation Result and a nil error. For the threaded profile all
// failures propagate.
func (l *Loader) Run(ctx context.Context) (*Result, error) {
	eng, err := engine.NewWithConfig(ctx, &engine.Config{
		MemoryLimitPages: l.opts.MemoryLimitPages,
		EnableThreads:    l.profile == ProfileThreaded,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInstantiation, err, "create engine")
	}
	l.eng = eng

	res := &Result{}

	// Capability probe. The outcome is logged before any load attempt
	// begins and never branches the sequence.
	res.SharedMemory = eng.Probe(ctx)
	l.logger.Info("shared memory support",
		zap.Bool("available", res.SharedMemory),
		zap.String("profile", l.profile.String()))

	if err := l.load(ctx, res); err != nil {
		if l.profile == ProfileThreaded {
			l.Close(ctx)
			return nil, err
		}
		// Logged and simple profiles degrade silently: one diagnostic
		// line, no entry-point invocation, no distinguished status.
		l.logger.Error("Failed to initialize WASM:", zap.Error(err))
		l.Close(ctx)
		return res, nil
	}
	res.Loaded = true
	l.logger.Info("WASM initialized")

	if l.profile == ProfileThreaded {
		if err := l.startPool(ctx, res); err != nil {
			l.Close(ctx)
			return nil, err
		}
	}

	if !l.inst.HasExport(EntryPoint) {
		// Nothing more to do; initialization success was already
		// logged and the module simply has no main routine.
		return res, nil
	}

	if _, err := l.inst.Call(ctx, EntryPoint); err != nil {
		l.Close(ctx)
		return nil, errors.Wrap(errors.PhaseInvoke, errors.KindInvalidData, err, "invoke "+EntryPoint)
	}
	res.EntryInvoked = true
	l.logger.Info("wasm_main called")

	return res, nil
}

// load reads, compiles and instantiates the module.
func (l *Loader) load(ctx context.Context, res *Result) error {
	data := l.opts.Module
	if data == nil {
		path := l.opts.ModulePath
		if path == "" {
			path = DefaultModulePath
		}
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindIO, err, "read module")
		}
	}

	mem := l.opts.Memory
	if mem == nil && l.profile == ProfileThreaded {
		mem = &engine.MemoryConfig{
			InitialPages: DefaultInitialPages,
			MaximumPages: DefaultMaximumPages,
			Shared:       true,
		}
	}

	mod, err := l.eng.LoadModule(ctx, data, mem)
	if err != nil {
		return err
	}
	l.mod = mod

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return err
	}
	l.inst = inst
	return nil
}

// startPool brings up the worker pool and, when the module exposes its
// own pool initializer, awaits it before returning. The entry point is
// never considered until this completes.
func (l *Loader) startPool(ctx context.Context, res *Result) error {
	if !l.inst.HasExport(PoolInit) {
		return nil
	}

	p := pool.New(l.mod, l.opts.Workers, l.logger)
	if err := p.Start(ctx); err != nil {
		return err
	}
	l.pool = p

	if _, err := l.inst.Call(ctx, PoolInit, uint64(p.Size())); err != nil {
		return errors.Wrap(errors.PhasePool, errors.KindInvalidData, err, "invoke "+PoolInit)
	}

	res.PoolStarted = true
	l.logger.Info("thread pool ready", zap.Int("workers", p.Size()))
	return nil
}

// Close releases the pool, instance and engine. Safe after failed runs.
func (l *Loader) Close(ctx context.Context) error {
	var firstErr error
	if l.pool != nil {
		if err := l.pool.Close(ctx); err != nil {
			firstErr = err
		}
		l.pool = nil
	}
	if l.inst != nil {
		if err := l.inst.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		l.inst = nil
	}
	if l.eng != nil {
		if err := l.eng.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		l.eng = nil
	}
	return firstErr
}
