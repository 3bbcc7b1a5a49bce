package engine

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/errors"
	"github.com/surfdeck/surfdeck/wasmbin"
)

// MemoryNamespace is the module name under which the synthesized memory
// provider is instantiated. wasm-bindgen threaded builds import their
// linear memory as env.memory.
const (
	MemoryNamespace = "env"
	MemoryExport    = "memory"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages
	// (64KB each). 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// EnableThreads enables the WebAssembly threads proposal
	// (shared memories and atomic operations).
	EnableThreads bool
}

// MemoryConfig describes the linear memory handed to a module at
// instantiation: initial and maximum page counts and whether the memory
// is shared between worker instances.
type MemoryConfig struct {
	InitialPages uint32
	MaximumPages uint32
	Shared       bool
}

// Engine wraps a wazero runtime configured for presentation modules.
type Engine struct {
	runtime   wazero.Runtime
	threads   bool
	memMu     sync.Mutex
	memReady  bool
	memConfig MemoryConfig
}

// New creates an engine with default configuration.
func New(ctx context.Context) (*Engine, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	// Guest calls must stop when their context is done or their module is
	// closed; worker entries block indefinitely otherwise.
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	threads := false
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.EnableThreads {
			runtimeCfg = runtimeCfg.WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
			threads = true
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return &Engine{runtime: runtime, threads: threads}, nil
}

// Close releases all engine resources, including every instance.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// ThreadsEnabled reports whether the threads feature was requested at
// engine creation.
func (e *Engine) ThreadsEnabled() bool {
	return e.threads
}

// Probe reports whether this engine accepts shared memories. It compiles
// a throwaway module declaring a shared memory; rejection means the
// threads feature is unavailable. The result carries no obligations:
// callers may log it and proceed either way.
func (e *Engine) Probe(ctx context.Context) bool {
	probe := wasmbin.SharedMemoryProvider(MemoryExport, 1, 1)
	compiled, err := e.runtime.CompileModule(ctx, probe)
	if err != nil {
		return false
	}
	_ = compiled.Close(ctx)
	return true
}

// LoadModule compiles a module binary. When mem is non-nil, a provider
// module exporting a memory with the given limits is instantiated under
// the env namespace first, so modules importing env.memory resolve
// against it. Imported functions from wasm-bindgen glue namespaces are
// bound to no-op stubs.
func (e *Engine) LoadModule(ctx context.Context, wasmBytes []byte, mem *MemoryConfig) (*Module, error) {
	if !wasmbin.IsModule(wasmBytes) {
		return nil, errors.New(errors.PhaseLoad, errors.KindBadMagic, "not a WebAssembly module")
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	if mem == nil {
		if derived := deriveMemoryConfig(compiled); derived != nil {
			mem = derived
		}
	}

	if mem != nil {
		if err := e.ensureMemory(ctx, *mem, envFuncImports(compiled)); err != nil {
			_ = compiled.Close(ctx)
			return nil, err
		}
	}

	if err := e.bindImportStubs(ctx, compiled); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	Logger().Debug("module compiled",
		zap.Int("size", len(wasmBytes)),
		zap.Bool("memory_configured", mem != nil))

	return &Module{engine: e, compiled: compiled}, nil
}

// ensureMemory instantiates the env memory provider once per engine.
// Safe for concurrent callers; the first configuration wins. Function
// imports from the env namespace are folded into the provider as
// zero-returning stubs: host modules cannot export memories and two
// modules cannot share the env name, so the provider must carry both.
func (e *Engine) ensureMemory(ctx context.Context, cfg MemoryConfig, funcs []api.FunctionDefinition) error {
	e.memMu.Lock()
	defer e.memMu.Unlock()

	if e.memReady {
		return nil
	}
	if e.runtime.Module(MemoryNamespace) != nil {
		e.memReady = true
		return nil
	}

	if cfg.Shared && !e.threads {
		return errors.Unsupported(errors.PhaseLoad, "shared memory requires the threads feature")
	}

	b := wasmbin.NewModuleBuilder().
		ExportMemory(MemoryExport, cfg.InitialPages, cfg.MaximumPages, cfg.Shared)
	for _, def := range funcs {
		_, name, _ := def.Import()
		b.AddFuncWithResults(name, valTypes(def.ParamTypes()), valTypes(def.ResultTypes()))
	}

	_, err := e.runtime.InstantiateWithConfig(ctx, b.Build(),
		wazero.NewModuleConfig().WithName(MemoryNamespace).WithStartFunctions())
	if err != nil {
		return errors.Wrap(errors.PhaseInstantiate, errors.KindInstantiation, err, "instantiate memory provider")
	}

	e.memReady = true
	e.memConfig = cfg
	Logger().Debug("memory provider ready",
		zap.Uint32("initial_pages", cfg.InitialPages),
		zap.Uint32("maximum_pages", cfg.MaximumPages),
		zap.Bool("shared", cfg.Shared),
		zap.Int("stub_functions", len(funcs)))
	return nil
}

// envFuncImports lists a module's function imports from the memory
// provider's namespace.
func envFuncImports(compiled wazero.CompiledModule) []api.FunctionDefinition {
	var defs []api.FunctionDefinition
	for _, def := range compiled.ImportedFunctions() {
		if mod, _, ok := def.Import(); ok && mod == MemoryNamespace {
			defs = append(defs, def)
		}
	}
	return defs
}

// valTypes converts wazero value types to their binary encodings, which
// share the same byte values.
func valTypes(ts []api.ValueType) []wasmbin.ValType {
	out := make([]wasmbin.ValType, len(ts))
	for i, t := range ts {
		out[i] = wasmbin.ValType(t)
	}
	return out
}

// deriveMemoryConfig infers provider limits from a module's env.memory
// import when the caller supplied none. Shared cannot be derived from
// wazero's memory definition, so derived configs are always non-shared.
func deriveMemoryConfig(compiled wazero.CompiledModule) *MemoryConfig {
	for _, def := range compiled.ImportedMemories() {
		mod, name, ok := def.Import()
		if !ok || mod != MemoryNamespace || name != MemoryExport {
			continue
		}
		cfg := &MemoryConfig{InitialPages: def.Min()}
		if max, hasMax := def.Max(); hasMax {
			cfg.MaximumPages = max
		}
		return cfg
	}
	return nil
}

// Module is a compiled module ready for instantiation.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// HasExport reports whether the module exports a function named name.
func (m *Module) HasExport(name string) bool {
	_, ok := m.compiled.ExportedFunctions()[name]
	return ok
}

// ExportNames returns the module's exported function names.
func (m *Module) ExportNames() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	return names
}

// Instantiate creates an anonymous instance of the module. Multiple
// instances of the same module may coexist; instances importing
// env.memory all resolve against the same provider.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled,
		wazero.NewModuleConfig().WithName("").WithStartFunctions())
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	return &Instance{mod: mod}, nil
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// Instance is a live module instance.
type Instance struct {
	mod api.Module
}

// HasExport reports whether the instance exports a function named name.
func (i *Instance) HasExport(name string) bool {
	return i.mod.ExportedFunction(name) != nil
}

// Call invokes an exported function. Results are raw stack values.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseInvoke, "export", name)
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInvoke, errors.KindInvalidData, err, "call "+name)
	}
	return results, nil
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}
