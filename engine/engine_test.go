package engine

import (
	"context"
	"testing"

	"github.com/surfdeck/surfdeck/wasmbin"
)

func TestProbe_ThreadsEnabled(t *testing.T) {
	ctx := context.Background()

	eng, err := NewWithConfig(ctx, &Config{EnableThreads: true})
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	if !eng.Probe(ctx) {
		t.Errorf("probe should succeed with threads enabled")
	}
}

func TestProbe_ThreadsDisabled(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	if eng.Probe(ctx) {
		t.Errorf("probe should fail without the threads feature")
	}
}

func TestLoadModule_RejectsGarbage(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	if _, err := eng.LoadModule(ctx, []byte("not wasm at all"), nil); err == nil {
		t.Errorf("expected error for non-wasm input")
	}
}

func TestLoadModule_Exports(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	data := wasmbin.NewModuleBuilder().
		AddFunc("wasm_main").
		Build()

	mod, err := eng.LoadModule(ctx, data, nil)
	if err != nil {
		t.Fatalf("load module: %v", err)
	}

	if !mod.HasExport("wasm_main") {
		t.Errorf("wasm_main should be exported")
	}
	if mod.HasExport("initThreadPool") {
		t.Errorf("initThreadPool should not be exported")
	}
}

func TestInstantiate_CallEntryPoint(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	data := wasmbin.NewModuleBuilder().
		AddFunc("wasm_main").
		Build()

	mod, err := eng.LoadModule(ctx, data, nil)
	if err != nil {
		t.Fatalf("load module: %v", err)
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	defer inst.Close(ctx)

	if _, err := inst.Call(ctx, "wasm_main"); err != nil {
		t.Fatalf("call wasm_main: %v", err)
	}
	if _, err := inst.Call(ctx, "missing"); err == nil {
		t.Errorf("expected error for missing export")
	}
}

func TestSharedMemory_ImportResolves(t *testing.T) {
	ctx := context.Background()

	eng, err := NewWithConfig(ctx, &Config{EnableThreads: true})
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	data := wasmbin.NewModuleBuilder().
		ImportMemory(MemoryNamespace, MemoryExport, 17, 16384, true).
		AddFunc("wasm_main").
		Build()

	mod, err := eng.LoadModule(ctx, data, &MemoryConfig{
		InitialPages: 17,
		MaximumPages: 16384,
		Shared:       true,
	})
	if err != nil {
		t.Fatalf("load module with shared memory: %v", err)
	}

	// Two instances must instantiate against the same provider.
	a, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatalf("instantiate first: %v", err)
	}
	defer a.Close(ctx)

	b, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatalf("instantiate second: %v", err)
	}
	defer b.Close(ctx)
}

func TestSharedMemory_RequiresThreads(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	data := wasmbin.NewModuleBuilder().AddFunc("wasm_main").Build()

	_, err = eng.LoadModule(ctx, data, &MemoryConfig{InitialPages: 1, MaximumPages: 2, Shared: true})
	if err == nil {
		t.Errorf("shared memory without threads should fail to load")
	}
}

func TestImportStubs_Bound(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	// A module importing glue functions must link against no-op stubs.
	data := buildModuleWithImport(t)
	mod, err := eng.LoadModule(ctx, data, nil)
	if err != nil {
		t.Fatalf("load module with glue import: %v", err)
	}

	if _, err := mod.Instantiate(ctx); err != nil {
		t.Fatalf("instantiate with stubbed import: %v", err)
	}
}

func TestEnvFunctionImports_StubbedInProvider(t *testing.T) {
	ctx := context.Background()

	eng, err := New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	// A module importing both env.memory and an env function must link:
	// the provider occupies the env name, so it has to export the
	// function stub itself.
	data := buildModuleWithEnvImports(t)
	mod, err := eng.LoadModule(ctx, data, nil)
	if err != nil {
		t.Fatalf("load module with env imports: %v", err)
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		t.Fatalf("instantiate against provider stubs: %v", err)
	}
	defer inst.Close(ctx)
}

// buildModuleWithEnvImports emits a module importing env.memory plus an
// env function with a result, assembled by hand like the glue fixture.
func buildModuleWithEnvImports(t *testing.T) []byte {
	t.Helper()

	out := append([]byte{}, wasmbin.Magic...)
	out = append(out, wasmbin.Version...)

	// type section: one functype (i32) -> (i32)
	typeSec := []byte{0x01, 0x60, 0x01, byte(wasmbin.ValI32), 0x01, byte(wasmbin.ValI32)}
	out = append(out, wasmbin.SectionType)
	out = wasmbin.AppendULEB128(out, uint32(len(typeSec)))
	out = append(out, typeSec...)

	// import section: env.memory (min 1) and env.emscripten_notify (func type 0)
	var impSec []byte
	impSec = wasmbin.AppendULEB128(impSec, 2)
	impSec = appendTestName(impSec, MemoryNamespace)
	impSec = appendTestName(impSec, MemoryExport)
	impSec = append(impSec, wasmbin.KindMemory, 0x00, 0x01)
	impSec = appendTestName(impSec, MemoryNamespace)
	impSec = appendTestName(impSec, "emscripten_notify")
	impSec = append(impSec, wasmbin.KindFunc, 0x00)
	out = append(out, wasmbin.SectionImport)
	out = wasmbin.AppendULEB128(out, uint32(len(impSec)))
	out = append(out, impSec...)

	return out
}

// buildModuleWithImport emits a module importing one function from the
// wasm-bindgen placeholder namespace. The builder does not support
// function imports, so the section is assembled by hand.
func buildModuleWithImport(t *testing.T) []byte {
	t.Helper()

	out := append([]byte{}, wasmbin.Magic...)
	out = append(out, wasmbin.Version...)

	// type section: one functype () -> ()
	typeSec := []byte{0x01, 0x60, 0x00, 0x00}
	out = append(out, wasmbin.SectionType)
	out = wasmbin.AppendULEB128(out, uint32(len(typeSec)))
	out = append(out, typeSec...)

	// import section: __wbindgen_placeholder__.__wbindgen_describe (func type 0)
	var impSec []byte
	impSec = wasmbin.AppendULEB128(impSec, 1)
	impSec = appendTestName(impSec, "__wbindgen_placeholder__")
	impSec = appendTestName(impSec, "__wbindgen_describe")
	impSec = append(impSec, wasmbin.KindFunc, 0x00)
	out = append(out, wasmbin.SectionImport)
	out = wasmbin.AppendULEB128(out, uint32(len(impSec)))
	out = append(out, impSec...)

	return out
}

func appendTestName(dst []byte, name string) []byte {
	dst = wasmbin.AppendULEB128(dst, uint32(len(name)))
	return append(dst, name...)
}
