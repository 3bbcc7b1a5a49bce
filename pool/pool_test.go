package pool

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/engine"
	"github.com/surfdeck/surfdeck/wasmbin"
)

func loadFixture(t *testing.T, ctx context.Context, eng *engine.Engine, withEntry bool) *engine.Module {
	t.Helper()

	b := wasmbin.NewModuleBuilder().AddFunc("wasm_main")
	if withEntry {
		b.AddFunc(ThreadEntry)
	}

	mod, err := eng.LoadModule(ctx, b.Build(), nil)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return mod
}

// spinningFixture builds a module whose thread entry is an infinite
// loop, the shape of a worker parked waiting for jobs.
func spinningFixture(t *testing.T, ctx context.Context, eng *engine.Engine) *engine.Module {
	t.Helper()

	out := append([]byte{}, wasmbin.Magic...)
	out = append(out, wasmbin.Version...)

	// type section: one () -> () signature
	typeSec := []byte{0x01, 0x60, 0x00, 0x00}
	out = append(out, wasmbin.SectionType)
	out = wasmbin.AppendULEB128(out, uint32(len(typeSec)))
	out = append(out, typeSec...)

	// function section: one function of type 0
	funcSec := []byte{0x01, 0x00}
	out = append(out, wasmbin.SectionFunction)
	out = wasmbin.AppendULEB128(out, uint32(len(funcSec)))
	out = append(out, funcSec...)

	// export section: the thread entry
	var expSec []byte
	expSec = wasmbin.AppendULEB128(expSec, 1)
	expSec = wasmbin.AppendULEB128(expSec, uint32(len(ThreadEntry)))
	expSec = append(expSec, ThreadEntry...)
	expSec = append(expSec, wasmbin.KindFunc, 0x00)
	out = append(out, wasmbin.SectionExport)
	out = wasmbin.AppendULEB128(out, uint32(len(expSec)))
	out = append(out, expSec...)

	// code section: loop { br 0 }
	body := []byte{0x00, 0x03, 0x40, 0x0C, 0x00, 0x0B, 0x0B}
	var codeSec []byte
	codeSec = wasmbin.AppendULEB128(codeSec, 1)
	codeSec = wasmbin.AppendULEB128(codeSec, uint32(len(body)))
	codeSec = append(codeSec, body...)
	out = append(out, wasmbin.SectionCode)
	out = wasmbin.AppendULEB128(out, uint32(len(codeSec)))
	out = append(out, codeSec...)

	mod, err := eng.LoadModule(ctx, out, nil)
	if err != nil {
		t.Fatalf("load spinning fixture: %v", err)
	}
	return mod
}

func TestPool_CloseInterruptsSpinningEntry(t *testing.T) {
	ctx := context.Background()

	eng, err := engine.New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	mod := spinningFixture(t, ctx, eng)

	p := New(mod, 1, zap.NewNop())
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start pool: %v", err)
	}

	done := make(chan struct{})
	go func() {
		p.Close(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not return while a worker entry was looping")
	}
}

func TestPool_StartAndClose(t *testing.T) {
	ctx := context.Background()

	eng, err := engine.New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	mod := loadFixture(t, ctx, eng, true)

	p := New(mod, 3, zap.NewNop())
	if p.Size() != 3 {
		t.Errorf("Size() = %d, want 3", p.Size())
	}

	if err := p.Start(ctx); err != nil {
		t.Fatalf("start pool: %v", err)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatalf("close pool: %v", err)
	}
}

func TestPool_NoThreadEntry(t *testing.T) {
	ctx := context.Background()

	eng, err := engine.New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	mod := loadFixture(t, ctx, eng, false)

	p := New(mod, 2, nil)
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start pool without thread entry: %v", err)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatalf("close pool: %v", err)
	}
}

func TestPool_DefaultsToCPUCount(t *testing.T) {
	ctx := context.Background()

	eng, err := engine.New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	mod := loadFixture(t, ctx, eng, false)

	p := New(mod, 0, nil)
	if p.Size() < 1 {
		t.Errorf("Size() = %d, want at least 1", p.Size())
	}
}

func TestPool_DoubleStart(t *testing.T) {
	ctx := context.Background()

	eng, err := engine.New(ctx)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	defer eng.Close(ctx)

	mod := loadFixture(t, ctx, eng, false)

	p := New(mod, 1, nil)
	if err := p.Start(ctx); err != nil {
		t.Fatalf("first start: %v", err)
	}
	defer p.Close(ctx)

	if err := p.Start(ctx); err == nil {
		t.Errorf("second start should fail")
	}
}
