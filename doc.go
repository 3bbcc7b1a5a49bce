// Package surfdeck hosts terminal-presentation WebAssembly modules on a
// pure-Go wazero runtime and carries the tooling around them.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	surfdeck/            Root package documentation
//	├── boot/            Bootstrap orchestration: probe, load, pool, entry point
//	├── engine/          wazero integration, shared-memory provisioning
//	├── pool/            Worker pool over shared linear memory
//	├── wasmbin/         Core WASM binary reading and synthesis
//	├── surface/         Binary surface codec and slide conversion
//	├── deck/            Ordered surface collections with navigation
//	├── viewer/          Terminal presentation UI
//	├── server/          Cross-origin-isolated dev server for browser bundles
//	├── errors/          Structured error types
//	└── cmd/surfdeck/    CLI
//
// # Quick Start
//
// Boot a presentation module with shared memory and a worker pool:
//
//	loader := boot.New(boot.ProfileThreaded, boot.Options{
//	    ModulePath: "surfdeck_bg.wasm",
//	    Logger:     logger,
//	})
//	defer loader.Close(ctx)
//
//	res, err := loader.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The loader probes shared-memory support, instantiates the module
// (provisioning an env.memory provider when shared memory is
// configured), starts the worker pool when the module exports
// initThreadPool, and finally invokes wasm_main if it is exported.
package surfdeck
