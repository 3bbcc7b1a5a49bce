// Package engine wraps wazero for hosting presentation modules.
//
// It compiles and instantiates core WebAssembly binaries, probes for
// shared-memory support, synthesizes the env.memory provider for
// shared-memory builds, and stubs wasm-bindgen glue imports so modules
// link without their browser-side JavaScript.
package engine
