// Package wasmbin emits and inspects minimal core WebAssembly binaries.
//
// The engine uses it to synthesize the memory provider module that backs
// shared-memory instantiation, and to scan export sections for entry-point
// discovery without compiling the module first.
package wasmbin
