package wasmbin

// ModuleBuilder assembles minimal core WebAssembly modules from Go. It
// covers exactly what the host needs to synthesize: a provider module
// exporting a (possibly shared) linear memory alongside zero-returning
// function stubs, and fixture modules for exercising the boot sequence.
type ModuleBuilder struct {
	memImport *memoryClause
	memLocal  *memoryClause
	funcs     []funcClause
}

type memoryClause struct {
	module string // import namespace, empty for local definitions
	name   string // import field or export name
	min    uint32
	max    uint32
	shared bool
}

type funcClause struct {
	name    string
	params  []ValType
	results []ValType
}

// NewModuleBuilder creates an empty module builder.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{}
}

// AddFunc adds an exported function with the given parameter types.
// The body is a no-op; the function returns nothing.
func (b *ModuleBuilder) AddFunc(name string, params ...ValType) *ModuleBuilder {
	b.funcs = append(b.funcs, funcClause{name: name, params: params})
	return b
}

// AddFuncWithResults adds an exported function with an explicit
// signature. The body pushes a zero for each result.
func (b *ModuleBuilder) AddFuncWithResults(name string, params, results []ValType) *ModuleBuilder {
	b.funcs = append(b.funcs, funcClause{name: name, params: params, results: results})
	return b
}

// ImportMemory declares a memory imported from another module instance.
// Shared memories require a maximum.
func (b *ModuleBuilder) ImportMemory(module, name string, min, max uint32, shared bool) *ModuleBuilder {
	b.memImport = &memoryClause{module: module, name: name, min: min, max: max, shared: shared}
	return b
}

// ExportMemory declares a locally defined memory exported under name.
func (b *ModuleBuilder) ExportMemory(name string, min, max uint32, shared bool) *ModuleBuilder {
	b.memLocal = &memoryClause{name: name, min: min, max: max, shared: shared}
	return b
}

// Build emits the module binary.
func (b *ModuleBuilder) Build() []byte {
	out := append([]byte{}, Magic...)
	out = append(out, Version...)

	// Type section: one entry per function.
	if len(b.funcs) > 0 {
		var sec []byte
		sec = AppendULEB128(sec, uint32(len(b.funcs)))
		for _, f := range b.funcs {
			sec = append(sec, 0x60) // functype
			sec = AppendULEB128(sec, uint32(len(f.params)))
			for _, p := range f.params {
				sec = append(sec, byte(p))
			}
			sec = AppendULEB128(sec, uint32(len(f.results)))
			for _, r := range f.results {
				sec = append(sec, byte(r))
			}
		}
		out = appendSection(out, SectionType, sec)
	}

	// Import section: at most the memory import.
	if b.memImport != nil {
		var sec []byte
		sec = AppendULEB128(sec, 1)
		sec = appendName(sec, b.memImport.module)
		sec = appendName(sec, b.memImport.name)
		sec = append(sec, KindMemory)
		sec = appendLimits(sec, b.memImport)
		out = appendSection(out, SectionImport, sec)
	}

	// Function section: type index i for function i.
	if len(b.funcs) > 0 {
		var sec []byte
		sec = AppendULEB128(sec, uint32(len(b.funcs)))
		for i := range b.funcs {
			sec = AppendULEB128(sec, uint32(i))
		}
		out = appendSection(out, SectionFunction, sec)
	}

	// Memory section.
	if b.memLocal != nil {
		var sec []byte
		sec = AppendULEB128(sec, 1)
		sec = appendLimits(sec, b.memLocal)
		out = appendSection(out, SectionMemory, sec)
	}

	// Export section: all functions, plus the local memory if named.
	nExports := len(b.funcs)
	if b.memLocal != nil && b.memLocal.name != "" {
		nExports++
	}
	if nExports > 0 {
		var sec []byte
		sec = AppendULEB128(sec, uint32(nExports))
		for i, f := range b.funcs {
			sec = appendName(sec, f.name)
			sec = append(sec, KindFunc)
			sec = AppendULEB128(sec, uint32(i))
		}
		if b.memLocal != nil && b.memLocal.name != "" {
			sec = appendName(sec, b.memLocal.name)
			sec = append(sec, KindMemory)
			sec = AppendULEB128(sec, 0)
		}
		out = appendSection(out, SectionExport, sec)
	}

	// Code section: a zero constant per result, then end.
	if len(b.funcs) > 0 {
		var sec []byte
		sec = AppendULEB128(sec, uint32(len(b.funcs)))
		for _, f := range b.funcs {
			body := []byte{0x00} // no locals
			for _, r := range f.results {
				body = appendZeroConst(body, r)
			}
			body = append(body, opEnd)
			sec = appendVec(sec, body)
		}
		out = appendSection(out, SectionCode, sec)
	}

	return out
}

func appendSection(dst []byte, id byte, content []byte) []byte {
	dst = append(dst, id)
	return appendVec(dst, content)
}

func appendZeroConst(dst []byte, t ValType) []byte {
	switch t {
	case ValI64:
		return append(dst, opI64Const, 0x00)
	case ValF32:
		return append(dst, opF32Const, 0, 0, 0, 0)
	case ValF64:
		return append(dst, opF64Const, 0, 0, 0, 0, 0, 0, 0, 0)
	default:
		return append(dst, opI32Const, 0x00)
	}
}

func appendLimits(dst []byte, m *memoryClause) []byte {
	switch {
	case m.shared:
		dst = append(dst, limitMinMaxShared)
		dst = AppendULEB128(dst, m.min)
		dst = AppendULEB128(dst, m.max)
	case m.max > 0:
		dst = append(dst, limitMinMax)
		dst = AppendULEB128(dst, m.min)
		dst = AppendULEB128(dst, m.max)
	default:
		dst = append(dst, limitMin)
		dst = AppendULEB128(dst, m.min)
	}
	return dst
}

// SharedMemoryProvider builds a module whose only purpose is to define and
// export a shared memory with the given page limits. Instantiated under a
// well-known name, it supplies the memory other modules import.
func SharedMemoryProvider(exportName string, initial, maximum uint32) []byte {
	return NewModuleBuilder().
		ExportMemory(exportName, initial, maximum, true).
		Build()
}

// MemoryProvider builds a module exporting an ordinary (non-shared) memory.
func MemoryProvider(exportName string, initial, maximum uint32) []byte {
	return NewModuleBuilder().
		ExportMemory(exportName, initial, maximum, false).
		Build()
}
