package wasmbin

// WebAssembly binary format magic number and version.
var (
	// Magic is the WebAssembly binary magic number ("\0asm").
	Magic = []byte{0x00, 0x61, 0x73, 0x6D}

	// Version is the supported binary format version, little-endian.
	Version = []byte{0x01, 0x00, 0x00, 0x00}
)

// Section IDs define the binary identifiers for each module section.
// Sections must appear in increasing order by ID (except custom sections).
const (
	SectionCustom   byte = 0
	SectionType     byte = 1
	SectionImport   byte = 2
	SectionFunction byte = 3
	SectionTable    byte = 4
	SectionMemory   byte = 5
	SectionGlobal   byte = 6
	SectionExport   byte = 7
	SectionStart    byte = 8
	SectionElement  byte = 9
	SectionCode     byte = 10
	SectionData     byte = 11
)

// Import/Export descriptor kinds identify the type of imported or exported item.
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
)

// ValType is a value type encoding in the binary format.
type ValType byte

// Core value types.
const (
	ValI32 ValType = 0x7F
	ValI64 ValType = 0x7E
	ValF32 ValType = 0x7D
	ValF64 ValType = 0x7C
)

// Memory limit flags. Shared memories require a maximum (threads proposal).
const (
	limitMin          byte = 0x00
	limitMinMax       byte = 0x01
	limitMinMaxShared byte = 0x03
)

// opEnd terminates every function body and init expression.
const opEnd byte = 0x0B

// Constant instruction opcodes, used to push zero values in stub bodies.
const (
	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opF32Const byte = 0x43
	opF64Const byte = 0x44
)
