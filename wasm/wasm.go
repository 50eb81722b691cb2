// Package wasm builds WebAssembly binary modules: function types, imports,
// functions, globals, memories, exports and data segments, encoded to the
// wasm 1.0 binary format. Function bodies are built out of structured
// instruction sequences (Seq) so that branches can target enclosing blocks
// and loops by label rather than by raw depth.
package wasm

// ValType is a wasm value type.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

// typeFunc introduces a function type in the type section.
const typeFunc = 0x60

// blockVoid is the empty block type for block/loop instructions.
const blockVoid = 0x40

// Section ids.
const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secStart    = 8
	secCode     = 10
	secData     = 11
)

// External kinds for imports and exports.
const (
	extFunc   = 0x00
	extMemory = 0x02
	extGlobal = 0x03
)

// Opcodes.
const (
	opBlock     = 0x02
	opLoop      = 0x03
	opEnd       = 0x0b
	opBr        = 0x0c
	opBrIf      = 0x0d
	opCall      = 0x10
	opDrop      = 0x1a
	opLocalGet  = 0x20
	opLocalSet  = 0x21
	opGlobalGet = 0x23
	opGlobalSet = 0x24
	opI32Load8U = 0x2d
	opI32Store8 = 0x3a
	opI32Const  = 0x41
	opI32Eqz    = 0x45
	opI32Eq     = 0x46
	opI32Ne     = 0x47
	opI32Add    = 0x6a
	opI32Sub    = 0x6b
	opI32Mul    = 0x6c
)
