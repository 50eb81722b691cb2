package wasm

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (t FuncType) equal(other FuncType) bool {
	if len(t.Params) != len(other.Params) || len(t.Results) != len(other.Results) {
		return false
	}
	for i := range t.Params {
		if t.Params[i] != other.Params[i] {
			return false
		}
	}
	for i := range t.Results {
		if t.Results[i] != other.Results[i] {
			return false
		}
	}
	return true
}

type funcImport struct {
	module  string
	name    string
	typeIdx int
}

type memImport struct {
	module string
	name   string
	min    uint32
	max    uint32 // 0 means no maximum
}

type memory struct {
	min uint32
	max uint32 // 0 means no maximum
}

type global struct {
	typ     ValType
	mutable bool
	init    int32
}

type export struct {
	name string
	kind byte
	idx  uint32
}

type dataSeg struct {
	offset int32
	data   []byte
}

// Module accumulates the pieces of a wasm module and encodes them into the
// binary format. Imports must be added before any defined function, since
// imported functions occupy the low end of the function index space.
type Module struct {
	types       []FuncType
	funcImports []funcImport
	memImports  []memImport
	funcs       []int // type index per defined function
	codes       [][]byte
	memories    []memory
	globals     []global
	exports     []export
	data        []dataSeg
}

func NewModule() *Module {
	return &Module{}
}

// TypeIndex registers a function type, deduplicating, and returns its index.
func (m *Module) TypeIndex(params, results []ValType) int {
	t := FuncType{Params: params, Results: results}
	for i, existing := range m.types {
		if existing.equal(t) {
			return i
		}
	}
	m.types = append(m.types, t)
	return len(m.types) - 1
}

// ImportFunc adds an imported function and returns its function index.
func (m *Module) ImportFunc(module, name string, params, results []ValType) uint32 {
	if len(m.funcs) > 0 {
		panic("wasm: imports must be added before functions")
	}
	m.funcImports = append(m.funcImports, funcImport{
		module:  module,
		name:    name,
		typeIdx: m.TypeIndex(params, results),
	})
	return uint32(len(m.funcImports) - 1)
}

// ImportMemory adds an imported memory and returns its memory index.
// max of 0 means no maximum.
func (m *Module) ImportMemory(module, name string, min, max uint32) uint32 {
	if len(m.memories) > 0 {
		panic("wasm: imports must be added before memories")
	}
	m.memImports = append(m.memImports, memImport{module: module, name: name, min: min, max: max})
	return uint32(len(m.memImports) - 1)
}

// AddMemory defines a memory and returns its memory index.
func (m *Module) AddMemory(min, max uint32) uint32 {
	m.memories = append(m.memories, memory{min: min, max: max})
	return uint32(len(m.memImports) + len(m.memories) - 1)
}

// AddFunc defines a function with an already encoded code entry (local
// declarations, body and end opcode) and returns its function index.
func (m *Module) AddFunc(params, results []ValType, code []byte) uint32 {
	m.funcs = append(m.funcs, m.TypeIndex(params, results))
	m.codes = append(m.codes, code)
	return uint32(len(m.funcImports) + len(m.funcs) - 1)
}

// AddGlobal defines a global with an i32.const initializer and returns its
// global index.
func (m *Module) AddGlobal(typ ValType, mutable bool, init int32) uint32 {
	m.globals = append(m.globals, global{typ: typ, mutable: mutable, init: init})
	return uint32(len(m.globals) - 1)
}

// AddData adds an active data segment for memory 0.
func (m *Module) AddData(offset int32, data []byte) {
	m.data = append(m.data, dataSeg{offset: offset, data: data})
}

func (m *Module) ExportFunc(name string, idx uint32) {
	m.exports = append(m.exports, export{name: name, kind: extFunc, idx: idx})
}

func (m *Module) ExportMemory(name string, idx uint32) {
	m.exports = append(m.exports, export{name: name, kind: extMemory, idx: idx})
}

// Encode produces the complete binary module.
func (m *Module) Encode() ([]byte, error) {
	out := []byte{0x00, 0x61, 0x73, 0x6d} // \0asm
	out = append(out, 0x01, 0x00, 0x00, 0x00)

	if len(m.types) > 0 {
		out = appendSection(out, secType, m.encodeTypeSection())
	}
	if len(m.funcImports)+len(m.memImports) > 0 {
		out = appendSection(out, secImport, m.encodeImportSection())
	}
	if len(m.funcs) > 0 {
		out = appendSection(out, secFunction, m.encodeFuncSection())
	}
	if len(m.memories) > 0 {
		out = appendSection(out, secMemory, m.encodeMemorySection())
	}
	if len(m.globals) > 0 {
		out = appendSection(out, secGlobal, m.encodeGlobalSection())
	}
	if len(m.exports) > 0 {
		out = appendSection(out, secExport, m.encodeExportSection())
	}
	if len(m.codes) > 0 {
		out = appendSection(out, secCode, m.encodeCodeSection())
	}
	if len(m.data) > 0 {
		out = appendSection(out, secData, m.encodeDataSection())
	}
	return out, nil
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendULEB128(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendName(buf []byte, name string) []byte {
	buf = appendULEB128(buf, uint32(len(name)))
	return append(buf, name...)
}

func appendLimits(buf []byte, min, max uint32) []byte {
	if max > 0 {
		buf = append(buf, 0x01)
		buf = appendULEB128(buf, min)
		return appendULEB128(buf, max)
	}
	buf = append(buf, 0x00)
	return appendULEB128(buf, min)
}

func (m *Module) encodeTypeSection() []byte {
	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.types)))
	for _, t := range m.types {
		buf = append(buf, typeFunc)
		buf = appendULEB128(buf, uint32(len(t.Params)))
		for _, p := range t.Params {
			buf = append(buf, byte(p))
		}
		buf = appendULEB128(buf, uint32(len(t.Results)))
		for _, r := range t.Results {
			buf = append(buf, byte(r))
		}
	}
	return buf
}

func (m *Module) encodeImportSection() []byte {
	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.funcImports)+len(m.memImports)))
	for _, imp := range m.funcImports {
		buf = appendName(buf, imp.module)
		buf = appendName(buf, imp.name)
		buf = append(buf, extFunc)
		buf = appendULEB128(buf, uint32(imp.typeIdx))
	}
	for _, imp := range m.memImports {
		buf = appendName(buf, imp.module)
		buf = appendName(buf, imp.name)
		buf = append(buf, extMemory)
		buf = appendLimits(buf, imp.min, imp.max)
	}
	return buf
}

func (m *Module) encodeFuncSection() []byte {
	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.funcs)))
	for _, typeIdx := range m.funcs {
		buf = appendULEB128(buf, uint32(typeIdx))
	}
	return buf
}

func (m *Module) encodeMemorySection() []byte {
	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.memories)))
	for _, mem := range m.memories {
		buf = appendLimits(buf, mem.min, mem.max)
	}
	return buf
}

func (m *Module) encodeGlobalSection() []byte {
	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.globals)))
	for _, g := range m.globals {
		buf = append(buf, byte(g.typ))
		if g.mutable {
			buf = append(buf, 0x01)
		} else {
			buf = append(buf, 0x00)
		}
		buf = append(buf, opI32Const)
		buf = appendSLEB128(buf, g.init)
		buf = append(buf, opEnd)
	}
	return buf
}

func (m *Module) encodeExportSection() []byte {
	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.exports)))
	for _, exp := range m.exports {
		buf = appendName(buf, exp.name)
		buf = append(buf, exp.kind)
		buf = appendULEB128(buf, exp.idx)
	}
	return buf
}

func (m *Module) encodeCodeSection() []byte {
	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.codes)))
	for _, code := range m.codes {
		buf = appendULEB128(buf, uint32(len(code)))
		buf = append(buf, code...)
	}
	return buf
}

func (m *Module) encodeDataSection() []byte {
	var buf []byte
	buf = appendULEB128(buf, uint32(len(m.data)))
	for _, seg := range m.data {
		buf = append(buf, 0x00) // active, memory 0
		buf = append(buf, opI32Const)
		buf = appendSLEB128(buf, seg.offset)
		buf = append(buf, opEnd)
		buf = appendULEB128(buf, uint32(len(seg.data)))
		buf = append(buf, seg.data...)
	}
	return buf
}
