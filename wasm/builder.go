package wasm

// FuncBuilder accumulates the locals and body of a single function. The
// body is a Seq; Finish seals it and encodes the complete code entry
// (local declarations, body, end opcode) for Module.AddFunc.
type FuncBuilder struct {
	params  []ValType
	results []ValType
	locals  []ValType
	body    *Seq
}

func NewFuncBuilder(params, results []ValType) *FuncBuilder {
	return &FuncBuilder{
		params:  params,
		results: results,
		body:    NewSeq(),
	}
}

// AddLocal declares a local and returns its index. Parameters occupy the
// low indices, so the first local gets index len(params).
func (b *FuncBuilder) AddLocal(typ ValType) uint32 {
	b.locals = append(b.locals, typ)
	return uint32(len(b.params) + len(b.locals) - 1)
}

// Body returns the root instruction sequence of the function.
func (b *FuncBuilder) Body() *Seq {
	return b.body
}

// Type returns the function signature.
func (b *FuncBuilder) Type() (params, results []ValType) {
	return b.params, b.results
}

// Finish seals the body and encodes the code entry. Branches to the body
// sequence itself behave like a return.
func (b *FuncBuilder) Finish() ([]byte, error) {
	b.body.Seal()

	var buf []byte
	groups := groupLocals(b.locals)
	buf = appendULEB128(buf, uint32(len(groups)))
	for _, g := range groups {
		buf = appendULEB128(buf, g.count)
		buf = append(buf, byte(g.typ))
	}

	e := &encoder{buf: buf, labels: []*Seq{b.body}}
	if err := b.body.encode(e); err != nil {
		return nil, err
	}
	return append(e.buf, opEnd), nil
}

type localGroup struct {
	count uint32
	typ   ValType
}

// groupLocals compresses runs of same-typed locals into declaration groups.
func groupLocals(locals []ValType) []localGroup {
	var groups []localGroup
	for _, typ := range locals {
		if n := len(groups); n > 0 && groups[n-1].typ == typ {
			groups[n-1].count++
			continue
		}
		groups = append(groups, localGroup{count: 1, typ: typ})
	}
	return groups
}
