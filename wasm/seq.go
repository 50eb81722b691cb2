package wasm

import (
	"errors"
	"fmt"
	"math/bits"
)

// Seq is an ordered accumulator of instructions. Every open block or loop
// has its own Seq; the Seq doubles as the branch label for that construct.
// A Seq is sealed exactly once, when the scope that owns it ends, and
// rejects pushes afterwards. Only sealed sequences can be encoded.
type Seq struct {
	instrs []Instr
	sealed bool
}

func NewSeq() *Seq {
	return &Seq{}
}

// Push appends instructions to the sequence.
func (s *Seq) Push(instrs ...Instr) {
	if s.sealed {
		panic("wasm: push to sealed sequence")
	}
	s.instrs = append(s.instrs, instrs...)
}

// Seal finalizes the sequence. Further pushes panic.
func (s *Seq) Seal() {
	s.sealed = true
}

func (s *Seq) Sealed() bool {
	return s.sealed
}

func (s *Seq) Len() int {
	return len(s.instrs)
}

// Instrs returns a copy of the accumulated instructions.
func (s *Seq) Instrs() []Instr {
	out := make([]Instr, len(s.instrs))
	copy(out, s.instrs)
	return out
}

func (s *Seq) encode(e *encoder) error {
	if !s.sealed {
		return errors.New("wasm: encoding unsealed sequence")
	}
	for _, in := range s.instrs {
		if err := in.encode(e); err != nil {
			return err
		}
	}
	return nil
}

// encoder writes a function body, tracking the stack of enclosing labels
// so branch instructions can be resolved to relative depths.
type encoder struct {
	buf    []byte
	labels []*Seq // innermost last
}

func (e *encoder) depthOf(target *Seq) (uint32, error) {
	for i := len(e.labels) - 1; i >= 0; i-- {
		if e.labels[i] == target {
			return uint32(len(e.labels) - 1 - i), nil
		}
	}
	return 0, errors.New("wasm: branch target not in scope")
}

// MemArg is the alignment/offset immediate of a load or store. Align is in
// bytes and must be a power of two; it is encoded as its log2.
type MemArg struct {
	Align  uint32
	Offset uint32
}

func (m MemArg) encode(buf []byte) []byte {
	align := m.Align
	if align == 0 {
		align = 1
	}
	buf = appendULEB128(buf, uint32(bits.TrailingZeros32(align)))
	return appendULEB128(buf, m.Offset)
}

// Instr is a single instruction in a function body.
type Instr interface {
	encode(e *encoder) error
}

type I32Const struct{ Value int32 }

func (i I32Const) encode(e *encoder) error {
	e.buf = append(e.buf, opI32Const)
	e.buf = appendSLEB128(e.buf, i.Value)
	return nil
}

type LocalGet struct{ Index uint32 }

func (i LocalGet) encode(e *encoder) error {
	e.buf = append(e.buf, opLocalGet)
	e.buf = appendULEB128(e.buf, i.Index)
	return nil
}

type LocalSet struct{ Index uint32 }

func (i LocalSet) encode(e *encoder) error {
	e.buf = append(e.buf, opLocalSet)
	e.buf = appendULEB128(e.buf, i.Index)
	return nil
}

type GlobalGet struct{ Index uint32 }

func (i GlobalGet) encode(e *encoder) error {
	e.buf = append(e.buf, opGlobalGet)
	e.buf = appendULEB128(e.buf, i.Index)
	return nil
}

type GlobalSet struct{ Index uint32 }

func (i GlobalSet) encode(e *encoder) error {
	e.buf = append(e.buf, opGlobalSet)
	e.buf = appendULEB128(e.buf, i.Index)
	return nil
}

type I32Add struct{}

func (I32Add) encode(e *encoder) error {
	e.buf = append(e.buf, opI32Add)
	return nil
}

type I32Sub struct{}

func (I32Sub) encode(e *encoder) error {
	e.buf = append(e.buf, opI32Sub)
	return nil
}

type I32Eq struct{}

func (I32Eq) encode(e *encoder) error {
	e.buf = append(e.buf, opI32Eq)
	return nil
}

type I32Eqz struct{}

func (I32Eqz) encode(e *encoder) error {
	e.buf = append(e.buf, opI32Eqz)
	return nil
}

// Load8U is i32.load8_u: one byte, zero-extended.
type Load8U struct{ Arg MemArg }

func (i Load8U) encode(e *encoder) error {
	e.buf = append(e.buf, opI32Load8U)
	e.buf = i.Arg.encode(e.buf)
	return nil
}

// Store8 is i32.store8: the low byte of the value operand.
type Store8 struct{ Arg MemArg }

func (i Store8) encode(e *encoder) error {
	e.buf = append(e.buf, opI32Store8)
	e.buf = i.Arg.encode(e.buf)
	return nil
}

type Call struct{ Func uint32 }

func (i Call) encode(e *encoder) error {
	e.buf = append(e.buf, opCall)
	e.buf = appendULEB128(e.buf, i.Func)
	return nil
}

type Drop struct{}

func (Drop) encode(e *encoder) error {
	e.buf = append(e.buf, opDrop)
	return nil
}

// Block is a void block. Branching to its Body sequence exits the block.
type Block struct{ Body *Seq }

func (b Block) encode(e *encoder) error {
	e.buf = append(e.buf, opBlock, blockVoid)
	e.labels = append(e.labels, b.Body)
	if err := b.Body.encode(e); err != nil {
		return err
	}
	e.labels = e.labels[:len(e.labels)-1]
	e.buf = append(e.buf, opEnd)
	return nil
}

// Loop is a void loop. Branching to its Body sequence re-enters the loop
// from the top.
type Loop struct{ Body *Seq }

func (l Loop) encode(e *encoder) error {
	e.buf = append(e.buf, opLoop, blockVoid)
	e.labels = append(e.labels, l.Body)
	if err := l.Body.encode(e); err != nil {
		return err
	}
	e.labels = e.labels[:len(e.labels)-1]
	e.buf = append(e.buf, opEnd)
	return nil
}

// Br is an unconditional branch to an enclosing block or loop.
type Br struct{ Target *Seq }

func (b Br) encode(e *encoder) error {
	depth, err := e.depthOf(b.Target)
	if err != nil {
		return fmt.Errorf("br: %w", err)
	}
	e.buf = append(e.buf, opBr)
	e.buf = appendULEB128(e.buf, depth)
	return nil
}

// BrIf branches to an enclosing block or loop if the i32 on top of the
// stack is non-zero.
type BrIf struct{ Target *Seq }

func (b BrIf) encode(e *encoder) error {
	depth, err := e.depthOf(b.Target)
	if err != nil {
		return fmt.Errorf("br_if: %w", err)
	}
	e.buf = append(e.buf, opBrIf)
	e.buf = appendULEB128(e.buf, depth)
	return nil
}
