package bf

import (
	"github.com/MarcinKonowalczyk/bf2wasm/wasm"
)

// Context holds the fixed operand set every command rewrites into: the
// pointer local, the putc/getc imports, the memory index, and prebuilt
// snippets for the constants 0 and 1, the pointer value and the byte the
// pointer addresses. Built once per compilation and read-only afterwards.
type Context struct {
	Memory  uint32
	Putc    uint32
	Getc    uint32
	Pointer uint32

	oneByte wasm.MemArg
	zero    wasm.Instr
	one     wasm.Instr
	p       []wasm.Instr
	atP     []wasm.Instr
}

func NewContext(memory, putc, getc, pointer uint32) *Context {
	oneByte := wasm.MemArg{Align: 1, Offset: 0}
	p := []wasm.Instr{wasm.LocalGet{Index: pointer}}
	atP := []wasm.Instr{wasm.LocalGet{Index: pointer}, wasm.Load8U{Arg: oneByte}}
	return &Context{
		Memory:  memory,
		Putc:    putc,
		Getc:    getc,
		Pointer: pointer,
		oneByte: oneByte,
		zero:    wasm.I32Const{Value: 0},
		one:     wasm.I32Const{Value: 1},
		p:       p,
		atP:     atP,
	}
}

// Translate walks the command stream left to right and emits the matching
// instructions into seq, recursing into a fresh block/loop pair on '[' and
// returning to the caller on ']'. pos is the absolute offset of tokens[0]
// in the original stream, used only for error reporting.
//
// With requireAll set (the top-level call) the stream must be consumed to
// the end, so a ']' is an unmatched close. Without it (a loop body) the
// stream must end with ']', so running out of input means the '[' that
// opened this body was never closed. Returns the number of tokens consumed.
func (c *Context) Translate(tokens []byte, pos int, seq *wasm.Seq, requireAll bool) (int, error) {
	i := 0
	for i < len(tokens) {
		switch tokens[i] {
		case '>':
			seq.Push(c.p...)
			seq.Push(c.one, wasm.I32Add{}, wasm.LocalSet{Index: c.Pointer})
			i++
		case '<':
			seq.Push(c.p...)
			seq.Push(c.one, wasm.I32Sub{}, wasm.LocalSet{Index: c.Pointer})
			i++
		case '+':
			seq.Push(c.p...)
			seq.Push(c.atP...)
			seq.Push(c.one, wasm.I32Add{}, wasm.Store8{Arg: c.oneByte})
			i++
		case '-':
			seq.Push(c.p...)
			seq.Push(c.atP...)
			seq.Push(c.one, wasm.I32Sub{}, wasm.Store8{Arg: c.oneByte})
			i++
		case '.':
			seq.Push(c.atP...)
			seq.Push(wasm.Call{Func: c.Putc})
			i++
		case ',':
			seq.Push(c.p...)
			seq.Push(wasm.Call{Func: c.Getc}, wasm.Store8{Arg: c.oneByte})
			i++
		case '[':
			// block { loop { if byte == 0 break; body; continue } }
			// The zero test runs at the top of the loop, so the body is
			// skipped entirely when the byte is already zero.
			exit := wasm.NewSeq()
			loop := wasm.NewSeq()
			loop.Push(c.atP...)
			loop.Push(c.zero, wasm.I32Eq{}, wasm.BrIf{Target: exit})
			n, err := c.Translate(tokens[i+1:], pos+i+1, loop, false)
			if err != nil {
				return 0, err
			}
			loop.Push(wasm.Br{Target: loop})
			loop.Seal()
			exit.Push(wasm.Loop{Body: loop})
			exit.Seal()
			seq.Push(wasm.Block{Body: exit})
			i += 1 + n
		case ']':
			if requireAll {
				return 0, &TranslateError{Kind: ErrUnmatchedLoopEnd, Pos: pos + i}
			}
			return i + 1, nil
		default:
			return 0, &TranslateError{Kind: ErrInvalidToken, Pos: pos + i, Byte: tokens[i]}
		}
	}
	if !requireAll {
		// Ran out of input inside a loop body. The '[' that opened it sits
		// just before the slice this call was handed.
		return 0, &TranslateError{Kind: ErrUnmatchedLoopStart, Pos: pos - 1}
	}
	return i, nil
}

// Compile translates a command stream into a complete wasm module. The
// stream must contain only the eight command bytes; anything else is a
// structural error (strip comments with PreLex first, or use
// CompileProgram).
//
// The module imports "env.memory", "env.putc" (i32)->() and "env.getc"
// ()->(i32), and exports a zero-argument "main" whose first step zeroes
// the pointer.
func Compile(tokens []byte) ([]byte, error) {
	m := wasm.NewModule()
	putc := m.ImportFunc("env", "putc", []wasm.ValType{wasm.I32}, nil)
	getc := m.ImportFunc("env", "getc", nil, []wasm.ValType{wasm.I32})
	memory := m.ImportMemory("env", "memory", 0, 0)

	fb := wasm.NewFuncBuilder(nil, nil)
	pointer := fb.AddLocal(wasm.I32)
	ctx := NewContext(memory, putc, getc, pointer)

	body := fb.Body()
	body.Push(wasm.I32Const{Value: 0}, wasm.LocalSet{Index: pointer})
	if _, err := ctx.Translate(tokens, 0, body, true); err != nil {
		return nil, err
	}

	code, err := fb.Finish()
	if err != nil {
		return nil, err
	}
	main := m.AddFunc(nil, nil, code)
	m.ExportFunc("main", main)

	return m.Encode()
}

// CompileProgram strips non-command bytes from source and compiles it.
func CompileProgram(source string) ([]byte, error) {
	return Compile([]byte(PreLex(source)))
}
