package bf_test

import (
	"testing"

	"github.com/MarcinKonowalczyk/bf2wasm/bf"
	"github.com/MarcinKonowalczyk/bf2wasm/utils"
	"github.com/MarcinKonowalczyk/bf2wasm/wasm"
)

func newTestContext() *bf.Context {
	// memory 0, putc 0, getc 1, pointer local 0
	return bf.NewContext(0, 0, 1, 0)
}

func TestTranslate_ConsumesWholeProgram(t *testing.T) {
	programs := []string{
		"",
		"+-<>.,",
		"[]",
		"[[]]",
		"+[-]",
		"[+[-]][]",
		"+++[->+<]>.",
	}
	for _, program := range programs {
		t.Run(program, func(t *testing.T) {
			ctx := newTestContext()
			seq := wasm.NewSeq()
			n, err := ctx.Translate([]byte(program), 0, seq, true)
			utils.AssertNoError(t, err)
			utils.AssertEqual(t, n, len(program))
		})
	}
}

func TestTranslate_UnmatchedLoopEnd(t *testing.T) {
	cases := []struct {
		program string
		pos     int
	}{
		{"]", 0},
		{"+]", 1},
		{"[]]", 2},
		{"[[]]]", 4},
	}
	for _, tc := range cases {
		t.Run(tc.program, func(t *testing.T) {
			ctx := newTestContext()
			_, err := ctx.Translate([]byte(tc.program), 0, wasm.NewSeq(), true)
			utils.AssertErrorIs(t, err, bf.ErrUnmatchedLoopEnd)
			terr := err.(*bf.TranslateError)
			utils.AssertEqual(t, terr.Pos, tc.pos)
		})
	}
}

func TestTranslate_UnmatchedLoopStart(t *testing.T) {
	cases := []struct {
		program string
		pos     int // position of the unclosed '['
	}{
		{"[", 0},
		{"[+", 0},
		{"[[]", 0},
		{"+[[]", 1},
		{"[][", 2},
	}
	for _, tc := range cases {
		t.Run(tc.program, func(t *testing.T) {
			ctx := newTestContext()
			_, err := ctx.Translate([]byte(tc.program), 0, wasm.NewSeq(), true)
			utils.AssertErrorIs(t, err, bf.ErrUnmatchedLoopStart)
			terr := err.(*bf.TranslateError)
			utils.AssertEqual(t, terr.Pos, tc.pos)
		})
	}
}

func TestTranslate_InvalidToken(t *testing.T) {
	cases := []struct {
		program string
		pos     int
		byte_   byte
	}{
		{"x", 0, 'x'},
		{"+a]", 1, 'a'},
		{"[z]", 1, 'z'},
		{"++ ", 2, ' '},
	}
	for _, tc := range cases {
		t.Run(tc.program, func(t *testing.T) {
			ctx := newTestContext()
			_, err := ctx.Translate([]byte(tc.program), 0, wasm.NewSeq(), true)
			utils.AssertErrorIs(t, err, bf.ErrInvalidToken)
			terr := err.(*bf.TranslateError)
			utils.AssertEqual(t, terr.Pos, tc.pos)
			utils.AssertEqual(t, terr.Byte, tc.byte_)
		})
	}
}

func TestTranslate_NestedLoopStructure(t *testing.T) {
	ctx := newTestContext()
	seq := wasm.NewSeq()
	n, err := ctx.Translate([]byte("[[]]"), 0, seq, true)
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, n, 4)
	utils.AssertEqual(t, seq.Len(), 1)

	// outer block/loop pair
	block, ok := seq.Instrs()[0].(wasm.Block)
	utils.Assert(t, ok, "expected a block")
	utils.Assert(t, block.Body.Sealed(), "exit block not sealed")
	utils.AssertEqual(t, block.Body.Len(), 1)
	loop, ok := block.Body.Instrs()[0].(wasm.Loop)
	utils.Assert(t, ok, "expected a loop")
	utils.Assert(t, loop.Body.Sealed(), "repeat loop not sealed")

	// loop body: pointer load, byte load, zero, eq, br_if, inner block, br
	instrs := loop.Body.Instrs()
	utils.AssertEqual(t, loop.Body.Len(), 7)
	_, ok = instrs[4].(wasm.BrIf)
	utils.Assert(t, ok, "expected br_if out of the loop")
	inner, ok := instrs[5].(wasm.Block)
	utils.Assert(t, ok, "expected nested block")
	utils.Assert(t, inner.Body.Sealed(), "nested exit block not sealed")
	back, ok := instrs[6].(wasm.Br)
	utils.Assert(t, ok, "expected br back to the loop")
	utils.Assert(t, back.Target == loop.Body, "br target is not the loop")
}

func TestTranslate_LoopBranchTargets(t *testing.T) {
	ctx := newTestContext()
	seq := wasm.NewSeq()
	_, err := ctx.Translate([]byte("[-]"), 0, seq, true)
	utils.AssertNoError(t, err)

	block := seq.Instrs()[0].(wasm.Block)
	loop := block.Body.Instrs()[0].(wasm.Loop)
	instrs := loop.Body.Instrs()
	exit := instrs[4].(wasm.BrIf)
	utils.Assert(t, exit.Target == block.Body, "zero test must branch to the exit block")
}

func TestTranslate_SinglePutcCall(t *testing.T) {
	// "+" repeated n times then "." calls putc exactly once
	ctx := newTestContext()
	seq := wasm.NewSeq()
	_, err := ctx.Translate([]byte("+++++."), 0, seq, true)
	utils.AssertNoError(t, err)

	calls := 0
	for _, instr := range seq.Instrs() {
		if call, ok := instr.(wasm.Call); ok && call.Func == ctx.Putc {
			calls++
		}
	}
	utils.AssertEqual(t, calls, 1)
}

func TestTranslate_EmptySequenceForEmptyInput(t *testing.T) {
	ctx := newTestContext()
	seq := wasm.NewSeq()
	n, err := ctx.Translate(nil, 0, seq, true)
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, n, 0)
	utils.AssertEqual(t, seq.Len(), 0)
}

func TestCompile_Idempotent(t *testing.T) {
	a, err := bf.CompileProgram("+++[->+<]>.")
	utils.AssertNoError(t, err)
	b, err := bf.CompileProgram("+++[->+<]>.")
	utils.AssertNoError(t, err)
	utils.AssertEqualArrays(t, a, b)
}

func TestCompile_Empty(t *testing.T) {
	module, err := bf.Compile(nil)
	utils.AssertNoError(t, err)
	magic := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	utils.AssertEqualArrays(t, module[:8], magic)
}

func TestCompile_RejectsComments(t *testing.T) {
	_, err := bf.Compile([]byte("++ comment ++"))
	utils.AssertErrorIs(t, err, bf.ErrInvalidToken)

	// the program path filters them out
	_, err = bf.CompileProgram("++ comment ++")
	utils.AssertNoError(t, err)
}

func TestCompile_NoPartialOutputOnError(t *testing.T) {
	module, err := bf.Compile([]byte("++["))
	utils.AssertError(t, err)
	utils.Assert(t, module == nil, "expected no module on failure")
}
