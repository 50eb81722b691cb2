package wasm_test

import (
	"testing"

	"github.com/MarcinKonowalczyk/bf2wasm/utils"
	"github.com/MarcinKonowalczyk/bf2wasm/wasm"
)

func TestSeq_PushAfterSealPanics(t *testing.T) {
	seq := wasm.NewSeq()
	seq.Push(wasm.I32Const{Value: 1})
	seq.Seal()
	utils.Assert(t, seq.Sealed(), "expected sealed sequence")

	defer func() {
		utils.Assert(t, recover() != nil, "expected panic on push to sealed sequence")
	}()
	seq.Push(wasm.I32Const{Value: 2})
}

func TestFuncBuilder_EncodesBlockLoopBranches(t *testing.T) {
	fb := wasm.NewFuncBuilder(nil, nil)
	pointer := fb.AddLocal(wasm.I32)
	utils.AssertEqual(t, pointer, 0)

	exit := wasm.NewSeq()
	loop := wasm.NewSeq()
	loop.Push(
		wasm.LocalGet{Index: pointer},
		wasm.Load8U{Arg: wasm.MemArg{Align: 1, Offset: 0}},
		wasm.I32Const{Value: 0},
		wasm.I32Eq{},
		wasm.BrIf{Target: exit}, // depth 1 from inside the loop
		wasm.Br{Target: loop},   // depth 0
	)
	loop.Seal()
	exit.Push(wasm.Loop{Body: loop})
	exit.Seal()
	fb.Body().Push(wasm.Block{Body: exit})

	code, err := fb.Finish()
	utils.AssertNoError(t, err)
	expected := []byte{
		0x01, 0x01, 0x7f, // one i32 local
		0x02, 0x40, // block void
		0x03, 0x40, // loop void
		0x20, 0x00, // local.get 0
		0x2d, 0x00, 0x00, // i32.load8_u align=0 offset=0
		0x41, 0x00, // i32.const 0
		0x46,       // i32.eq
		0x0d, 0x01, // br_if 1
		0x0c, 0x00, // br 0
		0x0b, // end loop
		0x0b, // end block
		0x0b, // end func
	}
	utils.AssertEqualArrays(t, code, expected)
}

func TestFuncBuilder_UnsealedNestedSequenceFails(t *testing.T) {
	fb := wasm.NewFuncBuilder(nil, nil)
	inner := wasm.NewSeq() // never sealed
	fb.Body().Push(wasm.Block{Body: inner})
	_, err := fb.Finish()
	utils.AssertError(t, err)
}

func TestFuncBuilder_BranchOutOfScopeFails(t *testing.T) {
	fb := wasm.NewFuncBuilder(nil, nil)
	stranger := wasm.NewSeq()
	stranger.Seal()
	fb.Body().Push(wasm.Br{Target: stranger})
	_, err := fb.Finish()
	utils.AssertError(t, err)
}

func TestFuncBuilder_LocalIndicesFollowParams(t *testing.T) {
	fb := wasm.NewFuncBuilder([]wasm.ValType{wasm.I32, wasm.I32}, nil)
	utils.AssertEqual(t, fb.AddLocal(wasm.I32), 2)
	utils.AssertEqual(t, fb.AddLocal(wasm.I64), 3)
	utils.AssertEqual(t, fb.AddLocal(wasm.I64), 4)

	code, err := fb.Finish()
	utils.AssertNoError(t, err)
	expected := []byte{
		0x02,             // two local groups
		0x01, 0x7f,       // 1 x i32
		0x02, 0x7e,       // 2 x i64
		0x0b,             // end func
	}
	utils.AssertEqualArrays(t, code, expected)
}
