// Package runner executes compiled modules with the wazero runtime.
//
// The compiled program imports its memory and its putc/getc from a module
// named "env". Host modules in wazero export functions but not memories,
// so the runner builds a small glue module with the wasm package: it
// defines and exports one page of memory and forwards putc/getc to the Go
// host functions registered under the "host" module.
package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"

	"github.com/MarcinKonowalczyk/bf2wasm/wasm"
)

// Runner instantiates compiled modules and wires their putc/getc imports
// to Go-side I/O. A nil Output discards writes; a nil or exhausted Input
// reads as 0, matching the interpreter.
type Runner struct {
	Input  io.Reader
	Output io.Writer
}

// Run instantiates module and calls its exported "main".
func (r *Runner) Run(ctx context.Context, module []byte) error {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter().
		WithCloseOnContextDone(true))
	defer rt.Close(ctx)

	_, err := rt.NewHostModuleBuilder("host").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, c uint32) {
			if r.Output != nil {
				r.Output.Write([]byte{byte(c)})
			}
		}).
		Export("putc").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context) uint32 {
			if r.Input == nil {
				return 0
			}
			var buff [1]byte
			if _, err := r.Input.Read(buff[:]); err != nil {
				return 0
			}
			return uint32(buff[0])
		}).
		Export("getc").
		Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("host module: %w", err)
	}

	env, err := envModule()
	if err != nil {
		return fmt.Errorf("env module: %w", err)
	}
	if _, err := rt.InstantiateWithConfig(ctx, env, wazero.NewModuleConfig().WithName("env")); err != nil {
		return fmt.Errorf("env module: %w", err)
	}

	mod, err := rt.InstantiateWithConfig(ctx, module, wazero.NewModuleConfig().WithName("program"))
	if err != nil {
		return fmt.Errorf("program module: %w", err)
	}
	if _, err := mod.ExportedFunction("main").Call(ctx); err != nil {
		return fmt.Errorf("main: %w", err)
	}
	return nil
}

// envModule builds the glue module: one exported page of memory plus
// putc/getc trampolines into the "host" module.
func envModule() ([]byte, error) {
	m := wasm.NewModule()
	putc := m.ImportFunc("host", "putc", []wasm.ValType{wasm.I32}, nil)
	getc := m.ImportFunc("host", "getc", nil, []wasm.ValType{wasm.I32})

	mem := m.AddMemory(1, 0)
	m.ExportMemory("memory", mem)

	fb := wasm.NewFuncBuilder([]wasm.ValType{wasm.I32}, nil)
	fb.Body().Push(wasm.LocalGet{Index: 0}, wasm.Call{Func: putc})
	code, err := fb.Finish()
	if err != nil {
		return nil, err
	}
	m.ExportFunc("putc", m.AddFunc([]wasm.ValType{wasm.I32}, nil, code))

	fb = wasm.NewFuncBuilder(nil, []wasm.ValType{wasm.I32})
	fb.Body().Push(wasm.Call{Func: getc})
	code, err = fb.Finish()
	if err != nil {
		return nil, err
	}
	m.ExportFunc("getc", m.AddFunc(nil, []wasm.ValType{wasm.I32}, code))

	return m.Encode()
}
