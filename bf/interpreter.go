package bf

import (
	"context"
	"fmt"
	"io"
	"os"
)

// comptime override for debug flag
// set with `-ldflags="-X 'github.com/MarcinKonowalczyk/bf2wasm/bf.debug=true'"`
var debug string

// TapeLength is the number of cells on the interpreter's tape.
const TapeLength = 30_000

// Interpreter executes a command sequence directly, without going through
// the wasm backend. The tape wraps around at both ends.
type Interpreter struct {
	Program     []Command
	program_ptr uint32
	mem         []uint8
	mem_ptr     uint32
	Input       io.Reader
	Output      io.Writer
	debug       bool
}

func NewInterpreter(program []Command, input io.Reader, output io.Writer, debug bool) *Interpreter {
	return &Interpreter{
		Program:     program,
		program_ptr: 0,
		mem:         make([]uint8, TapeLength),
		mem_ptr:     0,
		Input:       input,
		Output:      output,
		debug:       debug,
	}
}

func (i *Interpreter) Reset() {
	i.program_ptr = 0
	i.mem_ptr = 0
	for j := range i.mem {
		i.mem[j] = 0
	}
}

func (i *Interpreter) MemoryLength() int {
	return len(i.mem)
}

func wrap_index(i int32, N int32) int32 {
	for i >= N {
		i -= N
	}
	for i < 0 {
		i += N
	}
	return i
}

// Index the memory
func (i *Interpreter) At(j int32) uint8 {
	return i.mem[wrap_index(j, int32(i.MemoryLength()))]
}

// Write a debug message to stderr if debug is enabled
func logf(format string, args ...interface{}) {
	if debug != "" {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// RunContext runs the program until it finishes, the context is cancelled
// or reading input fails. Loop brackets are assumed to be balanced; use
// the translator's bracket checking to validate a program first.
func (i *Interpreter) RunContext(ctx context.Context) error {
	if len(i.Program) == 0 {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		switch i.Program[i.program_ptr] {
		case Increment:
			i.mem[i.mem_ptr]++
		case Decrement:
			i.mem[i.mem_ptr]--
		case Right:
			i.mem_ptr++
			if i.mem_ptr >= uint32(len(i.mem)) {
				i.mem_ptr = 0
			}
		case Left:
			if i.mem_ptr == 0 {
				i.mem_ptr = uint32(len(i.mem) - 1)
			} else {
				i.mem_ptr--
			}
		case Output:
			if i.Output != nil {
				if _, err := i.Output.Write([]byte{i.mem[i.mem_ptr]}); err != nil {
					return err
				}
			}
		case Input:
			if i.Input != nil {
				var buff [1]byte
				if _, err := i.Input.Read(buff[:]); err != nil {
					if err == io.EOF {
						logf("EOF")
						// The compiled module's getc reads 0 at EOF.
						buff[0] = 0
					} else {
						return fmt.Errorf("reading input: %w", err)
					}
				}
				i.mem[i.mem_ptr] = buff[0]
			}
		case LoopStart:
			if i.mem[i.mem_ptr] == 0 {
				// Jump past the matching LoopEnd
				depth := 1
				for j := i.program_ptr + 1; j < uint32(len(i.Program)); j++ {
					if i.Program[j] == LoopStart {
						depth++
					} else if i.Program[j] == LoopEnd {
						depth--
						if depth == 0 {
							i.program_ptr = j
							break
						}
					}
				}
			}
		case LoopEnd:
			if i.mem[i.mem_ptr] != 0 {
				// Jump back to the matching LoopStart
				depth := 1
				for j := int(i.program_ptr) - 1; j >= 0; j-- {
					if i.Program[j] == LoopEnd {
						depth++
					} else if i.Program[j] == LoopStart {
						depth--
						if depth == 0 {
							i.program_ptr = uint32(j)
							break
						}
					}
				}
			}
		default:
			return fmt.Errorf("unknown command %q", byte(i.Program[i.program_ptr]))
		}
		i.program_ptr++
		if i.program_ptr >= uint32(len(i.Program)) {
			return nil
		}
	}
}

func (i *Interpreter) Run() error {
	return i.RunContext(context.Background())
}
