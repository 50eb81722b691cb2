package bf

import (
	"context"
	"io"
)

// Run interprets source directly, comments and all.
func Run(source string, input io.Reader, output io.Writer) error {
	return RunContext(context.Background(), source, input, output)
}

// RunContext interprets source directly with cancellation.
func RunContext(ctx context.Context, source string, input io.Reader, output io.Writer) error {
	commands := Lex(source)
	interpreter := NewInterpreter(commands, input, output, false)
	return interpreter.RunContext(ctx)
}
