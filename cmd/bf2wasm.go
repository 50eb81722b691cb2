package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/MarcinKonowalczyk/bf2wasm/bf"
	"github.com/MarcinKonowalczyk/bf2wasm/runner"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Maybe hijack the compile flow to run the program instead
	mode, args := splitMode(os.Args[1:])

	var err error
	switch mode {
	case "run":
		err = runCompiled(ctx, args)
	case "interp":
		err = runInterpreted(ctx, args)
	default:
		err = compile(args)
	}
	if err != nil {
		log.Error().Err(err).Msg("bf2wasm failed")
		os.Exit(1)
	}
}

// splitMode scans the arguments for a mode word and returns the remaining
// arguments with it removed.
func splitMode(args []string) (string, []string) {
	for i, arg := range args {
		if arg == "run" || arg == "interp" {
			return arg, append(args[:i:i], args[i+1:]...)
		}
	}
	return "", args
}

func readSource(fs *flag.FlagSet, args []string) (string, error) {
	filename := fs.String("file", "", "brainfuck source file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *filename == "" {
		return "", fmt.Errorf("invalid argument: -file is required")
	}
	source, err := os.ReadFile(*filename)
	if err != nil {
		return "", err
	}
	return string(source), nil
}

func compile(args []string) error {
	fs := flag.NewFlagSet("bf2wasm", flag.ExitOnError)
	output := fs.String("o", "", "wasm output file")
	source, err := readSource(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("invalid argument: -o is required")
	}
	module, err := bf.CompileProgram(source)
	if err != nil {
		return err
	}
	return os.WriteFile(*output, module, 0o644)
}

func runCompiled(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bf2wasm run", flag.ExitOnError)
	source, err := readSource(fs, args)
	if err != nil {
		return err
	}
	module, err := bf.CompileProgram(source)
	if err != nil {
		return err
	}
	r := &runner.Runner{Input: os.Stdin, Output: os.Stdout}
	return r.Run(ctx, module)
}

func runInterpreted(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bf2wasm interp", flag.ExitOnError)
	source, err := readSource(fs, args)
	if err != nil {
		return err
	}
	return bf.RunContext(ctx, source, os.Stdin, os.Stdout)
}
