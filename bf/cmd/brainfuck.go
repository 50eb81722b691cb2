package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/MarcinKonowalczyk/bf2wasm/bf"
)

var filename string

func init() {
	flag.StringVar(&filename, "file", "", "brainfuck source file")
}

func main() {
	flag.Parse()
	if filename == "" {
		fmt.Println("Please provide a filename using the -file flag.")
		return
	}

	input, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := bf.Run(string(input), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
