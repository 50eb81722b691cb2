package bf

import "strings"

// Command is a single brainfuck command.
type Command byte

const (
	Increment Command = '+'
	Decrement Command = '-'
	Left      Command = '<'
	Right     Command = '>'
	Output    Command = '.'
	Input     Command = ','
	LoopStart Command = '['
	LoopEnd   Command = ']'
)

func (c Command) String() string {
	return string(byte(c))
}

// IsCommand reports whether b is one of the eight command bytes.
func IsCommand(b byte) bool {
	switch Command(b) {
	case Increment, Decrement, Left, Right, Output, Input, LoopStart, LoopEnd:
		return true
	}
	return false
}

// PreLex strips every byte that is not a command. Brainfuck treats such
// bytes as comments, but the translator does not, so the caller filters.
func PreLex(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		if IsCommand(input[i]) {
			b.WriteByte(input[i])
		}
	}
	return b.String()
}

// Lex turns source into the command sequence the interpreter executes,
// dropping comment bytes.
func Lex(input string) []Command {
	commands := []Command{}
	for i := 0; i < len(input); i++ {
		if IsCommand(input[i]) {
			commands = append(commands, Command(input[i]))
		}
	}
	return commands
}
