package bf

import (
	"errors"
	"fmt"
)

// Structural error kinds. A TranslateError wraps one of these, so callers
// can match with errors.Is.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnmatchedLoopStart = errors.New("unmatched '['")
	ErrUnmatchedLoopEnd   = errors.New("unmatched ']'")
)

// TranslateError is a structural error found while translating a command
// stream: a byte that is not a command, or a bracket mismatch in either
// direction. Pos is the byte offset into the stream handed to Translate.
type TranslateError struct {
	Kind error
	Pos  int
	Byte byte // the offending byte, set for ErrInvalidToken
}

func (e *TranslateError) Error() string {
	if e.Kind == ErrInvalidToken {
		return fmt.Sprintf("%v %q at offset %d", e.Kind, e.Byte, e.Pos)
	}
	return fmt.Sprintf("%v at offset %d", e.Kind, e.Pos)
}

func (e *TranslateError) Unwrap() error {
	return e.Kind
}
