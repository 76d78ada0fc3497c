// Package errors implements the runtime error taxonomy of §7: every
// raised error carries a category, a message, and a (line, frame)
// location, plus the call stack active when it was raised. Grounded on
// sentra/internal/errors/errors.go's SentraError/StackFrame/builder-style
// With* methods, adapted from source-text (file/line/column) locations to
// bytecode (line, frame) locations since this runtime has no source text
// at execution time — only the line table a Chunk carries (§4.2).
package errors

import (
	"fmt"
	"strings"
)

// ErrorType is one of the six raise categories §7 defines.
type ErrorType string

const (
	TypeMismatch    ErrorType = "TypeMismatch"
	ArityError      ErrorType = "ArityError"
	NameResolution  ErrorType = "NameResolution"
	PropertyAccess  ErrorType = "PropertyAccess"
	ControlMisuse   ErrorType = "ControlMisuse"
	InvalidBytecode ErrorType = "InvalidBytecode"
)

// Location pins an error to a bytecode line and the owning frame's label
// (a function name or "<script>").
type Location struct {
	Line  int
	Frame string
}

func (l Location) String() string {
	if l.Frame == "" {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("line %d, en %s", l.Line, l.Frame)
}

// StackFrame records one entry of the call stack active when a
// RuntimeError was raised (§7, §4.5).
type StackFrame struct {
	Frame string
	Line  int
}

// RuntimeError is the error value thrown across the VM's dispatch loop
// and surfaced to `intentar`/`capturar` (Try/Throw, §4.3) as well as to
// the top-level CLI.
type RuntimeError struct {
	Type      ErrorType
	Message   string
	Location  Location
	CallStack []StackFrame
}

func New(t ErrorType, message string, loc Location) *RuntimeError {
	return &RuntimeError{Type: t, Message: message, Location: loc}
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Location))
	for _, frame := range e.CallStack {
		sb.WriteString(fmt.Sprintf("\n  en %s:%d", frame.Frame, frame.Line))
	}
	return sb.String()
}

// WithStack attaches the call stack snapshot captured at raise time.
func (e *RuntimeError) WithStack(stack []StackFrame) *RuntimeError {
	e.CallStack = stack
	return e
}

func (e *RuntimeError) AddFrame(frame string, line int) *RuntimeError {
	e.CallStack = append(e.CallStack, StackFrame{Frame: frame, Line: line})
	return e
}

// Convenience constructors for the six categories, one per §7 case.

func NewTypeMismatch(message string, loc Location) *RuntimeError {
	return New(TypeMismatch, message, loc)
}

func NewArityError(message string, loc Location) *RuntimeError {
	return New(ArityError, message, loc)
}

func NewNameResolution(message string, loc Location) *RuntimeError {
	return New(NameResolution, message, loc)
}

func NewPropertyAccess(message string, loc Location) *RuntimeError {
	return New(PropertyAccess, message, loc)
}

func NewControlMisuse(message string, loc Location) *RuntimeError {
	return New(ControlMisuse, message, loc)
}

func NewInvalidBytecode(message string, loc Location) *RuntimeError {
	return New(InvalidBytecode, message, loc)
}
