// Package vmerrors separates the two failure surfaces of the belt machine:
// program-observable Err values never appear here, only the three fatal kinds
// a host needs to react to -- a rejected program (CompileError), a malformed
// witness (DecodeError), and an aborted execution (Trap).
package vmerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// SourceLocation pinpoints a line/column in a script's source text.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	if l.File == "" && l.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// CompileError is raised while lowering source to an instruction stream:
// lexical errors, grammar errors, belt/scope/type-checking violations.
type CompileError struct {
	Message  string
	Location SourceLocation
	cause    error
}

func NewCompileError(message string, loc SourceLocation) *CompileError {
	return &CompileError{Message: message, Location: loc}
}

func (e *CompileError) Error() string {
	if loc := e.Location.String(); loc != "" {
		return fmt.Sprintf("CompileError: %s (at %s)", e.Message, loc)
	}
	return fmt.Sprintf("CompileError: %s", e.Message)
}

func (e *CompileError) Unwrap() error { return e.cause }

func (e *CompileError) WithCause(cause error) *CompileError {
	e.cause = cause
	return e
}

// DecodeError is raised while parsing the witness's loop-tree byte stream:
// truncated input, non-rectangular matrices, unknown tag bytes.
type DecodeError struct {
	Offset int
	Reason string
	cause  error
}

func NewDecodeError(offset int, reason string) *DecodeError {
	return &DecodeError{Offset: offset, Reason: reason}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("DecodeError: %s (at offset %d)", e.Reason, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// WrapDecodeError attaches a cause (typically a short-read io error) using
// pkg/errors so the original stack is preserved on Cause(err).
func WrapDecodeError(cause error, offset int, reason string) *DecodeError {
	return &DecodeError{Offset: offset, Reason: reason, cause: errors.Wrap(cause, reason)}
}

// TrapKind enumerates the fatal-abort reasons named in spec.md Section 7.
type TrapKind string

const (
	TrapUnreachable          TrapKind = "unreachable"
	TrapVerifyFailed         TrapKind = "verify_failed"
	TrapBeltIndexOutOfRange  TrapKind = "belt_index_out_of_range"
	TrapBeltKindMismatch     TrapKind = "belt_kind_mismatch"
	TrapErrAsCondition       TrapKind = "err_as_condition"
	TrapSliceOutOfRange      TrapKind = "slice_out_of_range"
	TrapStoreOutOfRange      TrapKind = "store_out_of_range"
	TrapStoreImmutable       TrapKind = "store_immutable_slice"
	TrapLoopStackMisuse      TrapKind = "loop_stack_misuse"
	TrapContinueIllegal      TrapKind = "continue_illegal_here"
	TrapInvalidCastDirection TrapKind = "invalid_cast_direction"
)

// Trap is a host-fatal abort of VM execution. It invalidates the
// containing transaction; no local recovery is attempted.
type Trap struct {
	Kind             TrapKind
	InstructionIndex int
	Detail           string
}

func NewTrap(kind TrapKind, instructionIndex int, detail string) *Trap {
	return &Trap{Kind: kind, InstructionIndex: instructionIndex, Detail: detail}
}

func (t *Trap) Error() string {
	if t.Detail != "" {
		return fmt.Sprintf("trap[%s] at instruction %d: %s", t.Kind, t.InstructionIndex, t.Detail)
	}
	return fmt.Sprintf("trap[%s] at instruction %d", t.Kind, t.InstructionIndex)
}
