package intervals

import (
	"fmt"
	"strconv"
)

// InputError is an error caused by malformed input. Every error from Parse
// except those of the underlying reader implements InputError.
type InputError interface {
	error
	// Pos is the 1-based column, in runes, of the token at fault.
	Pos() int
}

// atCol formats a message about the given column.
func atCol(col int, format string, args ...any) string {
	return "column " + strconv.Itoa(col) + ": " + fmt.Sprintf(format, args...)
}

// OperatorError is an operator in a place where it cannot apply, like * at
// the start of a term.
type OperatorError struct {
	Col      int
	Operator string
	// Unary is set when a term was expected, so only + or - could apply.
	Unary bool
}

func (err *OperatorError) Error() string {
	if err.Unary {
		return atCol(err.Col, "%q cannot start a term", err.Operator)
	}
	return atCol(err.Col, "%q is not a binary operator", err.Operator)
}

func (err *OperatorError) Pos() int { return err.Col }

// BracketError is an unbalanced or mismatched bracket. Left is empty for a
// close bracket with nothing to close, and Right is empty for an open bracket
// that the input never closes.
type BracketError struct {
	Col         int
	Left, Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return atCol(err.Col, "%s closes nothing", err.Right)
	case err.Right == "":
		return atCol(err.Col, "%s is never closed", err.Left)
	default:
		return atCol(err.Col, "%s closed by %s", err.Left, err.Right)
	}
}

func (err *BracketError) Pos() int { return err.Col }

// SeparatorError is a comma outside any argument list, where StopOn has not
// made commas end the expression, or a comma with no argument before it.
type SeparatorError struct {
	Col int
}

func (err *SeparatorError) Error() string {
	return atCol(err.Col, "comma outside an argument list or after nothing")
}

func (err *SeparatorError) Pos() int { return err.Col }

// CallError is a call with an argument count its function cannot take.
// Calls assembled by hand rather than parsed have Col 0.
type CallError struct {
	Col  int
	Func string
	// Len is the number of arguments given.
	Len int
}

func (err *CallError) Error() string {
	msg := fmt.Sprintf("%s does not take %d arguments", err.Func, err.Len)
	if err.Col <= 0 {
		return msg
	}
	return atCol(err.Col, "%s", msg)
}

func (err *CallError) Pos() int { return err.Col }

// EmptyExpressionError is a missing term: empty input, or nothing between an
// operator, open bracket, or comma and the token End that follows. End is
// empty at the end of input.
type EmptyExpressionError struct {
	Col int
	End string
}

func (err *EmptyExpressionError) Error() string {
	switch {
	case err.End != "":
		return atCol(err.Col, "expected a term before %q", err.End)
	case err.Col <= 1:
		return atCol(err.Col, "empty expression")
	default:
		return atCol(err.Col, "expected a term at end of input")
	}
}

func (err *EmptyExpressionError) Pos() int { return err.Col }

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*LexError)(nil)
)
