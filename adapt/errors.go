package adapt

import (
	"fmt"
)

// InterfaceError reports a problem with how the adaptation layer is
// configured or used, such as an unrecognized DateStyle reported by the
// server. A Map that fails construction with an InterfaceError is unusable
// until rebuilt with corrected parameters.
type InterfaceError struct {
	Msg string
}

func (e *InterfaceError) Error() string {
	return e.Msg
}

// DataError reports wire data that could not be converted to a Go value:
// malformed bytes, values outside the representable calendar or numeric
// range, or unsupported constructs such as BC dates. Literal preserves the
// offending input for diagnostics.
type DataError struct {
	Msg     string
	Literal string
}

func (e *DataError) Error() string {
	return e.Msg
}

// NotSupportedError reports a recognized but unimplemented combination, such
// as parsing interval text rendered in a non-postgres IntervalStyle. The
// input may be well formed under its own style; the limitation is in this
// package.
type NotSupportedError struct {
	Msg string
}

func (e *NotSupportedError) Error() string {
	return e.Msg
}

// ProgrammingError reports caller mistakes: dumping a Go type with no
// registered dumper, or encoding a value outside the domain of its wire
// representation.
type ProgrammingError struct {
	Msg string
}

func (e *ProgrammingError) Error() string {
	return e.Msg
}

func interfaceErrorf(format string, a ...interface{}) *InterfaceError {
	return &InterfaceError{Msg: fmt.Sprintf(format, a...)}
}

// dataErrorf formats a DataError keeping the raw input bytes attached.
func dataErrorf(literal []byte, format string, a ...interface{}) *DataError {
	return &DataError{Msg: fmt.Sprintf(format, a...), Literal: string(literal)}
}

func notSupportedErrorf(format string, a ...interface{}) *NotSupportedError {
	return &NotSupportedError{Msg: fmt.Sprintf(format, a...)}
}

func programmingErrorf(format string, a ...interface{}) *ProgrammingError {
	return &ProgrammingError{Msg: fmt.Sprintf(format, a...)}
}
