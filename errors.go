package pqwriter

import "fmt"

// Kind classifies the condition an *Error reports, matching the
// taxonomy this module commits to surfacing verbatim rather than as
// ad hoc formatted strings.
type Kind int

const (
	_ Kind = iota
	// UnknownType is returned when a value's runtime shape cannot be
	// mapped to any Parquet physical type.
	UnknownType
	// TypeMismatch is returned when a value disagrees with the
	// column's already-established or overridden physical type.
	TypeMismatch
	// MixedTypes is returned when auto-detection sees two values in
	// the same column whose types cannot be reconciled by the single
	// permitted INT32→DOUBLE widening.
	MixedTypes
	// ColumnLengthMismatch is returned when columns passed to the
	// same write call have different lengths, or a schema column is
	// missing from the write call entirely.
	ColumnLengthMismatch
	// RequiredValueMissing is returned when a REQUIRED column or
	// struct field receives a null.
	RequiredValueMissing
	// UnsupportedEncodingForType is returned when a forced encoding
	// cannot represent a column's physical type.
	UnsupportedEncodingForType
	// SchemaConflict is returned when an explicit schema override
	// disagrees with another override or hint for the same column.
	SchemaConflict
	// ListShapeMismatch is returned when a REPEATED path receives a
	// non-array value.
	ListShapeMismatch
	// MapEntryMalformed is returned when a MAP value cannot be
	// normalized to key/value pairs.
	MapEntryMalformed
	// ThriftFieldOrder is returned when a Thrift Compact struct's
	// field IDs are non-monotonic or malformed.
	ThriftFieldOrder
	// UnsupportedGeometryDims is returned when a geometry column's
	// WKB payload carries an unsupported coordinate dimensionality.
	UnsupportedGeometryDims
	// UnsupportedSnappyInput is never emitted in practice: the Snappy
	// encoder in this module is total over all byte slices. Reserved
	// for a future pluggable codec that can reject its input.
	UnsupportedSnappyInput
)

func (k Kind) String() string {
	switch k {
	case UnknownType:
		return "UnknownType"
	case TypeMismatch:
		return "TypeMismatch"
	case MixedTypes:
		return "MixedTypes"
	case ColumnLengthMismatch:
		return "ColumnLengthMismatch"
	case RequiredValueMissing:
		return "RequiredValueMissing"
	case UnsupportedEncodingForType:
		return "UnsupportedEncodingForType"
	case SchemaConflict:
		return "SchemaConflict"
	case ListShapeMismatch:
		return "ListShapeMismatch"
	case MapEntryMalformed:
		return "MapEntryMalformed"
	case ThriftFieldOrder:
		return "ThriftFieldOrder"
	case UnsupportedGeometryDims:
		return "UnsupportedGeometryDims"
	case UnsupportedSnappyInput:
		return "UnsupportedSnappyInput"
	default:
		return "Unknown"
	}
}

// Error is the error type every exported operation in this module
// returns on failure. It names the offending column so a caller can
// locate the condition without parsing a message string.
type Error struct {
	Kind   Kind
	Column string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Column != "" {
		if e.Err != nil {
			return fmt.Sprintf("pqwriter: column %q: %s: %s: %v", e.Column, e.Kind, e.Msg, e.Err)
		}
		return fmt.Sprintf("pqwriter: column %q: %s: %s", e.Column, e.Kind, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("pqwriter: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("pqwriter: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, column, msg string, args ...any) *Error {
	return &Error{Kind: kind, Column: column, Msg: fmt.Sprintf(msg, args...)}
}

func wrapError(kind Kind, column string, err error, msg string, args ...any) *Error {
	return &Error{Kind: kind, Column: column, Msg: fmt.Sprintf(msg, args...), Err: err}
}
