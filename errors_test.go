package pqwriter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatsWithColumn(t *testing.T) {
	err := newError(TypeMismatch, "amount", "expected %s, got %s", "INT32", "BYTE_ARRAY")
	require.Equal(t, `pqwriter: column "amount": TypeMismatch: expected INT32, got BYTE_ARRAY`, err.Error())
}

func TestErrorFormatsWithoutColumn(t *testing.T) {
	err := newError(SchemaConflict, "", "conflicting hints")
	require.Equal(t, "pqwriter: SchemaConflict: conflicting hints", err.Error())
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := wrapError(ThriftFieldOrder, "x", cause, "marshal failed")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "boom")
}

func TestKindStringUnknown(t *testing.T) {
	require.Equal(t, "Unknown", Kind(999).String())
}

func TestKindStringKnownValues(t *testing.T) {
	require.Equal(t, "UnknownType", UnknownType.String())
	require.Equal(t, "MapEntryMalformed", MapEntryMalformed.String())
	require.Equal(t, "UnsupportedSnappyInput", UnsupportedSnappyInput.String())
}
