// Package thrift implements just enough of the Thrift Compact Protocol
// to serialize the Go structs in
// [github.com/parquet-go/pqwriter/internal/format]: structs, lists,
// booleans, zig-zag varint integers, doubles and binaries, addressed by
// explicit field IDs carried in `thrift:"<id>[,optional]"` struct tags.
//
// Field IDs are taken from the tag, in ascending order matching struct
// declaration order (the convention every Thrift code generator
// follows); the encoder trusts that order rather than re-sorting, so
// that a non-monotonic tag sequence is rejected as a malformed struct
// rather than silently reordered.
package thrift

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Sink is the minimal byte-sink capability this package needs; it is
// satisfied by *pqwriter.ByteSink without importing the root package
// (which itself depends on this one).
type Sink interface {
	AppendU8(byte)
	AppendBytes([]byte)
	AppendZigZagVarInt32(int32)
	AppendZigZagVarInt64(int64)
	AppendVarUint64(uint64)
	AppendU64(uint64)
}

const (
	typeStop   = 0
	typeTrue   = 1
	typeFalse  = 2
	typeByte   = 3
	typeI16    = 4
	typeI32    = 5
	typeI64    = 6
	typeDouble = 7
	typeBinary = 8
	typeList   = 9
	typeStruct = 12
)

// ErrFieldOrder is returned when a struct's `thrift` tags are not in
// strictly increasing field-ID order, or a tag cannot be parsed.
var ErrFieldOrder = errors.New("thrift: field ids are not in strictly increasing order")

// Marshal appends the Thrift Compact Protocol encoding of v (a pointer
// to, or value of, a tagged struct) to sink.
func Marshal(sink Sink, v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return fmt.Errorf("thrift: cannot marshal nil %s", rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("thrift: marshal target must be a struct, got %s", rv.Type())
	}
	return writeStruct(sink, rv)
}

type tag struct {
	id       int16
	optional bool
}

func parseTag(raw string, fieldName string) (tag, error) {
	if raw == "" {
		return tag{}, fmt.Errorf("%w: field %s has no thrift tag", ErrFieldOrder, fieldName)
	}
	parts := strings.Split(raw, ",")
	id, err := strconv.ParseInt(parts[0], 10, 16)
	if err != nil {
		return tag{}, fmt.Errorf("%w: field %s has malformed id %q", ErrFieldOrder, fieldName, parts[0])
	}
	t := tag{id: int16(id)}
	for _, opt := range parts[1:] {
		switch opt {
		case "optional":
			t.optional = true
		case "":
		default:
			return tag{}, fmt.Errorf("%w: field %s has unknown tag option %q", ErrFieldOrder, fieldName, opt)
		}
	}
	return t, nil
}

// isZero reports whether an optional field's value is absent and
// should be skipped entirely (nil pointer, nil slice/map).
func isZero(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func writeStruct(sink Sink, rv reflect.Value) error {
	rt := rv.Type()
	var lastID int16
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		t, err := parseTag(sf.Tag.Get("thrift"), sf.Name)
		if err != nil {
			return err
		}
		fv := rv.Field(i)
		if t.optional && isZero(fv) {
			continue
		}
		if !t.optional && isZero(fv) {
			return fmt.Errorf("thrift: required field %s.%s is unset", rt.Name(), sf.Name)
		}
		if t.id <= lastID {
			return fmt.Errorf("%w: %s.%s id %d follows %d", ErrFieldOrder, rt.Name(), sf.Name, t.id, lastID)
		}
		for fv.Kind() == reflect.Ptr {
			fv = fv.Elem()
		}
		if err := writeField(sink, t.id, lastID, fv); err != nil {
			return fmt.Errorf("%s.%s: %w", rt.Name(), sf.Name, err)
		}
		lastID = t.id
	}
	sink.AppendU8(typeStop)
	return nil
}

func writeFieldHeader(sink Sink, id, lastID int16, typ byte) {
	delta := id - lastID
	if delta > 0 && delta <= 15 {
		sink.AppendU8(byte(delta)<<4 | typ)
		return
	}
	sink.AppendU8(typ)
	sink.AppendZigZagVarInt32(int32(id))
}

func compactType(rv reflect.Value) (byte, error) {
	switch rv.Kind() {
	case reflect.Bool:
		// Used only for list-header element-type tagging; compact protocol
		// lists of bool reuse the TRUE type id for every element.
		return typeTrue, nil
	case reflect.Int8, reflect.Uint8:
		return typeByte, nil
	case reflect.Int16, reflect.Uint16:
		return typeI16, nil
	case reflect.Int32, reflect.Uint32:
		return typeI32, nil
	case reflect.Int, reflect.Int64, reflect.Uint64, reflect.Uint:
		return typeI64, nil
	case reflect.Float64, reflect.Float32:
		return typeDouble, nil
	case reflect.String:
		return typeBinary, nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return typeBinary, nil
		}
		return typeList, nil
	case reflect.Struct:
		return typeStruct, nil
	default:
		return 0, fmt.Errorf("thrift: unsupported kind %s", rv.Kind())
	}
}

func writeField(sink Sink, id, lastID int16, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Bool:
		typ := byte(typeFalse)
		if rv.Bool() {
			typ = typeTrue
		}
		writeFieldHeader(sink, id, lastID, typ)
		return nil
	default:
		typ, err := compactType(rv)
		if err != nil {
			return err
		}
		writeFieldHeader(sink, id, lastID, typ)
		return writeValue(sink, rv)
	}
}

func writeValue(sink Sink, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Bool:
		// Only reachable from inside lists (struct fields use writeField).
		if rv.Bool() {
			sink.AppendU8(1)
		} else {
			sink.AppendU8(0)
		}
		return nil
	case reflect.Int8:
		// Compact BYTE values are a single raw byte, not a varint.
		sink.AppendU8(byte(rv.Int()))
		return nil
	case reflect.Uint8:
		sink.AppendU8(byte(rv.Uint()))
		return nil
	case reflect.Int16, reflect.Int32:
		sink.AppendZigZagVarInt32(int32(rv.Int()))
		return nil
	case reflect.Uint16, reflect.Uint32:
		sink.AppendZigZagVarInt32(int32(rv.Uint()))
		return nil
	case reflect.Int, reflect.Int64:
		sink.AppendZigZagVarInt64(rv.Int())
		return nil
	case reflect.Uint, reflect.Uint64:
		sink.AppendZigZagVarInt64(int64(rv.Uint()))
		return nil
	case reflect.Float64, reflect.Float32:
		sink.AppendU64(math.Float64bits(rv.Float()))
		return nil
	case reflect.String:
		s := rv.String()
		sink.AppendVarUint64(uint64(len(s)))
		sink.AppendBytes([]byte(s))
		return nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := rv.Bytes()
			sink.AppendVarUint64(uint64(len(b)))
			sink.AppendBytes(b)
			return nil
		}
		return writeList(sink, rv)
	case reflect.Struct:
		return writeStruct(sink, rv)
	case reflect.Interface, reflect.Ptr:
		if rv.IsNil() {
			return fmt.Errorf("thrift: nil value in non-optional position")
		}
		return writeValue(sink, rv.Elem())
	default:
		return fmt.Errorf("thrift: unsupported value kind %s", rv.Kind())
	}
}

func writeList(sink Sink, rv reflect.Value) error {
	n := rv.Len()
	elemKind := rv.Type().Elem().Kind()

	var elemType byte
	isBool := elemKind == reflect.Bool
	if isBool {
		elemType = typeTrue
	} else if n == 0 {
		// Empty list of unknown element type; BINARY is a harmless default
		// since no elements will ever be written.
		elemType = typeBinary
	} else {
		t, err := compactType(rv.Index(0))
		if err != nil {
			return err
		}
		elemType = t
	}

	if n < 15 {
		sink.AppendU8(byte(n)<<4 | elemType)
	} else {
		sink.AppendU8(0xF0 | elemType)
		sink.AppendVarUint64(uint64(n))
	}

	for i := 0; i < n; i++ {
		ev := rv.Index(i)
		for ev.Kind() == reflect.Ptr {
			if ev.IsNil() {
				return fmt.Errorf("thrift: nil element in list")
			}
			ev = ev.Elem()
		}
		if isBool {
			if ev.Bool() {
				sink.AppendU8(1)
			} else {
				sink.AppendU8(0)
			}
			continue
		}
		if err := writeValue(sink, ev); err != nil {
			return err
		}
	}
	return nil
}
