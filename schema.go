package pqwriter

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/parquet-go/pqwriter/internal/format"
)

// SchemaNode is one node of the schema tree: either a primitive
// (Type non-nil, no Children) or a group (Type nil, Children
// non-empty). The root node returned by BuildSchema and every
// SchemaFromColumnData call is always a group named "schema".
type SchemaNode struct {
	Name          string
	Type          *format.Type
	TypeLength    *int32
	Repetition    format.FieldRepetitionType
	ConvertedType *format.ConvertedType
	LogicalType   *format.LogicalType
	Scale         *int32
	Precision     *int32
	FieldID       *int32
	Children      []*SchemaNode

	// IsListWrapper and IsMapWrapper mark a group node as the
	// synthetic `list`/`map_key_value` wrapper of the LIST/MAP
	// pattern, so the Dremel shredder knows not to bump the
	// definition level at this node itself.
	IsListWrapper bool
	IsMapWrapper  bool
}

func (n *SchemaNode) isLeaf() bool { return n.Type != nil }

// ColumnHint overrides auto-detection for one top-level column. Node
// is mutually exclusive with Type: Node replaces the column's entire
// subtree (used for LIST/MAP/struct columns), while Type only forces
// the physical type of an otherwise auto-detected scalar leaf.
type ColumnHint struct {
	Type     *format.Type
	Nullable *bool
	Node     *SchemaNode
}

// Column is one named column of input data, in the order it should
// appear in the schema and row groups. Values holds either a typed
// slice (e.g. []int32, []string) for a column known to have no nulls,
// or []any for a column that may contain nil and/or nested
// list/map/struct values.
type Column struct {
	Name   string
	Values any
	Hint   ColumnHint
}

// BuildSchema auto-detects a schema tree for columns, honoring any
// per-column hints.
func BuildSchema(columns []Column) (*SchemaNode, error) {
	root := &SchemaNode{Name: "schema"}
	for _, col := range columns {
		if col.Hint.Node != nil && col.Hint.Type != nil {
			return nil, newError(SchemaConflict, col.Name, "both a node override and a type hint were supplied")
		}
		if col.Hint.Type != nil && *col.Hint.Type == format.FixedLenByteArray {
			return nil, newError(SchemaConflict, col.Name, "a FIXED_LEN_BYTE_ARRAY column needs a node override carrying its type_length")
		}
		if col.Hint.Node != nil {
			if col.Hint.Node.Name != "" && col.Hint.Node.Name != col.Name {
				return nil, newError(SchemaConflict, col.Name, "node override is named %q", col.Hint.Node.Name)
			}
			if col.Hint.Node.Type != nil && *col.Hint.Node.Type == format.FixedLenByteArray && col.Hint.Node.TypeLength == nil {
				return nil, newError(SchemaConflict, col.Name, "FIXED_LEN_BYTE_ARRAY override is missing type_length")
			}
			node := *col.Hint.Node
			node.Name = col.Name
			root.Children = append(root.Children, &node)
			continue
		}
		node, err := detectColumn(col.Name, col.Values, col.Hint)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, node)
	}
	return root, nil
}

func detectColumn(name string, values any, hint ColumnHint) (*SchemaNode, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return nil, newError(UnknownType, name, "column has no values to detect a schema from")
	}

	switch typed := values.(type) {
	case []bool:
		return leafNode(name, format.Boolean, nil, requiredOrHint(hint, false)), nil
	case []int32:
		return leafNode(name, format.Int32, nil, requiredOrHint(hint, false)), nil
	case []int64:
		return leafNode(name, format.Int64, nil, requiredOrHint(hint, false)), nil
	case []float32:
		return leafNode(name, format.Float, nil, requiredOrHint(hint, false)), nil
	case []float64:
		return leafNode(name, format.Double, nil, requiredOrHint(hint, false)), nil
	case []string:
		ct := format.ConvertedTypeUTF8
		return leafNodeConverted(name, format.ByteArray, &ct, requiredOrHint(hint, false)), nil
	case [][]byte:
		return leafNode(name, format.ByteArray, nil, requiredOrHint(hint, false)), nil
	case []uuid.UUID:
		tl := int32(16)
		n := leafNode(name, format.FixedLenByteArray, &tl, requiredOrHint(hint, false))
		n.LogicalType = &format.LogicalType{UUID: &format.UUIDType{}}
		return n, nil
	case []any:
		return detectFromAny(name, typed, hint)
	default:
		return nil, newError(UnknownType, name, "cannot auto-detect a schema for Go type %s (kind %s)", rv.Type(), rv.Kind())
	}
}

func requiredOrHint(hint ColumnHint, sawNull bool) format.FieldRepetitionType {
	if hint.Nullable != nil {
		if *hint.Nullable {
			return format.Optional
		}
		return format.Required
	}
	if sawNull {
		return format.Optional
	}
	return format.Required
}

func detectFromAny(name string, values []any, hint ColumnHint) (*SchemaNode, error) {
	current := kindNull
	sawNull := false
	sawAny := false

	for _, v := range values {
		k := classify(v)
		if k == kindNull {
			sawNull = true
			continue
		}
		sawAny = true
		if current == kindNull {
			current = k
			continue
		}
		if current == k {
			continue
		}
		if (current == kindI32 && k == kindF64) || (current == kindF64 && k == kindI32) {
			current = kindF64
			continue
		}
		return nil, newError(MixedTypes, name, "column mixes %s and %s values", current, k)
	}

	rep := requiredOrHint(hint, sawNull)

	if !sawAny {
		return leafNode(name, format.ByteArray, nil, format.Optional), nil
	}

	if hint.Type != nil {
		return leafNode(name, *hint.Type, nil, rep), nil
	}

	switch current {
	case kindBool:
		return leafNode(name, format.Boolean, nil, rep), nil
	case kindI32:
		return leafNode(name, format.Int32, nil, rep), nil
	case kindI64:
		return leafNode(name, format.Int64, nil, rep), nil
	case kindF32:
		return leafNode(name, format.Float, nil, rep), nil
	case kindF64:
		return leafNode(name, format.Double, nil, rep), nil
	case kindStr:
		ct := format.ConvertedTypeUTF8
		return leafNodeConverted(name, format.ByteArray, &ct, rep), nil
	case kindBytes:
		return leafNode(name, format.ByteArray, nil, rep), nil
	case kindDate:
		ct := format.ConvertedTypeTimestampMillis
		return leafNodeConverted(name, format.Int64, &ct, rep), nil
	default:
		ct := format.ConvertedTypeJSON
		return leafNodeConverted(name, format.ByteArray, &ct, rep), nil
	}
}

func leafNode(name string, typ format.Type, typeLength *int32, rep format.FieldRepetitionType) *SchemaNode {
	t := typ
	return &SchemaNode{Name: name, Type: &t, TypeLength: typeLength, Repetition: rep}
}

func leafNodeConverted(name string, typ format.Type, ct *format.ConvertedType, rep format.FieldRepetitionType) *SchemaNode {
	n := leafNode(name, typ, nil, rep)
	n.ConvertedType = ct
	return n
}

// NewListNode builds the standard 3-level LIST pattern: a REPEATED
// `list` group wrapping a single `element` child, itself wrapped by
// an OPTIONAL or REQUIRED group named `name`.
func NewListNode(name string, elementRepetition format.FieldRepetitionType, element *SchemaNode, nullable bool) *SchemaNode {
	element.Name = "element"
	element.Repetition = elementRepetition
	list := &SchemaNode{
		Name:          "list",
		Repetition:    format.Repeated,
		Children:      []*SchemaNode{element},
		IsListWrapper: true,
	}
	ct := format.ConvertedTypeList
	rep := format.Required
	if nullable {
		rep = format.Optional
	}
	return &SchemaNode{
		Name:          name,
		Repetition:    rep,
		ConvertedType: &ct,
		Children:      []*SchemaNode{list},
	}
}

// NewMapNode builds the standard 3-level MAP pattern: a REPEATED
// `key_value` group wrapping a REQUIRED `key` child and a `value`
// child that is OPTIONAL when valueNullable and REQUIRED otherwise.
func NewMapNode(name string, key *SchemaNode, value *SchemaNode, valueNullable, nullable bool) *SchemaNode {
	key.Name = "key"
	key.Repetition = format.Required
	value.Name = "value"
	if valueNullable {
		value.Repetition = format.Optional
	} else {
		value.Repetition = format.Required
	}
	keyValue := &SchemaNode{
		Name:         "key_value",
		Repetition:   format.Repeated,
		Children:     []*SchemaNode{key, value},
		IsMapWrapper: true,
	}
	ct := format.ConvertedTypeMap
	rep := format.Required
	if nullable {
		rep = format.Optional
	}
	return &SchemaNode{
		Name:          name,
		Repetition:    rep,
		ConvertedType: &ct,
		Children:      []*SchemaNode{keyValue},
	}
}

// Linearize flattens the schema tree into the preorder
// []format.SchemaElement Parquet footers expect: each group
// immediately followed by its children, depth-first.
func Linearize(root *SchemaNode) []format.SchemaElement {
	var out []format.SchemaElement
	var walk func(n *SchemaNode, isRoot bool)
	walk = func(n *SchemaNode, isRoot bool) {
		el := format.SchemaElement{Name: n.Name}
		if !isRoot {
			rep := n.Repetition
			el.RepetitionType = &rep
		}
		el.FieldID = n.FieldID
		if n.isLeaf() {
			typ := *n.Type
			el.Type = &typ
			el.TypeLength = n.TypeLength
			el.ConvertedType = n.ConvertedType
			el.Scale = n.Scale
			el.Precision = n.Precision
			el.LogicalType = n.LogicalType
		} else {
			nc := int32(len(n.Children))
			el.NumChildren = &nc
			el.ConvertedType = n.ConvertedType
		}
		out = append(out, el)
		for _, c := range n.Children {
			walk(c, false)
		}
	}
	walk(root, true)
	return out
}

// ResolvePath walks from root down to the named top-level column,
// returning its single root→leaf path. It is an error to call this on
// a column whose subtree branches into more than one leaf (MAP, or a
// struct with more than one field); use LeafPaths for those.
func ResolvePath(root *SchemaNode, columnName string) ([]*SchemaNode, error) {
	paths, err := LeafPaths(root, columnName)
	if err != nil {
		return nil, err
	}
	if len(paths) != 1 {
		return nil, newError(UnknownType, columnName, "column has %d leaves, want exactly one", len(paths))
	}
	return paths[0], nil
}

// LeafPaths returns every root→leaf path reachable under the named
// top-level column: exactly one for a scalar or LIST-of-scalar
// column, more than one for a MAP or a struct with several fields.
// Each leaf becomes its own column chunk.
func LeafPaths(root *SchemaNode, columnName string) ([][]*SchemaNode, error) {
	for _, child := range root.Children {
		if child.Name == columnName {
			return collectLeafPaths([]*SchemaNode{root, child})
		}
	}
	return nil, newError(UnknownType, columnName, "no such column in schema")
}

func collectLeafPaths(path []*SchemaNode) ([][]*SchemaNode, error) {
	last := path[len(path)-1]
	if last.isLeaf() {
		cp := make([]*SchemaNode, len(path))
		copy(cp, path)
		return [][]*SchemaNode{cp}, nil
	}
	if len(last.Children) == 0 {
		return nil, fmt.Errorf("schema node %q has neither a type nor children", last.Name)
	}
	var out [][]*SchemaNode
	for _, child := range last.Children {
		branch := make([]*SchemaNode, len(path), len(path)+1)
		copy(branch, path)
		branch = append(branch, child)
		sub, err := collectLeafPaths(branch)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

// maxRepetition returns the count of REPEATED nodes along path.
func maxRepetition(path []*SchemaNode) int {
	n := 0
	for _, node := range path {
		if node.Repetition == format.Repeated {
			n++
		}
	}
	return n
}

// maxDefinition returns the count of non-REQUIRED nodes along
// path[1:], skipping the root (which carries no repetition type).
func maxDefinition(path []*SchemaNode) int {
	n := 0
	for _, node := range path[1:] {
		if node.Repetition != format.Required {
			n++
		}
	}
	return n
}
