package pqwriter

import (
	"github.com/parquet-go/pqwriter/internal/format"
)

// PageData is the flat, Dremel-shredded representation of one leaf
// column's values: parallel value/definition-level/repetition-level
// streams plus the null count, ready for statistics, dictionary
// building and paging by the column writer.
type PageData struct {
	Values           []any
	DefinitionLevels []int32
	RepetitionLevels []int32
	NumNulls         int
}

// maxLevels returns the per-path maximum definition and repetition
// levels every level in a PageData must respect.
func maxLevels(path []*SchemaNode) (maxDef, maxRep int32) {
	return int32(maxDefinition(path)), int32(maxRepetition(path))
}

// shredState holds the precomputed per-depth repetition-level-prior
// table for one root→leaf path, so the recursive shredder's signature
// stays a fixed (depth, value, def, rep, allowNull) tuple regardless
// of how deeply nested the path is.
type shredState struct {
	column   string
	path     []*SchemaNode
	repPrior []int32
}

// Shred runs the Dremel shredding algorithm over a single root→leaf
// schema path and a column's top-level row values, emitting
// one (value, definition level, repetition level) triple per row per
// leaf occurrence.
func Shred(column string, path []*SchemaNode, values []any) (*PageData, error) {
	st := &shredState{column: column, path: path, repPrior: make([]int32, len(path))}
	for i := range path {
		st.repPrior[i] = int32(maxRepetition(path[:i]))
	}
	out := &PageData{}
	for _, v := range values {
		if err := st.shred(1, v, 0, 0, false, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// shred processes the value destined for path[depth], given the
// definition/repetition level accumulated so far and whether a null
// ancestor already licenses a missing REQUIRED value along this call
// chain.
func (st *shredState) shred(depth int, v any, def, rep int32, allowNull bool, out *PageData) error {
	node := st.path[depth]
	if depth == len(st.path)-1 {
		if node.Repetition == format.Repeated {
			// A bare repeated leaf: one entry per array element, or a
			// single null entry for an empty/nil array.
			entries, err := st.toEntries(node, v)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return st.shredLeaf(node, nil, def, rep, true, out)
			}
			for i, entry := range entries {
				elemRep := rep
				if i > 0 {
					elemRep = st.repPrior[depth] + 1
				}
				if err := st.shredLeaf(node, entry, def, elemRep, false, out); err != nil {
					return err
				}
			}
			return nil
		}
		return st.shredLeaf(node, v, def, rep, allowNull, out)
	}
	switch node.Repetition {
	case format.Repeated:
		return st.shredRepeated(depth, node, v, def, rep, out)
	case format.Optional:
		if v == nil {
			return st.recurseOnce(depth, def, rep, out)
		}
		child, err := st.extractChild(depth, node, v)
		if err != nil {
			return err
		}
		return st.shred(depth+1, child, def+1, rep, false, out)
	default: // Required
		if v == nil {
			if !allowNull {
				return newError(RequiredValueMissing, st.column, "required field %q received a null value", node.Name)
			}
			return st.recurseOnce(depth, def, rep, out)
		}
		child, err := st.extractChild(depth, node, v)
		if err != nil {
			return err
		}
		return st.shred(depth+1, child, def, rep, false, out)
	}
}

func (st *shredState) shredLeaf(node *SchemaNode, v any, def, rep int32, allowNull bool, out *PageData) error {
	if v == nil {
		if node.Repetition == format.Required && !allowNull {
			return newError(RequiredValueMissing, st.column, "required leaf %q received a null value", node.Name)
		}
		out.Values = append(out.Values, nil)
		out.DefinitionLevels = append(out.DefinitionLevels, def)
		out.RepetitionLevels = append(out.RepetitionLevels, rep)
		out.NumNulls++
		return nil
	}
	if node.Repetition != format.Required {
		def++
	}
	out.Values = append(out.Values, v)
	out.DefinitionLevels = append(out.DefinitionLevels, def)
	out.RepetitionLevels = append(out.RepetitionLevels, rep)
	return nil
}

// shredRepeated handles a REPEATED node: the standard 3-level LIST
// `list` wrapper, the MAP `key_value` wrapper, or a bare repeated
// field. An empty/nil array recurses once into the child with the
// definition/repetition level unchanged; otherwise every element bumps the
// definition level by one, and every element after the first starts a
// new repetition at this node's own repetition-level depth.
func (st *shredState) shredRepeated(depth int, node *SchemaNode, v any, def, rep int32, out *PageData) error {
	entries, err := st.toEntries(node, v)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return st.recurseOnce(depth, def, rep, out)
	}

	target := st.path[depth+1]
	for i, entry := range entries {
		elemRep := rep
		if i > 0 {
			elemRep = st.repPrior[depth] + 1
		}
		var childVal any
		if node.IsMapWrapper {
			me := entry.(mapEntry)
			if target.Name == "key" {
				childVal = me.Key
			} else {
				childVal = me.Value
			}
		} else {
			childVal = entry
		}
		if err := st.shred(depth+1, childVal, def+1, elemRep, false, out); err != nil {
			return err
		}
	}
	return nil
}

// recurseOnce propagates an absent optional/repeated/required-with-
// allowNull value one level deeper, unchanged, with allowNull set so
// a REQUIRED node further down does not fail.
func (st *shredState) recurseOnce(depth int, def, rep int32, out *PageData) error {
	if depth+1 >= len(st.path) {
		return nil
	}
	return st.shred(depth+1, nil, def, rep, true, out)
}

// toEntries normalizes a REPEATED node's raw value into a slice of
// per-iteration items: mapEntry values for a MAP wrapper, or the
// array elements themselves for anything else (including a bare LIST
// `list` wrapper, whose child-value extraction already passed the raw
// array through unchanged).
func (st *shredState) toEntries(node *SchemaNode, v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if node.IsMapWrapper {
		entries, err := normalizeMapInput(st.column, v)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(entries))
		for i, e := range entries {
			out[i] = e
		}
		return out, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, newError(ListShapeMismatch, st.column, "expected an array at repeated field %q, got %T", node.Name, v)
	}
	return arr, nil
}

// extractChild computes the value to pass to path[depth+1]: the LIST
// or MAP wrapper child receives v unchanged (it performs its own
// iteration/normalization), while a plain struct field is read out of
// v by name.
func (st *shredState) extractChild(depth int, node *SchemaNode, v any) (any, error) {
	child := st.path[depth+1]
	if child.IsListWrapper || child.IsMapWrapper {
		return v, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, newError(ListShapeMismatch, st.column, "expected a struct value at field %q, got %T", node.Name, v)
	}
	return m[child.Name], nil
}
