package fields

import (
	"fmt"

	gridbase "github.com/reoring/gridbase"
)

// listField covers every ordered-sequence column. A null or absent wire
// value normalizes to an empty slice, never nil; strings are rejected even
// though they are iterable.
type listField struct {
	base
	elemKind gridbase.Kind  // KindInvalid: elements unchecked
	elem     gridbase.Field // optional per-element converter
}

func (f *listField) DefaultValue() any { return []any{} }

func (f *listField) Accept(v any) error {
	items, ok := asList(v)
	if !ok {
		return typeIssue(f.name, "list", gridbase.KindOf(v))
	}
	if f.elemKind == gridbase.KindInvalid {
		return nil
	}
	for i, it := range items {
		if k := gridbase.KindOf(it); k != f.elemKind {
			return typeIssue(fmt.Sprintf("%s/%d", f.name, i), f.elemKind.String(), k)
		}
	}
	return nil
}

func (f *listField) ToInternal(v any) (any, error) {
	if v == nil {
		return []any{}, nil
	}
	items, ok := asList(v)
	if !ok {
		return nil, typeIssue(f.name, "list", gridbase.KindOf(v))
	}
	out := make([]any, len(items))
	for i, it := range items {
		if f.elem == nil {
			out[i] = it
			continue
		}
		conv, err := f.elem.ToInternal(it)
		if err != nil {
			return nil, err
		}
		out[i] = conv
	}
	return out, nil
}

func (f *listField) ToRecord(v any) (any, error) {
	if v == nil {
		return []any{}, nil
	}
	items, ok := asList(v)
	if !ok {
		return nil, typeIssue(f.name, "list", gridbase.KindOf(v))
	}
	out := make([]any, len(items))
	for i, it := range items {
		if f.elem == nil {
			out[i] = it
			continue
		}
		conv, err := f.elem.ToRecord(it)
		if err != nil {
			return nil, err
		}
		out[i] = conv
	}
	return out, nil
}

// List is an ordered sequence of arbitrary values.
func List(name string, opts ...Option) gridbase.Field {
	return &listField{base: newBase("ListField", name, gridbase.Kinds(gridbase.KindList), opts...)}
}

// Lookup represents values aggregated from a linked table. Elements pass
// through unchanged.
func Lookup(name string, opts ...Option) gridbase.Field {
	return &listField{base: newBase("LookupField", name, gridbase.Kinds(gridbase.KindList), opts...)}
}

// LookupOf is a Lookup whose elements each pass through elem's
// ToInternal/ToRecord independently (e.g. a Datetime element converter for a
// lookup over a datetime column). The element field's own wire name is
// unused.
func LookupOf(name string, elem gridbase.Field, opts ...Option) gridbase.Field {
	f := &listField{
		base: newBase("LookupField", name, gridbase.Kinds(gridbase.KindList), opts...),
		elem: elem,
	}
	f.modelParam = classOf(elem)
	return f
}

// MultipleSelect is a multi-select column; elements must be option-name
// strings when type validation is enabled.
func MultipleSelect(name string, opts ...Option) gridbase.Field {
	return &listField{
		base:     newBase("MultipleSelectField", name, gridbase.Kinds(gridbase.KindList), opts...),
		elemKind: gridbase.KindString,
	}
}

// MultipleCollaborators is a multi-collaborator column; elements must be
// user-reference mappings when type validation is enabled.
func MultipleCollaborators(name string, opts ...Option) gridbase.Field {
	return &listField{
		base:     newBase("MultipleCollaboratorsField", name, gridbase.Kinds(gridbase.KindList), opts...),
		elemKind: gridbase.KindMap,
	}
}

// MultipleAttachments is an attachments column; elements must be attachment
// mappings when type validation is enabled.
func MultipleAttachments(name string, opts ...Option) gridbase.Field {
	return &listField{
		base:     newBase("MultipleAttachmentsField", name, gridbase.Kinds(gridbase.KindList), opts...),
		elemKind: gridbase.KindMap,
	}
}
