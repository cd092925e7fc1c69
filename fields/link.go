package fields

import (
	"fmt"
	"sync"

	gridbase "github.com/reoring/gridbase"
	"github.com/reoring/gridbase/i18n"
)

// linkField holds references to instances of another model, identified on
// the wire by record-id strings. The related model may be supplied lazily as
// a zero-argument resolver to allow mutually-referencing model definitions.
// Field descriptors are shared by every instance of a model, so the
// resolve-and-cache step is guarded for concurrent use.
type linkField struct {
	base
	once     sync.Once
	resolved *gridbase.Model
	resolve  func() *gridbase.Model
}

// NewLink builds a link field. model must be a *gridbase.Model or a
// zero-argument func() *gridbase.Model (lazy forward reference); anything
// else fails with a type error immediately, not on first access.
func NewLink(name string, model any, opts ...Option) (gridbase.Field, error) {
	f := &linkField{base: newBase("LinkField", name, gridbase.Kinds(gridbase.KindModel, gridbase.KindList), opts...)}
	switch m := model.(type) {
	case *gridbase.Model:
		if m == nil {
			return nil, invalidModel(name, model)
		}
		f.resolved = m
	case func() *gridbase.Model:
		if m == nil {
			return nil, invalidModel(name, model)
		}
		f.resolve = m
	default:
		return nil, invalidModel(name, model)
	}
	return f, nil
}

// Link is NewLink but panics on a bad model parameter. Use it in model
// definitions, where a bad parameter is a programming error.
func Link(name string, model any, opts ...Option) gridbase.Field {
	f, err := NewLink(name, model, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func invalidModel(name string, model any) error {
	return gridbase.Issues{{
		Path:    "/" + name,
		Code:    gridbase.CodeInvalidModel,
		Message: i18n.T(gridbase.CodeInvalidModel, nil),
		Hint:    fmt.Sprintf("want *gridbase.Model or func() *gridbase.Model, got %T", model),
	}}
}

func (f *linkField) related() *gridbase.Model {
	f.once.Do(func() {
		if f.resolved == nil {
			f.resolved = f.resolve()
			f.resolve = nil
		}
	})
	return f.resolved
}

func (f *linkField) Accept(v any) error {
	switch t := v.(type) {
	case *gridbase.Instance:
		return f.checkInstance(f.name, t)
	}
	items, ok := asList(v)
	if !ok {
		return typeIssue(f.name, "model|list", gridbase.KindOf(v))
	}
	for i, it := range items {
		inst, ok := it.(*gridbase.Instance)
		if !ok {
			return linkIssue(fmt.Sprintf("%s/%d", f.name, i),
				fmt.Sprintf("want instance of %s, got %T", f.related().Name(), it))
		}
		if err := f.checkInstance(fmt.Sprintf("%s/%d", f.name, i), inst); err != nil {
			return err
		}
	}
	return nil
}

func (f *linkField) checkInstance(path string, inst *gridbase.Instance) error {
	if inst.Model() != f.related() {
		return linkIssue(path,
			fmt.Sprintf("want instance of %s, got %s", f.related().Name(), inst.Model().Name()))
	}
	return nil
}

func linkIssue(path, hint string) error {
	return gridbase.Issues{{
		Path:    "/" + path,
		Code:    gridbase.CodeInvalidLink,
		Message: i18n.T(gridbase.CodeInvalidLink, nil),
		Hint:    hint,
	}}
}

// DefaultValue follows the list-like null policy: a link that was never set
// reads as an empty instance slice.
func (f *linkField) DefaultValue() any { return []*gridbase.Instance{} }

// ToInternal hydrates wire record-id strings into unfetched instances of the
// related model carrying only their id. A null wire value normalizes to an
// empty slice, matching ToRecord's output for one.
func (f *linkField) ToInternal(v any) (any, error) {
	if v == nil {
		return []*gridbase.Instance{}, nil
	}
	ids, ok := asList(v)
	if !ok {
		return nil, typeIssue(f.name, "list", gridbase.KindOf(v))
	}
	out := make([]*gridbase.Instance, len(ids))
	for i, raw := range ids {
		id, ok := raw.(string)
		if !ok {
			return nil, typeIssue(fmt.Sprintf("%s/%d", f.name, i), "string", gridbase.KindOf(raw))
		}
		inst, err := f.related().New(nil)
		if err != nil {
			return nil, err
		}
		inst.SetID(id)
		out[i] = inst
	}
	return out, nil
}

// ToRecord serializes stored instances back to their record-id strings.
func (f *linkField) ToRecord(v any) (any, error) {
	if v == nil {
		return []any{}, nil
	}
	if inst, ok := v.(*gridbase.Instance); ok {
		return []any{inst.ID()}, nil
	}
	items, ok := asList(v)
	if !ok {
		return nil, typeIssue(f.name, "model|list", gridbase.KindOf(v))
	}
	out := make([]any, len(items))
	for i, it := range items {
		inst, ok := it.(*gridbase.Instance)
		if !ok {
			return nil, linkIssue(fmt.Sprintf("%s/%d", f.name, i), fmt.Sprintf("got %T", it))
		}
		out[i] = inst.ID()
	}
	return out, nil
}

func (f *linkField) String() string {
	param := "<lazy>"
	if f.resolved != nil {
		param = f.resolved.Name()
	}
	return gridbase.Repr(f.className, f.name, param, f.readonly, f.validateType)
}
