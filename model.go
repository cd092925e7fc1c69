package gridbase

import (
	"fmt"
	"time"

	"github.com/reoring/gridbase/i18n"
)

// Attr binds one attribute name to its field descriptor.
type Attr struct {
	Attr  string
	Field Field
}

// ModelSpec is the raw material NewModel validates. dsl.Model is the usual
// way to produce one.
type ModelSpec struct {
	Name   string
	BaseID string
	Table  string
	Attrs  []Attr
}

// Model is the class-level artifact: an ordered, immutable field registry
// defined once and shared by every instance. Go has no attribute
// descriptors, so attribute access dispatches through this registry
// explicitly (Instance.Get / Instance.Set).
type Model struct {
	name   string
	baseID string
	table  string
	order  []string
	fields map[string]Field  // attribute name -> descriptor
	byWire map[string]string // wire field name -> attribute name
}

// NewModel validates a ModelSpec and freezes it into a Model.
func NewModel(spec ModelSpec) (*Model, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("gridbase: model name must not be empty")
	}
	m := &Model{
		name:   spec.Name,
		baseID: spec.BaseID,
		table:  spec.Table,
		fields: make(map[string]Field, len(spec.Attrs)),
		byWire: make(map[string]string, len(spec.Attrs)),
	}
	for _, a := range spec.Attrs {
		if a.Attr == "" {
			return nil, fmt.Errorf("gridbase: model %s: attribute name must not be empty", spec.Name)
		}
		if a.Field == nil {
			return nil, fmt.Errorf("gridbase: model %s: attribute %q has no field", spec.Name, a.Attr)
		}
		if _, dup := m.fields[a.Attr]; dup {
			return nil, fmt.Errorf("gridbase: model %s: duplicate attribute %q", spec.Name, a.Attr)
		}
		if prev, dup := m.byWire[a.Field.Name()]; dup {
			return nil, fmt.Errorf("gridbase: model %s: attributes %q and %q share wire field %q",
				spec.Name, prev, a.Attr, a.Field.Name())
		}
		m.order = append(m.order, a.Attr)
		m.fields[a.Attr] = a.Field
		m.byWire[a.Field.Name()] = a.Attr
	}
	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// BaseID returns the remote base this model is bound to, if any.
func (m *Model) BaseID() string { return m.baseID }

// TableName returns the remote table this model is bound to, if any.
func (m *Model) TableName() string { return m.table }

// Attrs returns the attribute names in registration order.
func (m *Model) Attrs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// FieldByAttr resolves an attribute name to its descriptor.
func (m *Model) FieldByAttr(attr string) (Field, bool) {
	f, ok := m.fields[attr]
	return f, ok
}

func (m *Model) newInstance() *Instance {
	return &Instance{
		model:    m,
		store:    map[string]any{},
		presence: PresenceMap{},
	}
}

// New constructs an instance, optionally seeded with attribute values.
// Unknown attribute names fail with an attribute error, never silently.
// Seeding a readonly field is permitted here; it is the construction-time
// path the readonly contract allows.
func (m *Model) New(values map[string]any) (*Instance, error) {
	inst := m.newInstance()
	var iss Issues
	for _, attr := range m.order {
		v, ok := values[attr]
		if !ok {
			continue
		}
		if err := inst.put(m.fields[attr], v, PresenceSeen|PresenceAssigned); err != nil {
			return nil, err
		}
	}
	for attr := range values {
		if _, ok := m.fields[attr]; !ok {
			iss = AppendIssues(iss, Issue{
				Path:    "/" + attr,
				Code:    CodeUnknownField,
				Message: i18n.T(CodeUnknownField, nil),
				Hint:    fmt.Sprintf("model %s declares no attribute %q", m.name, attr),
			})
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return inst, nil
}

// FromRecord hydrates an instance from a wire record via each field's
// ToInternal. Wire fields with no declared descriptor are ignored; they stay
// untouched on the server because serialization only emits declared fields.
func (m *Model) FromRecord(rec Record) (*Instance, error) {
	inst := m.newInstance()
	if err := inst.Load(rec); err != nil {
		return nil, err
	}
	return inst, nil
}

// Load re-hydrates the instance in place from a wire record, replacing the
// store. The persistence layer uses it to refresh a fetched instance.
func (inst *Instance) Load(rec Record) error {
	m := inst.model
	inst.id = rec.ID
	inst.store = map[string]any{}
	inst.presence = PresenceMap{}
	if rec.CreatedTime != "" {
		t, err := time.Parse(time.RFC3339Nano, rec.CreatedTime)
		if err != nil {
			return Issues{{
				Path:    "/createdTime",
				Code:    CodeInvalidFormat,
				Message: i18n.T(CodeInvalidFormat, nil),
				Cause:   err,
			}}
		}
		inst.createdTime = t
	}
	for _, attr := range m.order {
		f := m.fields[attr]
		raw, present := rec.Fields[f.Name()]
		if !present {
			continue
		}
		v, err := f.ToInternal(raw)
		if err != nil {
			return err
		}
		p := PresenceSeen
		if raw == nil {
			p |= PresenceWasNull
		}
		inst.store[f.Name()] = v
		inst.presence[f.Name()] = p
	}
	return nil
}

// Instance is one row of a Model: a private store from wire field name to
// native value plus presence metadata. The store only ever holds values that
// passed their field's validation.
type Instance struct {
	model       *Model
	id          string
	createdTime time.Time
	store       map[string]any
	presence    PresenceMap
}

// Model returns the owning model.
func (inst *Instance) Model() *Model { return inst.model }

// ID returns the remote record identifier, empty for unsaved instances.
func (inst *Instance) ID() string { return inst.id }

// SetID binds the instance to a remote record identifier.
func (inst *Instance) SetID(id string) { inst.id = id }

// CreatedTime returns the server-side creation time, zero when unsaved.
func (inst *Instance) CreatedTime() time.Time { return inst.createdTime }

// Exists reports whether the instance is bound to a persisted record.
func (inst *Instance) Exists() bool { return inst.id != "" }

// PresenceOf returns the presence flags for an attribute's value.
func (inst *Instance) PresenceOf(attr string) Presence {
	f, ok := inst.model.fields[attr]
	if !ok {
		return 0
	}
	return inst.presence[f.Name()]
}

// Get returns the stored native value, or the field's default when the value
// was never set. Reading an undeclared attribute is a programming error and
// panics, mirroring the registration-time strictness of the model builder.
func (inst *Instance) Get(attr string) any {
	f, ok := inst.model.fields[attr]
	if !ok {
		panic(fmt.Sprintf("gridbase: model %s declares no attribute %q", inst.model.name, attr))
	}
	if v, ok := inst.store[f.Name()]; ok && v != nil {
		return v
	}
	return f.DefaultValue()
}

// Set validates and stores a value. Errors are raised synchronously, never
// deferred or coerced: attribute error for readonly or unknown attributes,
// type error when the value's tag is outside the accepted set (skipped when
// the field disables validation), value error for semantic violations.
func (inst *Instance) Set(attr string, v any) error {
	f, ok := inst.model.fields[attr]
	if !ok {
		return Issues{{
			Path:    "/" + attr,
			Code:    CodeUnknownField,
			Message: i18n.T(CodeUnknownField, nil),
			Hint:    fmt.Sprintf("model %s declares no attribute %q", inst.model.name, attr),
		}}
	}
	if f.ReadOnly() {
		return Issues{{
			Path:    "/" + attr,
			Code:    CodeReadonlyField,
			Message: i18n.T(CodeReadonlyField, nil),
		}}
	}
	return inst.put(f, v, PresenceSeen|PresenceAssigned)
}

func (inst *Instance) put(f Field, v any, p Presence) error {
	if f.ValidatesType() {
		if err := f.Accept(v); err != nil {
			return err
		}
	}
	if err := f.Check(v); err != nil {
		return err
	}
	inst.store[f.Name()] = v
	inst.presence[f.Name()] |= p
	return nil
}

// Unset always fails: deleting a field attribute is never permitted.
func (inst *Instance) Unset(attr string) error {
	code := CodeDeleteForbidden
	if _, ok := inst.model.fields[attr]; !ok {
		code = CodeUnknownField
	}
	return Issues{{
		Path:    "/" + attr,
		Code:    code,
		Message: i18n.T(code, nil),
	}}
}

// ToRecord serializes the instance for a write request via each field's
// ToRecord. Readonly fields enter the payload only when they were explicitly
// assigned at construction; hydrated readonly values are omitted so the
// server keeps computing them.
func (inst *Instance) ToRecord() (Record, error) {
	out := map[string]any{}
	for _, attr := range inst.model.order {
		f := inst.model.fields[attr]
		p := inst.presence[f.Name()]
		if p == 0 {
			continue
		}
		if f.ReadOnly() && p&PresenceAssigned == 0 {
			continue
		}
		wire, err := f.ToRecord(inst.store[f.Name()])
		if err != nil {
			return Record{}, err
		}
		out[f.Name()] = wire
	}
	rec := Record{ID: inst.id, Fields: out}
	if !inst.createdTime.IsZero() {
		rec.CreatedTime = inst.createdTime.UTC().Format("2006-01-02T15:04:05.000Z")
	}
	return rec, nil
}
