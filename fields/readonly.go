package fields

import (
	gridbase "github.com/reoring/gridbase"
)

// Readonly fields cover server-computed columns. Their constructors take no
// options: readonly is forced and cannot be turned off. Seeding via
// construction values or record hydration is the only path to a value;
// ToInternal/ToRecord keep working for that plumbing.

func forceReadOnly(f gridbase.Field) gridbase.Field {
	type settable interface{ setReadOnly() }
	f.(settable).setReadOnly()
	return f
}

func (b *base) setReadOnly() { b.readonly = true }

// AutoNumber is the server-assigned incrementing integer column.
func AutoNumber(name string) gridbase.Field {
	return forceReadOnly(&intField{base: newBase("AutoNumberField", name, gridbase.Kinds(gridbase.KindInt))})
}

// Count is a computed record-count column.
func Count(name string) gridbase.Field {
	return forceReadOnly(&intField{base: newBase("CountField", name, gridbase.Kinds(gridbase.KindInt))})
}

// CreatedTime is the server-side creation timestamp, with the datetime
// conversion.
func CreatedTime(name string) gridbase.Field {
	return forceReadOnly(&datetimeField{base: newBase("CreatedTimeField", name, gridbase.Kinds(gridbase.KindTime))})
}

// LastModifiedTime is the server-side modification timestamp, with the
// datetime conversion.
func LastModifiedTime(name string) gridbase.Field {
	return forceReadOnly(&datetimeField{base: newBase("LastModifiedTimeField", name, gridbase.Kinds(gridbase.KindTime))})
}

// CreatedBy is the user reference that created the record (identity
// conversion over the user mapping).
func CreatedBy(name string) gridbase.Field {
	b := newBase("CreatedByField", name, gridbase.Kinds(gridbase.KindMap))
	b.readonly = true
	return &b
}

// LastModifiedBy is the user reference that last modified the record.
func LastModifiedBy(name string) gridbase.Field {
	b := newBase("LastModifiedByField", name, gridbase.Kinds(gridbase.KindMap))
	b.readonly = true
	return &b
}

// ExternalSyncSource names the external source a synced record came from.
func ExternalSyncSource(name string) gridbase.Field {
	b := newBase("ExternalSyncSourceField", name, gridbase.Kinds(gridbase.KindString))
	b.readonly = true
	return &b
}

// Button is a button column; the native value is the raw wire mapping with
// label and url.
func Button(name string) gridbase.Field {
	b := newBase("ButtonField", name, gridbase.Kinds(gridbase.KindMap))
	b.readonly = true
	return &b
}
