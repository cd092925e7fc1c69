// Package dsl provides the builder for model definitions. A model is defined
// once, at package initialization time, and the frozen registry is shared by
// every instance.
package dsl

import (
	gridbase "github.com/reoring/gridbase"
)

type modelBuilder struct {
	name   string
	baseID string
	table  string
	attrs  []gridbase.Attr
}

// Model creates a new model builder.
func Model(name string) *modelBuilder {
	return &modelBuilder{name: name}
}

// Field registers an attribute with its descriptor. Registration order is
// preserved; duplicates are rejected at Build time.
func (b *modelBuilder) Field(attr string, f gridbase.Field) *modelBuilder {
	b.attrs = append(b.attrs, gridbase.Attr{Attr: attr, Field: f})
	return b
}

// Base binds the model to a remote base id for the client layer.
func (b *modelBuilder) Base(id string) *modelBuilder {
	b.baseID = id
	return b
}

// Table binds the model to a remote table name for the client layer.
// It defaults to the model name.
func (b *modelBuilder) Table(name string) *modelBuilder {
	b.table = name
	return b
}

// Build validates the definition and freezes it into a Model.
func (b *modelBuilder) Build() (*gridbase.Model, error) {
	table := b.table
	if table == "" {
		table = b.name
	}
	return gridbase.NewModel(gridbase.ModelSpec{
		Name:   b.name,
		BaseID: b.baseID,
		Table:  table,
		Attrs:  b.attrs,
	})
}

// MustBuild is Build but panics on a bad definition. Use it for model
// definitions evaluated at package initialization.
func (b *modelBuilder) MustBuild() *gridbase.Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
