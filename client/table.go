package client

import (
	"context"
	"errors"
	"fmt"

	gridbase "github.com/reoring/gridbase"
)

// Table binds a model to its remote table and drives persistence through
// the model's field-conversion contract: FromRecord/Load on the way in,
// ToRecord on the way out. Only declared, present fields ever enter a write
// payload, so undeclared remote columns survive a save untouched.
type Table struct {
	client *Client
	model  *gridbase.Model
	baseID string
	table  string
}

// NewTable binds a model to the client. The base id comes from the model
// definition, falling back to defaultBaseID.
func NewTable(c *Client, m *gridbase.Model, defaultBaseID string) (*Table, error) {
	baseID := m.BaseID()
	if baseID == "" {
		baseID = defaultBaseID
	}
	if baseID == "" {
		return nil, fmt.Errorf("model %s: no base id configured", m.Name())
	}
	if m.TableName() == "" {
		return nil, fmt.Errorf("model %s: no table name configured", m.Name())
	}
	return &Table{client: c, model: m, baseID: baseID, table: m.TableName()}, nil
}

// Model returns the bound model.
func (t *Table) Model() *gridbase.Model { return t.model }

// Find fetches one record by id and hydrates an instance from it.
func (t *Table) Find(ctx context.Context, id string) (*gridbase.Instance, error) {
	rec, err := t.client.GetRecord(ctx, t.baseID, t.table, id)
	if err != nil {
		return nil, err
	}
	return t.model.FromRecord(rec)
}

// Save persists the instance: a create when it has no id yet, otherwise a
// patch of the declared fields. It reports whether a new record was created.
func (t *Table) Save(ctx context.Context, inst *gridbase.Instance) (bool, error) {
	rec, err := inst.ToRecord()
	if err != nil {
		return false, err
	}
	if !inst.Exists() {
		created, err := t.client.CreateRecord(ctx, t.baseID, t.table, rec.Fields)
		if err != nil {
			return false, err
		}
		inst.SetID(created.ID)
		return true, nil
	}
	_, err = t.client.UpdateRecord(ctx, t.baseID, t.table, inst.ID(), rec.Fields)
	return false, err
}

// Fetch refreshes the instance from the remote record it is bound to.
func (t *Table) Fetch(ctx context.Context, inst *gridbase.Instance) error {
	if !inst.Exists() {
		return fmt.Errorf("model %s: cannot fetch an unsaved instance", t.model.Name())
	}
	rec, err := t.client.GetRecord(ctx, t.baseID, t.table, inst.ID())
	if err != nil {
		return err
	}
	return inst.Load(rec)
}

// Exists reports whether the instance's record is still present remotely.
func (t *Table) Exists(ctx context.Context, inst *gridbase.Instance) (bool, error) {
	if !inst.Exists() {
		return false, nil
	}
	_, err := t.client.GetRecord(ctx, t.baseID, t.table, inst.ID())
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the instance's record and clears its id.
func (t *Table) Delete(ctx context.Context, inst *gridbase.Instance) error {
	if !inst.Exists() {
		return fmt.Errorf("model %s: cannot delete an unsaved instance", t.model.Name())
	}
	if err := t.client.DeleteRecord(ctx, t.baseID, t.table, inst.ID()); err != nil {
		return err
	}
	inst.SetID("")
	return nil
}

// All fetches every record and hydrates an instance per record.
func (t *Table) All(ctx context.Context, opts ListOptions) ([]*gridbase.Instance, error) {
	records, err := t.client.All(ctx, t.baseID, t.table, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*gridbase.Instance, len(records))
	for i, rec := range records {
		inst, err := t.model.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		out[i] = inst
	}
	return out, nil
}
