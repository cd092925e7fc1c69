package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	gridbase "github.com/reoring/gridbase"
	"github.com/reoring/gridbase/client"
	"github.com/reoring/gridbase/dsl"
	"github.com/reoring/gridbase/fields"
)

func contactModel() *gridbase.Model {
	return dsl.Model("Contact").
		Table("Contacts").
		Field("first_name", fields.Text("First Name")).
		Field("last_name", fields.Text("Last Name")).
		Field("created", fields.CreatedTime("Created")).
		MustBuild()
}

func newTestTable(t *testing.T, baseURL string) *client.Table {
	t.Helper()
	c := newTestClient(t, baseURL, 0)
	tbl, err := client.NewTable(c, contactModel(), "appFake")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return tbl
}

func TestTable_SaveCreates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/appFake/Contacts" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		writeJSON(t, w, gridbase.Record{ID: "recCreated", Fields: body.Fields})
	}))
	defer srv.Close()

	tbl := newTestTable(t, srv.URL)
	inst, err := tbl.Model().New(map[string]any{"first_name": "John"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	created, err := tbl.Save(context.Background(), inst)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !created {
		t.Fatalf("expected create")
	}
	if inst.ID() != "recCreated" || !inst.Exists() {
		t.Fatalf("id not bound: %q", inst.ID())
	}
}

// TestTable_SaveUpdatesOnlyDeclared checks that a patch carries only the
// declared fields present on the instance, so undeclared remote columns are
// never clobbered.
func TestTable_SaveUpdatesOnlyDeclared(t *testing.T) {
	var patched map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, gridbase.Record{
				ID: "rec123",
				Fields: map[string]any{
					"First Name": "Alice",
					"Created":    "2023-04-01T00:00:00.000Z",
					// Undeclared on the model; must survive a save.
					"Email": "alice@example.com",
				},
			})
		case http.MethodPatch:
			var body struct {
				Fields map[string]any `json:"fields"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			patched = body.Fields
			writeJSON(t, w, gridbase.Record{ID: "rec123", Fields: body.Fields})
		default:
			t.Errorf("unexpected method: %s", r.Method)
		}
	}))
	defer srv.Close()

	tbl := newTestTable(t, srv.URL)
	inst, err := tbl.Find(context.Background(), "rec123")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := inst.Set("last_name", "Arnold"); err != nil {
		t.Fatalf("set: %v", err)
	}

	created, err := tbl.Save(context.Background(), inst)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if created {
		t.Fatalf("expected update, not create")
	}

	if _, leaked := patched["Email"]; leaked {
		t.Fatalf("undeclared field entered the payload: %#v", patched)
	}
	if _, leaked := patched["Created"]; leaked {
		t.Fatalf("readonly field entered the payload: %#v", patched)
	}
	if patched["First Name"] != "Alice" || patched["Last Name"] != "Arnold" {
		t.Fatalf("unexpected payload: %#v", patched)
	}
}

func TestTable_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, gridbase.Record{
			ID:     "rec123",
			Fields: map[string]any{"First Name": "Fresh"},
		})
	}))
	defer srv.Close()

	tbl := newTestTable(t, srv.URL)
	inst, _ := tbl.Model().New(nil)

	if err := tbl.Fetch(context.Background(), inst); err == nil {
		t.Fatalf("fetch on unsaved instance should fail")
	}

	inst.SetID("rec123")
	if err := tbl.Fetch(context.Background(), inst); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := inst.Get("first_name"); got != "Fresh" {
		t.Fatalf("fetched value: got %v", got)
	}
}

func TestTable_Exists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tbl := newTestTable(t, srv.URL)
	inst, _ := tbl.Model().New(nil)

	ok, err := tbl.Exists(context.Background(), inst)
	if err != nil || ok {
		t.Fatalf("unsaved instance: got %v, %v", ok, err)
	}

	inst.SetID("recGone")
	ok, err = tbl.Exists(context.Background(), inst)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("deleted record reported as existing")
	}
}

func TestTable_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method: %s", r.Method)
		}
		writeJSON(t, w, map[string]any{"id": "rec123", "deleted": true})
	}))
	defer srv.Close()

	tbl := newTestTable(t, srv.URL)
	inst, _ := tbl.Model().New(nil)
	inst.SetID("rec123")

	if err := tbl.Delete(context.Background(), inst); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if inst.Exists() {
		t.Fatalf("instance still bound after delete")
	}
}

func TestTable_All(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, gridbase.RecordPage{
			Records: []gridbase.Record{
				{ID: "rec1", Fields: map[string]any{"First Name": "A"}},
				{ID: "rec2", Fields: map[string]any{"First Name": "B"}},
			},
		})
	}))
	defer srv.Close()

	tbl := newTestTable(t, srv.URL)
	instances, err := tbl.All(context.Background(), client.ListOptions{})
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(instances) != 2 || instances[1].Get("first_name") != "B" {
		t.Fatalf("unexpected instances: %#v", instances)
	}
}
