package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	gridbase "github.com/reoring/gridbase"
	"github.com/reoring/gridbase/client"
)

func newTestClient(t *testing.T, baseURL string, ratePerSec int) *client.Client {
	t.Helper()
	cfg := &client.Config{
		BaseURL:    baseURL,
		APIKey:     "keyTest",
		RatePerSec: ratePerSec,
	}
	c, err := client.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestGetRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/appFake/Contacts/rec123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer keyTest" {
			t.Errorf("unexpected auth header: %s", got)
		}
		writeJSON(t, w, gridbase.Record{
			ID:     "rec123",
			Fields: map[string]any{"Name": "John"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	rec, err := c.GetRecord(context.Background(), "appFake", "Contacts", "rec123")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.ID != "rec123" || rec.Fields["Name"] != "John" {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.GetRecord(context.Background(), "appFake", "Contacts", "recMissing")
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAll_FollowsOffset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "":
			writeJSON(t, w, gridbase.RecordPage{
				Records: []gridbase.Record{{ID: "rec1"}, {ID: "rec2"}},
				Offset:  "page2",
			})
		case "page2":
			writeJSON(t, w, gridbase.RecordPage{
				Records: []gridbase.Record{{ID: "rec3"}},
			})
		default:
			t.Errorf("unexpected offset: %s", r.URL.Query().Get("offset"))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	records, err := c.All(context.Background(), "appFake", "Contacts", client.ListOptions{})
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(records) != 3 || records[2].ID != "rec3" {
		t.Fatalf("unexpected records: %#v", records)
	}
}

func TestListOptions_RejectsUnknownParam(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.All(context.Background(), "appFake", "Contacts", client.ListOptions{
		Params: map[string]string{"filterByFormula": "TRUE()"},
	})
	if err == nil {
		t.Fatalf("expected error for unknown param")
	}
	if hits.Load() != 0 {
		t.Fatalf("request was sent despite invalid param")
	}
}

func TestCreateRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Fields["Name"] != "John" {
			t.Errorf("unexpected payload: %#v", body.Fields)
		}
		writeJSON(t, w, gridbase.Record{ID: "recNew", Fields: body.Fields})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	rec, err := c.CreateRecord(context.Background(), "appFake", "Contacts", map[string]any{"Name": "John"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != "recNew" {
		t.Fatalf("unexpected id: %s", rec.ID)
	}
}

func TestUpdateRecord_UsesPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("unexpected method: %s", r.Method)
		}
		writeJSON(t, w, gridbase.Record{ID: "rec123"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.UpdateRecord(context.Background(), "appFake", "Contacts", "rec123", map[string]any{"Name": "New"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestReplaceRecord_UsesPut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method: %s", r.Method)
		}
		writeJSON(t, w, gridbase.Record{ID: "rec123"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.ReplaceRecord(context.Background(), "appFake", "Contacts", "rec123", map[string]any{"Name": "New"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		writeJSON(t, w, map[string]any{
			"error": map[string]any{"type": "INVALID_VALUE_FOR_COLUMN", "message": "Cannot parse value"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.CreateRecord(context.Background(), "appFake", "Contacts", map[string]any{"Name": 1})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Message != "Cannot parse value" {
		t.Fatalf("unexpected api error: %#v", apiErr)
	}
}

func TestCheckTable_Invalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	err := c.CheckTable(context.Background(), "appBad", "Nope")
	if err == nil {
		t.Fatalf("expected error for invalid table")
	}
}

func TestBatchCreate_Paces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, gridbase.Record{ID: "recNew"})
	}))
	defer srv.Close()

	// 50/s means a 20ms floor between sub-requests; three requests need at
	// least two full intervals.
	c := newTestClient(t, srv.URL, 50)
	start := time.Now()
	records, err := c.BatchCreate(context.Background(), "appFake", "Contacts", []map[string]any{
		{"Name": "a"}, {"Name": "b"}, {"Name": "c"},
	})
	if err != nil {
		t.Fatalf("batch create: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("unexpected count: %d", len(records))
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("batch ran unpaced: %v", elapsed)
	}
}

func TestBatchDelete_HonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"deleted": true})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.BatchDelete(ctx, "appFake", "Contacts", []string{"rec1", "rec2"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestUpdateByField(t *testing.T) {
	var patched map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, gridbase.RecordPage{Records: []gridbase.Record{
				{ID: "rec1", Fields: map[string]any{"Name": "other"}},
				{ID: "rec2", Fields: map[string]any{"Name": "target"}},
			}})
		case http.MethodPatch:
			if r.URL.Path != "/appFake/Contacts/rec2" {
				t.Errorf("patched wrong record: %s", r.URL.Path)
			}
			var body struct {
				Fields map[string]any `json:"fields"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			patched = body.Fields
			writeJSON(t, w, gridbase.Record{ID: "rec2", Fields: body.Fields})
		default:
			t.Errorf("unexpected method: %s", r.Method)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	rec, found, err := c.UpdateByField(context.Background(), "appFake", "Contacts",
		"Name", "target", map[string]any{"Name": "renamed"}, client.ListOptions{})
	if err != nil {
		t.Fatalf("update by field: %v", err)
	}
	if !found || rec.ID != "rec2" {
		t.Fatalf("unexpected result: found=%v id=%q", found, rec.ID)
	}
	if patched["Name"] != "renamed" {
		t.Fatalf("unexpected payload: %#v", patched)
	}

	_, found, err = c.UpdateByField(context.Background(), "appFake", "Contacts",
		"Name", "nobody", map[string]any{"Name": "x"}, client.ListOptions{})
	if err != nil || found {
		t.Fatalf("no-match case: found=%v err=%v", found, err)
	}
}

func TestDeleteByField(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, gridbase.RecordPage{Records: []gridbase.Record{
				{ID: "rec1", Fields: map[string]any{"Name": "target"}},
			}})
		case http.MethodDelete:
			deleted = r.URL.Path
			writeJSON(t, w, map[string]any{"id": "rec1", "deleted": true})
		default:
			t.Errorf("unexpected method: %s", r.Method)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	found, err := c.DeleteByField(context.Background(), "appFake", "Contacts",
		"Name", "target", client.ListOptions{})
	if err != nil {
		t.Fatalf("delete by field: %v", err)
	}
	if !found || deleted != "/appFake/Contacts/rec1" {
		t.Fatalf("unexpected result: found=%v deleted=%q", found, deleted)
	}

	found, err = c.DeleteByField(context.Background(), "appFake", "Contacts",
		"Name", "nobody", client.ListOptions{})
	if err != nil || found {
		t.Fatalf("no-match case: found=%v err=%v", found, err)
	}
}

func TestMirror(t *testing.T) {
	var deletes, creates atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, gridbase.RecordPage{Records: []gridbase.Record{
				{ID: "recOld1"}, {ID: "recOld2"},
			}})
		case http.MethodDelete:
			deletes.Add(1)
			writeJSON(t, w, map[string]any{"deleted": true})
		case http.MethodPost:
			creates.Add(1)
			writeJSON(t, w, gridbase.Record{ID: "recNew"})
		default:
			t.Errorf("unexpected method: %s", r.Method)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	records, err := c.Mirror(context.Background(), "appFake", "Contacts", []map[string]any{
		{"Name": "a"}, {"Name": "b"}, {"Name": "c"},
	}, client.ListOptions{})
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	if deletes.Load() != 2 {
		t.Fatalf("deletes: got %d, want 2", deletes.Load())
	}
	if creates.Load() != 3 || len(records) != 3 {
		t.Fatalf("creates: got %d requests, %d records", creates.Load(), len(records))
	}
}

func TestMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, gridbase.Record{ID: "rec123"})
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	col := client.NewCollectorWithRegistry(reg)
	c := newTestClient(t, srv.URL, 0).WithMetrics(col)

	if _, err := c.GetRecord(context.Background(), "appFake", "Contacts", "rec123"); err != nil {
		t.Fatalf("get: %v", err)
	}

	if got := testutil.ToFloat64(col.RequestsTotal.WithLabelValues("GET", "200")); got != 1 {
		t.Fatalf("requests_total: got %v", got)
	}
}
