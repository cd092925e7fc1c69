package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	gridbase "github.com/reoring/gridbase"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// APIError is a non-2xx response from the remote API.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the remote tabular-database API. It is safe for
// concurrent use.
type Client struct {
	http     *http.Client
	baseURL  *url.URL
	key      func() string
	logger   zerolog.Logger
	metrics  *Collector
	maxBody  int64
	pageSize int
	pacer    *pacer
}

// New creates a client from a static configuration.
func New(cfg *Config, logger zerolog.Logger) (*Client, error) {
	c := *cfg
	c.setDefaults()
	key := c.APIKey
	return newClient(&c, func() string { return key }, logger)
}

// NewWithHolder creates a client whose API key follows the holder's current
// configuration, so key rotation via reload takes effect on the next request.
func NewWithHolder(h *Holder, logger zerolog.Logger) (*Client, error) {
	return newClient(h.Get(), func() string { return h.Get().APIKey }, logger)
}

func newClient(cfg *Config, key func() string, logger zerolog.Logger) (*Client, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	return &Client{
		http:     &http.Client{Timeout: time.Duration(cfg.Timeout)},
		baseURL:  baseURL,
		key:      key,
		logger:   logger,
		maxBody:  cfg.MaxBodyBytes,
		pageSize: cfg.PageSize,
		pacer:    &pacer{interval: time.Second / time.Duration(cfg.RatePerSec)},
	}, nil
}

// WithMetrics attaches a metrics collector. Without one, no metrics are
// recorded.
func (c *Client) WithMetrics(col *Collector) *Client {
	c.metrics = col
	return c
}

// ListOptions narrows a list request. Params carries raw query parameters;
// anything outside the API's allowed set (view, maxRecords, pageSize,
// offset) is rejected before any request is made.
type ListOptions struct {
	View       string
	MaxRecords int
	PageSize   int
	Params     map[string]string
}

var allowedParams = map[string]struct{}{
	"view":       {},
	"maxRecords": {},
	"pageSize":   {},
	"offset":     {},
}

func (o ListOptions) query(defaultPageSize int) (url.Values, error) {
	q := url.Values{}
	if o.View != "" {
		q.Set("view", o.View)
	}
	if o.MaxRecords > 0 {
		q.Set("maxRecords", strconv.Itoa(o.MaxRecords))
	}
	pageSize := o.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	q.Set("pageSize", strconv.Itoa(pageSize))
	for k, v := range o.Params {
		if _, ok := allowedParams[k]; !ok {
			return nil, fmt.Errorf("invalid query param: %s", k)
		}
		q.Set(k, v)
	}
	return q, nil
}

// CheckTable issues a one-record probe to verify the base, table, and
// credentials are valid.
func (c *Client) CheckTable(ctx context.Context, baseID, table string) error {
	q := url.Values{}
	q.Set("maxRecords", "1")
	status, err := c.do(ctx, http.MethodGet, []string{baseID, table}, q, nil, &gridbase.RecordPage{})
	switch {
	case err == nil:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("invalid base or table name: %s/%s", baseID, table)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("authentication failed: %w", err)
	}
	return err
}

// GetRecord fetches one record by id.
func (c *Client) GetRecord(ctx context.Context, baseID, table, id string) (gridbase.Record, error) {
	var rec gridbase.Record
	status, err := c.do(ctx, http.MethodGet, []string{baseID, table, id}, nil, nil, &rec)
	if status == http.StatusNotFound {
		return gridbase.Record{}, fmt.Errorf("%s/%s/%s: %w", baseID, table, id, ErrNotFound)
	}
	return rec, err
}

// ListPage fetches a single page of records, starting at the given offset.
func (c *Client) ListPage(ctx context.Context, baseID, table string, opts ListOptions, offset string) (gridbase.RecordPage, error) {
	q, err := opts.query(c.pageSize)
	if err != nil {
		return gridbase.RecordPage{}, err
	}
	if offset != "" {
		q.Set("offset", offset)
	}
	var page gridbase.RecordPage
	_, err = c.do(ctx, http.MethodGet, []string{baseID, table}, q, nil, &page)
	return page, err
}

// All fetches every record, following the continuation offset until the
// server stops returning one.
func (c *Client) All(ctx context.Context, baseID, table string, opts ListOptions) ([]gridbase.Record, error) {
	var out []gridbase.Record
	offset := ""
	for {
		page, err := c.ListPage(ctx, baseID, table, opts, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Records...)
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

// Match returns the first record whose wire field equals value.
func (c *Client) Match(ctx context.Context, baseID, table, fieldName string, value any, opts ListOptions) (gridbase.Record, bool, error) {
	records, err := c.All(ctx, baseID, table, opts)
	if err != nil {
		return gridbase.Record{}, false, err
	}
	for _, rec := range records {
		if rec.Fields[fieldName] == value {
			return rec, true, nil
		}
	}
	return gridbase.Record{}, false, nil
}

// Search returns every record whose wire field equals value.
func (c *Client) Search(ctx context.Context, baseID, table, fieldName string, value any, opts ListOptions) ([]gridbase.Record, error) {
	records, err := c.All(ctx, baseID, table, opts)
	if err != nil {
		return nil, err
	}
	var out []gridbase.Record
	for _, rec := range records {
		if rec.Fields[fieldName] == value {
			out = append(out, rec)
		}
	}
	return out, nil
}

// UpdateByField patches the first record whose wire field equals value. It
// reports whether a matching record was found.
func (c *Client) UpdateByField(ctx context.Context, baseID, table, fieldName string, value any, fields map[string]any, opts ListOptions) (gridbase.Record, bool, error) {
	rec, ok, err := c.Match(ctx, baseID, table, fieldName, value, opts)
	if err != nil || !ok {
		return gridbase.Record{}, ok, err
	}
	updated, err := c.UpdateRecord(ctx, baseID, table, rec.ID, fields)
	if err != nil {
		return gridbase.Record{}, true, err
	}
	return updated, true, nil
}

// DeleteByField deletes the first record whose wire field equals value. It
// reports whether a matching record was found.
func (c *Client) DeleteByField(ctx context.Context, baseID, table, fieldName string, value any, opts ListOptions) (bool, error) {
	rec, ok, err := c.Match(ctx, baseID, table, fieldName, value, opts)
	if err != nil || !ok {
		return ok, err
	}
	return true, c.DeleteRecord(ctx, baseID, table, rec.ID)
}

type recordBody struct {
	Fields map[string]any `json:"fields"`
}

// CreateRecord inserts a record and returns the created wire record.
func (c *Client) CreateRecord(ctx context.Context, baseID, table string, fields map[string]any) (gridbase.Record, error) {
	var rec gridbase.Record
	_, err := c.do(ctx, http.MethodPost, []string{baseID, table}, nil, recordBody{Fields: fields}, &rec)
	return rec, err
}

// UpdateRecord patches only the given fields, leaving the rest untouched.
func (c *Client) UpdateRecord(ctx context.Context, baseID, table, id string, fields map[string]any) (gridbase.Record, error) {
	var rec gridbase.Record
	status, err := c.do(ctx, http.MethodPatch, []string{baseID, table, id}, nil, recordBody{Fields: fields}, &rec)
	if status == http.StatusNotFound {
		return gridbase.Record{}, fmt.Errorf("%s/%s/%s: %w", baseID, table, id, ErrNotFound)
	}
	return rec, err
}

// ReplaceRecord overwrites the whole record with the given fields.
func (c *Client) ReplaceRecord(ctx context.Context, baseID, table, id string, fields map[string]any) (gridbase.Record, error) {
	var rec gridbase.Record
	status, err := c.do(ctx, http.MethodPut, []string{baseID, table, id}, nil, recordBody{Fields: fields}, &rec)
	if status == http.StatusNotFound {
		return gridbase.Record{}, fmt.Errorf("%s/%s/%s: %w", baseID, table, id, ErrNotFound)
	}
	return rec, err
}

// DeleteRecord deletes one record by id.
func (c *Client) DeleteRecord(ctx context.Context, baseID, table, id string) error {
	status, err := c.do(ctx, http.MethodDelete, []string{baseID, table, id}, nil, nil, nil)
	if status == http.StatusNotFound {
		return fmt.Errorf("%s/%s/%s: %w", baseID, table, id, ErrNotFound)
	}
	return err
}

// BatchCreate inserts the field sets one request at a time, paced to stay
// under the per-base request rate.
func (c *Client) BatchCreate(ctx context.Context, baseID, table string, fieldSets []map[string]any) ([]gridbase.Record, error) {
	out := make([]gridbase.Record, 0, len(fieldSets))
	for _, fields := range fieldSets {
		if err := c.pace(ctx); err != nil {
			return out, err
		}
		rec, err := c.CreateRecord(ctx, baseID, table, fields)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// BatchDelete deletes records one request at a time, paced like BatchCreate.
func (c *Client) BatchDelete(ctx context.Context, baseID, table string, ids []string) error {
	for _, id := range ids {
		if err := c.pace(ctx); err != nil {
			return err
		}
		if err := c.DeleteRecord(ctx, baseID, table, id); err != nil {
			return err
		}
	}
	return nil
}

// Mirror replaces the table's contents with the given field sets: every
// existing record is deleted and the new records inserted, both through the
// paced batch helpers. It returns the created records.
func (c *Client) Mirror(ctx context.Context, baseID, table string, fieldSets []map[string]any, opts ListOptions) ([]gridbase.Record, error) {
	existing, err := c.All(ctx, baseID, table, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(existing))
	for i, rec := range existing {
		ids[i] = rec.ID
	}
	if err := c.BatchDelete(ctx, baseID, table, ids); err != nil {
		return nil, err
	}
	return c.BatchCreate(ctx, baseID, table, fieldSets)
}

func (c *Client) pace(ctx context.Context) error {
	waited, err := c.pacer.wait(ctx)
	if waited > 0 && c.metrics != nil {
		c.metrics.PacerWaits.Inc()
		c.metrics.PacerWaitTime.Add(waited.Seconds())
	}
	return err
}

func (c *Client) do(ctx context.Context, method string, segments []string, query url.Values, body, out any) (int, error) {
	u := c.baseURL.JoinPath(segments...)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.New().String()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().
			Str("request_id", requestID).
			Str("method", method).
			Str("url", u.Path).
			Err(err).
			Msg("request failed")
		if c.metrics != nil {
			c.metrics.RequestErrors.WithLabelValues(method, "0").Inc()
		}
		return 0, fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", u.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("api request")

	if c.metrics != nil {
		c.metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
		c.metrics.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.metrics != nil {
			c.metrics.RequestErrors.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
		}
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope errorEnvelope
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
		}
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// pacer enforces a minimum interval between calls.
type pacer struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
}

// wait blocks until the interval since the previous call has elapsed,
// returning how long it waited. Cancellation via ctx is honored.
func (p *pacer) wait(ctx context.Context) (time.Duration, error) {
	p.mu.Lock()
	now := time.Now()
	var d time.Duration
	if next := p.last.Add(p.interval); next.After(now) {
		d = next.Sub(now)
	}
	p.last = now.Add(d)
	p.mu.Unlock()

	if d == 0 {
		return 0, nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return d, nil
	case <-ctx.Done():
		return d, ctx.Err()
	}
}
