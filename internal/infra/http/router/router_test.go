package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leaddialer/internal/infra/callstore"
	"github.com/xavierca1/leaddialer/internal/infra/http/handlers"
	"github.com/xavierca1/leaddialer/internal/infra/sheets"
	"github.com/xavierca1/leaddialer/internal/usecase"
	"github.com/xavierca1/leaddialer/internal/web"
)

type sheetFake struct {
	mu     sync.Mutex
	values [][]string
}

func (s *sheetFake) ReadTable(context.Context) (*sheets.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([][]string, len(s.values))
	for i, row := range s.values {
		cp[i] = append([]string(nil), row...)
	}
	return sheets.NewTable("Leads", cp), nil
}

func (s *sheetFake) WriteRow(_ context.Context, _ string, rowNumber int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[rowNumber-1] = append([]string(nil), values...)
	return nil
}

func (s *sheetFake) snapshot() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([][]string, len(s.values))
	for i, row := range s.values {
		cp[i] = append([]string(nil), row...)
	}
	return cp
}

type dialerFake struct {
	mu       sync.Mutex
	dialed   []string
	callback string
}

func (d *dialerFake) PlaceCall(_ context.Context, to, callbackURL string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialed = append(d.dialed, to)
	d.callback = callbackURL
	return "CA0001", nil
}

type twimlFake struct{}

func (twimlFake) Instructions() (string, error) {
	return `<?xml version="1.0" encoding="UTF-8"?><Response><Say>Hi</Say></Response>`, nil
}

type env struct {
	srv    *httptest.Server
	sheet  *sheetFake
	dialer *dialerFake
}

func newEnv(t *testing.T) *env {
	t.Helper()
	sheet := &sheetFake{values: [][]string{
		{"name", "phone", "email", "status", "lastContact", "notes"},
		{"Jane Doe", "+15551234567", "jane@example.com", "New", "", ""},
	}}
	dialer := &dialerFake{}

	store, err := callstore.NewMemoryStore(100, time.Hour)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	svc := usecase.NewLeadService(
		sheets.NewLeadRepository(sheet, nil),
		dialer,
		store,
		nil,
		"https://dialer.example.com/api/calls/twiml",
		nil,
	)

	h := New(Deps{
		Leads:        handlers.NewLeadHandler(svc, nil),
		Calls:        handlers.NewCallHandler(svc, twimlFake{}, nil),
		Health:       handlers.NewHealthHandler(nil, nil, nil, true, false),
		UI:           web.Handler(),
		AllowOrigins: []string{"*"},
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &env{srv: srv, sheet: sheet, dialer: dialer}
}

func (e *env) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (e *env) post(t *testing.T, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(e.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) (*http.Response, []byte) {
	t.Helper()
	defer resp.Body.Close()
	var raw json.RawMessage
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&raw); err != nil {
		return resp, nil
	}
	return resp, raw
}

func TestCallLifecycle(t *testing.T) {
	e := newEnv(t)
	before := time.Now().UTC().Truncate(time.Millisecond)

	resp, body := e.get(t, "/api/leads")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"id":1,"name":"Jane Doe","phone":"+15551234567","email":"jane@example.com","status":"New"}]`, string(body))

	resp, body = e.post(t, "/api/calls/start", `{"leadId":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"callSid":"CA0001"}`, string(body))
	assert.Equal(t, []string{"+15551234567"}, e.dialer.dialed)
	assert.Equal(t, "https://dialer.example.com/api/calls/twiml", e.dialer.callback)

	resp, body = e.get(t, "/api/calls/1/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"started"`)

	resp, body = e.post(t, "/api/calls/end", `{"leadId":"1","notes":"left voicemail","duration":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))

	resp, body = e.get(t, "/api/leads/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lead struct {
		Status      string `json:"status"`
		Notes       string `json:"notes"`
		LastContact string `json:"lastContact"`
	}
	require.NoError(t, json.Unmarshal(body, &lead))
	assert.Equal(t, "Contacted", lead.Status)
	assert.Equal(t, "left voicemail", lead.Notes)
	contacted, err := time.Parse(time.RFC3339Nano, lead.LastContact)
	require.NoError(t, err)
	assert.False(t, contacted.Before(before))

	resp, body = e.get(t, "/api/calls/1/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ended"`)
}

func TestUnknownLeadLeavesSheetUntouched(t *testing.T) {
	e := newEnv(t)
	before := e.sheet.snapshot()

	resp, body := e.post(t, "/api/calls/end", `{"leadId":"99","notes":"x","duration":0}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Lead not found"}`, string(body))

	resp, _ = e.post(t, "/api/calls/start", `{"leadId":"99"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, e.dialer.dialed)

	resp, _ = e.get(t, "/api/leads/99")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, before, e.sheet.snapshot())
}

func TestSecondEndCallWins(t *testing.T) {
	e := newEnv(t)

	resp, _ := e.post(t, "/api/calls/end", `{"leadId":1,"notes":"first","duration":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.post(t, "/api/calls/end", `{"leadId":1,"notes":"second","duration":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "second", e.sheet.snapshot()[1][5])
}

func TestInvalidJSON(t *testing.T) {
	e := newEnv(t)

	resp, body := e.post(t, "/api/calls/start", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid JSON"}`, string(body))
}

func TestTwiMLAndAuxiliaryRoutes(t *testing.T) {
	e := newEnv(t)

	resp, err := http.Post(e.srv.URL+"/api/calls/twiml", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))

	resp, _ = e.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(e.srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.get(t, "/api/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(e.srv.URL + "/call/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
