package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/export/dxf"
	"github.com/matzehuels/foamlayout/pkg/export/svg"
	"github.com/matzehuels/foamlayout/pkg/layout"
	"github.com/matzehuels/foamlayout/pkg/observability"
	"github.com/matzehuels/foamlayout/pkg/pipeline"
	"github.com/matzehuels/foamlayout/pkg/store"
)

const sampleFaces = `{
  "units": "in",
  "loops": [
    {"points": [{"x": 0, "y": 0}, {"x": 12, "y": 0}, {"x": 12, "y": 8}, {"x": 0, "y": 8}]},
    {"points": [{"x": 1, "y": 1}, {"x": 4, "y": 1}, {"x": 4, "y": 3}, {"x": 1, "y": 3}]},
    {"points": [{"x": 6, "y": 2}, {"x": 10, "y": 2}, {"x": 10, "y": 7}, {"x": 6, "y": 7}]}
  ]
}`

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	st := store.NewMemory()
	srv := New(pipeline.NewRunner(nil, nil, logger), st, WithLogger(logger))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func errorCode(t *testing.T, data []byte) errors.Code {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode error body %q: %v", data, err)
	}
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, data := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(data), `"version":"dev"`) {
		t.Errorf("health body = %s", data)
	}
}

func TestBuildLayout(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, data := do(t, http.MethodPost, ts.URL+"/api/v1/layouts?depth_in=1.5", sampleFaces)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, data)
	}
	got, err := layout.Unmarshal(data)
	if err != nil {
		t.Fatalf("decode layout: %v", err)
	}

	want, err := pipeline.NewRunner(nil, nil, nil).Build(context.Background(), []byte(sampleFaces), pipeline.Options{DepthIn: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildLayoutErrors(t *testing.T) {
	ts, _ := newTestServer(t)
	tests := []struct {
		name  string
		query string
		body  string
		code  errors.Code
	}{
		{"malformed json", "", `{"loops": [`, errors.ErrCodeInvalidFormat},
		{"empty body", "", "", errors.ErrCodeInvalidInput},
		{"bad depth", "?depth_in=deep", sampleFaces, errors.ErrCodeInvalidInput},
		{"bad units", "?units=ft", sampleFaces, errors.ErrCodeInvalidUnits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, http.MethodPost, ts.URL+"/api/v1/layouts"+tt.query, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if got := errorCode(t, data); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestSaveAndDownloadsAgree(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, data := do(t, http.MethodPost, ts.URL+"/api/v1/layouts?save=1", sampleFaces)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, data)
	}
	var p store.Package
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatal(err)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/v1/packages/"+p.ID {
		t.Errorf("Location = %q", loc)
	}

	modelJSON, err := layout.Marshal(p.Layout)
	if err != nil {
		t.Fatal(err)
	}

	// Admin cut file, customer preview and the export route all agree.
	resp, adminDXF := do(t, http.MethodGet, ts.URL+"/admin/packages/"+p.ID+"/layout.dxf", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/dxf" {
		t.Fatalf("admin dxf status = %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	_, exportDXF := do(t, http.MethodPost, ts.URL+"/api/v1/export/dxf", string(modelJSON))
	if !bytes.Equal(adminDXF, exportDXF) {
		t.Error("admin DXF differs from export route")
	}
	if !bytes.Equal(adminDXF, dxf.Render(p.Layout)) {
		t.Error("admin DXF differs from exporter output")
	}

	resp, preview := do(t, http.MethodGet, ts.URL+"/quote/"+p.ID+"/preview.svg", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("preview status = %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.Equal(preview, svg.Render(p.Layout)) {
		t.Error("preview SVG differs from exporter output")
	}

	// Layer selection re-renders from the stored layout.
	_, layerDXF := do(t, http.MethodGet, ts.URL+"/admin/packages/"+p.ID+"/layout.dxf?layer=0", "")
	if !bytes.Equal(layerDXF, dxf.Render(p.Layout, dxf.ForLayer(0))) {
		t.Error("layer 0 DXF differs from exporter output")
	}
	resp, data = do(t, http.MethodGet, ts.URL+"/quote/"+p.ID+"/preview.svg?layer=4", "")
	if resp.StatusCode != http.StatusBadRequest || errorCode(t, data) != errors.ErrCodeInvalidLayer {
		t.Errorf("layer 4 status = %d, body %s", resp.StatusCode, data)
	}
}

func TestPackages(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()

	m := layout.Default()
	older := store.NewPackage(m)
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := store.NewPackage(m)
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	for _, p := range []*store.Package{older, newer} {
		if err := st.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	resp, data := do(t, http.MethodGet, ts.URL+"/api/v1/packages", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var list []store.Package
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("list = %+v, want newest first", list)
	}

	resp, data = do(t, http.MethodGet, ts.URL+"/api/v1/packages/"+older.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var got store.Package
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != older.ID || got.DXFText != older.DXFText {
		t.Error("get returned a different package")
	}

	tests := []struct {
		path   string
		status int
		code   errors.Code
	}{
		{"/api/v1/packages/missing", http.StatusNotFound, errors.ErrCodePackageNotFound},
		{"/api/v1/packages/bad.id", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"/admin/packages/missing/layout.dxf", http.StatusNotFound, errors.ErrCodePackageNotFound},
		{"/api/v1/packages?limit=-1", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		resp, data := do(t, http.MethodGet, ts.URL+tt.path, "")
		if resp.StatusCode != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.status)
			continue
		}
		if got := errorCode(t, data); got != tt.code {
			t.Errorf("GET %s code = %q, want %q", tt.path, got, tt.code)
		}
	}
}

func TestExport(t *testing.T) {
	ts, _ := newTestServer(t)
	m := layout.Default()
	body, err := layout.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}

	resp, data := do(t, http.MethodPost, ts.URL+"/api/v1/export/svg?labels=1", string(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !bytes.Equal(data, svg.Render(m, svg.WithLabels())) {
		t.Error("export SVG differs from exporter output")
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/api/v1/export/png", string(body))
	if resp.StatusCode != http.StatusBadRequest || errorCode(t, data) != errors.ErrCodeInvalidFormat {
		t.Errorf("png status = %d, body %s", resp.StatusCode, data)
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/api/v1/export/dxf?layer=top", string(body))
	if resp.StatusCode != http.StatusBadRequest || errorCode(t, data) != errors.ErrCodeInvalidLayer {
		t.Errorf("layer=top status = %d, body %s", resp.StatusCode, data)
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/v1/export/dxf", "not json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", resp.StatusCode)
	}
}

func TestExportNoOutput(t *testing.T) {
	ts, _ := newTestServer(t)
	m := layout.Default()
	m.Block.LengthIn = 0
	body, err := layout.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}

	resp, data := do(t, http.MethodPost, ts.URL+"/api/v1/export/svg", string(body))
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if len(data) != 0 {
		t.Errorf("204 response has body %q", data)
	}
}

type recordingHooks struct {
	observability.NoopServerHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHooks) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	ts, _ := newTestServer(t)
	do(t, http.MethodGet, ts.URL+"/quote/missing/preview.svg", "")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	want := []string{"GET /quote/{id}/preview.svg"}
	if diff := cmp.Diff(want, hooks.routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}
