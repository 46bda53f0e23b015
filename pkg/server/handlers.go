package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/foamlayout/pkg/buildinfo"
	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/layout"
	"github.com/matzehuels/foamlayout/pkg/pipeline"
	"github.com/matzehuels/foamlayout/pkg/store"
)

var contentTypes = map[string]string{
	pipeline.FormatDXF:  "application/dxf",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	opts, err := s.buildOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	m, err := s.runner.Build(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !queryBool(r, "save") {
		writeLayout(w, http.StatusOK, m)
		return
	}

	p := store.NewPackage(m)
	if err := s.store.Save(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/packages/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	m, err := layout.Read(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout"))
		return
	}
	opts, err := renderOptions(r, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	artifacts, err := s.runner.Render(r.Context(), m, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeArtifact(w, format, artifacts[format])
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}
	packages, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if packages == nil {
		packages = []*store.Package{}
	}
	writeJSON(w, http.StatusOK, packages)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	p, err := s.loadPackage(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePackageArtifact serves a stored package's DXF or SVG.
func (s *Server) handlePackageArtifact(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.loadPackage(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if !r.URL.Query().Has("layer") {
			stored := p.DXFText
			if format == pipeline.FormatSVG {
				stored = p.SVGText
			}
			writeArtifact(w, format, []byte(stored))
			return
		}

		opts, err := renderOptions(r, format)
		if err != nil {
			s.writeError(w, err)
			return
		}
		artifacts, err := s.runner.Render(r.Context(), p.Layout, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeArtifact(w, format, artifacts[format])
	}
}

func (s *Server) loadPackage(r *http.Request) (*store.Package, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidatePackageID(id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

// buildOptions reads layout options from the query, falling back to the
// configured defaults.
func (s *Server) buildOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Units:       q.Get("units"),
		DepthIn:     s.defaults.DepthIn,
		ThicknessIn: s.defaults.ThicknessIn,
		Fallback:    s.defaults.Fallback,
		Refresh:     queryBool(r, "refresh"),
	}
	if v := q.Get("fallback"); v != "" {
		opts.Fallback = v
	}
	var err error
	if opts.DepthIn, err = queryFloat(r, "depth_in", opts.DepthIn); err != nil {
		return opts, err
	}
	if opts.ThicknessIn, err = queryFloat(r, "thickness_in", opts.ThicknessIn); err != nil {
		return opts, err
	}
	return opts, nil
}

func renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Formats: []string{format},
		Labels:  queryBool(r, "labels"),
		Circles: queryBool(r, "circles"),
	}
	if v := r.URL.Query().Get("layer"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidLayer, "invalid layer: %q", v)
		}
		opts.Layer = &n
	}
	return opts, nil
}

func queryBool(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", key, v)
	}
	return f, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	var body errorBody
	body.Error.Code = code
	if code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeLayout(w http.ResponseWriter, status int, m layout.Model) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = layout.Write(m, w)
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	if len(data) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
