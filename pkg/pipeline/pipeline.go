// Package pipeline provides the core layout pipeline for foamlayout.
//
// This package implements the complete parse → layout → render pipeline used
// by the CLI and the HTTP server. Both entry points go through the same code so
// a DXF downloaded from the admin pages and an SVG preview shown to a customer
// always come from the same model and the same exporters.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Decode a faces document produced by the tracer
//  2. Layout: Classify loops and build the structured layout model
//  3. Render: Export the model as DXF, SVG or layout JSON
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    DepthIn: 1.5,
//	    Formats: []string{"dxf", "svg"},
//	}
//	result, err := runner.Execute(ctx, facesJSON, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dxf := result.Artifacts["dxf"]
//
// Run individual stages:
//
//	// Layout only
//	model, err := runner.Build(ctx, facesJSON, opts)
//
//	// Render an existing model
//	artifacts, err := runner.Render(ctx, model, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foamlayout/pkg/cache"
	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/export/dxf"
	"github.com/matzehuels/foamlayout/pkg/export/svg"
	"github.com/matzehuels/foamlayout/pkg/layout"
	"github.com/matzehuels/foamlayout/pkg/shape"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultDepthIn is the cavity depth used when none is given.
	DefaultDepthIn = layout.DefaultDepthIn

	// DefaultThicknessIn is the block thickness used when none is given.
	DefaultThicknessIn = layout.DefaultThicknessIn

	// DefaultFallback stores irregular loops as polygons.
	DefaultFallback = "poly"
)

// Format constants for output formats.
const (
	FormatDXF  = "dxf"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDXF:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidFallbacks is the set of accepted fallback policy names.
var ValidFallbacks = map[string]bool{
	"poly": true,
	"bbox": true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Units       string  `json:"units,omitempty"` // Overrides the document's units ("in" or "mm")
	DepthIn     float64 `json:"depth_in,omitempty"`
	ThicknessIn float64 `json:"thickness_in,omitempty"`
	Fallback    string  `json:"fallback,omitempty"` // "poly" (default) or "bbox"
	Refresh     bool    `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Layer   *int     `json:"layer,omitempty"`   // nil: every layer for DXF, the first for SVG
	Labels  bool     `json:"labels,omitempty"`  // SVG cavity labels
	Circles bool     `json:"circles,omitempty"` // DXF CIRCLE and polygon entities

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Model is the built layout.
	Model layout.Model

	// FacesHash is the content hash of the input document.
	FacesHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cavities   int
	Layers     int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the model came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dxf, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFallback checks that a fallback policy name is valid.
func ValidateFallback(name string) error {
	if !ValidFallbacks[name] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid fallback: %q (must be one of: poly, bbox)", name)
	}
	return nil
}

// ValidateUnits checks a units override. Empty keeps the document's units.
func ValidateUnits(u string) error {
	switch u {
	case "", "in", "mm":
		return nil
	}
	return errors.New(errors.ErrCodeInvalidUnits, "invalid units: %q (must be in or mm)", u)
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for model building.
func (o *Options) SetLayoutDefaults() {
	if o.DepthIn == 0 {
		o.DepthIn = DefaultDepthIn
	}
	if o.ThicknessIn == 0 {
		o.ThicknessIn = DefaultThicknessIn
	}
	if o.Fallback == "" {
		o.Fallback = DefaultFallback
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for model building.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateUnits(o.Units); err != nil {
		return err
	}
	if o.DepthIn < 0 || o.ThicknessIn < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth and thickness must be positive")
	}
	return ValidateFallback(o.Fallback)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDXF}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Layer != nil && *o.Layer < 0 {
		return errors.New(errors.ErrCodeInvalidLayer, "layer must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// LayoutOptions returns the builder options for these settings.
func (o *Options) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithDepth(o.DepthIn),
		layout.WithThickness(o.ThicknessIn),
		layout.WithFallback(shape.ParsePolicy(o.Fallback)),
	}
}

// DXFOptions returns the exporter options for DXF output.
func (o *Options) DXFOptions() []dxf.Option {
	var opts []dxf.Option
	if o.Layer != nil {
		opts = append(opts, dxf.ForLayer(*o.Layer))
	}
	if o.Circles {
		opts = append(opts, dxf.WithCircles(), dxf.WithPolylines(), dxf.WithChamferOutline())
	}
	return opts
}

// SVGOptions returns the exporter options for SVG output.
func (o *Options) SVGOptions() []svg.Option {
	var opts []svg.Option
	if o.Layer != nil {
		opts = append(opts, svg.ForLayer(*o.Layer))
	}
	if o.Labels {
		opts = append(opts, svg.WithLabels())
	}
	return opts
}

// ModelKeyOpts returns cache key options for model building.
func (o *Options) ModelKeyOpts() cache.ModelKeyOpts {
	return cache.ModelKeyOpts{
		Units:       o.Units,
		DepthIn:     o.DepthIn,
		ThicknessIn: o.ThicknessIn,
		Fallback:    o.Fallback,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Layer: -1}
	if o.Layer != nil {
		k.Layer = *o.Layer
	}
	switch format {
	case FormatSVG:
		k.Labels = o.Labels
	case FormatDXF:
		k.Circles = o.Circles
	}
	return k
}
