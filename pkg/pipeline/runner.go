package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/foamlayout/pkg/cache"
	"github.com/matzehuels/foamlayout/pkg/layout"
	"github.com/matzehuels/foamlayout/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the cache package's entry lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, facesJSON []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{FacesHash: cache.Hash(facesJSON)}

	// Stages 1 and 2: Parse and layout
	layoutStart := time.Now()
	m, layoutHit, err := r.BuildWithCacheInfo(ctx, facesJSON, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Model = m
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Cavities = len(m.Cavities)
	result.Stats.Layers = len(m.Stack)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("built layout",
		"block", layout.BlockLabel(m.Block),
		"cavities", len(m.Cavities),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, m, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo parses facesJSON and builds its layout model, returning
// whether the model came from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, facesJSON []byte, opts Options) (layout.Model, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Model{}, false, err
	}

	cacheKey := r.Keyer.ModelKey(cache.Hash(facesJSON), opts.ModelKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if m, err := layout.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "model")
				return m, true, nil
			}
			// If deserialization fails, fall through to rebuild
		}
		observability.Cache().OnCacheMiss(ctx, "model")
	}

	doc, err := Parse(facesJSON, opts)
	if err != nil {
		return layout.Model{}, false, err
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnBuildStart(ctx, doc.Units, len(doc.Loops))
	m := GenerateLayout(doc, opts)
	hooks.OnBuildComplete(ctx, len(m.Cavities), time.Since(start), nil)

	if data, err := layout.Marshal(m); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.ModelTTL)); err != nil {
			r.Logger.Debug("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "model", len(data))
		}
	}

	return m, false, nil
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, facesJSON []byte, opts Options) (layout.Model, error) {
	m, _, err := r.BuildWithCacheInfo(ctx, facesJSON, opts)
	return m, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m layout.Model, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from the model's canonical JSON
	modelData, err := layout.Marshal(m)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	modelHash := cache.Hash(modelData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(modelHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnExportStart(ctx, opts.Formats)
	rendered, err := Render(m, opts)
	hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(modelHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.ArtifactTTL)); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, m layout.Model, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, m, opts)
	return artifacts, err
}

// ExportLayers renders one file per stack layer. Layers are rendered
// concurrently and are not cached.
func (r *Runner) ExportLayers(ctx context.Context, m layout.Model, format string, opts Options) ([][]byte, error) {
	r.applyLogger(&opts)
	start := time.Now()
	out, err := RenderLayers(ctx, m, format, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("exported layers", "format", format, "layers", len(out), "duration", time.Since(start))
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}
