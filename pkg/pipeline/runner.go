package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/cache"
	"github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/loader"
	"github.com/matzehuels/accessmap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, loader and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Loader *loader.Loader

	// ArtifactTTL is how long rendered artifacts stay cached.
	ArtifactTTL time.Duration
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
		Loader: loader.New(nil, c, keyer, logger),

		ArtifactTTL: cache.ArtifactTTL,
	}
}

// Execute runs load → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	loadStart := time.Now()
	a, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Atlas = a
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Regions = len(a.Features)
	result.Stats.Joined = a.Report.Joined
	result.Stats.Dropped = len(a.Report.Dropped)

	r.Logger.Info("loaded map data",
		"regions", result.Stats.Regions,
		"joined", result.Stats.Joined,
		"dropped", result.Stats.Dropped,
		"duration", result.Stats.LoadTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, a, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"filter", opts.String(),
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load fetches both resources and joins them into an atlas.
func (r *Runner) Load(ctx context.Context, opts Options) (*atlas.Atlas, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Topology, opts.Data)
	start := time.Now()

	a, err := r.load(ctx, opts)
	regions := 0
	if a != nil {
		regions = a.Report.Joined
	}
	hooks.OnLoadComplete(ctx, regions, time.Since(start), err)
	return a, err
}

func (r *Runner) load(ctx context.Context, opts Options) (*atlas.Atlas, error) {
	res, err := r.Loader.Load(ctx, opts.Source())
	if err != nil {
		return nil, err
	}

	var atlasOpts []atlas.Option
	if opts.Warn {
		atlasOpts = append(atlasOpts, atlas.WithLogger(r.Logger))
	}
	a, err := atlas.New(res.Topology, res.Records, res.Hash, atlasOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTopology, err, "join %s", opts.Topology)
	}
	return a, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, a *atlas.Atlas, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(a.Hash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			cacheHooks.OnCacheMiss(ctx, observability.KeyTypeArtifact)
			break
		}
		cacheHooks.OnCacheHit(ctx, observability.KeyTypeArtifact)
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	pipelineHooks := observability.Pipeline()
	pipelineHooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, a, opts)
	pipelineHooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(a.Hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ArtifactTTL); err != nil {
			r.Logger.Debug("cache artifact", "format", format, "error", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, observability.KeyTypeArtifact, len(data))
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, a *atlas.Atlas, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, a, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
