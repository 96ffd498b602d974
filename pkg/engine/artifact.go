package engine

import (
	"context"
	"time"

	"github.com/matzehuels/flowkit/pkg/cache"
	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/observability"
	"github.com/matzehuels/flowkit/pkg/render"
)

// TTLArtifact is how long cached rendered artifacts stay valid.
const TTLArtifact = 7 * 24 * time.Hour

// Artifact renders the flow in the given format, consulting the cache for
// SVG and PNG output. The cache key covers the flow content and every render
// option that changes the bytes, so any input change re-renders. DOT text is
// deterministic and cheap to regenerate, so it bypasses the cache. The bool
// reports whether the artifact came from the cache.
//
// Run Recompute on the flow first so the visibility flags the renderer
// filters on are current.
func (r *Runner) Artifact(ctx context.Context, f flow.Flow, format string, opts render.Options) ([]byte, bool, error) {
	switch format {
	case render.FormatDOT, render.FormatSVG, render.FormatPNG:
	default:
		return nil, false, errors.New(errors.ErrCodeUnsupported, "unsupported render format: %q", format)
	}

	if format == render.FormatDOT {
		return []byte(render.ToDOT(f, opts)), false, nil
	}

	flowData, err := flow.Marshal(f)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize flow for cache key")
	}
	cacheKey := r.Keyer.ArtifactKey(cache.Hash(flowData), cache.ArtifactKeyOpts{
		Format:    format,
		Direction: opts.Direction,
		ShowHalos: opts.ShowHalos,
		Detailed:  opts.Detailed,
	})

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	start := time.Now()
	dot := render.ToDOT(f, opts)

	var out []byte
	switch format {
	case render.FormatSVG:
		out, err = render.RenderSVG(ctx, dot)
	case render.FormatPNG:
		out, err = render.RenderPNG(ctx, dot)
	}
	if err != nil {
		return nil, false, err
	}

	_ = r.Cache.Set(ctx, cacheKey, out, TTLArtifact)
	observability.Cache().OnCacheSet(ctx, "artifact", len(out))
	r.Logger.Debug("rendered artifact",
		"format", format,
		"bytes", len(out),
		"duration", time.Since(start).Round(time.Millisecond))
	return out, false, nil
}
