// Package engine chains the pure stages of the group hierarchy engine the
// way a command layer is expected to: validation → mutation → visibility →
// synthetic edges, with layout and halos computed on demand.
//
// The package owns the command contract shared by every caller (a CLI, a
// REST command layer, an AI tool-execution layer): each mutation returns a
// [Result] with a success flag and, on failure, a message naming the
// offending IDs. Validation failures never surface as Go errors - they come
// from user- or assistant-driven requests that must be reported, not crashed
// on.
//
// A [Runner] is stateless except for its cache and logger, so multiple
// goroutines can share one Runner across independent flow snapshots.
package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowkit/pkg/cache"
	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/group"
	"github.com/matzehuels/flowkit/pkg/layout"
	"github.com/matzehuels/flowkit/pkg/observability"
	"github.com/matzehuels/flowkit/pkg/view"
)

// TTLLayout is how long cached layouts stay valid.
const TTLLayout = 7 * 24 * time.Hour

// =============================================================================
// Result - Command Contract
// =============================================================================

// Result is the uniform outcome shape of every mutating operation, shared by
// all entry points.
type Result struct {
	Success     bool       `json:"success"`
	Error       string     `json:"error,omitempty"`
	UpdatedFlow *flow.Flow `json:"updatedFlow,omitempty"`
	GroupID     string     `json:"groupId,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Error: errors.UserMessage(err)}
}

// LayoutInfo reports how a layout call resolved.
type LayoutInfo struct {
	// Changed is false when the computed positions match the input exactly,
	// which lets callers skip persisting an identical result.
	Changed bool
	// CacheHit is true when the layout came from the cache.
	CacheHit bool
	Duration time.Duration
}

// =============================================================================
// Runner
// =============================================================================

// Runner executes engine passes with caching for the derived layout.
//
// The Runner is stateless except for the cache and logger - it never stores
// flows. Multiple goroutines can safely share a Runner over independent flow
// snapshots; serializing writes of the results is the caller's concern.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Opts   Options
}

// NewRunner creates a runner with the given cache, keyer, and options.
// A nil cache disables caching, a nil keyer selects the DefaultKeyer, and a
// nil logger in opts discards engine logs.
func NewRunner(c cache.Cache, keyer cache.Keyer, opts Options) (*Runner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: opts.Logger, Opts: opts}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Mutations
// =============================================================================

// CreateGroup validates the membership, creates the group, and recomputes
// the derived state. On success the Result carries the updated flow and the
// group's ID (generated when opts.GroupID was empty).
func (r *Runner) CreateGroup(ctx context.Context, f flow.Flow, opts group.CreateOptions) Result {
	return r.mutate(ctx, "create_group", opts.GroupID, func() (flow.Flow, string, error) {
		return group.Create(f, opts)
	})
}

// Ungroup dissolves the group, re-parenting members one level up, and
// recomputes the derived state.
func (r *Runner) Ungroup(ctx context.Context, f flow.Flow, groupID string) Result {
	return r.mutate(ctx, "ungroup", groupID, func() (flow.Flow, string, error) {
		out, err := group.Ungroup(f, groupID)
		return out, groupID, err
	})
}

// ToggleExpansion flips or sets the collapsed state of the group and
// recomputes the derived state. A nil collapsed toggles the current value.
func (r *Runner) ToggleExpansion(ctx context.Context, f flow.Flow, groupID string, collapsed *bool) Result {
	return r.mutate(ctx, "toggle_expansion", groupID, func() (flow.Flow, string, error) {
		out, err := group.Toggle(f, groupID, collapsed)
		return out, groupID, err
	})
}

func (r *Runner) mutate(ctx context.Context, op, groupID string, apply func() (flow.Flow, string, error)) Result {
	start := time.Now()
	observability.Engine().OnMutationStart(ctx, op, groupID)

	out, id, err := apply()
	if err != nil {
		observability.Engine().OnMutationComplete(ctx, op, groupID, time.Since(start), err)
		r.Logger.Warn("mutation rejected", "op", op, "group", groupID, "reason", errors.UserMessage(err))
		return failure(err)
	}

	out, _ = r.Recompute(ctx, out)
	observability.Engine().OnMutationComplete(ctx, op, id, time.Since(start), nil)
	r.Logger.Debug("mutation applied", "op", op, "group", id, "duration", time.Since(start).Round(time.Millisecond))

	return Result{Success: true, UpdatedFlow: &out, GroupID: id}
}

// =============================================================================
// Derived State
// =============================================================================

// Recompute rebuilds all derived state of the flow from scratch: the
// synthetic boundary edges are rederived from the real edges alone, then
// visibility flags are recomputed over the combined edge set. The returned
// bool is false when nothing changed, i.e. when the flow was already the
// fixed point of this pass - that is the idempotence signal callers use to
// skip persistence.
func (r *Runner) Recompute(ctx context.Context, f flow.Flow) (flow.Flow, bool) {
	observability.Engine().OnRecomputeStart(ctx, len(f.Nodes), len(f.Edges))
	start := time.Now()

	realEdges := make([]flow.Edge, 0, len(f.Edges))
	for _, e := range f.Edges {
		if !e.IsSynthetic {
			realEdges = append(realEdges, e)
		}
	}

	synthetic := view.ComputeSyntheticEdges(f.Nodes, realEdges)
	edges := append(realEdges, synthetic...)
	nodes, edges := view.ApplyVisibility(f.Nodes, edges)

	out := flow.Flow{Nodes: nodes, Edges: edges}
	changed := !derivedEqual(f, out)

	observability.Engine().OnRecomputeComplete(ctx, len(synthetic), changed, time.Since(start))
	return out, changed
}

// derivedEqual reports whether two flows carry identical derived state:
// the same synthetic boundary-edge key set and the same visibility flags
// per node and edge.
func derivedEqual(a, b flow.Flow) bool {
	if !view.SameEdgeKeys(a.Edges, b.Edges) || len(a.Edges) != len(b.Edges) {
		return false
	}
	if len(a.Nodes) != len(b.Nodes) {
		return false
	}

	type vis struct{ hidden, groupHidden bool }
	nodeVis := make(map[string]vis, len(a.Nodes))
	for _, n := range a.Nodes {
		nodeVis[n.ID] = vis{n.Hidden, n.GroupHidden}
	}
	for _, n := range b.Nodes {
		if nodeVis[n.ID] != (vis{n.Hidden, n.GroupHidden}) {
			return false
		}
	}

	edgeVis := make(map[string]vis, len(a.Edges))
	for _, e := range a.Edges {
		edgeVis[e.ID] = vis{e.Hidden, e.GroupHidden}
	}
	for _, e := range b.Edges {
		if v, ok := edgeVis[e.ID]; !ok || v != (vis{e.Hidden, e.GroupHidden}) {
			return false
		}
	}
	return true
}

// Halos computes the padded bounds of every expanded, visible group in the
// flow, smallest area first. Recompute must have run on the flow for the
// hidden flags to be current.
func (r *Runner) Halos(f flow.Flow) []view.Halo {
	return view.ComputeHalos(f.Nodes, r.Opts.Dimensions, r.Opts.Padding)
}

// =============================================================================
// Layout
// =============================================================================

// Layout positions the visible subset of the flow, consulting the cache
// first. The cache key covers the flow content, the direction, and the
// spacing, so any input change recomputes. Hidden nodes keep their stored
// positions verbatim.
func (r *Runner) Layout(ctx context.Context, f flow.Flow) (flow.Flow, LayoutInfo, error) {
	start := time.Now()
	observability.Engine().OnLayoutStart(ctx, r.Opts.Direction, len(f.Nodes))

	flowData, err := flow.Marshal(f)
	if err != nil {
		return flow.Flow{}, LayoutInfo{}, errors.Wrap(errors.ErrCodeInternal, err, "serialize flow for cache key")
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(flowData), r.Opts.layoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if cached, err := flow.Unmarshal(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			info := LayoutInfo{Changed: !samePositions(f, cached), CacheHit: true, Duration: time.Since(start)}
			observability.Engine().OnLayoutComplete(ctx, r.Opts.Direction, info.Duration, nil)
			return cached, info, nil
		}
		// Fall through to recompute on a corrupt entry.
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	out, err := layout.Build(f.Nodes, f.Edges, r.Opts.Direction, r.Opts.layoutOptions())
	if err != nil {
		observability.Engine().OnLayoutComplete(ctx, r.Opts.Direction, time.Since(start), err)
		return flow.Flow{}, LayoutInfo{}, err
	}

	if data, err := flow.Marshal(out); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	info := LayoutInfo{Changed: !samePositions(f, out), Duration: time.Since(start)}
	observability.Engine().OnLayoutComplete(ctx, r.Opts.Direction, info.Duration, nil)
	r.Logger.Debug("computed layout",
		"direction", r.Opts.Direction,
		"nodes", len(f.Nodes),
		"changed", info.Changed,
		"duration", info.Duration.Round(time.Millisecond))
	return out, info, nil
}

// samePositions reports whether every node keeps the same position across
// the two flows.
func samePositions(a, b flow.Flow) bool {
	if len(a.Nodes) != len(b.Nodes) {
		return false
	}
	pos := make(map[string]flow.Position, len(a.Nodes))
	for _, n := range a.Nodes {
		pos[n.ID] = n.Position
	}
	for _, n := range b.Nodes {
		if p, ok := pos[n.ID]; !ok || p != n.Position {
			return false
		}
	}
	return true
}
