package layout

import (
	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
)

// =============================================================================
// Options
// =============================================================================

// Spacing controls the distances the layout leaves between placed nodes.
type Spacing struct {
	// NodeSep is the gap between adjacent nodes within a rank,
	// along the perpendicular axis.
	NodeSep float64 `toml:"node_sep" json:"nodeSep"`
	// RankSep is the gap between consecutive ranks along the primary axis.
	RankSep float64 `toml:"rank_sep" json:"rankSep"`
	// ComponentSep is the gap between independently laid out components.
	ComponentSep float64 `toml:"component_sep" json:"componentSep"`
}

// DefaultSpacing is used when no spacing is configured.
var DefaultSpacing = Spacing{
	NodeSep:      40,
	RankSep:      120,
	ComponentSep: 80,
}

// Options configures Build.
type Options struct {
	// Spacing overrides DefaultSpacing when non-zero.
	Spacing Spacing
	// Dimensions resolves node sizes. Defaults to a fixed 150x40 box.
	Dimensions flow.DimensionsFunc
	// OrderingPasses bounds the crossing-reduction sweeps. Defaults to 4.
	OrderingPasses int
}

const (
	defaultNodeWidth  = 150
	defaultNodeHeight = 40
	defaultPasses     = 4
)

func (o *Options) setDefaults() {
	if o.Spacing == (Spacing{}) {
		o.Spacing = DefaultSpacing
	}
	if o.Dimensions == nil {
		o.Dimensions = flow.FixedDimensions(defaultNodeWidth, defaultNodeHeight)
	}
	if o.OrderingPasses <= 0 {
		o.OrderingPasses = defaultPasses
	}
}

// =============================================================================
// Build - Layered Layout of the Visible Subset
// =============================================================================

// Build assigns coordinates to every visible node using a rank-based layered
// layout keyed on the visible real and synthetic edges. Hidden nodes pass
// through with their prior positions preserved verbatim, and edges are
// returned unchanged.
//
// Nodes are assigned to discrete ranks along the primary axis by longest
// path from the sources; the perpendicular axis minimizes edge crossings.
// Two guarantees hold on the result:
//
//   - A simple chain stays straight: when node P has exactly one visible
//     outgoing edge to node C, C is P's only parent supply, and nothing else
//     in C's rank claims the spot, C sits at the same perpendicular
//     coordinate as P.
//   - Any secondary compaction is keyed on the rank assigned by this layout,
//     never on a separately recomputed intra-group traversal, so a group
//     member whose only incoming edge crosses a group boundary is not
//     misclassified as a root and collapsed onto unrelated siblings.
//
// Disconnected components are laid out independently and stacked along the
// perpendicular axis. Empty input yields empty output. The direction must be
// one of "LR", "RL", "TB", "BT"; the empty string defaults to "LR".
func Build(nodes []flow.Node, edges []flow.Edge, direction string, opts Options) (flow.Flow, error) {
	opts.setDefaults()

	if direction == "" {
		direction = flow.DirectionLR
	}
	switch direction {
	case flow.DirectionLR, flow.DirectionRL, flow.DirectionTB, flow.DirectionBT:
	default:
		return flow.Flow{}, errors.New(errors.ErrCodeInvalidDirection, "unknown layout direction: %q", direction)
	}

	out := flow.Flow{
		Nodes: make([]flow.Node, len(nodes)),
		Edges: make([]flow.Edge, len(edges)),
	}
	copy(out.Nodes, nodes)
	copy(out.Edges, edges)

	g := buildWorkGraph(nodes, edges, direction, opts.Dimensions)
	if len(g.ids) == 0 {
		return out, nil
	}

	perpOffset := 0.0
	for _, comp := range g.components() {
		sub := g.subgraph(comp)
		sub.breakCycles()
		sub.assignRanks()
		orders := sub.orderRanks(opts.OrderingPasses)
		sub.assignCoordinates(orders, opts.Spacing)

		extent := sub.applyPositions(out.Nodes, direction, perpOffset)
		perpOffset += extent + opts.Spacing.ComponentSep
	}

	return out, nil
}

// =============================================================================
// Working Graph
// =============================================================================

// workGraph is the index-based working representation of the visible subset.
// All layout phases operate on local integer indices; node IDs only matter at
// the boundaries.
type workGraph struct {
	ids     []string  // local index -> node ID
	nodeIdx []int     // local index -> index into the caller's node slice
	out     [][]int   // adjacency, local indices
	in      [][]int   // reverse adjacency, local indices
	rank    []int     // assigned rank per node
	perp    []float64 // perpendicular coordinate per node
	primary []float64 // primary coordinate per node
	pExt    []float64 // perpendicular extent (node size across the flow)
	rExt    []float64 // primary extent (node size along the flow)
}

// buildWorkGraph collects the visible nodes and the visible edges whose
// endpoints both resolve. Self-loops contribute nothing to a layered layout
// and are skipped.
func buildWorkGraph(nodes []flow.Node, edges []flow.Edge, direction string, dims flow.DimensionsFunc) *workGraph {
	g := &workGraph{}
	local := make(map[string]int, len(nodes))

	horizontal := direction == flow.DirectionLR || direction == flow.DirectionRL
	for i, n := range nodes {
		if n.Hidden {
			continue
		}
		d := dims(n)
		local[n.ID] = len(g.ids)
		g.ids = append(g.ids, n.ID)
		g.nodeIdx = append(g.nodeIdx, i)
		if horizontal {
			g.pExt = append(g.pExt, d.Height)
			g.rExt = append(g.rExt, d.Width)
		} else {
			g.pExt = append(g.pExt, d.Width)
			g.rExt = append(g.rExt, d.Height)
		}
	}

	n := len(g.ids)
	g.out = make([][]int, n)
	g.in = make([][]int, n)
	g.rank = make([]int, n)
	g.perp = make([]float64, n)
	g.primary = make([]float64, n)

	for _, e := range edges {
		if e.Hidden {
			continue
		}
		src, okS := local[e.Source]
		tgt, okT := local[e.Target]
		if !okS || !okT || src == tgt {
			continue
		}
		g.out[src] = append(g.out[src], tgt)
		g.in[tgt] = append(g.in[tgt], src)
	}

	return g
}

// components returns the weakly connected components of the graph as slices
// of local indices, in first-seen order for determinism.
func (g *workGraph) components() [][]int {
	seen := make([]bool, len(g.ids))
	var comps [][]int

	for start := range g.ids {
		if seen[start] {
			continue
		}
		var comp []int
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			comp = append(comp, curr)
			for _, next := range g.out[curr] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
			for _, prev := range g.in[curr] {
				if !seen[prev] {
					seen[prev] = true
					queue = append(queue, prev)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// subgraph extracts the component with the given member indices into an
// independent workGraph sharing no state with the parent.
func (g *workGraph) subgraph(members []int) *workGraph {
	remap := make(map[int]int, len(members))
	sub := &workGraph{}
	for localIdx, parentIdx := range members {
		remap[parentIdx] = localIdx
		sub.ids = append(sub.ids, g.ids[parentIdx])
		sub.nodeIdx = append(sub.nodeIdx, g.nodeIdx[parentIdx])
		sub.pExt = append(sub.pExt, g.pExt[parentIdx])
		sub.rExt = append(sub.rExt, g.rExt[parentIdx])
	}

	n := len(sub.ids)
	sub.out = make([][]int, n)
	sub.in = make([][]int, n)
	sub.rank = make([]int, n)
	sub.perp = make([]float64, n)
	sub.primary = make([]float64, n)

	for _, parentIdx := range members {
		from := remap[parentIdx]
		for _, t := range g.out[parentIdx] {
			if to, ok := remap[t]; ok {
				sub.out[from] = append(sub.out[from], to)
				sub.in[to] = append(sub.in[to], from)
			}
		}
	}
	return sub
}

// applyPositions writes the computed coordinates back into the caller's node
// slice, mapping (primary, perp) onto (x, y) according to the direction, and
// returns the component's perpendicular extent. Only visible nodes are
// touched.
func (g *workGraph) applyPositions(nodes []flow.Node, direction string, perpOffset float64) float64 {
	extent := 0.0
	for i := range g.ids {
		if end := g.perp[i] + g.pExt[i]; end > extent {
			extent = end
		}
	}

	for i, nodeIdx := range g.nodeIdx {
		perp := g.perp[i] + perpOffset
		prim := g.primary[i]

		switch direction {
		case flow.DirectionLR:
			nodes[nodeIdx].Position = flow.Position{X: prim, Y: perp}
		case flow.DirectionRL:
			nodes[nodeIdx].Position = flow.Position{X: -(prim + g.rExt[i]), Y: perp}
		case flow.DirectionTB:
			nodes[nodeIdx].Position = flow.Position{X: perp, Y: prim}
		case flow.DirectionBT:
			nodes[nodeIdx].Position = flow.Position{X: perp, Y: -(prim + g.rExt[i])}
		}
	}
	return extent
}
