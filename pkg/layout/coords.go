package layout

import (
	"math"
	"slices"
)

// assignCoordinates turns rank assignments and per-rank orders into concrete
// (primary, perpendicular) coordinates:
//
//  1. Each rank gets a primary offset: the cumulative extent of the ranks
//     before it plus RankSep per step.
//  2. Nodes are placed along the perpendicular axis in rank order, NodeSep
//     apart.
//  3. A straightening pass pins simple chains: a node whose single parent
//     feeds only it is pulled onto the parent's perpendicular coordinate
//     when the spot is free, so chains never pick up diagonal offsets.
//  4. A compaction pass resolves any remaining overlap per rank. The pass is
//     keyed purely on the rank assigned in step 1 - it never recomputes a
//     node's depth from an intra-group traversal, which is what used to
//     collapse group members onto unrelated siblings when their only
//     incoming edge crossed a group boundary.
func (g *workGraph) assignCoordinates(orders [][]int, spacing Spacing) {
	g.assignPrimary(orders, spacing)
	g.assignPerpInitial(orders, spacing)
	g.straightenChains(orders, spacing)
	g.compactRanks(orders, spacing)
	g.normalizePerp()
}

// assignPrimary places each rank along the primary axis, leaving RankSep
// between the widest node of one rank and the start of the next.
func (g *workGraph) assignPrimary(orders [][]int, spacing Spacing) {
	offset := 0.0
	for _, row := range orders {
		maxExt := 0.0
		for _, node := range row {
			g.primary[node] = offset
			if g.rExt[node] > maxExt {
				maxExt = g.rExt[node]
			}
		}
		offset += maxExt + spacing.RankSep
	}
}

// assignPerpInitial lays each rank out sequentially along the perpendicular
// axis in its computed order.
func (g *workGraph) assignPerpInitial(orders [][]int, spacing Spacing) {
	for _, row := range orders {
		cursor := 0.0
		for _, node := range row {
			g.perp[node] = cursor
			cursor += g.pExt[node] + spacing.NodeSep
		}
	}
}

// straightenChains aligns simple chains: when C's only incoming edge comes
// from P and P has no other outgoing edge, C takes P's perpendicular
// coordinate - unless another node in C's rank already claims that interval.
// Ranks are processed top-down so alignment propagates along whole chains.
func (g *workGraph) straightenChains(orders [][]int, spacing Spacing) {
	for r := 1; r < len(orders); r++ {
		for _, c := range orders[r] {
			if len(g.in[c]) != 1 {
				continue
			}
			p := g.in[c][0]
			if len(g.out[p]) != 1 {
				continue
			}
			target := g.perp[p]
			if g.perpFree(orders[r], c, target, spacing.NodeSep) {
				g.perp[c] = target
			}
		}
	}
}

// perpFree reports whether node can sit at the given perpendicular coordinate
// without coming closer than gap to any other node in its rank.
func (g *workGraph) perpFree(row []int, node int, at, gap float64) bool {
	for _, other := range row {
		if other == node {
			continue
		}
		lo := g.perp[other] - g.pExt[node] - gap
		hi := g.perp[other] + g.pExt[other] + gap
		if at > lo && at < hi {
			return false
		}
	}
	return true
}

// compactRanks resolves residual overlap inside each rank by sweeping nodes
// in perpendicular order and pushing a node onward only when it intrudes on
// its predecessor. The sweep works rank by rank on the ranks assigned by the
// primary layout; it deliberately has no notion of group-local depth.
func (g *workGraph) compactRanks(orders [][]int, spacing Spacing) {
	for _, row := range orders {
		if len(row) < 2 {
			continue
		}
		sorted := slices.Clone(row)
		slices.SortStableFunc(sorted, func(a, b int) int {
			switch {
			case g.perp[a] < g.perp[b]:
				return -1
			case g.perp[a] > g.perp[b]:
				return 1
			default:
				return 0
			}
		})

		for i := 1; i < len(sorted); i++ {
			prev, curr := sorted[i-1], sorted[i]
			minStart := g.perp[prev] + g.pExt[prev] + spacing.NodeSep
			if g.perp[curr] < minStart {
				g.perp[curr] = minStart
			}
		}
	}
}

// normalizePerp shifts the whole component so its smallest perpendicular
// coordinate is zero, which keeps component stacking predictable.
func (g *workGraph) normalizePerp() {
	min := math.Inf(1)
	for i := range g.ids {
		if g.perp[i] < min {
			min = g.perp[i]
		}
	}
	if math.IsInf(min, 1) || min == 0 {
		return
	}
	for i := range g.ids {
		g.perp[i] -= min
	}
}
