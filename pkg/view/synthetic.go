package view

import (
	"fmt"

	"github.com/matzehuels/flowkit/pkg/flow"
)

// SyntheticEdgeID returns the deterministic ID used for the boundary edge
// between the given endpoints. Determinism lets recomputation produce
// byte-identical edges, which is what allows idempotence checks to compare
// edge ID sets.
func SyntheticEdgeID(source, target string) string {
	return fmt.Sprintf("syn:%s->%s", source, target)
}

// ComputeSyntheticEdges derives the boundary edges that stand in for real
// edges crossing a collapsed group's boundary, so a collapsed group still
// shows its external connections.
//
// For every collapsed group among nodes and every real (non-synthetic) edge
// with exactly one endpoint inside the group's descendant set, the crossing
// is replaced by a boundary edge at the group node: member->external becomes
// group->external and external->member becomes external->group. Multiple
// internal edges crossing the same boundary collapse to a single synthetic
// edge, deduplicated by the ordered (source, target) pair.
//
// Previously generated synthetic edges are never consumed as input; they are
// filtered out so repeated passes cannot cascade ghost edges. The returned
// set replaces the prior synthetic set entirely - the caller concatenates it
// with the real edges and reruns ApplyVisibility.
func ComputeSyntheticEdges(nodes []flow.Node, realEdges []flow.Edge) []flow.Edge {
	real := make([]flow.Edge, 0, len(realEdges))
	for _, e := range realEdges {
		if !e.IsSynthetic {
			real = append(real, e)
		}
	}

	var out []flow.Edge
	seen := make(map[[2]string]bool)

	for _, n := range nodes {
		if !n.IsGroup() || n.Display() != flow.Collapsed {
			continue
		}
		members := flow.Descendants(nodes, n.ID)

		for _, e := range real {
			srcInside := members[e.Source]
			tgtInside := members[e.Target]
			if srcInside == tgtInside {
				continue // internal or fully external edge, no boundary crossed
			}

			source, target := n.ID, e.Target
			if tgtInside {
				source, target = e.Source, n.ID
			}

			key := [2]string{source, target}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, flow.Edge{
				ID:          SyntheticEdgeID(source, target),
				Source:      source,
				Target:      target,
				IsSynthetic: true,
			})
		}
	}
	return out
}

// EdgeKeySet returns the set of ordered (source, target) pairs for the
// synthetic edges in the slice. Equality of recomputed key sets is the
// engine's "nothing changed" signal.
func EdgeKeySet(edges []flow.Edge) map[[2]string]bool {
	keys := make(map[[2]string]bool)
	for _, e := range edges {
		if e.IsSynthetic {
			keys[[2]string{e.Source, e.Target}] = true
		}
	}
	return keys
}

// SameEdgeKeys reports whether two edge slices carry the same synthetic
// boundary-edge key set.
func SameEdgeKeys(a, b []flow.Edge) bool {
	ka, kb := EdgeKeySet(a), EdgeKeySet(b)
	if len(ka) != len(kb) {
		return false
	}
	for k := range ka {
		if !kb[k] {
			return false
		}
	}
	return true
}
