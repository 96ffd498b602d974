package view

import "github.com/matzehuels/flowkit/pkg/flow"

// ApplyVisibility derives the Hidden/GroupHidden flags for every node and
// edge from the current collapse state. It is a full recomputation, not an
// incremental patch, and running it on its own output is a no-op.
//
// Rules:
//
//   - A node is ancestor-hidden when any group on its ParentGroupID chain is
//     collapsed. The walk is memoized per node ID and guarded against cycles
//     in malformed stored data.
//   - A group node is visible exactly when it is collapsed and not itself
//     inside a collapsed ancestor: expanding a group hides the group node and
//     shows its members in its place.
//   - A regular node keeps an externally-set Hidden flag (one that this
//     engine did not cause, i.e. Hidden without GroupHidden) across passes;
//     hiding caused by collapse is always released by re-expansion.
//   - An edge is hidden when either endpoint is hidden, and group-hidden when
//     either endpoint is group-hidden. Dangling endpoints count as hidden.
//
// The input slices are never mutated.
func ApplyVisibility(nodes []flow.Node, edges []flow.Edge) ([]flow.Node, []flow.Edge) {
	outNodes := make([]flow.Node, len(nodes))
	copy(outNodes, nodes)
	outEdges := make([]flow.Edge, len(edges))
	copy(outEdges, edges)

	idx := flow.Index(nodes)
	memo := make(map[string]bool, len(nodes))

	// ancestorHidden reports whether any ancestor group of the node is
	// collapsed. A collapsed group does not hide itself, only everything
	// below it.
	var ancestorHidden func(id string, onPath map[string]bool) bool
	ancestorHidden = func(id string, onPath map[string]bool) bool {
		if v, ok := memo[id]; ok {
			return v
		}
		if onPath[id] {
			// Parent cycle in stored data: stop traversing.
			return false
		}
		onPath[id] = true

		hidden := false
		i, ok := idx[id]
		if ok {
			if parentID := nodes[i].ParentGroupID; parentID != "" {
				pi, ok := idx[parentID]
				if ok {
					hidden = nodes[pi].IsCollapsed || ancestorHidden(parentID, onPath)
				}
			}
		}
		memo[id] = hidden
		return hidden
	}

	for i := range outNodes {
		n := &outNodes[i]
		ah := ancestorHidden(n.ID, map[string]bool{})

		if n.IsGroup() {
			n.GroupHidden = ah
			n.Hidden = ah || n.Display() == flow.Expanded
			continue
		}

		externallyHidden := nodes[i].Hidden && !nodes[i].GroupHidden
		n.GroupHidden = ah
		n.Hidden = ah || externallyHidden
	}

	outIdx := flow.Index(outNodes)
	endpointHidden := func(id string) (hidden, groupHidden bool) {
		i, ok := outIdx[id]
		if !ok {
			return true, false
		}
		return outNodes[i].Hidden, outNodes[i].GroupHidden
	}

	for i := range outEdges {
		e := &outEdges[i]
		sh, sg := endpointHidden(e.Source)
		th, tg := endpointHidden(e.Target)
		e.Hidden = sh || th
		e.GroupHidden = sg || tg
	}

	return outNodes, outEdges
}
