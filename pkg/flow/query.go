package flow

// Queries over an explicit node slice. There is no hidden global state: every
// function receives the nodes it operates on and returns owned collections of
// IDs. All relations are ID references, never pointers, so malformed stored
// data (dangling parents, parent cycles) degrades to "not found, stop
// traversing" instead of crashing.

// Index builds an ID -> index lookup for a node slice.
// Later duplicates win, matching the behavior of a map rebuild.
func Index(nodes []Node) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return idx
}

// Lookup returns the node with the given ID and true, or the zero Node and
// false if no such node exists.
func Lookup(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Descendants returns the transitive closure of nodes below groupID via the
// ParentGroupID relation: direct members, members of nested groups, and so
// on. The group itself is not included.
//
// The traversal uses an explicit queue with a visited set keyed by ID, so a
// malformed cyclic parent relation terminates instead of looping. Nodes whose
// parent does not resolve are simply never reached.
func Descendants(nodes []Node, groupID string) map[string]bool {
	members := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		if n.ParentGroupID != "" {
			members[n.ParentGroupID] = append(members[n.ParentGroupID], n.ID)
		}
	}

	result := make(map[string]bool)
	visited := map[string]bool{groupID: true}
	queue := []string{groupID}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range members[curr] {
			if visited[child] {
				continue
			}
			visited[child] = true
			result[child] = true
			queue = append(queue, child)
		}
	}
	return result
}

// IsAncestorOf reports whether b is a descendant of a, i.e. whether a appears
// somewhere on b's ParentGroupID chain.
func IsAncestorOf(nodes []Node, a, b string) bool {
	return Descendants(nodes, a)[b]
}

// Ancestors returns the chain of group IDs above the node, nearest first.
// The walk stops at the first unresolved parent reference and at the first
// repeated ID, so dangling pointers and cycles in stored data never loop.
func Ancestors(nodes []Node, id string) []string {
	idx := Index(nodes)
	var chain []string
	seen := map[string]bool{id: true}

	i, ok := idx[id]
	if !ok {
		return nil
	}
	parent := nodes[i].ParentGroupID
	for parent != "" && !seen[parent] {
		seen[parent] = true
		pi, ok := idx[parent]
		if !ok {
			break
		}
		chain = append(chain, parent)
		parent = nodes[pi].ParentGroupID
	}
	return chain
}

// GroupDepth returns the height of the subtree of nested group descendants
// below the given group: 0 when no descendant group exists, 1 when the
// deepest nested group chain is one level, and so on. Only nodes of kind
// "group" contribute to the height.
func GroupDepth(nodes []Node, groupID string) int {
	idx := Index(nodes)
	children := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		if n.IsGroup() && n.ParentGroupID != "" {
			children[n.ParentGroupID] = append(children[n.ParentGroupID], n.ID)
		}
	}

	// Iterative DFS with a visited set; cycles in stored data terminate.
	visited := map[string]bool{groupID: true}
	type frame struct {
		id    string
		depth int
	}
	max := 0
	stack := []frame{{groupID, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range children[f.id] {
			if visited[child] {
				continue
			}
			visited[child] = true
			if _, ok := idx[child]; !ok {
				continue
			}
			if f.depth+1 > max {
				max = f.depth + 1
			}
			stack = append(stack, frame{child, f.depth + 1})
		}
	}
	return max
}
