package layout

// breakCycles removes the back edges found by a depth-first search so the
// remaining graph is acyclic, and returns how many edges were dropped.
// Traversal starts from source nodes first so that the natural flow of the
// diagram decides which direction survives; remaining unvisited nodes (pure
// cycles) are swept afterward. The removal only affects the working graph -
// the caller's edge slice is untouched and still rendered.
func (g *workGraph) breakCycles() int {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(g.ids))
	var backEdges [][2]int

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		for _, child := range g.out[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]int{node, child})
			}
		}
		color[node] = black
	}

	for i := range g.ids {
		if len(g.in[i]) == 0 && color[i] == white {
			dfs(i)
		}
	}
	for i := range g.ids {
		if color[i] == white {
			dfs(i)
		}
	}

	for _, e := range backEdges {
		g.removeEdge(e[0], e[1])
	}
	return len(backEdges)
}

func (g *workGraph) removeEdge(from, to int) {
	g.out[from] = deleteFirst(g.out[from], to)
	g.in[to] = deleteFirst(g.in[to], from)
}

func deleteFirst(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// assignRanks assigns every node to a rank along the primary axis using the
// longest path from the sources, via a topological traversal (Kahn's
// algorithm). Each node lands at one plus the maximum rank of its parents:
// sources sit at rank 0 and every parent is strictly before its children.
// breakCycles must run first; with cycles present, cycle members would never
// reach zero in-degree and would stay at rank 0.
func (g *workGraph) assignRanks() {
	n := len(g.ids)
	inDegree := make([]int, n)
	queue := make([]int, 0, n)

	for i := range g.ids {
		inDegree[i] = len(g.in[i])
		g.rank[i] = 0
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.out[curr] {
			if r := g.rank[curr] + 1; r > g.rank[child] {
				g.rank[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
}

// maxRank returns the highest assigned rank, or -1 for an empty graph.
func (g *workGraph) maxRank() int {
	max := -1
	for _, r := range g.rank {
		if r > max {
			max = r
		}
	}
	return max
}
