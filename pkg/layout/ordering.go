package layout

import "slices"

// orderRanks computes a left-to-right order for every rank that keeps edge
// crossings low. The initial order is graph insertion order; barycenter
// sweeps (downward then upward) pull nodes toward the average position of
// their neighbors, and an adjacent-swap pass cleans up the remaining local
// inversions. passes bounds the number of sweep rounds.
func (g *workGraph) orderRanks(passes int) [][]int {
	max := g.maxRank()
	if max < 0 {
		return nil
	}

	orders := make([][]int, max+1)
	for i := range g.ids {
		orders[g.rank[i]] = append(orders[g.rank[i]], i)
	}

	for pass := 0; pass < passes; pass++ {
		improved := false

		// Downward sweep: order each rank by the mean position of parents.
		for r := 1; r <= max; r++ {
			if g.barycenterSort(orders, r, g.in) {
				improved = true
			}
		}
		// Upward sweep: order each rank by the mean position of children.
		for r := max - 1; r >= 0; r-- {
			if g.barycenterSort(orders, r, g.out) {
				improved = true
			}
		}

		if g.swapAdjacent(orders) {
			improved = true
		}
		if !improved {
			break
		}
	}
	return orders
}

// barycenterSort reorders rank r by the barycenter of each node's neighbors
// (in the adjacent rank, per the given adjacency), keeping nodes without
// neighbors in place. Returns true when the order changed.
func (g *workGraph) barycenterSort(orders [][]int, r int, adj [][]int) bool {
	row := orders[r]
	if len(row) < 2 {
		return false
	}

	pos := make(map[int]float64, len(row))
	for _, rank := range orders {
		for p, node := range rank {
			pos[node] = float64(p)
		}
	}

	bary := make(map[int]float64, len(row))
	for p, node := range row {
		sum, count := 0.0, 0
		for _, nb := range adj[node] {
			sum += pos[nb]
			count++
		}
		if count == 0 {
			bary[node] = float64(p) // keep free nodes where they are
		} else {
			bary[node] = sum / float64(count)
		}
	}

	sorted := slices.Clone(row)
	slices.SortStableFunc(sorted, func(a, b int) int {
		switch {
		case bary[a] < bary[b]:
			return -1
		case bary[a] > bary[b]:
			return 1
		default:
			return 0
		}
	})

	changed := !slices.Equal(sorted, row)
	copy(row, sorted)
	return changed
}

// swapAdjacent walks every rank and swaps adjacent pairs whenever the swap
// strictly reduces crossings against both neighboring ranks combined.
// Returns true when at least one swap happened.
func (g *workGraph) swapAdjacent(orders [][]int) bool {
	improved := false
	for r, row := range orders {
		if len(row) < 2 {
			continue
		}

		var upPos, downPos map[int]int
		if r > 0 {
			upPos = positionMap(orders[r-1])
		}
		if r+1 < len(orders) {
			downPos = positionMap(orders[r+1])
		}

		for i := 0; i+1 < len(row); i++ {
			left, right := row[i], row[i+1]
			before := g.pairCrossings(left, right, upPos, downPos)
			after := g.pairCrossings(right, left, upPos, downPos)
			if after < before {
				row[i], row[i+1] = right, left
				improved = true
			}
		}
	}
	return improved
}

// pairCrossings counts the crossings the ordered pair (left, right) causes
// with both adjacent ranks. Two edges cross when the left node's neighbor
// sits to the right of the right node's neighbor.
func (g *workGraph) pairCrossings(left, right int, upPos, downPos map[int]int) int {
	crossings := 0
	if upPos != nil {
		crossings += countPairCrossings(g.in[left], g.in[right], upPos)
	}
	if downPos != nil {
		crossings += countPairCrossings(g.out[left], g.out[right], downPos)
	}
	return crossings
}

func countPairCrossings(leftNbrs, rightNbrs []int, adjPos map[int]int) int {
	crossings := 0
	for _, ln := range leftNbrs {
		lp, ok := adjPos[ln]
		if !ok {
			continue
		}
		for _, rn := range rightNbrs {
			if rp, ok := adjPos[rn]; ok && lp > rp {
				crossings++
			}
		}
	}
	return crossings
}

// countLayerCrossings counts edge crossings between two adjacent ranks using
// a Fenwick tree for O(E log V) inversion counting. Two edges (u1,v1) and
// (u2,v2) cross iff pos(u1) < pos(u2) and pos(v1) > pos(v2), so sorting edges
// by source position reduces the problem to counting inversions among target
// positions.
func (g *workGraph) countLayerCrossings(upper, lower []int) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := positionMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, node := range upper {
		for _, child := range g.out[node] {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// Count edges seen so far with target <= e.lower; the remainder cross.
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// countCrossings sums the crossings between every pair of consecutive ranks.
func (g *workGraph) countCrossings(orders [][]int) int {
	crossings := 0
	for r := 0; r+1 < len(orders); r++ {
		crossings += g.countLayerCrossings(orders[r], orders[r+1])
	}
	return crossings
}

func positionMap(row []int) map[int]int {
	m := make(map[int]int, len(row))
	for p, node := range row {
		m[node] = p
	}
	return m
}
