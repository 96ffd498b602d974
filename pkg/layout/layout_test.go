package layout

import (
	"testing"

	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
)

func position(t *testing.T, f flow.Flow, id string) flow.Position {
	t.Helper()
	n, ok := flow.Lookup(f.Nodes, id)
	if !ok {
		t.Fatalf("node %s missing from layout result", id)
	}
	return n.Position
}

func TestBuildEmpty(t *testing.T) {
	out, err := Build(nil, nil, flow.DirectionLR, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(out.Nodes) != 0 || len(out.Edges) != 0 {
		t.Errorf("empty input should yield empty output: %+v", out)
	}
}

func TestBuildInvalidDirection(t *testing.T) {
	_, err := Build([]flow.Node{{ID: "a"}}, nil, "diagonal", Options{})
	if !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Errorf("expected INVALID_DIRECTION, got %v", err)
	}
}

func TestBuildDefaultDirection(t *testing.T) {
	// Empty direction falls back to left-to-right.
	nodes := []flow.Node{{ID: "a"}, {ID: "b"}}
	edges := []flow.Edge{{ID: "e1", Source: "a", Target: "b"}}

	out, err := Build(nodes, edges, "", Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !(position(t, out, "b").X > position(t, out, "a").X) {
		t.Error("default direction should advance along x")
	}
}

func TestBuildChainStaysStraight(t *testing.T) {
	// a -> b -> c: a simple chain shares the perpendicular coordinate.
	nodes := []flow.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	edges := []flow.Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "b", Target: "c"},
	}

	out, err := Build(nodes, edges, flow.DirectionLR, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	pa, pb, pc := position(t, out, "a"), position(t, out, "b"), position(t, out, "c")
	if pa.Y != pb.Y || pb.Y != pc.Y {
		t.Errorf("chain should stay straight: y = %v, %v, %v", pa.Y, pb.Y, pc.Y)
	}
	if !(pa.X < pb.X && pb.X < pc.X) {
		t.Errorf("ranks should advance along x: %v, %v, %v", pa.X, pb.X, pc.X)
	}

	// Default node width 150 plus rank separation 120 per step.
	if pb.X != 270 || pc.X != 540 {
		t.Errorf("rank offsets = %v, %v, want 270, 540", pb.X, pc.X)
	}
}

func TestBuildFanOutSeparatesSiblings(t *testing.T) {
	nodes := []flow.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	edges := []flow.Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "a", Target: "c"},
	}

	out, err := Build(nodes, edges, flow.DirectionLR, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	pb, pc := position(t, out, "b"), position(t, out, "c")
	if pb.X != pc.X {
		t.Errorf("siblings share a rank: x = %v, %v", pb.X, pc.X)
	}
	if pb.Y == pc.Y {
		t.Error("siblings must not overlap on the perpendicular axis")
	}
	// Default node height 40 plus node separation 40.
	if gap := pc.Y - pb.Y; gap != 80 && gap != -80 {
		t.Errorf("sibling gap = %v, want 80", gap)
	}
}

func TestBuildHiddenNodesKeepPositions(t *testing.T) {
	nodes := []flow.Node{
		{ID: "a"},
		{ID: "b"},
		{ID: "ghost", Hidden: true, Position: flow.Position{X: 7, Y: 9}},
	}
	edges := []flow.Edge{{ID: "e1", Source: "a", Target: "b"}}

	out, err := Build(nodes, edges, flow.DirectionLR, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if got := position(t, out, "ghost"); got != (flow.Position{X: 7, Y: 9}) {
		t.Errorf("hidden node position = %+v, want preserved (7, 9)", got)
	}
}

func TestBuildSkipsHiddenEdges(t *testing.T) {
	// The hidden edge b -> a would otherwise create a cycle.
	nodes := []flow.Node{{ID: "a"}, {ID: "b"}}
	edges := []flow.Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "b", Target: "a", Hidden: true},
	}

	out, err := Build(nodes, edges, flow.DirectionLR, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if !(position(t, out, "b").X > position(t, out, "a").X) {
		t.Error("hidden edge should not influence ranking")
	}
	if len(out.Edges) != 2 {
		t.Error("edges pass through unchanged")
	}
}

func TestBuildComponentsStacked(t *testing.T) {
	nodes := []flow.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	edges := []flow.Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "c", Target: "d"},
	}

	out, err := Build(nodes, edges, flow.DirectionLR, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	// First component occupies y [0,40); the second starts after
	// ComponentSep: 40 + 80 = 120.
	if y := position(t, out, "a").Y; y != 0 {
		t.Errorf("first component y = %v, want 0", y)
	}
	if y := position(t, out, "c").Y; y != 120 {
		t.Errorf("second component y = %v, want 120", y)
	}
}

func TestBuildCycleTerminates(t *testing.T) {
	nodes := []flow.Node{{ID: "a"}, {ID: "b"}}
	edges := []flow.Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "b", Target: "a"},
	}

	out, err := Build(nodes, edges, flow.DirectionLR, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if position(t, out, "a").X == position(t, out, "b").X {
		t.Error("cycle members should still land on distinct ranks")
	}
}

func TestBuildDirections(t *testing.T) {
	nodes := []flow.Node{{ID: "a"}, {ID: "b"}}
	edges := []flow.Edge{{ID: "e1", Source: "a", Target: "b"}}

	tests := []struct {
		direction string
		check     func(pa, pb flow.Position) bool
		desc      string
	}{
		{flow.DirectionLR, func(pa, pb flow.Position) bool { return pb.X > pa.X }, "b right of a"},
		{flow.DirectionRL, func(pa, pb flow.Position) bool { return pb.X < pa.X }, "b left of a"},
		{flow.DirectionTB, func(pa, pb flow.Position) bool { return pb.Y > pa.Y }, "b below a"},
		{flow.DirectionBT, func(pa, pb flow.Position) bool { return pb.Y < pa.Y }, "b above a"},
	}

	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			out, err := Build(nodes, edges, tt.direction, Options{})
			if err != nil {
				t.Fatalf("Build error: %v", err)
			}
			pa, pb := position(t, out, "a"), position(t, out, "b")
			if !tt.check(pa, pb) {
				t.Errorf("%s: want %s, got a=%+v b=%+v", tt.direction, tt.desc, pa, pb)
			}
		})
	}
}

func TestBuildGroupMemberNotCollapsedOntoSiblings(t *testing.T) {
	// ext -> m: m's only incoming edge crosses its group boundary. m must be
	// ranked after ext, not treated as a fresh root at rank 0 on top of ext.
	nodes := []flow.Node{
		{ID: "ext"},
		{ID: "g1", Kind: flow.KindGroup, IsCollapsed: false, Hidden: true},
		{ID: "m", ParentGroupID: "g1"},
		{ID: "n", ParentGroupID: "g1"},
	}
	edges := []flow.Edge{
		{ID: "e1", Source: "ext", Target: "m"},
		{ID: "e2", Source: "m", Target: "n"},
	}

	out, err := Build(nodes, edges, flow.DirectionLR, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	pe, pm, pn := position(t, out, "ext"), position(t, out, "m"), position(t, out, "n")
	if !(pe.X < pm.X && pm.X < pn.X) {
		t.Errorf("ranks should follow the edge chain: ext=%v m=%v n=%v", pe.X, pm.X, pn.X)
	}
	// Straight chain through the boundary.
	if pe.Y != pm.Y || pm.Y != pn.Y {
		t.Errorf("boundary-crossing chain should stay straight: %v, %v, %v", pe.Y, pm.Y, pn.Y)
	}
}
