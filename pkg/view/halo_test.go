package view

import (
	"math"
	"testing"

	"github.com/matzehuels/flowkit/pkg/flow"
)

func TestVerticalPadding(t *testing.T) {
	p := PaddingConfig{Base: 24, Increment: 18, Decay: 0.6, MinStep: 4}

	tests := []struct {
		depth int
		want  float64
	}{
		{0, 24},               // base only
		{1, 24 + 18},          // round(18*0.6^0) = 18
		{2, 24 + 18 + 11},     // round(18*0.6) = 11
		{3, 24 + 18 + 11 + 6}, // round(18*0.36) = 6
	}

	for _, tt := range tests {
		if got := p.VerticalPadding(tt.depth); got != tt.want {
			t.Errorf("VerticalPadding(%d) = %v, want %v", tt.depth, got, tt.want)
		}
	}
}

func TestVerticalPaddingMinStepFloor(t *testing.T) {
	p := PaddingConfig{Base: 10, Increment: 8, Decay: 0.1, MinStep: 4}

	// Layers: round(8)=8, round(0.8)=1 -> clamped to 4.
	if got := p.VerticalPadding(2); got != 10+8+4 {
		t.Errorf("VerticalPadding(2) = %v, want 22", got)
	}
}

func TestHorizontalPaddingConstant(t *testing.T) {
	p := DefaultPadding
	if p.HorizontalPadding() != p.Base {
		t.Errorf("HorizontalPadding = %v, want base %v", p.HorizontalPadding(), p.Base)
	}
}

func TestComputeHalosBounds(t *testing.T) {
	nodes := []flow.Node{
		{ID: "g1", Kind: flow.KindGroup, IsCollapsed: false, Hidden: true},
		{ID: "a", ParentGroupID: "g1", Position: flow.Position{X: 0, Y: 0}},
		{ID: "b", ParentGroupID: "g1", Position: flow.Position{X: 300, Y: 200}},
	}
	dims := flow.FixedDimensions(100, 50)

	halos := ComputeHalos(nodes, dims, DefaultPadding)
	if len(halos) != 1 {
		t.Fatalf("expected 1 halo, got %d", len(halos))
	}

	h := halos[0]
	if h.GroupID != "g1" {
		t.Errorf("halo group = %q, want g1", h.GroupID)
	}

	// Members span x [0,400], y [0,250]; depth 0 pads 24 on each side.
	want := Rect{X: -24, Y: -24, Width: 448, Height: 298}
	if h.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", h.Bounds, want)
	}
}

func TestComputeHalosContainMembers(t *testing.T) {
	nodes := []flow.Node{
		{ID: "g1", Kind: flow.KindGroup, IsCollapsed: false, Hidden: true},
		{ID: "a", ParentGroupID: "g1", Position: flow.Position{X: 17, Y: 31}},
		{ID: "b", ParentGroupID: "g1", Position: flow.Position{X: 210, Y: 99}},
	}
	dims := flow.FixedDimensions(80, 30)

	halos := ComputeHalos(nodes, dims, DefaultPadding)
	if len(halos) != 1 {
		t.Fatalf("expected 1 halo, got %d", len(halos))
	}

	h := halos[0].Bounds
	for _, n := range nodes[1:] {
		d := dims(n)
		if n.Position.X < h.X || n.Position.Y < h.Y ||
			n.Position.X+d.Width > h.X+h.Width || n.Position.Y+d.Height > h.Y+h.Height {
			t.Errorf("member %s box not contained in halo %+v", n.ID, h)
		}
	}
}

func TestComputeHalosSkipsCollapsedAndHiddenGroups(t *testing.T) {
	nodes := []flow.Node{
		{ID: "collapsed", Kind: flow.KindGroup, IsCollapsed: true},
		{ID: "a", ParentGroupID: "collapsed", Hidden: true, GroupHidden: true},
		{ID: "buried", Kind: flow.KindGroup, IsCollapsed: false, Hidden: true, GroupHidden: true},
		{ID: "b", ParentGroupID: "buried", Hidden: true, GroupHidden: true},
	}

	if halos := ComputeHalos(nodes, flow.FixedDimensions(10, 10), DefaultPadding); len(halos) != 0 {
		t.Errorf("collapsed and ancestor-hidden groups get no halo, got %+v", halos)
	}
}

func TestComputeHalosEmptyGroup(t *testing.T) {
	nodes := []flow.Node{
		{ID: "g1", Kind: flow.KindGroup, IsCollapsed: false, Hidden: true},
	}

	if halos := ComputeHalos(nodes, flow.FixedDimensions(10, 10), DefaultPadding); len(halos) != 0 {
		t.Errorf("group without visible descendants gets no halo, got %+v", halos)
	}
}

func TestComputeHalosNestedSortedInnerFirst(t *testing.T) {
	nodes := []flow.Node{
		{ID: "outer", Kind: flow.KindGroup, IsCollapsed: false, Hidden: true},
		{ID: "inner", Kind: flow.KindGroup, IsCollapsed: false, Hidden: true, ParentGroupID: "outer"},
		{ID: "a", ParentGroupID: "inner", Position: flow.Position{X: 0, Y: 0}},
		{ID: "b", ParentGroupID: "inner", Position: flow.Position{X: 120, Y: 60}},
		{ID: "c", ParentGroupID: "outer", Position: flow.Position{X: 400, Y: 0}},
	}
	dims := flow.FixedDimensions(100, 40)

	halos := ComputeHalos(nodes, dims, DefaultPadding)
	if len(halos) != 2 {
		t.Fatalf("expected 2 halos, got %d", len(halos))
	}

	if halos[0].GroupID != "inner" || halos[1].GroupID != "outer" {
		t.Errorf("halos should be sorted smallest first: %s, %s", halos[0].GroupID, halos[1].GroupID)
	}
	if halos[0].Area() > halos[1].Area() {
		t.Errorf("inner halo area %v exceeds outer %v", halos[0].Area(), halos[1].Area())
	}

	// The deeper group's ancestor pads more vertically, so the outer bounds
	// strictly contain the inner bounds on the y axis.
	inner, outer := halos[0].Bounds, halos[1].Bounds
	if !(outer.Y < inner.Y && outer.Y+outer.Height > inner.Y+inner.Height) {
		t.Errorf("outer halo should vertically contain inner: outer %+v inner %+v", outer, inner)
	}
}

func TestComputeHalosNilDims(t *testing.T) {
	nodes := []flow.Node{
		{ID: "g1", Kind: flow.KindGroup, IsCollapsed: false, Hidden: true},
		{ID: "a", ParentGroupID: "g1", Position: flow.Position{X: 5, Y: 5}},
	}

	halos := ComputeHalos(nodes, nil, DefaultPadding)
	if len(halos) != 1 {
		t.Fatalf("expected 1 halo with nil dims, got %d", len(halos))
	}
	if math.IsInf(halos[0].Bounds.X, 0) {
		t.Error("nil dims should fall back to zero-size boxes, not infinities")
	}
}
