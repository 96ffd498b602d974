package engine

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/flowkit/pkg/cache"
	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/group"
)

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	r, err := NewRunner(c, nil, Options{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

// testFlow returns three plain nodes with a single edge a -> b.
func testFlow() flow.Flow {
	return flow.Flow{
		Nodes: []flow.Node{
			{ID: "a", Label: "A"},
			{ID: "b", Label: "B"},
			{ID: "c", Label: "C"},
		},
		Edges: []flow.Edge{
			{ID: "e1", Source: "a", Target: "b"},
		},
	}
}

func syntheticEdges(f flow.Flow) []flow.Edge {
	var out []flow.Edge
	for _, e := range f.Edges {
		if e.IsSynthetic {
			out = append(out, e)
		}
	}
	return out
}

func TestNewRunnerDefaults(t *testing.T) {
	r, err := NewRunner(nil, nil, Options{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if r.Cache == nil {
		t.Error("nil cache should default to the null cache")
	}
	if r.Keyer == nil {
		t.Error("nil keyer should default to the default keyer")
	}
	if r.Opts.Direction != flow.DirectionLR {
		t.Errorf("default direction = %q, want LR", r.Opts.Direction)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewRunnerInvalidDirection(t *testing.T) {
	_, err := NewRunner(nil, nil, Options{Direction: "UP"})
	if !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Fatalf("expected INVALID_DIRECTION, got %v", err)
	}
}

func TestCreateGroupRejectsBadMembership(t *testing.T) {
	r := newTestRunner(t, nil)

	res := r.CreateGroup(context.Background(), testFlow(), group.CreateOptions{
		MemberIDs: []string{"a"},
	})
	if res.Success {
		t.Fatal("single-member group should be rejected")
	}
	if !strings.Contains(res.Error, "at least 2") {
		t.Errorf("error = %q, want membership-size message", res.Error)
	}
	if res.UpdatedFlow != nil {
		t.Error("rejected mutation must not carry an updated flow")
	}
}

func TestCreateGroupAddsSyntheticEdge(t *testing.T) {
	r := newTestRunner(t, nil)

	res := r.CreateGroup(context.Background(), testFlow(), group.CreateOptions{
		MemberIDs: []string{"b", "c"},
	})
	if !res.Success {
		t.Fatalf("CreateGroup failed: %s", res.Error)
	}
	if res.GroupID == "" {
		t.Fatal("expected a generated group ID")
	}
	if res.UpdatedFlow == nil {
		t.Fatal("expected an updated flow")
	}

	// The group starts collapsed, so the edge into member b is rerouted to
	// the group node.
	syn := syntheticEdges(*res.UpdatedFlow)
	if len(syn) != 1 {
		t.Fatalf("synthetic edges = %d, want 1", len(syn))
	}
	if syn[0].Source != "a" || syn[0].Target != res.GroupID {
		t.Errorf("synthetic edge %s -> %s, want a -> %s", syn[0].Source, syn[0].Target, res.GroupID)
	}

	g, ok := flow.Lookup(res.UpdatedFlow.Nodes, res.GroupID)
	if !ok {
		t.Fatal("group node missing from updated flow")
	}
	if !g.IsGroup() || !g.IsCollapsed {
		t.Errorf("group node = %+v, want collapsed group", g)
	}
}

func TestToggleExpansionRemovesSynthetics(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	created := r.CreateGroup(ctx, testFlow(), group.CreateOptions{MemberIDs: []string{"b", "c"}})
	if !created.Success {
		t.Fatalf("CreateGroup failed: %s", created.Error)
	}

	collapsed := false
	res := r.ToggleExpansion(ctx, *created.UpdatedFlow, created.GroupID, &collapsed)
	if !res.Success {
		t.Fatalf("ToggleExpansion failed: %s", res.Error)
	}
	if syn := syntheticEdges(*res.UpdatedFlow); len(syn) != 0 {
		t.Errorf("expanded group should carry no synthetic edges, got %d", len(syn))
	}

	g, _ := flow.Lookup(res.UpdatedFlow.Nodes, created.GroupID)
	if g.IsCollapsed {
		t.Error("group should be expanded")
	}
	b, _ := flow.Lookup(res.UpdatedFlow.Nodes, "b")
	if b.Hidden {
		t.Error("member of an expanded group should be visible")
	}
}

func TestToggleExpansionUnknownGroup(t *testing.T) {
	r := newTestRunner(t, nil)

	res := r.ToggleExpansion(context.Background(), testFlow(), "nope", nil)
	if res.Success {
		t.Fatal("toggling an unknown group should fail")
	}
	if !strings.Contains(res.Error, "nope") {
		t.Errorf("error = %q, want the group ID named", res.Error)
	}
}

func TestUngroupRestoresFlow(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	created := r.CreateGroup(ctx, testFlow(), group.CreateOptions{MemberIDs: []string{"b", "c"}})
	if !created.Success {
		t.Fatalf("CreateGroup failed: %s", created.Error)
	}

	res := r.Ungroup(ctx, *created.UpdatedFlow, created.GroupID)
	if !res.Success {
		t.Fatalf("Ungroup failed: %s", res.Error)
	}
	if _, ok := flow.Lookup(res.UpdatedFlow.Nodes, created.GroupID); ok {
		t.Error("group node should be gone after ungroup")
	}
	if syn := syntheticEdges(*res.UpdatedFlow); len(syn) != 0 {
		t.Errorf("no synthetic edges should remain, got %d", len(syn))
	}
	b, _ := flow.Lookup(res.UpdatedFlow.Nodes, "b")
	if b.ParentGroupID != "" || b.Hidden {
		t.Errorf("member b = %+v, want visible top-level node", b)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	f := testFlow()
	f.Nodes = append(f.Nodes, flow.Node{ID: "g1", Kind: flow.KindGroup, IsCollapsed: true})
	for i := range f.Nodes {
		if f.Nodes[i].ID == "b" || f.Nodes[i].ID == "c" {
			f.Nodes[i].ParentGroupID = "g1"
		}
	}

	first, changed := r.Recompute(ctx, f)
	if !changed {
		t.Fatal("first pass over a raw flow should report a change")
	}

	second, changed := r.Recompute(ctx, first)
	if changed {
		t.Error("second pass should be a fixed point")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("fixed-point passes should produce identical flows")
	}
}

func TestLayoutWithoutCache(t *testing.T) {
	r := newTestRunner(t, nil)

	out, info, err := r.Layout(context.Background(), testFlow())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if info.CacheHit {
		t.Error("null cache can never hit")
	}
	if !info.Changed {
		t.Error("positions were assigned, Changed should be true")
	}

	a, _ := flow.Lookup(out.Nodes, "a")
	b, _ := flow.Lookup(out.Nodes, "b")
	if !(b.Position.X > a.Position.X) {
		t.Errorf("expected b right of a, got a=%+v b=%+v", a.Position, b.Position)
	}
}

func TestLayoutCacheRoundTrip(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := newTestRunner(t, fc)
	ctx := context.Background()

	f := testFlow()
	first, info, err := r.Layout(ctx, f)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if info.CacheHit {
		t.Error("first layout should miss the cache")
	}

	second, info, err := r.Layout(ctx, f)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if !info.CacheHit {
		t.Error("second layout of the same input should hit the cache")
	}
	if !reflect.DeepEqual(first.Nodes, second.Nodes) {
		t.Error("cached layout should match the computed one")
	}
}

func TestHalosForExpandedGroup(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	created := r.CreateGroup(ctx, testFlow(), group.CreateOptions{MemberIDs: []string{"b", "c"}})
	if !created.Success {
		t.Fatalf("CreateGroup failed: %s", created.Error)
	}
	collapsed := false
	res := r.ToggleExpansion(ctx, *created.UpdatedFlow, created.GroupID, &collapsed)
	if !res.Success {
		t.Fatalf("ToggleExpansion failed: %s", res.Error)
	}

	halos := r.Halos(*res.UpdatedFlow)
	if len(halos) != 1 {
		t.Fatalf("halos = %d, want 1", len(halos))
	}
	if halos[0].GroupID != created.GroupID {
		t.Errorf("halo group = %q, want %q", halos[0].GroupID, created.GroupID)
	}
	if halos[0].Bounds.Width <= 0 || halos[0].Bounds.Height <= 0 {
		t.Errorf("halo bounds = %+v, want positive extent", halos[0].Bounds)
	}
}
