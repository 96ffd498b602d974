package flow

import (
	"reflect"
	"sort"
	"testing"
)

// hierarchy returns a small nested fixture:
//
//	g1 (group)
//	├── a
//	├── b
//	└── g2 (group)
//	    └── c
//	d (top level)
func hierarchy() []Node {
	return []Node{
		{ID: "g1", Kind: KindGroup},
		{ID: "a", ParentGroupID: "g1"},
		{ID: "b", ParentGroupID: "g1"},
		{ID: "g2", Kind: KindGroup, ParentGroupID: "g1"},
		{ID: "c", ParentGroupID: "g2"},
		{ID: "d"},
	}
}

func TestDescendants(t *testing.T) {
	nodes := hierarchy()

	tests := []struct {
		group string
		want  []string
	}{
		{"g1", []string{"a", "b", "c", "g2"}},
		{"g2", []string{"c"}},
		{"d", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		got := keys(Descendants(nodes, tt.group))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Descendants(%q) = %v, want %v", tt.group, got, tt.want)
		}
	}
}

func TestDescendantsCyclicParents(t *testing.T) {
	// Malformed stored data: x and y are each other's parent.
	nodes := []Node{
		{ID: "x", Kind: KindGroup, ParentGroupID: "y"},
		{ID: "y", Kind: KindGroup, ParentGroupID: "x"},
	}

	got := keys(Descendants(nodes, "x"))
	if !reflect.DeepEqual(got, []string{"y"}) {
		t.Errorf("Descendants over cyclic parents = %v, want [y]", got)
	}
}

func TestIsAncestorOf(t *testing.T) {
	nodes := hierarchy()

	tests := []struct {
		a, b string
		want bool
	}{
		{"g1", "c", true},
		{"g1", "g2", true},
		{"g2", "a", false},
		{"c", "g1", false},
		{"g1", "d", false},
	}

	for _, tt := range tests {
		if got := IsAncestorOf(nodes, tt.a, tt.b); got != tt.want {
			t.Errorf("IsAncestorOf(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAncestors(t *testing.T) {
	nodes := hierarchy()

	if got := Ancestors(nodes, "c"); !reflect.DeepEqual(got, []string{"g2", "g1"}) {
		t.Errorf("Ancestors(c) = %v, want [g2 g1]", got)
	}
	if got := Ancestors(nodes, "d"); got != nil {
		t.Errorf("Ancestors(d) = %v, want nil", got)
	}
	if got := Ancestors(nodes, "missing"); got != nil {
		t.Errorf("Ancestors(missing) = %v, want nil", got)
	}
}

func TestAncestorsDanglingParent(t *testing.T) {
	nodes := []Node{{ID: "a", ParentGroupID: "ghost"}}
	if got := Ancestors(nodes, "a"); got != nil {
		t.Errorf("Ancestors with dangling parent = %v, want nil", got)
	}
}

func TestAncestorsCyclicParents(t *testing.T) {
	nodes := []Node{
		{ID: "x", Kind: KindGroup, ParentGroupID: "y"},
		{ID: "y", Kind: KindGroup, ParentGroupID: "x"},
	}

	// Must terminate; the chain stops at the first repeated ID.
	got := Ancestors(nodes, "x")
	if !reflect.DeepEqual(got, []string{"y"}) {
		t.Errorf("Ancestors over cyclic parents = %v, want [y]", got)
	}
}

func TestGroupDepth(t *testing.T) {
	nodes := hierarchy()

	tests := []struct {
		group string
		want  int
	}{
		{"g1", 1}, // g2 nested one level down
		{"g2", 0}, // no nested groups
		{"d", 0},
	}

	for _, tt := range tests {
		if got := GroupDepth(nodes, tt.group); got != tt.want {
			t.Errorf("GroupDepth(%q) = %d, want %d", tt.group, got, tt.want)
		}
	}
}

func TestGroupDepthDeepChain(t *testing.T) {
	nodes := []Node{
		{ID: "g1", Kind: KindGroup},
		{ID: "g2", Kind: KindGroup, ParentGroupID: "g1"},
		{ID: "g3", Kind: KindGroup, ParentGroupID: "g2"},
		{ID: "a", ParentGroupID: "g3"}, // regular nodes do not add depth
	}

	if got := GroupDepth(nodes, "g1"); got != 2 {
		t.Errorf("GroupDepth(g1) = %d, want 2", got)
	}
}

func TestLookup(t *testing.T) {
	nodes := hierarchy()

	if n, ok := Lookup(nodes, "g2"); !ok || n.Kind != KindGroup {
		t.Errorf("Lookup(g2) = %+v, %v", n, ok)
	}
	if _, ok := Lookup(nodes, "missing"); ok {
		t.Error("Lookup(missing) should report not found")
	}
}

func keys(m map[string]bool) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
