package flow

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowkit/pkg/errors"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	f := Flow{
		Nodes: []Node{
			{ID: "b", Position: Position{X: 10, Y: 20}},
			{ID: "g1", Kind: KindGroup, Label: "Backend", IsCollapsed: true},
			{ID: "a", ParentGroupID: "g1", Hidden: true, GroupHidden: true},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "syn:g1->b", Source: "g1", Target: "b", IsSynthetic: true},
		},
	}

	data, err := Marshal(f)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if len(got.Nodes) != 3 || len(got.Edges) != 2 {
		t.Fatalf("round trip lost elements: %d nodes, %d edges", len(got.Nodes), len(got.Edges))
	}

	n, ok := Lookup(got.Nodes, "a")
	if !ok {
		t.Fatal("node a missing after round trip")
	}
	if n.ParentGroupID != "g1" || !n.Hidden || !n.GroupHidden {
		t.Errorf("node a fields lost: %+v", n)
	}

	if !got.Edges[1].IsSynthetic {
		t.Error("synthetic flag lost on edge")
	}
}

func TestMarshalSortsNodesByID(t *testing.T) {
	f := Flow{Nodes: []Node{{ID: "z"}, {ID: "a"}, {ID: "m"}}}

	data, err := Marshal(f)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	s := string(data)
	if !(strings.Index(s, `"a"`) < strings.Index(s, `"m"`) && strings.Index(s, `"m"`) < strings.Index(s, `"z"`)) {
		t.Errorf("nodes not sorted by ID in output:\n%s", s)
	}

	// The input slice keeps its original order.
	if f.Nodes[0].ID != "z" {
		t.Error("Marshal mutated the input flow")
	}
}

func TestMarshalFieldNames(t *testing.T) {
	f := Flow{Nodes: []Node{
		{ID: "a", ParentGroupID: "g1", GroupHidden: true},
		{ID: "g1", Kind: KindGroup, IsCollapsed: true},
	}}

	data, err := Marshal(f)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	for _, field := range []string{`"parentGroupId"`, `"groupHidden"`, `"isCollapsed"`} {
		if !bytes.Contains(data, []byte(field)) {
			t.Errorf("serialized flow missing field %s:\n%s", field, data)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	f := Flow{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{{ID: "e1", Source: "a", Target: "b"}},
	}

	if err := WriteFile(f, path); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Errorf("file round trip lost elements: %+v", got)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestReadMalformed(t *testing.T) {
	if _, err := Read(strings.NewReader("{not json")); err == nil {
		t.Error("Read of malformed JSON should error")
	}
}
