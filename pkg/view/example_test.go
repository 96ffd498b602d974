package view_test

import (
	"fmt"

	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/view"
)

func ExampleComputeSyntheticEdges() {
	nodes := []flow.Node{
		{ID: "client"},
		{ID: "backend", Kind: flow.KindGroup, IsCollapsed: true},
		{ID: "api", ParentGroupID: "backend"},
	}
	edges := []flow.Edge{
		{ID: "e1", Source: "client", Target: "api"},
	}

	for _, e := range view.ComputeSyntheticEdges(nodes, edges) {
		fmt.Printf("%s: %s -> %s\n", e.ID, e.Source, e.Target)
	}
	// Output: syn:client->backend: client -> backend
}

func ExampleApplyVisibility() {
	nodes := []flow.Node{
		{ID: "backend", Kind: flow.KindGroup, IsCollapsed: true},
		{ID: "api", ParentGroupID: "backend"},
		{ID: "client"},
	}

	outNodes, _ := view.ApplyVisibility(nodes, nil)
	for _, n := range outNodes {
		fmt.Printf("%s hidden=%v\n", n.ID, n.Hidden)
	}
	// Output:
	// backend hidden=false
	// api hidden=true
	// client hidden=false
}
