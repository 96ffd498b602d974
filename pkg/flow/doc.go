// Package flow defines the node/edge graph model shared by every engine
// stage and its derived queries over the group hierarchy.
//
// A [Flow] is a plain value: nodes and edges live in owned slices, and all
// relations between them (edge endpoints, group membership) are ID
// references. Engine stages never mutate a Flow in place; each stage copies
// what it changes and returns a new value, which is what makes reruns
// idempotent and concurrent callers safe over independent snapshots.
//
// # Group hierarchy
//
// Nodes of kind "group" own member nodes through the members' ParentGroupID
// field. The relation forms a tree in healthy data; the query helpers
// ([Descendants], [Ancestors], [GroupDepth]) are written defensively so that
// data produced by older or buggy versions of the system (dangling parents,
// accidental cycles) still traverses to a terminating result instead of
// looping or panicking.
//
// # Derived fields
//
// Node.Hidden, Node.GroupHidden and the synthetic edge set are derived state.
// They are recomputed from scratch on every pass by the view package and must
// never be hand-edited; the flow package only carries them.
package flow
