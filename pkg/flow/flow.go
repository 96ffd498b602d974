package flow

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds.
const (
	// KindRegular is an ordinary diagram node.
	KindRegular = "regular"
	// KindGroup is a node that owns member nodes via their ParentGroupID.
	KindGroup = "group"
)

// Layout directions.
const (
	DirectionLR = "LR" // left to right
	DirectionRL = "RL" // right to left
	DirectionTB = "TB" // top to bottom
	DirectionBT = "BT" // bottom to top
)

// =============================================================================
// Flow - Node/Edge Graph Serialization
// =============================================================================

// Flow is the canonical serialization format for a diagram graph.
// It is the unit of input and output for every engine function: mutations,
// visibility recomputation, synthetic edge derivation, and layout all accept
// a Flow (or its node/edge slices) and produce a new one.
//
// A Flow is a plain value. Engine functions never mutate the slices they
// receive; they return fresh copies so two callers can operate on independent
// snapshots without coordination.
type Flow struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Clone returns a deep copy of the flow. Node and edge structs are copied by
// value, so mutating the clone never affects the original.
func (f Flow) Clone() Flow {
	out := Flow{
		Nodes: make([]Node, len(f.Nodes)),
		Edges: make([]Edge, len(f.Edges)),
	}
	copy(out.Nodes, f.Nodes)
	copy(out.Edges, f.Edges)
	return out
}

// =============================================================================
// Node
// =============================================================================

// Position is a 2D coordinate in user units (typically pixels).
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is the unified node type for all serialization contexts.
//
// ParentGroupID, where present, references a node of kind "group". The
// relation must be acyclic; traversal helpers guard against malformed stored
// data instead of assuming it.
//
// Hidden and GroupHidden are derived by the visibility engine and have no
// independent lifecycle: they are recomputed from scratch on every pass.
// GroupHidden is true only when the node is hidden because an ancestor group
// is collapsed; Hidden may additionally be true for reasons outside the
// engine (an explicit external hide), in which case GroupHidden stays false.
type Node struct {
	ID            string   `json:"id" bson:"id"`
	Kind          string   `json:"kind,omitempty" bson:"kind,omitempty"` // "regular" (default) or "group"
	Label         string   `json:"label,omitempty" bson:"label,omitempty"`
	Position      Position `json:"position" bson:"position"`
	ParentGroupID string   `json:"parentGroupId,omitempty" bson:"parent_group_id,omitempty"`
	IsCollapsed   bool     `json:"isCollapsed,omitempty" bson:"is_collapsed,omitempty"` // meaningful only on group nodes
	Hidden        bool     `json:"hidden,omitempty" bson:"hidden,omitempty"`
	GroupHidden   bool     `json:"groupHidden,omitempty" bson:"group_hidden,omitempty"`
}

// IsGroup reports whether the node is a group node.
func (n Node) IsGroup() bool { return n.Kind == KindGroup }

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// DisplayState - Collapsed vs. Expanded
// =============================================================================

// DisplayState is the display state of a group node.
//
// The visibility rules for group nodes are inverted relative to their
// members: a Collapsed group is shown in place of its members, an Expanded
// group disappears and its members are shown instead. Modeling the state as
// an explicit type keeps that inversion visible at call sites; the raw
// IsCollapsed bool only exists at the serialization boundary.
type DisplayState int

const (
	// Expanded means the group node itself is invisible and its members are shown.
	Expanded DisplayState = iota
	// Collapsed means the group is shown as a single node and its members are hidden.
	Collapsed
)

// String returns "expanded" or "collapsed".
func (s DisplayState) String() string {
	if s == Collapsed {
		return "collapsed"
	}
	return "expanded"
}

// Display returns the node's display state. For non-group nodes the result
// is meaningless and callers should not consult it.
func (n Node) Display() DisplayState {
	if n.IsCollapsed {
		return Collapsed
	}
	return Expanded
}

// =============================================================================
// Edge
// =============================================================================

// Edge represents a directed connection between two nodes.
//
// Synthetic edges are boundary edges derived for collapsed groups. They are
// never ground truth: every recomputation discards the prior synthetic set
// and derives a fresh one from the real edges alone.
type Edge struct {
	ID          string `json:"id" bson:"id"`
	Source      string `json:"source" bson:"source"`
	Target      string `json:"target" bson:"target"`
	IsSynthetic bool   `json:"isSynthetic,omitempty" bson:"is_synthetic,omitempty"`
	Hidden      bool   `json:"hidden,omitempty" bson:"hidden,omitempty"`
	GroupHidden bool   `json:"groupHidden,omitempty" bson:"group_hidden,omitempty"`
}

// =============================================================================
// Geometry Provider
// =============================================================================

// Dimensions is the rendered size of a node, supplied by the rendering layer.
// The engine has no opinion on what the numbers mean physically.
type Dimensions struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// DimensionsFunc resolves the rendered size of a node. Halo computation and
// layout call it for every visible node.
type DimensionsFunc func(Node) Dimensions

// FixedDimensions returns a DimensionsFunc that reports the same size for
// every node. Useful as a default and in tests.
func FixedDimensions(width, height float64) DimensionsFunc {
	return func(Node) Dimensions { return Dimensions{Width: width, Height: height} }
}
