package group

import (
	"github.com/google/uuid"

	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
)

// createPositionOffsetY is how far above the member centroid a new group
// node is placed when the caller does not supply a position.
const createPositionOffsetY = -40

// CreateOptions configures Create.
type CreateOptions struct {
	// GroupID is the ID for the new group node. When empty, a UUID is generated.
	GroupID string `json:"groupId,omitempty"`
	// Label is the display label for the group node.
	Label string `json:"label,omitempty"`
	// MemberIDs are the nodes to place into the group. At least 2 required.
	MemberIDs []string `json:"memberIds"`
	// Position overrides the default placement (member centroid, offset
	// vertically).
	Position *flow.Position `json:"position,omitempty"`
	// Collapse sets the initial display state. Defaults to collapsed.
	Collapse *bool `json:"collapse,omitempty"`
}

// Create assigns each member's ParentGroupID to the new group and appends the
// group node. The group defaults to collapsed unless opts.Collapse overrides
// it. The input flow is never mutated; a new Flow is returned along with the
// group's ID (generated when opts.GroupID is empty).
//
// Create does not recompute visibility or synthetic edges - callers run the
// view stages afterward, as the engine pipeline does.
func Create(f flow.Flow, opts CreateOptions) (flow.Flow, string, error) {
	if v := ValidateMembership(opts.MemberIDs, f.Nodes); !v.Valid {
		return flow.Flow{}, "", errors.New(v.Code, "%s", v.Error)
	}

	groupID := opts.GroupID
	if groupID == "" {
		groupID = uuid.NewString()
	}
	if _, exists := flow.Lookup(f.Nodes, groupID); exists {
		return flow.Flow{}, "", errors.New(errors.ErrCodeInvalidInput, "node ID already in use: %s", groupID)
	}

	members := make(map[string]bool, len(opts.MemberIDs))
	for _, id := range opts.MemberIDs {
		members[id] = true
	}

	out := f.Clone()
	for i := range out.Nodes {
		if members[out.Nodes[i].ID] {
			out.Nodes[i].ParentGroupID = groupID
		}
	}

	collapsed := true
	if opts.Collapse != nil {
		collapsed = *opts.Collapse
	}

	groupNode := flow.Node{
		ID:          groupID,
		Kind:        flow.KindGroup,
		Label:       opts.Label,
		IsCollapsed: collapsed,
	}
	if opts.Position != nil {
		groupNode.Position = *opts.Position
	} else {
		groupNode.Position = centroid(f.Nodes, opts.MemberIDs)
		groupNode.Position.Y += createPositionOffsetY
	}

	// A nested group inherits the parent shared by all members, if any, so the
	// new group slots into the hierarchy at the members' level.
	if parent, ok := sharedParent(f.Nodes, opts.MemberIDs); ok {
		groupNode.ParentGroupID = parent
	}

	out.Nodes = append(out.Nodes, groupNode)
	return out, groupID, nil
}

// Ungroup removes the group node and re-parents every direct member to the
// removed group's own parent, so ungrouping a nested group moves members one
// level up rather than flattening the whole hierarchy. Members of a top-level
// group become top-level nodes.
func Ungroup(f flow.Flow, groupID string) (flow.Flow, error) {
	g, ok := flow.Lookup(f.Nodes, groupID)
	if !ok {
		return flow.Flow{}, errors.New(errors.ErrCodeGroupNotFound, "group not found: %s", groupID)
	}
	if !g.IsGroup() {
		return flow.Flow{}, errors.New(errors.ErrCodeInvalidInput, "node is not a group: %s", groupID)
	}

	out := f.Clone()
	nodes := out.Nodes[:0]
	for _, n := range out.Nodes {
		if n.ID == groupID {
			continue
		}
		if n.ParentGroupID == groupID {
			n.ParentGroupID = g.ParentGroupID
		}
		nodes = append(nodes, n)
	}
	out.Nodes = nodes
	return out, nil
}

// Toggle flips or sets the collapsed state of a group. When collapsed is nil
// the current value is toggled; otherwise it is set.
func Toggle(f flow.Flow, groupID string, collapsed *bool) (flow.Flow, error) {
	g, ok := flow.Lookup(f.Nodes, groupID)
	if !ok {
		return flow.Flow{}, errors.New(errors.ErrCodeGroupNotFound, "group not found: %s", groupID)
	}
	if !g.IsGroup() {
		return flow.Flow{}, errors.New(errors.ErrCodeInvalidInput, "node is not a group: %s", groupID)
	}

	out := f.Clone()
	for i := range out.Nodes {
		if out.Nodes[i].ID != groupID {
			continue
		}
		if collapsed != nil {
			out.Nodes[i].IsCollapsed = *collapsed
		} else {
			out.Nodes[i].IsCollapsed = !out.Nodes[i].IsCollapsed
		}
	}
	return out, nil
}

// centroid returns the average position of the given nodes.
func centroid(nodes []flow.Node, ids []string) flow.Position {
	idx := flow.Index(nodes)
	var sum flow.Position
	count := 0
	for _, id := range ids {
		i, ok := idx[id]
		if !ok {
			continue
		}
		sum.X += nodes[i].Position.X
		sum.Y += nodes[i].Position.Y
		count++
	}
	if count == 0 {
		return flow.Position{}
	}
	return flow.Position{X: sum.X / float64(count), Y: sum.Y / float64(count)}
}

// sharedParent returns the parent group shared by all the given nodes, or
// false when they have differing parents or none.
func sharedParent(nodes []flow.Node, ids []string) (string, bool) {
	idx := flow.Index(nodes)
	parent := ""
	for i, id := range ids {
		ni, ok := idx[id]
		if !ok {
			return "", false
		}
		if i == 0 {
			parent = nodes[ni].ParentGroupID
			continue
		}
		if nodes[ni].ParentGroupID != parent {
			return "", false
		}
	}
	return parent, parent != ""
}
