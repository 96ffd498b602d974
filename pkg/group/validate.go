package group

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
)

// ValidationResult is the outcome of a pre-condition check for a mutating
// operation. Validation failures are values, never panics: they originate
// from user- or assistant-driven requests that must be reported back with a
// message naming the offending IDs. Code carries the machine-readable
// classification of the failure.
type ValidationResult struct {
	Valid bool        `json:"valid"`
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error,omitempty"`
}

func invalid(code errors.Code, format string, args ...any) ValidationResult {
	return ValidationResult{Valid: false, Code: code, Error: fmt.Sprintf(format, args...)}
}

// ValidateMembership checks whether candidateIDs can be grouped together over
// the given node set. It fails when:
//
//   - fewer than 2 candidates are given (INVALID_MEMBERSHIP)
//   - candidateIDs contains duplicates (INVALID_MEMBERSHIP)
//   - any ID does not resolve to an existing node (NODE_NOT_FOUND)
//   - any pair is in an ancestor/descendant relationship, which would cycle
//     the containment hierarchy (CYCLIC_GROUPING)
//
// Grouping nodes that already share a parent group (sub-grouping) and
// grouping group nodes themselves (nested super-grouping) are both valid.
func ValidateMembership(candidateIDs []string, nodes []flow.Node) ValidationResult {
	if len(candidateIDs) < 2 {
		return invalid(errors.ErrCodeInvalidMembership, "at least 2 nodes are required to form a group, got %d", len(candidateIDs))
	}

	seen := make(map[string]bool, len(candidateIDs))
	var dups []string
	for _, id := range candidateIDs {
		if seen[id] {
			dups = append(dups, id)
		}
		seen[id] = true
	}
	if len(dups) > 0 {
		return invalid(errors.ErrCodeInvalidMembership, "duplicate node IDs: %s", strings.Join(dups, ", "))
	}

	idx := flow.Index(nodes)
	var missing []string
	for _, id := range candidateIDs {
		if _, ok := idx[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return invalid(errors.ErrCodeNodeNotFound, "nodes not found: %s", strings.Join(missing, ", "))
	}

	// Pairwise ancestry check. O(n²) over Descendants is fine at the node
	// counts a hand-edited diagram reaches.
	desc := make(map[string]map[string]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		desc[id] = flow.Descendants(nodes, id)
	}
	for i, a := range candidateIDs {
		for _, b := range candidateIDs[i+1:] {
			if desc[a][b] || desc[b][a] {
				return invalid(errors.ErrCodeCyclicGrouping, "cannot group a node with its own ancestor or descendant: %s, %s", a, b)
			}
		}
	}

	return ValidationResult{Valid: true}
}
