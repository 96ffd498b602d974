// Package group implements the pure mutation operations over the group
// hierarchy: creating a group, dissolving one, and toggling its display
// state, plus the membership validation that guards them.
//
// Every operation takes a [flow.Flow] and returns a new one; inputs are never
// mutated. Operations do not recompute derived state - the engine package
// chains them with the view stages (visibility, synthetic edges) the way a
// command layer is expected to.
package group
