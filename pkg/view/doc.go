// Package view derives the visual annotations of a flow from its group
// hierarchy: per-node and per-edge hidden flags, the synthetic boundary edges
// that stand in for connections into collapsed groups, and the padded halo
// rectangles drawn around expanded groups.
//
// All three computations are pure, full recomputations over immutable inputs.
// Nothing here is patched incrementally, which keeps reruns idempotent:
// [ApplyVisibility] over its own output changes nothing, and
// [ComputeSyntheticEdges] run twice over the same real edges produces the
// same set.
package view
