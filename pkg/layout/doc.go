// Package layout places the visible subset of a flow using a rank-based
// layered algorithm: longest-path rank assignment along the primary axis,
// barycenter plus adjacent-swap crossing reduction along the perpendicular
// axis, chain straightening, and per-rank compaction.
//
// The layout is keyed on the visible real and synthetic edge set, so a
// collapsed group participates through its boundary edges exactly like a
// plain node. Hidden nodes keep their stored positions untouched, and
// disconnected components are laid out independently.
package layout
