package view

import (
	"math"
	"slices"

	"github.com/matzehuels/flowkit/pkg/flow"
)

// =============================================================================
// Halo - Padded Bounds of an Expanded Group
// =============================================================================

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Halo is the padded bounding rectangle drawn around an expanded group's
// visible members.
type Halo struct {
	GroupID string `json:"groupId"`
	Label   string `json:"label,omitempty"`
	Bounds  Rect   `json:"bounds"`
}

// Area returns the area of the halo bounds.
func (h Halo) Area() float64 { return h.Bounds.Width * h.Bounds.Height }

// PaddingConfig controls halo padding. Vertical padding grows with group
// nesting depth so ancestor halos stay visually distinct without linear
// blow-up; horizontal padding is constant.
type PaddingConfig struct {
	// Base is the padding applied on every side regardless of depth.
	Base float64 `toml:"base" json:"base"`
	// Increment is the first extra vertical step added per nesting layer.
	Increment float64 `toml:"increment" json:"increment"`
	// Decay scales the increment for each deeper layer (0 < Decay <= 1).
	Decay float64 `toml:"decay" json:"decay"`
	// MinStep is the floor each decayed layer contribution is clamped to.
	MinStep float64 `toml:"min_step" json:"minStep"`
}

// DefaultPadding is the padding used when no configuration is supplied.
var DefaultPadding = PaddingConfig{
	Base:      24,
	Increment: 18,
	Decay:     0.6,
	MinStep:   4,
}

// VerticalPadding returns the padding applied above and below a group whose
// nested-group subtree has the given height:
//
//	base + Σ_{layer=0}^{depth-1} max(minStep, round(increment · decay^layer))
func (p PaddingConfig) VerticalPadding(depth int) float64 {
	pad := p.Base
	for layer := 0; layer < depth; layer++ {
		step := math.Round(p.Increment * math.Pow(p.Decay, float64(layer)))
		if step < p.MinStep {
			step = p.MinStep
		}
		pad += step
	}
	return pad
}

// HorizontalPadding returns the padding applied left and right of a group.
// It does not grow with depth.
func (p PaddingConfig) HorizontalPadding() float64 { return p.Base }

// =============================================================================
// Halo Computation
// =============================================================================

// ComputeHalos returns one halo per expanded, not-ancestor-hidden group,
// bounding the group's visible descendants with depth-aware padding.
//
// ApplyVisibility must have run on nodes first: the hidden flags decide both
// which groups get a halo (expanded, not group-hidden) and which descendants
// contribute to the bounds (not hidden, not group-hidden). A nested collapsed
// sub-group is itself a visible descendant and contributes its own box, but
// produces no halo of its own.
//
// Halos are returned sorted by area, smallest first, which gives callers
// stable innermost-first hit testing for double-click targeting.
func ComputeHalos(nodes []flow.Node, dims flow.DimensionsFunc, pad PaddingConfig) []Halo {
	if dims == nil {
		dims = flow.FixedDimensions(0, 0)
	}

	idx := flow.Index(nodes)
	var halos []Halo

	for _, g := range nodes {
		if !g.IsGroup() || g.Display() != flow.Expanded || g.GroupHidden {
			continue
		}

		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		found := false

		for id := range flow.Descendants(nodes, g.ID) {
			i, ok := idx[id]
			if !ok {
				continue
			}
			n := nodes[i]
			if n.Hidden || n.GroupHidden {
				continue
			}
			d := dims(n)
			minX = math.Min(minX, n.Position.X)
			minY = math.Min(minY, n.Position.Y)
			maxX = math.Max(maxX, n.Position.X+d.Width)
			maxY = math.Max(maxY, n.Position.Y+d.Height)
			found = true
		}
		if !found {
			continue
		}

		depth := flow.GroupDepth(nodes, g.ID)
		vpad := pad.VerticalPadding(depth)
		hpad := pad.HorizontalPadding()

		halos = append(halos, Halo{
			GroupID: g.ID,
			Label:   g.DisplayLabel(),
			Bounds: Rect{
				X:      minX - hpad,
				Y:      minY - vpad,
				Width:  (maxX - minX) + 2*hpad,
				Height: (maxY - minY) + 2*vpad,
			},
		})
	}

	slices.SortStableFunc(halos, func(a, b Halo) int {
		switch {
		case a.Area() < b.Area():
			return -1
		case a.Area() > b.Area():
			return 1
		default:
			return 0
		}
	})
	return halos
}
