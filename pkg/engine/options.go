package engine

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowkit/pkg/cache"
	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/layout"
	"github.com/matzehuels/flowkit/pkg/view"
)

// =============================================================================
// Options - Engine Configuration
// =============================================================================

// Options carries the engine configuration: layout direction and spacing,
// halo padding, the geometry provider, and the logger. The zero value is
// usable after ValidateAndSetDefaults.
type Options struct {
	// Direction is the layout direction ("LR", "RL", "TB", "BT").
	Direction string `json:"direction,omitempty"`

	// Spacing controls layout distances.
	Spacing layout.Spacing `json:"spacing,omitempty"`

	// Padding controls halo padding.
	Padding view.PaddingConfig `json:"padding,omitempty"`

	// OrderingPasses bounds the layout's crossing-reduction sweeps.
	OrderingPasses int `json:"ordering_passes,omitempty"`

	// Runtime options (not serialized)
	Dimensions flow.DimensionsFunc `json:"-"`
	Logger     *log.Logger         `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the direction and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Direction == "" {
		o.Direction = flow.DirectionLR
	}
	switch o.Direction {
	case flow.DirectionLR, flow.DirectionRL, flow.DirectionTB, flow.DirectionBT:
	default:
		return errors.New(errors.ErrCodeInvalidDirection, "invalid direction: %q (must be one of: LR, RL, TB, BT)", o.Direction)
	}

	if o.Spacing == (layout.Spacing{}) {
		o.Spacing = layout.DefaultSpacing
	}
	if o.Padding == (view.PaddingConfig{}) {
		o.Padding = view.DefaultPadding
	}
	if o.Dimensions == nil {
		o.Dimensions = flow.FixedDimensions(150, 40)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// layoutOptions converts the engine options into layout options.
func (o *Options) layoutOptions() layout.Options {
	return layout.Options{
		Spacing:        o.Spacing,
		Dimensions:     o.Dimensions,
		OrderingPasses: o.OrderingPasses,
	}
}

// layoutKeyOpts returns the cache key options for layout computation.
func (o *Options) layoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Direction:    o.Direction,
		NodeSep:      o.Spacing.NodeSep,
		RankSep:      o.Spacing.RankSep,
		ComponentSep: o.Spacing.ComponentSep,
	}
}
