package conversion

import (
	"github.com/funvibe/hostlink/internal/types"
)

// Conversion is one edge in the conversion graph: it turns a value of its
// From type into a value of its To type. The price may depend on the
// argument's insight, e.g. a narrowing step can be cheap for values known
// to be small and impossible otherwise.
type Conversion interface {
	From() *types.Descriptor
	To() *types.Descriptor
	Weight(insight types.Insight) Weight
	// Apply converts value. A temporary allocated for the converted value
	// is tracked in scope (when non-nil) for release at end of call.
	Apply(value any, scope *Scope) (any, error)
}

// ApplyFunc converts a raw value.
type ApplyFunc func(value any) (any, error)

// WeightFunc prices a conversion for a given insight.
type WeightFunc func(insight types.Insight) Weight

type basicConversion struct {
	from, to *types.Descriptor
	weight   WeightFunc
	apply    ApplyFunc
}

// New builds a conversion with a fixed weight.
func New(from, to *types.Descriptor, w Weight, apply ApplyFunc) Conversion {
	return &basicConversion{
		from:   from,
		to:     to,
		weight: func(types.Insight) Weight { return w },
		apply:  apply,
	}
}

// NewWeighted builds a conversion whose price depends on the insight.
func NewWeighted(from, to *types.Descriptor, w WeightFunc, apply ApplyFunc) Conversion {
	return &basicConversion{from: from, to: to, weight: w, apply: apply}
}

func (c *basicConversion) From() *types.Descriptor { return c.from }

func (c *basicConversion) To() *types.Descriptor { return c.to }

func (c *basicConversion) Weight(insight types.Insight) Weight { return c.weight(insight) }

func (c *basicConversion) Apply(value any, scope *Scope) (any, error) {
	converted, err := c.apply(value)
	if err != nil {
		return nil, err
	}
	scope.Track(converted)
	return converted, nil
}
