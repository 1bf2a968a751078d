package conversion

import (
	"fmt"

	"github.com/funvibe/hostlink/internal/types"
)

// Route is a chain of conversions from one runtime type to one formal
// parameter type. An empty route is the identity: the actual type already
// is the formal type and Apply passes the value through untouched.
type Route struct {
	from, to *types.Descriptor
	steps    []Conversion
}

// IdentityRoute is the zero-cost route from a type to itself.
func IdentityRoute(d *types.Descriptor) *Route {
	return &Route{from: d, to: d}
}

// NewRoute chains steps; each step's To must be the next step's From.
func NewRoute(from, to *types.Descriptor, steps []Conversion) *Route {
	return &Route{from: from, to: to, steps: steps}
}

func (r *Route) From() *types.Descriptor { return r.from }

func (r *Route) To() *types.Descriptor { return r.to }

// Empty reports whether this is an identity route.
func (r *Route) Empty() bool { return len(r.steps) == 0 }

// TotalWeight prices the whole chain for a given insight. The identity
// route costs WeightExact; any impossible step makes the total Infinite.
func (r *Route) TotalWeight(insight types.Insight) Weight {
	total := WeightExact
	for _, step := range r.steps {
		total = total.Add(step.Weight(insight))
	}
	return total
}

// Apply runs the value through every step in order, tracking intermediate
// temporaries in scope.
func (r *Route) Apply(value any, scope *Scope) (any, error) {
	current := value
	for _, step := range r.steps {
		next, err := step.Apply(current, scope)
		if err != nil {
			return nil, fmt.Errorf("converting %s to %s: %w", step.From(), step.To(), err)
		}
		current = next
	}
	return current, nil
}
