// Package conversion prices and applies value conversions between runtime
// types. It provides the conversion table (the router consulted during
// overload resolution), priced routes through it, and the call-scoped
// tracking of temporaries produced while converting.
package conversion

// Weight is the cost of one conversion or of a whole route. Weights form a
// strict total order; Infinite marks a conversion that cannot happen and
// dominates any comparison it appears in. Per-argument weights are compared
// pairwise during resolution, never summed across arguments.
type Weight int

// Infinite is the impossible-conversion sentinel. It also seeds the
// "no candidate found yet" weight vector in resolution.
const Infinite Weight = 1 << 30

// Common single-step costs.
const (
	WeightExact     Weight = 0 // identity, no conversion
	WeightTrivial   Weight = 1 // representation-only change
	WeightPromotion Weight = 3 // widening within a numeric family
	WeightUser      Weight = 10
)

// Less reports whether w is strictly cheaper than o.
func (w Weight) Less(o Weight) bool { return w < o }

// IsPossible reports whether a conversion with this weight can happen.
func (w Weight) IsPossible() bool { return w < Infinite }

// Add saturates at Infinite so an impossible step poisons a whole route.
func (w Weight) Add(o Weight) Weight {
	if !w.IsPossible() || !o.IsPossible() {
		return Infinite
	}
	sum := w + o
	if !sum.IsPossible() {
		return Infinite
	}
	return sum
}
