package dispatch

import (
	"github.com/funvibe/hostlink/internal/conversion"
	"github.com/funvibe/hostlink/internal/types"
)

// relation is the outcome of comparing a candidate's conversion costs
// against the best candidate found so far.
type relation int

const (
	better relation = iota
	worse
	equivalent
	ambiguous
)

func (r relation) String() string {
	switch r {
	case better:
		return "better"
	case worse:
		return "worse"
	case equivalent:
		return "equivalent"
	default:
		return "ambiguous"
	}
}

// compareRoutes weighs a candidate's suggested routes against the known
// best weight vector, position by position. Vector comparison is
// deliberate: weights are never summed across arguments, so one
// impossible conversion dominates no matter how cheap the rest are, and
// genuinely incomparable candidates surface as ambiguous instead of
// being ranked by an arbitrary aggregate.
//
// A zero-length argument list is trivially better: there is nothing to
// compare, so the first empty-arity candidate wins immediately.
func compareRoutes(known []conversion.Weight, suggested []*conversion.Route, insights []types.Insight) relation {
	if len(known) == 0 {
		return better
	}

	// Scan for witnesses on either side.
	worseWitness := false
	betterWitness := false
	for i := range known {
		suggestedWeight := suggested[i].TotalWeight(insights[i])
		if known[i].Less(suggestedWeight) {
			worseWitness = true
		} else if suggestedWeight.Less(known[i]) {
			betterWitness = true
		}
	}

	if worseWitness != betterWitness {
		if betterWitness {
			return better
		}
		return worse
	}
	if betterWitness {
		return ambiguous
	}
	return equivalent
}

// rememberWeights snapshots the suggested routes' weights into dst,
// making them the new known-best vector.
func rememberWeights(suggested []*conversion.Route, insights []types.Insight, dst []conversion.Weight) {
	for i := range suggested {
		dst[i] = suggested[i].TotalWeight(insights[i])
	}
}

// conversionPossible reports whether every position of a weight vector is
// a usable conversion.
func conversionPossible(weights []conversion.Weight) bool {
	for _, w := range weights {
		if !w.IsPossible() {
			return false
		}
	}
	return true
}
