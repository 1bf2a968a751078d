// Package dispatch resolves, at call time, which candidate native
// function of an overloaded set handles a call from a dynamically-typed
// caller. Resolution compares per-argument conversion costs pairwise
// across the whole argument list, detects genuinely ambiguous calls, and
// memoizes the winning alternative per call shape in a shared cache.
package dispatch

import (
	"errors"

	"github.com/google/uuid"

	"github.com/funvibe/hostlink/internal/conversion"
	"github.com/funvibe/hostlink/internal/trace"
	"github.com/funvibe/hostlink/internal/types"
)

// OverloadedSet owns an ordered collection of alternatives and the call
// resolution over them. Alternatives are append-only; insertion order is
// the stable tie-break and the cached index space, so entries are never
// removed or reordered.
//
// A set's identity (not its contents) is part of every cache key; the
// identity is fixed at construction.
type OverloadedSet struct {
	id           uuid.UUID
	name         string
	alternatives []*Alternative

	detector Detector
	router   Router
	releaser conversion.Releaser
	cache    *ResolutionCache
}

// NewOverloadedSet builds an empty set. A nil cache selects the shared
// process-wide cache.
func NewOverloadedSet(name string, detector Detector, router Router, cache *ResolutionCache) *OverloadedSet {
	if cache == nil {
		cache = SharedCache()
	}
	return &OverloadedSet{
		id:       uuid.New(),
		name:     name,
		detector: detector,
		router:   router,
		releaser: conversion.NoopReleaser{},
		cache:    cache,
	}
}

// SetReleaser installs the disposer for call-scoped temporaries and for
// values superseded by edge conversions.
func (s *OverloadedSet) SetReleaser(r conversion.Releaser) {
	if r == nil {
		r = conversion.NoopReleaser{}
	}
	s.releaser = r
}

func (s *OverloadedSet) Name() string { return s.name }

// ID returns the set's cache identity.
func (s *OverloadedSet) ID() uuid.UUID { return s.id }

// Len returns the number of registered alternatives.
func (s *OverloadedSet) Len() int { return len(s.alternatives) }

// AddAlternative registers one more candidate. Meant for the registration
// phase; if calls may already have been resolved against this set, follow
// up with ForceRecompute so stale cached decisions are discarded.
func (s *OverloadedSet) AddAlternative(alt *Alternative) {
	s.alternatives = append(s.alternatives, alt)
}

// AddAlternatives appends every alternative of another set, by reference.
// The source set is left untouched and remains usable.
func (s *OverloadedSet) AddAlternatives(other *OverloadedSet) {
	s.alternatives = append(s.alternatives, other.alternatives...)
}

// SeekAlternative finds an alternative whose signature equals prototype
// exactly, with no conversions considered. Used to detect duplicate
// registrations; not on the hot call path.
func (s *OverloadedSet) SeekAlternative(prototype types.Signature) *Alternative {
	for _, alt := range s.alternatives {
		if alt.Signature().Equal(prototype) {
			return alt
		}
	}
	return nil
}

// ForceRecompute flushes the resolution cache this set was built with.
// Required after alternatives are added to a set that may already have
// cached decisions; the cache is shared, so this clears all sets' entries.
func (s *OverloadedSet) ForceRecompute() {
	s.cache.Flush()
}

// Call resolves the overload for the given actual arguments, converts
// them, invokes the chosen alternative, and returns its (possibly
// edge-converted) result.
//
// Resolution consults the cache first; on a hit only conversion routing
// is recomputed, on a miss every arity-matching alternative is scanned
// and the winner is cached. All temporaries produced by conversions are
// released before Call returns, on every exit path.
func (s *OverloadedSet) Call(args []any) (any, error) {
	nargs := len(args)
	if nargs > ArgumentLimit {
		return nil, &ArgumentLimitError{Got: nargs, Limit: ArgumentLimit}
	}

	var typeBuf [ArgumentLimit]*types.Descriptor
	var insightBuf [ArgumentLimit]types.Insight
	actualTypes := typeBuf[:nargs]
	insights := insightBuf[:nargs]
	for i, arg := range args {
		actualTypes[i] = s.detector.DetectType(arg)
		insights[i] = s.detector.DetectInsight(arg)
	}

	scope := conversion.NewScope()
	defer scope.ReleaseAll(s.releaser)

	var match *Alternative
	var routes []*conversion.Route

	if index, ok := s.cache.Recall(s.id, actualTypes, insights); ok {
		trace.Tracef("%s: cache hit, alternative #%d", s.name, index)
		match = s.alternatives[index]
		recomputed, err := s.router.BestSequenceRoute(actualTypes, insights, match.Signature())
		if err != nil {
			return nil, &StaleCacheError{Set: s.name, Alternative: index, Err: err}
		}
		routes = recomputed
	} else {
		index, resolved, err := s.resolve(actualTypes, insights)
		if err != nil {
			return nil, err
		}
		s.cache.Remember(s.id, actualTypes, insights, index)
		match = s.alternatives[index]
		routes = resolved
	}

	converted := make([]any, nargs)
	for i, route := range routes {
		value, err := route.Apply(args[i], scope)
		if err != nil {
			return nil, err
		}
		converted[i] = value
	}

	result, err := match.Invoke(converted)
	if err != nil {
		return nil, err
	}
	return s.applyEdgeConversion(match.Returns(), result)
}

// resolve scans every arity-matching alternative and picks the one with
// the pairwise-cheapest conversion vector. Only one running best is kept,
// plus a sticky ambiguity flag: comparison is not transitive under ties,
// so a full ranking would be meaningless. The flag is cleared whenever a
// strictly better candidate appears later in registration order, which
// makes the final verdict order-dependent; that order dependence is part
// of the resolution semantics, not an accident.
func (s *OverloadedSet) resolve(actualTypes []*types.Descriptor, insights []types.Insight) (int, []*conversion.Route, error) {
	nargs := len(actualTypes)

	ambiguityAlert := false
	bestIndex := -1
	var best *Alternative
	var bestRoutes []*conversion.Route

	var weightBuf [ArgumentLimit]conversion.Weight
	bestWeight := weightBuf[:nargs]
	for i := range bestWeight {
		bestWeight[i] = conversion.Infinite
	}

	for index, alt := range s.alternatives {
		if alt.Arity() != nargs {
			continue
		}
		suggested, err := s.router.BestSequenceRoute(actualTypes, insights, alt.Signature())
		if err != nil {
			var noRoute *conversion.NoRouteError
			if errors.As(err, &noRoute) {
				trace.Tracef("%s: alternative #%d %s inapplicable: %v", s.name, index, alt, noRoute)
				continue
			}
			return 0, nil, err
		}

		rel := compareRoutes(bestWeight, suggested, insights)
		trace.Tracef("%s: alternative #%d %s is %s", s.name, index, alt, rel)
		switch rel {
		case better:
			best = alt
			bestIndex = index
			bestRoutes = suggested
			rememberWeights(suggested, insights, bestWeight)
			ambiguityAlert = false
		case worse:
			// keep searching
		case equivalent, ambiguous:
			if !alt.Identical(best) {
				ambiguityAlert = true
			}
		}
	}

	if best == nil || !conversionPossible(bestWeight) {
		return 0, nil, &NoMatchError{Set: s.name}
	}
	if ambiguityAlert {
		return 0, nil, &AmbiguityError{Set: s.name}
	}
	return bestIndex, bestRoutes, nil
}

// applyEdgeConversion applies the exit conversion registered for the
// alternative's declared return type, if any. The pre-conversion value is
// released only when a conversion actually took place; the converted
// result outlives the call and is deliberately not scope-tracked.
func (s *OverloadedSet) applyEdgeConversion(returns *types.Descriptor, result any) (any, error) {
	if returns == nil {
		return result, nil
	}
	exit, ok := s.router.EdgeConversion(returns)
	if !ok {
		return result, nil
	}
	converted, err := exit.Apply(result, nil)
	if err != nil {
		return nil, err
	}
	s.releaser.Release(result)
	return converted, nil
}
