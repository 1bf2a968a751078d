// Package hostlink is the public surface of the overload dispatch core.
//
// It wires a dynamically-typed caller to statically-typed native Go
// functions: an OverloadedSet holds the candidate functions, a Frontend
// detects the runtime type of each caller value, and a conversion Table
// routes values to the formal parameter types of whichever candidate
// resolution picks.
//
// The package handles:
//   - Detecting runtime types and insights of Go dynamic values
//   - Binding Go functions and methods into callable Alternatives
//   - Grouping bound functions into overloaded sets from YAML config
//   - Re-exporting the internal dispatch and conversion types
package hostlink

import (
	"github.com/funvibe/hostlink/internal/conversion"
	"github.com/funvibe/hostlink/internal/dispatch"
	"github.com/funvibe/hostlink/internal/trace"
	"github.com/funvibe/hostlink/internal/types"
)

// Type model aliases
type Descriptor = types.Descriptor
type Insight = types.Insight
type InsightKind = types.InsightKind
type Interner = types.Interner
type Signature = types.Signature

// Conversion aliases
type Weight = conversion.Weight
type Conversion = conversion.Conversion
type Route = conversion.Route
type Table = conversion.Table
type Scope = conversion.Scope
type Releaser = conversion.Releaser
type NoRouteError = conversion.NoRouteError

// Dispatch aliases
type Alternative = dispatch.Alternative
type OverloadedSet = dispatch.OverloadedSet
type ResolutionCache = dispatch.ResolutionCache
type Detector = dispatch.Detector
type Router = dispatch.Router
type Invoker = dispatch.Invoker
type InvokerFunc = dispatch.InvokerFunc
type ArgumentLimitError = dispatch.ArgumentLimitError
type NoMatchError = dispatch.NoMatchError
type AmbiguityError = dispatch.AmbiguityError
type StaleCacheError = dispatch.StaleCacheError

// ArgumentLimit is the hard ceiling on a call's argument count.
const ArgumentLimit = dispatch.ArgumentLimit

// Re-export constants
const (
	Infinite        = conversion.Infinite
	WeightExact     = conversion.WeightExact
	WeightTrivial   = conversion.WeightTrivial
	WeightPromotion = conversion.WeightPromotion
	WeightUser      = conversion.WeightUser
)

// NewSet builds an overloaded set over the given boundary collaborators.
// A nil cache selects the process-wide shared cache.
func NewSet(name string, detector Detector, router Router, cache *ResolutionCache) *OverloadedSet {
	return dispatch.NewOverloadedSet(name, detector, router, cache)
}

// NewAlternative binds a signature and return type to an invoker.
func NewAlternative(signature Signature, returns *Descriptor, invoker Invoker) *Alternative {
	return dispatch.NewAlternative(signature, returns, invoker)
}

// NewTable builds an empty conversion table.
func NewTable() *Table {
	return conversion.NewTable()
}

// ApplyFunc converts a raw value.
type ApplyFunc = conversion.ApplyFunc

// WeightFunc prices a conversion for a given insight.
type WeightFunc = conversion.WeightFunc

// NewConversionEdge builds a fixed-weight conversion edge.
func NewConversionEdge(from, to *Descriptor, w Weight, apply ApplyFunc) Conversion {
	return conversion.New(from, to, w, apply)
}

// NewWeightedConversionEdge builds an edge whose price depends on the
// argument's insight.
func NewWeightedConversionEdge(from, to *Descriptor, w WeightFunc, apply ApplyFunc) Conversion {
	return conversion.NewWeighted(from, to, w, apply)
}

// NewCache builds a private resolution cache, for callers that want
// isolation from the shared one.
func NewCache() *ResolutionCache {
	return dispatch.NewResolutionCache()
}

// SharedCache returns the process-wide resolution cache.
func SharedCache() *ResolutionCache {
	return dispatch.SharedCache()
}

// EnableTrace switches resolution tracing on or off.
func EnableTrace(on bool) {
	trace.Enable(on)
}
