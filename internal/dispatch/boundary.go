package dispatch

import (
	"github.com/funvibe/hostlink/internal/conversion"
	"github.com/funvibe/hostlink/internal/types"
)

// Detector is the frontend side of the boundary: it inspects a caller's
// dynamically-typed value and reports its runtime type and insight.
// DetectType must be identity-stable: logically equal types yield the
// same *types.Descriptor on every call, or cache lookups break.
type Detector interface {
	DetectType(value any) *types.Descriptor
	DetectInsight(value any) types.Insight
}

// Router searches the conversion graph. BestSequenceRoute returns one
// route per argument, or a *conversion.NoRouteError when some argument
// cannot reach its formal type; resolution treats that error as "this
// alternative is inapplicable" and keeps scanning.
type Router interface {
	BestSequenceRoute(actuals []*types.Descriptor, insights []types.Insight, formal types.Signature) ([]*conversion.Route, error)
	EdgeConversion(returns *types.Descriptor) (conversion.Conversion, bool)
}

// Invoker is the invocation capability bound to one native function.
type Invoker interface {
	Invoke(args []any) (any, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(args []any) (any, error)

func (f InvokerFunc) Invoke(args []any) (any, error) { return f(args) }
