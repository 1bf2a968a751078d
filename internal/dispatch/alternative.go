package dispatch

import (
	"github.com/funvibe/hostlink/internal/types"
)

// Alternative is one candidate native function in an overloaded set: a
// fixed-arity formal signature, a declared return type, and the capability
// to invoke the underlying function. Immutable once constructed.
type Alternative struct {
	signature types.Signature
	returns   *types.Descriptor
	invoker   Invoker
}

// NewAlternative binds a signature and return type to an invoker. The
// signature slice is copied so later mutation by the caller cannot reach
// the alternative.
func NewAlternative(signature types.Signature, returns *types.Descriptor, invoker Invoker) *Alternative {
	sig := make(types.Signature, len(signature))
	copy(sig, signature)
	return &Alternative{signature: sig, returns: returns, invoker: invoker}
}

func (a *Alternative) Signature() types.Signature { return a.signature }

func (a *Alternative) Returns() *types.Descriptor { return a.returns }

// Arity returns the number of formal parameters.
func (a *Alternative) Arity() int { return len(a.signature) }

// Invoke calls the underlying native function with converted arguments.
func (a *Alternative) Invoke(args []any) (any, error) {
	return a.invoker.Invoke(args)
}

// Identical reports element-wise signature equality. Identical
// alternatives can legitimately coexist in a set (e.g. a const/non-const
// pair on the native side); a tie between them is not an ambiguity.
func (a *Alternative) Identical(o *Alternative) bool {
	if o == nil {
		return false
	}
	return a.signature.Equal(o.signature)
}

func (a *Alternative) String() string {
	s := a.signature.String()
	if a.returns != nil {
		s += " -> " + a.returns.Name()
	}
	return s
}
