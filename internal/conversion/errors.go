package conversion

import (
	"fmt"

	"github.com/funvibe/hostlink/internal/types"
)

// NoRouteError reports that no conversion chain exists from an actual
// argument's type to the corresponding formal parameter type. Resolution
// treats it as "this alternative is inapplicable" and keeps scanning; it
// is a normal branch, not a fatal condition.
type NoRouteError struct {
	From     *types.Descriptor
	To       *types.Descriptor
	Position int
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("no conversion from %s to %s (argument %d)", e.From, e.To, e.Position)
}
