package dispatch

import "fmt"

// ArgumentLimitError reports a call with more arguments than the fixed
// resolution limit. The limit is a hard ceiling: resolution works on
// fixed-size stack arrays of that bound.
type ArgumentLimitError struct {
	Got   int
	Limit int
}

func (e *ArgumentLimitError) Error() string {
	return fmt.Sprintf("argument limit exceeded: %d arguments, limit is %d", e.Got, e.Limit)
}

// NoMatchError reports that no alternative in the set accepts the given
// argument types. Recoverable: the caller may try another set or surface
// a type error to its user.
type NoMatchError struct {
	Set string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("%s: no overloaded alternative matches arguments", e.Set)
}

// AmbiguityError reports that two or more genuinely distinct alternatives
// tie for best. Recoverable: it indicates the registered overloads are
// underspecified for these argument types.
type AmbiguityError struct {
	Set string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%s: call is ambiguous with given arguments", e.Set)
}

// StaleCacheError reports that a cached resolution named an alternative
// the current conversion graph can no longer route to. This is a logic
// invariant violation (alternatives changed without ForceRecompute), not
// a normal user error.
type StaleCacheError struct {
	Set         string
	Alternative int
	Err         error
}

func (e *StaleCacheError) Error() string {
	return fmt.Sprintf("%s: cached alternative %d is no longer routable: %v", e.Set, e.Alternative, e.Err)
}

func (e *StaleCacheError) Unwrap() error { return e.Err }
