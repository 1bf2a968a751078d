package conversion

// Releaser disposes of a value once the call that produced it no longer
// needs it. Frontends with reference-counted or manually-managed values
// plug in here; others use NoopReleaser.
type Releaser interface {
	Release(value any)
}

// NoopReleaser is for frontends whose values need no explicit disposal.
type NoopReleaser struct{}

func (NoopReleaser) Release(any) {}

// Scope collects the temporaries produced while converting one call's
// arguments. It is owned exclusively by the in-flight call and must be
// released on every exit path.
type Scope struct {
	temps []any
}

func NewScope() *Scope {
	return &Scope{}
}

// Track records a temporary for release at end of call. Safe on a nil
// scope, in which case the value is not tracked (used for post-call edge
// conversions whose results outlive the call).
func (s *Scope) Track(value any) {
	if s == nil {
		return
	}
	s.temps = append(s.temps, value)
}

// Len returns the number of tracked temporaries.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.temps)
}

// ReleaseAll disposes of every tracked temporary and empties the scope.
func (s *Scope) ReleaseAll(r Releaser) {
	if s == nil {
		return
	}
	for _, v := range s.temps {
		r.Release(v)
	}
	s.temps = s.temps[:0]
}
