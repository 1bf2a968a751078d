package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/funvibe/hostlink/internal/conversion"
	"github.com/funvibe/hostlink/internal/types"
)

// testValue is a caller-side dynamic value: the detector reads its type
// and insight, conversions and invokers read its payload.
type testValue struct {
	typ     *types.Descriptor
	insight types.Insight
	payload any
}

type testDetector struct {
	typeCalls int
}

func (d *testDetector) DetectType(v any) *types.Descriptor {
	d.typeCalls++
	return v.(testValue).typ
}

func (d *testDetector) DetectInsight(v any) types.Insight {
	return v.(testValue).insight
}

// probeRouter counts routing requests so tests can tell a full resolution
// scan apart from a cache-hit reroute.
type probeRouter struct {
	inner         Router
	sequenceCalls int
}

func (r *probeRouter) BestSequenceRoute(actuals []*types.Descriptor, insights []types.Insight, formal types.Signature) ([]*conversion.Route, error) {
	r.sequenceCalls++
	return r.inner.BestSequenceRoute(actuals, insights, formal)
}

func (r *probeRouter) EdgeConversion(d *types.Descriptor) (conversion.Conversion, bool) {
	return r.inner.EdgeConversion(d)
}

type recordingReleaser struct {
	released []any
}

func (r *recordingReleaser) Release(v any) { r.released = append(r.released, v) }

// payloadOf unwraps a testValue that reached an invoker unconverted.
func payloadOf(v any) any {
	if tv, ok := v.(testValue); ok {
		return tv.payload
	}
	return v
}

// invokeNamed builds an invoker that tags its result with the chosen
// alternative's name, so tests can see which candidate won.
func invokeNamed(name string) Invoker {
	return InvokerFunc(func(args []any) (any, error) {
		result := name
		for _, a := range args {
			result += fmt.Sprintf(":%v", payloadOf(a))
		}
		return result, nil
	})
}

type testEnv struct {
	interner *types.Interner
	intT     *types.Descriptor
	floatT   *types.Descriptor
	textT    *types.Descriptor
	table    *conversion.Table
	detector *testDetector
	router   *probeRouter
	cache    *ResolutionCache
}

func newTestEnv() *testEnv {
	in := types.NewInterner()
	env := &testEnv{
		interner: in,
		intT:     in.Intern("Int"),
		floatT:   in.Intern("Float"),
		textT:    in.Intern("Text"),
		table:    conversion.NewTable(),
		detector: &testDetector{},
		cache:    NewResolutionCache(),
	}
	env.router = &probeRouter{inner: env.table}

	env.table.RegisterConversion(conversion.New(env.intT, env.floatT, conversion.WeightPromotion,
		func(v any) (any, error) {
			return float64(v.(testValue).payload.(int64)), nil
		}))
	return env
}

func (e *testEnv) newSet(name string) *OverloadedSet {
	return NewOverloadedSet(name, e.detector, e.router, e.cache)
}

func (e *testEnv) intValue(n int64) testValue {
	return testValue{typ: e.intT, insight: types.Insight{Kind: types.InsightNumericRange, Rank: 0}, payload: n}
}

func (e *testEnv) floatValue(f float64) testValue {
	return testValue{typ: e.floatT, insight: types.NoInsight, payload: f}
}

func (e *testEnv) textValue(s string) testValue {
	return testValue{typ: e.textT, insight: types.NoInsight, payload: s}
}

func TestCallExactMatchAcrossArities(t *testing.T) {
	env := newTestEnv()
	set := env.newSet("mixed")
	set.AddAlternative(NewAlternative(types.Signature{}, nil, invokeNamed("zero")))
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("one")))
	set.AddAlternative(NewAlternative(types.Signature{env.intT, env.intT}, nil, invokeNamed("two")))

	result, err := set.Call([]any{env.intValue(7)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "one:7" {
		t.Errorf("result = %v, want one:7", result)
	}

	result, err = set.Call([]any{env.intValue(1), env.intValue(2)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "two:1:2" {
		t.Errorf("result = %v, want two:1:2", result)
	}
}

func TestCallZeroArity(t *testing.T) {
	env := newTestEnv()
	set := env.newSet("nullary")
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("unary")))
	set.AddAlternative(NewAlternative(types.Signature{}, nil, invokeNamed("nullary")))

	result, err := set.Call(nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "nullary" {
		t.Errorf("result = %v, want nullary", result)
	}
}

func TestCallPrefersCheaperConversion(t *testing.T) {
	// A(Int) costs nothing for an int argument, B(Float) costs a
	// promotion; A must win and its native result must come back.
	env := newTestEnv()
	set := env.newSet("write")
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("A")))
	set.AddAlternative(NewAlternative(types.Signature{env.floatT}, nil, invokeNamed("B")))

	result, err := set.Call([]any{env.intValue(5)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "A:5" {
		t.Errorf("result = %v, want A:5", result)
	}

	// A float argument routes to B without ambiguity.
	result, err = set.Call([]any{env.floatValue(2.5)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "B:2.5" {
		t.Errorf("result = %v, want B:2.5", result)
	}
}

func TestCallCachesResolution(t *testing.T) {
	env := newTestEnv()
	set := env.newSet("cached")
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("A")))
	set.AddAlternative(NewAlternative(types.Signature{env.floatT}, nil, invokeNamed("B")))

	first, err := set.Call([]any{env.intValue(1)})
	if err != nil {
		t.Fatalf("first Call: %v", err)
	}
	scanCalls := env.router.sequenceCalls
	if scanCalls != 2 {
		t.Fatalf("full resolution routed %d alternatives, want 2", scanCalls)
	}

	second, err := set.Call([]any{env.intValue(9)})
	if err != nil {
		t.Fatalf("second Call: %v", err)
	}
	if first != "A:1" || second != "A:9" {
		t.Errorf("results = %v, %v, want A:1, A:9", first, second)
	}

	// The hit still recomputes routing for the chosen alternative, but
	// does not rescan the others.
	if got := env.router.sequenceCalls - scanCalls; got != 1 {
		t.Errorf("cache hit made %d routing calls, want 1", got)
	}
	if hits, _ := env.cache.Stats(); hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
}

func TestForceRecomputeRescans(t *testing.T) {
	env := newTestEnv()
	set := env.newSet("recompute")
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("A")))
	set.AddAlternative(NewAlternative(types.Signature{env.floatT}, nil, invokeNamed("B")))

	if _, err := set.Call([]any{env.intValue(1)}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	before := env.router.sequenceCalls

	set.ForceRecompute()
	if _, err := set.Call([]any{env.intValue(1)}); err != nil {
		t.Fatalf("Call after ForceRecompute: %v", err)
	}
	if got := env.router.sequenceCalls - before; got != 2 {
		t.Errorf("post-flush call routed %d alternatives, want full rescan of 2", got)
	}
}

func TestCallArgumentLimit(t *testing.T) {
	env := newTestEnv()
	set := env.newSet("limited")
	set.AddAlternative(NewAlternative(types.Signature{}, nil, invokeNamed("zero")))

	args := make([]any, ArgumentLimit+1)
	for i := range args {
		args[i] = env.intValue(int64(i))
	}

	_, err := set.Call(args)
	var limitErr *ArgumentLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("err = %v, want *ArgumentLimitError", err)
	}
	if limitErr.Got != ArgumentLimit+1 || limitErr.Limit != ArgumentLimit {
		t.Errorf("limit error = %+v", limitErr)
	}
	// The limit is checked before any type detection happens.
	if env.detector.typeCalls != 0 {
		t.Errorf("detector ran %d times before the limit check", env.detector.typeCalls)
	}
}

func TestCallNoMatch(t *testing.T) {
	env := newTestEnv()
	set := env.newSet("strict")
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("A")))

	_, err := set.Call([]any{env.textValue("hello")})
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("err = %v, want *NoMatchError", err)
	}
	if env.cache.Len() != 0 {
		t.Error("failed resolution must not be remembered")
	}
}

func TestCallAmbiguity(t *testing.T) {
	env := newTestEnv()
	// Int converts to Float and to Text at the same price; (Float) and
	// (Text) are genuinely different signatures, so an int call ties.
	env.table.RegisterConversion(conversion.New(env.intT, env.textT, conversion.WeightPromotion,
		func(v any) (any, error) {
			return fmt.Sprintf("%d", v.(testValue).payload.(int64)), nil
		}))

	set := env.newSet("torn")
	set.AddAlternative(NewAlternative(types.Signature{env.floatT}, nil, invokeNamed("F")))
	set.AddAlternative(NewAlternative(types.Signature{env.textT}, nil, invokeNamed("T")))

	_, err := set.Call([]any{env.intValue(3)})
	var ambErr *AmbiguityError
	if !errors.As(err, &ambErr) {
		t.Fatalf("err = %v, want *AmbiguityError", err)
	}
	if env.cache.Len() != 0 {
		t.Error("ambiguous resolution must not be remembered")
	}
}

func TestCallIdenticalSignaturesNoAmbiguity(t *testing.T) {
	// Identical signatures can legitimately coexist (const/non-const
	// pairs on the native side); the tie collapses to the first one.
	env := newTestEnv()
	set := env.newSet("twins")
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("first")))
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("second")))

	result, err := set.Call([]any{env.intValue(4)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "first:4" {
		t.Errorf("result = %v, want first:4", result)
	}
}

func TestCallAmbiguityResolvedByLaterBetter(t *testing.T) {
	// (Float) and (Text) tie for an int argument, but (Int) registered
	// after them is strictly better and clears the sticky ambiguity flag.
	// Registration order is part of the semantics here.
	env := newTestEnv()
	env.table.RegisterConversion(conversion.New(env.intT, env.textT, conversion.WeightPromotion,
		func(v any) (any, error) {
			return fmt.Sprintf("%d", v.(testValue).payload.(int64)), nil
		}))

	set := env.newSet("settled")
	set.AddAlternative(NewAlternative(types.Signature{env.floatT}, nil, invokeNamed("F")))
	set.AddAlternative(NewAlternative(types.Signature{env.textT}, nil, invokeNamed("T")))
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("I")))

	result, err := set.Call([]any{env.intValue(8)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "I:8" {
		t.Errorf("result = %v, want I:8", result)
	}
}

func TestCallReleasesTemporaries(t *testing.T) {
	env := newTestEnv()
	releaser := &recordingReleaser{}
	set := env.newSet("tidy")
	set.SetReleaser(releaser)
	set.AddAlternative(NewAlternative(types.Signature{env.floatT}, nil, invokeNamed("F")))

	if _, err := set.Call([]any{env.intValue(2)}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	// The converted float temporary is released after invocation.
	if len(releaser.released) != 1 {
		t.Fatalf("released %d temporaries, want 1", len(releaser.released))
	}
	if releaser.released[0] != float64(2) {
		t.Errorf("released %v, want 2.0", releaser.released[0])
	}
}

func TestCallReleasesTemporariesOnConversionFailure(t *testing.T) {
	env := newTestEnv()
	// A second conversion that fails for negative payloads, after the
	// first argument has already produced a temporary.
	brokenT := env.interner.Intern("Broken")
	env.table.RegisterConversion(conversion.New(env.intT, brokenT, conversion.WeightTrivial,
		func(v any) (any, error) {
			n := v.(testValue).payload.(int64)
			if n < 0 {
				return nil, errors.New("negative payload")
			}
			return n, nil
		}))

	releaser := &recordingReleaser{}
	set := env.newSet("partial")
	set.SetReleaser(releaser)
	set.AddAlternative(NewAlternative(types.Signature{env.floatT, brokenT}, nil, invokeNamed("FB")))

	_, err := set.Call([]any{env.intValue(1), env.intValue(-1)})
	if err == nil {
		t.Fatal("expected conversion failure")
	}
	if len(releaser.released) != 1 {
		t.Fatalf("released %d temporaries after partial conversion, want 1", len(releaser.released))
	}
}

func TestCallAppliesEdgeConversion(t *testing.T) {
	env := newTestEnv()
	rawT := env.interner.Intern("RawHandle")
	wrappedT := env.interner.Intern("Wrapped")
	env.table.RegisterEdgeConversion(conversion.New(rawT, wrappedT, conversion.WeightTrivial,
		func(v any) (any, error) {
			return "wrapped:" + v.(string), nil
		}))

	releaser := &recordingReleaser{}
	set := env.newSet("edges")
	set.SetReleaser(releaser)
	set.AddAlternative(NewAlternative(types.Signature{}, rawT, InvokerFunc(func([]any) (any, error) {
		return "h1", nil
	})))

	result, err := set.Call(nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "wrapped:h1" {
		t.Errorf("result = %v, want wrapped:h1", result)
	}
	// The superseded raw result is released exactly once.
	if len(releaser.released) != 1 || releaser.released[0] != "h1" {
		t.Errorf("released = %v, want [h1]", releaser.released)
	}

	// A return type without a registered edge conversion passes through
	// with no release.
	plain := env.newSet("plain")
	plain.SetReleaser(releaser)
	plain.AddAlternative(NewAlternative(types.Signature{}, env.intT, InvokerFunc(func([]any) (any, error) {
		return int64(5), nil
	})))
	result, err = plain.Call(nil)
	if err != nil || result != int64(5) {
		t.Errorf("plain Call = %v, %v, want 5, nil", result, err)
	}
	if len(releaser.released) != 1 {
		t.Errorf("unconverted result was released: %v", releaser.released)
	}
}

// flipRouter succeeds until tripped, then reports no route. It simulates
// alternatives changing underneath a populated cache.
type flipRouter struct {
	inner  Router
	broken bool
}

func (r *flipRouter) BestSequenceRoute(actuals []*types.Descriptor, insights []types.Insight, formal types.Signature) ([]*conversion.Route, error) {
	if r.broken {
		return nil, &conversion.NoRouteError{From: actuals[0], To: formal[0]}
	}
	return r.inner.BestSequenceRoute(actuals, insights, formal)
}

func (r *flipRouter) EdgeConversion(d *types.Descriptor) (conversion.Conversion, bool) {
	return r.inner.EdgeConversion(d)
}

func TestCallStaleCache(t *testing.T) {
	env := newTestEnv()
	flip := &flipRouter{inner: env.table}
	set := NewOverloadedSet("stale", env.detector, flip, env.cache)
	set.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("A")))

	if _, err := set.Call([]any{env.intValue(1)}); err != nil {
		t.Fatalf("priming Call: %v", err)
	}

	flip.broken = true
	_, err := set.Call([]any{env.intValue(1)})
	var stale *StaleCacheError
	if !errors.As(err, &stale) {
		t.Fatalf("err = %v, want *StaleCacheError", err)
	}
	var noRoute *conversion.NoRouteError
	if !errors.As(err, &noRoute) {
		t.Error("StaleCacheError should wrap the routing failure")
	}
}

func TestAddAlternativesCopiesReferences(t *testing.T) {
	env := newTestEnv()
	source := env.newSet("source")
	source.AddAlternative(NewAlternative(types.Signature{env.intT}, nil, invokeNamed("S")))

	dest := env.newSet("dest")
	dest.AddAlternative(NewAlternative(types.Signature{env.floatT}, nil, invokeNamed("D")))
	dest.AddAlternatives(source)

	if source.Len() != 1 {
		t.Errorf("source set changed, Len = %d", source.Len())
	}
	if dest.Len() != 2 {
		t.Fatalf("dest Len = %d, want 2", dest.Len())
	}

	result, err := dest.Call([]any{env.intValue(6)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result != "S:6" {
		t.Errorf("result = %v, want S:6", result)
	}

	// The source set still resolves on its own.
	if result, err := source.Call([]any{env.intValue(7)}); err != nil || result != "S:7" {
		t.Errorf("source Call = %v, %v, want S:7, nil", result, err)
	}
}

func TestSeekAlternative(t *testing.T) {
	env := newTestEnv()
	set := env.newSet("seek")
	unary := NewAlternative(types.Signature{env.intT}, nil, invokeNamed("A"))
	set.AddAlternative(unary)

	if got := set.SeekAlternative(types.Signature{env.intT}); got != unary {
		t.Errorf("SeekAlternative = %v, want the registered alternative", got)
	}
	// Convertible is not exact: Int routes to Float, but seek ignores
	// conversions entirely.
	if got := set.SeekAlternative(types.Signature{env.floatT}); got != nil {
		t.Errorf("SeekAlternative(Float) = %v, want nil", got)
	}
	if got := set.SeekAlternative(types.Signature{}); got != nil {
		t.Errorf("SeekAlternative(empty) = %v, want nil", got)
	}
}
