package hostlink

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/funvibe/hostlink/internal/conversion"
	"github.com/funvibe/hostlink/internal/types"
)

// Canonical runtime type names.
const (
	TypeInt    = "Int"
	TypeInt32  = "Int32"
	TypeFloat  = "Float"
	TypeBool   = "Bool"
	TypeString = "String"
	TypeBytes  = "Bytes"
	TypeNil    = "Nil"
)

// Frontend is the reference type/insight detector over Go dynamic
// values. It owns the interner that makes descriptor identity valid:
// every value of the same logical type detects to the same *Descriptor
// for the lifetime of the frontend.
type Frontend struct {
	interner *types.Interner

	intT    *types.Descriptor
	int32T  *types.Descriptor
	floatT  *types.Descriptor
	boolT   *types.Descriptor
	stringT *types.Descriptor
	bytesT  *types.Descriptor
	nilT    *types.Descriptor

	mu        sync.Mutex
	hostTypes map[reflect.Type]*types.Descriptor
}

func NewFrontend() *Frontend {
	in := types.NewInterner()
	return &Frontend{
		interner:  in,
		intT:      in.Intern(TypeInt),
		int32T:    in.Intern(TypeInt32),
		floatT:    in.Intern(TypeFloat),
		boolT:     in.Intern(TypeBool),
		stringT:   in.Intern(TypeString),
		bytesT:    in.Intern(TypeBytes),
		nilT:      in.Intern(TypeNil),
		hostTypes: make(map[reflect.Type]*types.Descriptor),
	}
}

// Interner exposes the frontend's canonicalization table.
func (f *Frontend) Interner() *types.Interner { return f.interner }

// Type interns a descriptor by canonical name.
func (f *Frontend) Type(name string) *types.Descriptor { return f.interner.Intern(name) }

// DetectType reports the runtime type of a caller value. Unrecognized Go
// values detect as host-object types keyed by their reflect type.
func (f *Frontend) DetectType(value any) *types.Descriptor {
	switch value.(type) {
	case nil:
		return f.nilT
	case bool:
		return f.boolT
	case int, int64:
		return f.intT
	case int32:
		return f.int32T
	case float32, float64:
		return f.floatT
	case string:
		return f.stringT
	case []byte:
		return f.bytesT
	}
	return f.hostType(reflect.TypeOf(value))
}

func (f *Frontend) hostType(rt reflect.Type) *types.Descriptor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.hostTypes[rt]; ok {
		return d
	}
	d := f.interner.Intern(fmt.Sprintf("host:%s", rt))
	f.hostTypes[rt] = d
	return d
}

// DetectInsight refines integers by magnitude class, so a small literal
// can take a narrowing conversion a wide one cannot.
func (f *Frontend) DetectInsight(value any) types.Insight {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	default:
		return types.NoInsight
	}
	return types.Insight{Kind: types.InsightNumericRange, Rank: magnitudeRank(n)}
}

func magnitudeRank(n int64) int8 {
	// Range checks, not negation: -n overflows for math.MinInt64 and
	// would classify the widest integer as the narrowest.
	switch {
	case n >= -(1<<15) && n < 1<<15:
		return 0
	case n >= -(1<<31) && n < 1<<31:
		return 1
	default:
		return 2
	}
}

// StandardTable builds a conversion table with the stock conversions
// between the frontend's canonical types: numeric promotion and
// widening, insight-gated narrowing for provably small integers, and
// byte/string interchange.
func StandardTable(f *Frontend) *conversion.Table {
	table := conversion.NewTable()

	table.RegisterConversion(conversion.New(f.intT, f.floatT, conversion.WeightPromotion,
		func(v any) (any, error) {
			return float64(asInt64(v)), nil
		}))

	table.RegisterConversion(conversion.New(f.int32T, f.intT, conversion.WeightTrivial,
		func(v any) (any, error) {
			return asInt64(v), nil
		}))

	// Narrowing is only open to values the insight proves small enough.
	table.RegisterConversion(conversion.NewWeighted(f.intT, f.int32T,
		func(i types.Insight) conversion.Weight {
			if i.Kind == types.InsightNumericRange && i.Rank <= 1 {
				return conversion.WeightTrivial
			}
			return conversion.Infinite
		},
		func(v any) (any, error) {
			return int32(asInt64(v)), nil
		}))

	table.RegisterConversion(conversion.New(f.stringT, f.bytesT, conversion.WeightTrivial,
		func(v any) (any, error) {
			return []byte(v.(string)), nil
		}))
	table.RegisterConversion(conversion.New(f.bytesT, f.stringT, conversion.WeightTrivial,
		func(v any) (any, error) {
			return string(v.([]byte)), nil
		}))

	return table
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	}
	panic(fmt.Sprintf("asInt64: not an integer value: %T", v))
}
