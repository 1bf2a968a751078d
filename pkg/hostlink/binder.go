package hostlink

import (
	"fmt"
	"reflect"

	"github.com/funvibe/hostlink/internal/dispatch"
	"github.com/funvibe/hostlink/internal/types"
)

// descriptorForGoType maps a native Go parameter or result type to the
// frontend's canonical runtime types. Anything unrecognized becomes a
// host-object type, so native structs can flow through untouched.
func (f *Frontend) descriptorForGoType(rt reflect.Type) *types.Descriptor {
	switch rt.Kind() {
	case reflect.Bool:
		return f.boolT
	case reflect.Int, reflect.Int64:
		return f.intT
	case reflect.Int32:
		return f.int32T
	case reflect.Float32, reflect.Float64:
		return f.floatT
	case reflect.String:
		return f.stringT
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return f.bytesT
		}
	}
	return f.hostType(rt)
}

// BindFunc turns a plain Go function into an Alternative: its formal
// signature and return descriptor are derived from the function's type,
// and its invocation capability wraps reflect.Call.
//
// The function must not be variadic and may return at most one value
// plus an optional trailing error.
func BindFunc(f *Frontend, fn any) (*dispatch.Alternative, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("bind: %T is not a function", fn)
	}
	return bindFuncValue(f, rv)
}

func bindFuncValue(f *Frontend, rv reflect.Value) (*dispatch.Alternative, error) {
	rt := rv.Type()
	if rt.IsVariadic() {
		return nil, fmt.Errorf("bind: variadic functions are not supported")
	}
	if rt.NumIn() > dispatch.ArgumentLimit {
		return nil, fmt.Errorf("bind: %d parameters exceed the argument limit of %d", rt.NumIn(), dispatch.ArgumentLimit)
	}

	errType := reflect.TypeOf((*error)(nil)).Elem()
	var returns *types.Descriptor
	switch rt.NumOut() {
	case 0:
		// procedure, no result
	case 1:
		if rt.Out(0) != errType {
			returns = f.descriptorForGoType(rt.Out(0))
		}
	case 2:
		if rt.Out(1) != errType {
			return nil, fmt.Errorf("bind: second result must be error, have %s", rt.Out(1))
		}
		returns = f.descriptorForGoType(rt.Out(0))
	default:
		return nil, fmt.Errorf("bind: too many results (%d)", rt.NumOut())
	}

	signature := make(types.Signature, rt.NumIn())
	for i := range signature {
		signature[i] = f.descriptorForGoType(rt.In(i))
	}

	invoker := dispatch.InvokerFunc(func(args []any) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			value, err := coerceArgument(arg, rt.In(i))
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in[i] = value
		}
		out := rv.Call(in)

		switch rt.NumOut() {
		case 0:
			return nil, nil
		case 1:
			if rt.Out(0) == errType {
				return nil, asError(out[0])
			}
			return out[0].Interface(), nil
		default:
			return out[0].Interface(), asError(out[1])
		}
	})

	return dispatch.NewAlternative(signature, returns, invoker), nil
}

// BindMethods binds every exported method of a host value, keyed by
// method name. Methods whose shapes cannot be bound (variadic, more than
// one non-error result) are skipped.
func BindMethods(f *Frontend, host any) (map[string]*dispatch.Alternative, error) {
	rv := reflect.ValueOf(host)
	if !rv.IsValid() {
		return nil, fmt.Errorf("bind: nil host value")
	}

	bound := make(map[string]*dispatch.Alternative)
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		alt, err := bindFuncValue(f, rv.Method(i))
		if err != nil {
			continue
		}
		bound[rt.Method(i).Name] = alt
	}
	if len(bound) == 0 {
		return nil, fmt.Errorf("bind: %s has no bindable methods", rt)
	}
	return bound, nil
}

// coerceArgument adapts a converted value to the exact native parameter
// type; conversion routes deliver canonical representations (int64,
// float64, string...), so this is only representation adjustment within
// the same logical type.
func coerceArgument(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(want), nil
	}
	rv := reflect.ValueOf(arg)
	if rv.Type() == want {
		return rv, nil
	}
	if rv.Type().AssignableTo(want) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(want) {
		return rv.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, want)
}

func asError(rv reflect.Value) error {
	if rv.IsNil() {
		return nil
	}
	return rv.Interface().(error)
}
