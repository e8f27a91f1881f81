package extractor

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/mvp-joe/dice/internal/extraction"
)

// isolatedPackage names the package the extracted Go function is compiled into.
const isolatedPackage = "extracted"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// goFunction is a Go function interpreted by its own yaegi instance. Only the
// function and the imports it references are compiled; the rest of the
// source package is never seen.
type goFunction struct {
	fn reflect.Value
}

func loadGo(def extraction.FunctionDef) (_ *goFunction, err error) {
	// yaegi panics on some malformed units instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpreter panic: %v", r)
		}
	}()

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}

	if _, err := i.Eval(isolatedUnit(def)); err != nil {
		return nil, err
	}

	v, err := i.Eval(isolatedPackage + "." + def.Name)
	if err != nil {
		return nil, err
	}
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is a %s, not a function", def.Name, v.Kind())
	}

	return &goFunction{fn: v}, nil
}

// isolatedUnit renders def as a standalone Go source file.
func isolatedUnit(def extraction.FunctionDef) string {
	var b strings.Builder
	b.WriteString("package " + isolatedPackage + "\n\n")
	if len(def.Imports) > 0 {
		b.WriteString("import (\n")
		for _, spec := range def.Imports {
			b.WriteString("\t" + spec + "\n")
		}
		b.WriteString(")\n\n")
	}
	b.WriteString(def.Expr)
	b.WriteString("\n")
	return b.String()
}

// call invokes the function through reflection. When the last result is an
// error it is returned as the error, untouched. Panics propagate.
// The context is not consulted: interpreted Go cannot be interrupted.
func (f *goFunction) call(_ context.Context, args []any) (any, error) {
	in, err := f.arguments(args)
	if err != nil {
		return nil, err
	}

	out := f.fn.Call(in)

	var callErr error
	if n := len(out); n > 0 && f.fn.Type().Out(n-1) == errorType {
		if e := out[n-1].Interface(); e != nil {
			callErr = e.(error)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, callErr
	case 1:
		return out[0].Interface(), callErr
	default:
		results := make([]any, len(out))
		for i, v := range out {
			results[i] = v.Interface()
		}
		return results, callErr
	}
}

// arguments converts args to the parameter types of the function.
func (f *goFunction) arguments(args []any) ([]reflect.Value, error) {
	t := f.fn.Type()
	numIn := t.NumIn()

	if t.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("%w: want at least %d, got %d", ErrArgCount, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArgCount, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var param reflect.Type
		if t.IsVariadic() && i >= numIn-1 {
			param = t.In(numIn - 1).Elem()
		} else {
			param = t.In(i)
		}

		if arg == nil {
			in[i] = reflect.Zero(param)
			continue
		}

		v, ok := convertArg(reflect.ValueOf(arg), param)
		if !ok {
			return nil, fmt.Errorf("%w: argument %d is %s (%v), want %s", ErrArgType, i, reflect.TypeOf(arg), arg, param)
		}
		in[i] = v
	}
	return in, nil
}

// convertArg converts v to t when no information is lost: numbers must fit
// exactly, and numbers never become strings.
func convertArg(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if v.Type().AssignableTo(t) {
		return v, true
	}

	switch {
	case isInt(v.Kind()):
		n := v.Int()
		switch {
		case isInt(t.Kind()) && !reflect.Zero(t).OverflowInt(n):
		case isUint(t.Kind()) && n >= 0 && !reflect.Zero(t).OverflowUint(uint64(n)):
		case isFloat(t.Kind()) && int64(float64(n)) == n:
		default:
			return reflect.Value{}, false
		}
		return v.Convert(t), true

	case isUint(v.Kind()):
		n := v.Uint()
		switch {
		case isUint(t.Kind()) && !reflect.Zero(t).OverflowUint(n):
		case isInt(t.Kind()) && n <= math.MaxInt64 && !reflect.Zero(t).OverflowInt(int64(n)):
		case isFloat(t.Kind()) && uint64(float64(n)) == n:
		default:
			return reflect.Value{}, false
		}
		return v.Convert(t), true

	case isFloat(v.Kind()):
		f := v.Float()
		switch {
		case isFloat(t.Kind()) && !reflect.Zero(t).OverflowFloat(f):
		case isInt(t.Kind()) && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !reflect.Zero(t).OverflowInt(int64(f)):
		case isUint(t.Kind()) && f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !reflect.Zero(t).OverflowUint(uint64(f)):
		default:
			return reflect.Value{}, false
		}
		return v.Convert(t), true
	}

	// Named types over the same underlying kind, e.g. string to a string type.
	if v.Kind() == t.Kind() && v.Type().ConvertibleTo(t) {
		return v.Convert(t), true
	}
	return reflect.Value{}, false
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func (f *goFunction) interruptible() bool { return false }
