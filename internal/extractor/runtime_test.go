package extractor

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Isolated Runtimes:
// JavaScript
// - Declarations, bound expressions, arrows, object and class methods are callable
// - Thrown errors come back as the VM's *goja.Exception, unchanged
// - Free variables are not resolved from the source file
// - The invocation timeout interrupts runaway functions
// - Cancelling the context interrupts a running call
// - A member-assigned function from the original app loads without its dependencies
// - Functions keep the strictness of their file, class or enclosing function
// Go
// - Plain functions, variadic functions, literals bound by var and :=
// - A trailing error result is returned as the error, untouched
// - Multiple results come back as []any
// - JSON-style float64 arguments convert to int parameters
// - Wrong argument counts and types are rejected
// - Panics propagate to the caller
// - Functions depending on package state fail to load

func locateJS(t *testing.T, ex *Extractor, name string) *Handle {
	t.Helper()

	h, err := ex.Locate(context.Background(), fixture("javascript", "forms.js"), name+"()")
	require.NoError(t, err)
	return h
}

func locateGo(t *testing.T, name string) *Handle {
	t.Helper()

	h, err := Locate(context.Background(), fixture("go", "names.go"), name+"()")
	require.NoError(t, err)
	return h
}

func TestJSRuntime_CallableForms(t *testing.T) {
	t.Parallel()

	ex := New()
	cases := []struct {
		name string
		args []any
		want any
	}{
		{"greet", []any{"Dice"}, "Hello, Dice!"},
		{"shout", []any{"hi"}, "HI"},
		{"add", []any{2, 3}, int64(5)},
		{"counter", nil, int64(1)},
		{"count", nil, int64(1)},
		{"double", []any{4}, int64(8)},
		{"triple", []any{2}, int64(6)},
		{"square", []any{4}, int64(16)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := locateJS(t, ex, tc.name)
			result, err := h.Invoke(tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result)
		})
	}
}

func TestJSRuntime_ThrowPropagates(t *testing.T) {
	t.Parallel()

	h := locateJS(t, New(), "fail")
	_, err := h.Invoke("nope")
	require.Error(t, err)

	var ex *goja.Exception
	require.True(t, errors.As(err, &ex))
	assert.Contains(t, ex.Error(), "nope")
}

func TestJSRuntime_IsolatedFromFileScope(t *testing.T) {
	t.Parallel()

	h := locateJS(t, New(), "usesOuter")
	_, err := h.Invoke()
	require.Error(t, err)
	assert.True(t, isJSException(err))
	assert.Contains(t, err.Error(), "outerValue")
}

func TestJSRuntime_MemberAssignmentFromOriginalApp(t *testing.T) {
	t.Parallel()

	h, err := Locate(context.Background(), fixture("javascript", "app.js"), "addName()")
	require.NoError(t, err)

	// $scope only exists inside the controller; isolated, it is undefined.
	_, err = h.Invoke()
	require.Error(t, err)
	assert.True(t, isJSException(err))
}

func TestJSRuntime_TimeoutInterrupts(t *testing.T) {
	t.Parallel()

	h := locateJS(t, New(WithTimeout(50*time.Millisecond)), "spin")

	start := time.Now()
	_, err := h.Invoke()
	require.Error(t, err)

	var interrupted *goja.InterruptedError
	require.True(t, errors.As(err, &interrupted))
	assert.Less(t, time.Since(start), 5*time.Second)

	// Interrupts are per handle.
	greet := locateJS(t, New(WithTimeout(50*time.Millisecond)), "greet")
	result, err := greet.Invoke("again")
	require.NoError(t, err)
	assert.Equal(t, "Hello, again!", result)
}

func TestJSRuntime_ContextCancelInterrupts(t *testing.T) {
	t.Parallel()

	h := locateJS(t, New(), "spin")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := h.InvokeContext(ctx)
	var interrupted *goja.InterruptedError
	require.True(t, errors.As(err, &interrupted))
}

func TestJSRuntime_StrictModeFollowsSource(t *testing.T) {
	t.Parallel()

	cases := []struct {
		file string
		name string
		want any
	}{
		{"strict.js", "thisIsUndefined", true},
		{"strict.mjs", "thisIsUndefined", true},
		{"scopes.js", "sloppyThis", false},
		{"scopes.js", "inner", true},
		{"scopes.js", "isStrict", true},
	}

	for _, tc := range cases {
		t.Run(tc.file+"/"+tc.name, func(t *testing.T) {
			h, err := Locate(context.Background(), fixture("javascript", tc.file), tc.name+"()")
			require.NoError(t, err)
			result, err := h.Invoke()
			require.NoError(t, err)
			assert.Equal(t, tc.want, result)
		})
	}

	// Assigning an undeclared name throws instead of creating a global.
	for _, file := range []string{"strict.js", "strict.mjs"} {
		h, err := Locate(context.Background(), fixture("javascript", file), "leak()")
		require.NoError(t, err)
		_, err = h.Invoke()
		require.Error(t, err, file)
		assert.True(t, isJSException(err))
		assert.Contains(t, err.Error(), "leaked")
	}
}

func TestGoRuntime_NextName(t *testing.T) {
	t.Parallel()

	h := locateGo(t, "nextName")
	assert.Equal(t, "go", h.Language())

	result, err := h.Invoke()
	require.NoError(t, err)
	assert.Equal(t, "World", result)
}

func TestGoRuntime_ImportsAndAliases(t *testing.T) {
	t.Parallel()

	greet := locateGo(t, "Greet")
	result, err := greet.Invoke("Go")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Go!", result)

	join := locateGo(t, "Join")
	result, err = join.Invoke(",", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", result)

	result, err = join.Invoke("-")
	require.NoError(t, err)
	assert.Equal(t, "", result)
}

func TestGoRuntime_ErrorResult(t *testing.T) {
	t.Parallel()

	h := locateGo(t, "Upper")

	result, err := h.Invoke("dice")
	require.NoError(t, err)
	assert.Equal(t, "DICE", result)

	result, err = h.Invoke("")
	require.Error(t, err)
	assert.Equal(t, "empty name", err.Error())
	assert.Equal(t, "", result)
}

func TestGoRuntime_MultipleResults(t *testing.T) {
	t.Parallel()

	h := locateGo(t, "Split")
	result, err := h.Invoke("hello world")
	require.NoError(t, err)
	assert.Equal(t, []any{"hello", "world"}, result)
}

func TestGoRuntime_ArgumentConversion(t *testing.T) {
	t.Parallel()

	h := locateGo(t, "Sum")

	result, err := h.Invoke(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, result)

	result, err = h.Invoke(float64(2), float64(3))
	require.NoError(t, err)
	assert.Equal(t, 5, result)

	_, err = h.Invoke(1)
	assert.ErrorIs(t, err, ErrArgCount)

	_, err = h.Invoke([]int{1}, 2)
	assert.ErrorIs(t, err, ErrArgType)

	// Fractions are not truncated
	_, err = h.Invoke(2.7, 3.9)
	assert.ErrorIs(t, err, ErrArgType)

	// Numbers do not become runes
	greet := locateGo(t, "Greet")
	_, err = greet.Invoke(65)
	assert.ErrorIs(t, err, ErrArgType)
}

func TestConvertArg(t *testing.T) {
	t.Parallel()

	type label string

	cases := []struct {
		name string
		arg  any
		to   reflect.Type
		want any
		ok   bool
	}{
		{"integral float to int", float64(3), reflect.TypeOf(int(0)), int(3), true},
		{"integral float to int8", float64(-7), reflect.TypeOf(int8(0)), int8(-7), true},
		{"fractional float to int", 2.5, reflect.TypeOf(int(0)), nil, false},
		{"float overflows int8", float64(300), reflect.TypeOf(int8(0)), nil, false},
		{"negative float to uint", float64(-1), reflect.TypeOf(uint(0)), nil, false},
		{"int to float64", 42, reflect.TypeOf(float64(0)), float64(42), true},
		{"int overflows int32", int64(1) << 40, reflect.TypeOf(int32(0)), nil, false},
		{"negative int to uint", -1, reflect.TypeOf(uint(0)), nil, false},
		{"int to string", 65, reflect.TypeOf(""), nil, false},
		{"string to named string", "x", reflect.TypeOf(label("")), label("x"), true},
		{"bool to int", true, reflect.TypeOf(int(0)), nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := convertArg(reflect.ValueOf(tc.arg), tc.to)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, v.Interface())
			}
		})
	}
}

func TestGoRuntime_Literals(t *testing.T) {
	t.Parallel()

	double := locateGo(t, "Double")
	result, err := double.Invoke(21)
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	triple := locateGo(t, "triple")
	result, err = triple.Invoke(3)
	require.NoError(t, err)
	assert.Equal(t, 9, result)
}

func TestGoRuntime_PanicPropagates(t *testing.T) {
	t.Parallel()

	h := locateGo(t, "Boom")
	assert.Panics(t, func() {
		_, _ = h.Invoke()
	})
}

func TestGoRuntime_PackageStateFailsToLoad(t *testing.T) {
	t.Parallel()

	_, err := Locate(context.Background(), fixture("go", "names.go"), "usesPackageState()")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoad)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "usesPackageState", le.Name)
}

func TestIsolatedUnit(t *testing.T) {
	t.Parallel()

	h := locateGo(t, "Upper")
	unit := isolatedUnit(h.Definition())
	assert.Contains(t, unit, "package extracted\n")
	assert.Contains(t, unit, "\t\"errors\"\n")
	assert.Contains(t, unit, "\tstr \"strings\"\n")
	assert.NotContains(t, unit, "\"fmt\"")
}
