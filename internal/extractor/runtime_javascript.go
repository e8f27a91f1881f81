package extractor

import (
	"context"

	"github.com/dop251/goja"

	"github.com/mvp-joe/dice/internal/extraction"
)

// jsFunction is a JavaScript function materialized in its own VM. Nothing
// else from the source file is evaluated, so free variables resolve against
// an empty global scope.
type jsFunction struct {
	vm *goja.Runtime
	fn goja.Callable
}

func loadJS(def extraction.FunctionDef) (*jsFunction, error) {
	vm := goja.New()

	value, err := vm.RunScript(def.FilePath, def.Expr)
	if err != nil {
		return nil, err
	}

	fn, ok := goja.AssertFunction(value)
	if !ok {
		return nil, ErrLoad
	}

	return &jsFunction{vm: vm, fn: fn}, nil
}

// call invokes the function with this undefined. A thrown value comes back
// as the *goja.Exception produced by the VM. Cancelling ctx interrupts a
// running call.
func (f *jsFunction) call(ctx context.Context, args []any) (any, error) {
	values := make([]goja.Value, len(args))
	for i, arg := range args {
		values[i] = f.vm.ToValue(arg)
	}

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(interrupted)
		f.vm.Interrupt(ctx.Err())
	})
	defer func() {
		if !stop() {
			<-interrupted
		}
		f.vm.ClearInterrupt()
	}()

	result, err := f.fn(goja.Undefined(), values...)
	if err != nil {
		return nil, err
	}
	return result.Export(), nil
}

func (f *jsFunction) interruptible() bool { return true }
