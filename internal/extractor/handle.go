package extractor

import (
	"context"
	"sync"
	"time"

	"github.com/mvp-joe/dice/internal/extraction"
)

// invoker is a function materialized in an isolated runtime.
type invoker interface {
	call(ctx context.Context, args []any) (any, error)
	interruptible() bool
}

// Handle is an invocable reference to an extracted function. Each handle owns
// its runtime; invocations on one handle are serialized.
type Handle struct {
	def     extraction.FunctionDef
	fn      invoker
	timeout time.Duration

	mu sync.Mutex
}

// Name returns the function name.
func (h *Handle) Name() string { return h.def.Name }

// Language returns the source language of the function.
func (h *Handle) Language() string { return h.def.Language }

// Source returns the function as written in its file.
func (h *Handle) Source() string { return h.def.Code }

// Definition returns the located definition.
func (h *Handle) Definition() extraction.FunctionDef { return h.def }

// Invoke calls the function with args and returns its result.
func (h *Handle) Invoke(args ...any) (any, error) {
	return h.InvokeContext(context.Background(), args...)
}

// InvokeContext calls the function with args. Errors raised by the function
// are returned unchanged. Cancelling ctx, or exceeding the extractor's
// timeout, interrupts JavaScript functions; Go functions run to completion.
func (h *Handle) InvokeContext(ctx context.Context, args ...any) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.timeout > 0 && h.fn.interruptible() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	return h.fn.call(ctx, args)
}
