package trace

import "context"

type ctxKey struct{}

// ctxState is what a context carries: the tracer and the span new spans
// hang under.
type ctxState struct {
	tracer Tracer
	span   uint64
}

func stateOf(ctx context.Context) ctxState {
	if ctx != nil {
		if st, ok := ctx.Value(ctxKey{}).(ctxState); ok {
			return st
		}
	}
	return ctxState{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return stateOf(ctx).tracer
}

// WithTracer attaches t to ctx and resets the current span.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, ctxState{tracer: t})
}

// CurrentSpan returns the span set by WithSpan, 0 if none.
func CurrentSpan(ctx context.Context) uint64 {
	return stateOf(ctx).span
}

// WithSpan makes sp the parent of spans begun from ctx.
func WithSpan(ctx context.Context, sp *Span) context.Context {
	st := stateOf(ctx)
	st.span = sp.ID()
	return context.WithValue(ctx, ctxKey{}, st)
}
