// Package trace records what the checker does: driver commands, passes,
// units and every instantiation request the template engine handles.
//
// Enable it from the CLI:
//
//	ucb check --trace=instance --trace-output=trace.ndjson units/
//
// Levels name the finest scope recorded: pass, unit or instance. Instance
// spans carry the generic id, cache key, label and nesting depth of the
// request; their end event records the outcome (hit, built, failed, depth,
// recursive).
//
// StreamTracer writes text or NDJSON as events happen. RingTracer keeps
// the last events in memory for a dump after a failed check.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "load", trace.CurrentSpan(ctx))
//	defer sp.End("")
package trace
