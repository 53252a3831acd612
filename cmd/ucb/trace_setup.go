package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/config"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/trace"
)

// setupTracing builds the tracer from the [trace] table and the trace
// flags, and attaches it to the command context under a driver span for
// the command. The cleanup function ends that span and flushes the
// tracer; for ring mode it dumps the buffered events to errOut when dump
// is set.
func setupTracing(cmd *cobra.Command, cfg config.Config, errOut io.Writer) (trace.Tracer, func(dump bool), error) {
	flags := cmd.Flags()
	for flag, dst := range map[string]*string{
		"trace":        &cfg.Trace.Level,
		"trace-output": &cfg.Trace.Output,
		"trace-mode":   &cfg.Trace.Mode,
	} {
		if !flags.Changed(flag) {
			continue
		}
		v, err := flags.GetString(flag)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get %s flag: %w", flag, err)
		}
		*dst = v
	}

	tcfg, err := cfg.Tracer()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace settings: %w", err)
	}
	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	root := trace.Begin(tracer, trace.ScopeDriver, "ucb "+cmd.Name(), 0)
	cmd.SetContext(trace.WithSpan(trace.WithTracer(cmd.Context(), tracer), root))

	cleanup := func(dump bool) {
		outcome := "ok"
		if dump {
			outcome = "failed"
		}
		root.End(outcome)
		if ring := ringOf(tracer); dump && ring != nil {
			if err := ring.Dump(errOut, trace.FormatText); err != nil {
				fmt.Fprintf(errOut, "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(errOut, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(errOut, "trace: close error: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}

func ringOf(t trace.Tracer) *trace.RingTracer {
	ring, _ := t.(*trace.RingTracer)
	return ring
}
