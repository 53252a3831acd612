package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/prof"
)

// setupProfiling starts the profilers named by the persistent profiling
// flags. The returned stop function is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func() error, error) {
	var opts prof.Options
	for flag, dst := range map[string]*string{
		"cpu-profile":   &opts.CPUProfile,
		"mem-profile":   &opts.MemProfile,
		"runtime-trace": &opts.RuntimeTrace,
	} {
		v, err := cmd.Flags().GetString(flag)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", flag, err)
		}
		*dst = v
	}
	if !opts.Enabled() {
		return func() error { return nil }, nil
	}
	p, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return p.Stop, nil
}
