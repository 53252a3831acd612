package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/config"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diagfmt"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/driver"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/unit"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <unit file|directory>...",
		Short: "Check unit files and instantiate their templates",
		Long: `Check decodes TOML or YAML unit files, resolves every declaration and
instantiates the templates they use. Directories are searched recursively.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().String("format", "", "diagnostics format (pretty|short|json); overrides ucb.toml")
	cmd.Flags().String("emit-instantiations", "", "write the instantiation report (json|msgpack|yaml)")
	cmd.Flags().String("emit-output", "-", "file for the instantiation report, - for stdout")
	cmd.Flags().Int("jobs", 0, "max units checked in parallel (0=auto)")
	cmd.Flags().Int("max-depth", 0, "max nested template instantiation depth")
	cmd.Flags().Int("max-diagnostics", 0, "max diagnostics per unit")
	cmd.Flags().Bool("no-dedup", false, "keep duplicate diagnostics")
	cmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("disk-cache", false, "reuse results of unchanged units from the disk cache")
	cmd.Flags().Bool("progress", false, "print driver phases to stderr")
	cmd.Flags().String("trace", "", "trace level (off|pass|unit|instance)")
	cmd.Flags().String("trace-output", "", "trace output file, - for stderr")
	cmd.Flags().String("trace-mode", "", "trace storage mode (stream|ring)")
	return cmd
}

// checkSettings is ucb.toml with the command line applied on top.
type checkSettings struct {
	cfg       config.Config
	format    diagfmt.Format
	emit      string
	emitOut   string
	withNotes bool
	fullPath  bool
	diskCache bool
	progress  bool
	timings   bool
}

func loadCheckSettings(cmd *cobra.Command) (checkSettings, error) {
	var s checkSettings
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		s.cfg, err = config.Load(configPath)
	} else {
		s.cfg, _, err = config.Discover(".")
	}
	if err != nil {
		return s, err
	}

	flags := cmd.Flags()
	overrides := []struct {
		name string
		str  *string
		num  *int
	}{
		{name: "format", str: &s.cfg.Diagnostics.Format},
		{name: "color", str: &s.cfg.Diagnostics.Color},
		{name: "emit-instantiations", str: &s.cfg.Build.Emit},
		{name: "jobs", num: &s.cfg.Build.Jobs},
		{name: "max-depth", num: &s.cfg.Templates.MaxDepth},
		{name: "max-diagnostics", num: &s.cfg.Diagnostics.Max},
	}
	for _, o := range overrides {
		if !flags.Changed(o.name) {
			continue
		}
		if o.str != nil {
			if *o.str, err = flags.GetString(o.name); err != nil {
				return s, fmt.Errorf("failed to get %s flag: %w", o.name, err)
			}
			continue
		}
		if *o.num, err = flags.GetInt(o.name); err != nil {
			return s, fmt.Errorf("failed to get %s flag: %w", o.name, err)
		}
	}
	noDedup, err := flags.GetBool("no-dedup")
	if err != nil {
		return s, fmt.Errorf("failed to get no-dedup flag: %w", err)
	}
	if noDedup {
		s.cfg.Diagnostics.Dedup = false
	}
	if err := s.cfg.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings: %w", err)
	}

	if s.format, err = diagfmt.ParseFormat(s.cfg.Diagnostics.Format); err != nil {
		return s, err
	}
	s.emit = s.cfg.Build.Emit
	for name, dst := range map[string]*bool{
		"with-notes": &s.withNotes,
		"fullpath":   &s.fullPath,
		"disk-cache": &s.diskCache,
		"progress":   &s.progress,
		"timings":    &s.timings,
	} {
		if *dst, err = flags.GetBool(name); err != nil {
			return s, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if s.emitOut, err = flags.GetString("emit-output"); err != nil {
		return s, fmt.Errorf("failed to get emit-output flag: %w", err)
	}
	return s, nil
}

// runCheck executes the "check" command. It returns errCheckFailed when
// any unit produced an error diagnostic.
func runCheck(cmd *cobra.Command, args []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	s, err := loadCheckSettings(cmd)
	if err != nil {
		return err
	}
	paths, err := unit.Discover(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no unit files found in %v", args)
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			fmt.Fprintf(errOut, "ucb: %v\n", err)
		}
	}()

	tracer, cleanup, err := setupTracing(cmd, s.cfg, errOut)
	if err != nil {
		return err
	}

	opts := driver.Options{
		MaxDiagnostics: s.cfg.Diagnostics.Max,
		MaxDepth:       s.cfg.Templates.MaxDepth,
		Jobs:           s.cfg.Build.Jobs,
		Dedup:          s.cfg.Diagnostics.Dedup,
		Timings:        s.timings,
		Tracer:         tracer,
	}
	if s.diskCache {
		if opts.Cache, err = driver.OpenDiskCache(s.cfg.Build.CacheDir, "ucb"); err != nil {
			cleanup(false)
			return err
		}
	}
	if s.progress {
		opts.Observer = progressObserver(errOut)
	}

	res, err := driver.CheckUnits(cmd.Context(), paths, opts)
	failed := err != nil || res.HasErrors()
	cleanup(failed)
	if err != nil {
		return err
	}

	if err := printDiagnostics(out, res, s); err != nil {
		return err
	}
	if s.timings && s.format == diagfmt.FormatPretty {
		for _, sess := range res.Sessions {
			fmt.Fprintf(errOut, "%s\n%s", sess.Path, sess.Timer.Summary())
		}
	}
	if s.emit != "" {
		if err := emitReports(out, res, s); err != nil {
			return err
		}
	}
	if failed {
		return errCheckFailed
	}
	return nil
}

func printDiagnostics(out io.Writer, res *driver.Result, s checkSettings) error {
	bag := res.Diagnostics()
	if s.cfg.Diagnostics.Dedup {
		bag.Dedup()
	}
	pathMode := diagfmt.PathModeAuto
	if s.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch s.format {
	case diagfmt.FormatJSON:
		return diagfmt.JSON(out, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     s.withNotes,
		})
	case diagfmt.FormatShort:
		return diagfmt.Short(out, bag, res.FileSet, s.withNotes)
	default:
		return diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     useColor(s.cfg.Diagnostics.Color, out),
			PathMode:  pathMode,
			ShowNotes: s.withNotes,
		})
	}
}

func emitReports(out io.Writer, res *driver.Result, s checkSettings) (err error) {
	format, err := driver.ParseReportFormat(s.emit)
	if err != nil {
		return err
	}
	if s.emitOut == "" || s.emitOut == "-" {
		return driver.WriteReport(out, res.Reports(), format)
	}
	f, err := os.Create(s.emitOut)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return driver.WriteReport(f, res.Reports(), format)
}

func progressObserver(w io.Writer) driver.PhaseObserver {
	return func(ev driver.PhaseEvent) {
		if ev.Status == driver.PhaseEnd {
			fmt.Fprintf(w, "%-6s %8.2f ms\n", ev.Name, float64(ev.Elapsed.Microseconds())/1000)
		}
	}
}
