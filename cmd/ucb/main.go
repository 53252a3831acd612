package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/version"
)

// errCheckFailed signals that diagnostics with errors were printed; main
// exits with status 1 without printing anything else.
var errCheckFailed = errors.New("check failed")

// newRootCmd builds the command tree. Tests build their own tree so that
// flag state does not leak between runs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ucb",
		Short:         "Template instantiation checker",
		Long:          `ucb checks unit files and reports every template instantiation they produce`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Глобальные флаги
	root.PersistentFlags().String("color", "", "colorize output (auto|on|off); overrides ucb.toml")
	root.PersistentFlags().String("config", "", "path to ucb.toml (default: nearest one above the working directory)")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write Go runtime trace to file")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newCleanCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "ucb: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) || isatty.IsCygwinTerminal(f.Fd())
}

// useColor resolves an auto|on|off setting for w.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isTerminal(w)
}
