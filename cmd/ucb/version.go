package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func newVersionCmd() *cobra.Command {
	var format string
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show ucb build fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(format) {
			case "pretty":
				color, err := cmd.Flags().GetString("color")
				if err != nil {
					return fmt.Errorf("failed to get color flag: %w", err)
				}
				renderVersionPretty(cmd.OutOrStdout(), full, useColor(color, cmd.OutOrStdout()))
				return nil
			case "json":
				return renderVersionJSON(cmd.OutOrStdout(), full)
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().BoolVar(&full, "full", false, "include commit hash and build date")
	return cmd
}

func renderVersionPretty(out io.Writer, full, color bool) {
	fmt.Fprintf(out, "ucb %s\n", version.Colored(color))
	if full {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{Tool: "ucb", Version: version.Version}
	if full {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
