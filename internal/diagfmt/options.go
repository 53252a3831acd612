package diagfmt

import (
	"fmt"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode = source.PathStyle

const (
	// PathModeAuto shortens long absolute paths to their base name.
	PathModeAuto     = source.PathAuto
	PathModeAbsolute = source.PathAbsolute
	PathModeRelative = source.PathRelative
	PathModeBasename = source.PathBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	Width     uint8 // максимальная ширина строки исходника, 0 - не ограничено
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}

// Format names an output format of the check command.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatShort  Format = "short"
	FormatJSON   Format = "json"
)

// ParseFormat validates a format name from flags or config.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPretty, FormatShort, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown diagnostics format %q (want pretty, short or json)", s)
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if mode == PathModeRelative {
		return f.DisplayPath(mode, fs.BaseDir())
	}
	return f.DisplayPath(mode, "")
}
