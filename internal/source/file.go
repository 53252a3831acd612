package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// File is one listing or unit file held by a FileSet.
type File struct {
	ID      FileID
	Path    string
	Origin  string // unit file a rendered listing was produced from
	Content []byte
	Flags   FileFlags

	lineStarts []uint32
}

// LineCount reports the number of lines, counting a trailing partial line.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}

func (f *File) position(off uint32) LineCol {
	if len(f.lineStarts) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	// первая строка, начинающаяся после off, минус один
	i := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > off }) - 1
	line, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: line, Col: off - f.lineStarts[i] + 1}
}

// Line returns the text of the 1-based line n without its newline, or ""
// when n is out of range.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[n-1]
	if int(start) >= len(f.Content) {
		return ""
	}
	text := f.Content[start:]
	if int(n) < len(f.lineStarts) {
		text = f.Content[start : f.lineStarts[n]-1]
	}
	return strings.TrimSuffix(string(text), "\n")
}

// PathStyle selects how DisplayPath renders a file path.
type PathStyle uint8

const (
	// PathAuto keeps short or relative paths and shortens long absolute
	// ones to their base name.
	PathAuto PathStyle = iota
	PathAbsolute
	PathRelative
	PathBasename
)

// autoPathLimit is the longest absolute path PathAuto prints in full.
const autoPathLimit = 40

// DisplayPath renders the path in the given style. Relative paths are
// computed against baseDir, or the working directory when it is empty.
func (f *File) DisplayPath(style PathStyle, baseDir string) string {
	switch style {
	case PathAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathRelative:
		if !filepath.IsAbs(f.Path) {
			return f.Path
		}
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := filepath.Rel(baseDir, f.Path); err == nil {
			return filepath.ToSlash(rel)
		}
	case PathBasename:
		return filepath.Base(f.Path)
	case PathAuto:
		if len(f.Path) >= autoPathLimit && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
