package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadNormalized reads a unit file with a leading BOM stripped and CRLF
// line endings turned into LF. Lone \r bytes are kept.
func ReadNormalized(path string) ([]byte, FileFlags, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	var flags FileFlags
	if rest, ok := bytes.CutPrefix(content, utf8BOM); ok {
		content = rest
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return content, flags, nil
}

// lineStarts returns the offset of the first byte of every line. A file
// ending in a newline has no extra empty line.
func lineStarts(content []byte) []uint32 {
	if len(content) == 0 {
		return nil
	}
	starts := []uint32{0}
	for i, b := range content[:len(content)-1] {
		if b != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		starts = append(starts, off)
	}
	return starts
}

func cleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
