package diagfmt

import (
	"io"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// Short prints one line per diagnostic in the golden format used by
// tests: "<sev> <CODE> <path>:<line>:<col> <message>". Notes follow as
// "note" lines when withNotes is set.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, withNotes bool) error {
	out := diag.FormatGoldenDiagnostics(bag.Items(), fs, withNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
