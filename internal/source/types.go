package source

type (
	// FileID uniquely identifies a file within a FileSet.
	FileID uint32
	// FileFlags records where a file came from and how it was normalized.
	FileFlags uint8
)

// NoFileID marks spans that do not point into any file.
const NoFileID FileID = ^FileID(0)

const (
	// FileVirtual marks files that were never read from disk.
	FileVirtual FileFlags = 1 << iota
	// FileRendered marks listings produced from a structured unit file.
	FileRendered
	FileHadBOM
	FileNormalizedCRLF
)

// LineCol is a 1-based line and column.
type LineCol struct {
	Line uint32
	Col  uint32
}
