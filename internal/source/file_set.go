package source

import (
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet owns every listing a check run produces and resolves spans into
// line/column positions. Ids are never reused: adding the same path twice
// yields two files and Lookup returns the newer one.
type FileSet struct {
	files   []File
	byPath  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// SetBaseDir sets the directory relative paths are computed against.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir returns the configured base directory or the working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir != "" {
		return fileSet.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Add stores content under path and returns its id.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	id := fileSet.NextID()
	path = cleanPath(path)
	fileSet.files = append(fileSet.files, File{
		ID:         id,
		Path:       path,
		Content:    content,
		lineStarts: lineStarts(content),
		Flags:      flags,
	})
	fileSet.byPath[path] = id
	return id
}

// AddVirtual adds an in-memory file with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// AddRendered registers the listing rendered from a unit file. Diagnostics
// point into the listing; Origin keeps the unit path for reports.
func (fileSet *FileSet) AddRendered(origin, path string, content []byte) FileID {
	id := fileSet.Add(path, content, FileVirtual|FileRendered)
	fileSet.files[id].Origin = cleanPath(origin)
	return id
}

// Get returns the file for id, or nil for NoFileID and unknown ids.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// NextID returns the id the next added file will get. Printers use it to
// assign spans before the listing exists.
func (fileSet *FileSet) NextID() FileID {
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil || FileID(n) == NoFileID {
		panic(fmt.Errorf("file set overflow: %d files", len(fileSet.files)))
	}
	return FileID(n)
}

func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Lookup returns the newest file added under path.
func (fileSet *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fileSet.byPath[cleanPath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions. Spans outside
// the set resolve to zero positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.position(span.Start), f.position(span.End)
}
