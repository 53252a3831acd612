// Package unit decodes unit files into syntax trees. A unit file lists
// declarations as structured data, in TOML or YAML; there is no textual
// source syntax. Every decoded unit is rendered to a listing that is
// registered in the file set, so diagnostics have text to point at.
package unit

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

type Format uint8

const (
	FormatTOML Format = iota + 1
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat is returned for paths without a unit file extension.
var ErrUnknownFormat = errors.New("unknown unit file format")

// FormatOf picks the decoder by file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Unit is a decoded unit file.
type Unit struct {
	Path    string
	Format  Format
	File    *ast.File
	Listing source.FileID
}

// Load reads and decodes the unit file at path.
func Load(fs *source.FileSet, strs *source.Interner, path string) (*Unit, error) {
	data, _, err := source.ReadNormalized(path)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}
	return Parse(fs, strs, path, data)
}

// Parse decodes data, builds the syntax tree and registers its listing in
// fs. The format is taken from the path extension.
func Parse(fs *source.FileSet, strs *source.Interner, path string, data []byte) (*Unit, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	spec, err := decode(path, data, format)
	if err != nil {
		return nil, err
	}
	b := &builder{strs: strs}
	file, err := b.file(path, spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	id := fs.NextID()
	listing := ast.Print(file, id, strs)
	if got := fs.AddRendered(path, listingPath(path), listing); got != id {
		panic(fmt.Errorf("unit: listing id %d, expected %d", got, id))
	}
	return &Unit{Path: path, Format: format, File: file, Listing: id}, nil
}

// listingPath names the rendered listing after its unit file.
func listingPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".u"
}

func decode(path string, data []byte, format Format) (*fileSpec, error) {
	var spec fileSpec
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &spec)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	return &spec, nil
}
