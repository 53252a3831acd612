package unit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Discover expands args into unit file paths. Directories are walked
// recursively and contribute every .toml, .yaml and .yml file except the
// project configuration; explicit file arguments are kept as given.
func Discover(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", arg, err)
		}
		if !info.IsDir() {
			if _, err := FormatOf(arg); err != nil {
				return nil, err
			}
			add(filepath.Clean(arg))
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Name() == ConfigName {
				return nil
			}
			if _, err := FormatOf(path); err != nil {
				if errors.Is(err, ErrUnknownFormat) {
					return nil
				}
				return err
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", arg, err)
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}

// ConfigName is skipped when walking unit directories.
const ConfigName = "ucb.toml"
