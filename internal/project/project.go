// Package project loads the contractus.toml manifest that describes a
// Contractus project: package metadata, source roots, and build output
// settings. Single-file compilation works without a manifest; commands
// only consult it when one is present.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file commands look for when no path is given.
const ManifestName = "contractus.toml"

// Package is the [package] table.
type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Build is the [build] table.
type Build struct {
	// SrcDir is the directory scanned for .ctx files. Defaults to "src".
	SrcDir string `toml:"src_dir"`
	// OutDir receives generated C files. Defaults to "out".
	OutDir string `toml:"out_dir"`
	// MaxErrors caps the diagnostics reported per file. 0 keeps the
	// compiler default.
	MaxErrors int `toml:"max_errors"`
}

// Manifest is a parsed contractus.toml.
type Manifest struct {
	Package Package `toml:"package"`
	Build   Build   `toml:"build"`

	// Dir is the directory holding the manifest; relative paths in the
	// manifest resolve against it.
	Dir string `toml:"-"`
}

// Load parses the manifest at path and applies defaults.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load %s: unknown key %q", path, undecoded[0].String())
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("load %s: package.name is required", path)
	}
	if m.Build.SrcDir == "" {
		m.Build.SrcDir = "src"
	}
	if m.Build.OutDir == "" {
		m.Build.OutDir = "out"
	}
	m.Dir = filepath.Dir(path)
	return &m, nil
}

// Find walks from dir upward looking for a manifest. A missing manifest
// is reported with os.ErrNotExist.
func Find(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(abs, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return nil, fmt.Errorf("no %s found: %w", ManifestName, os.ErrNotExist)
		}
		abs = parent
	}
}

// SourcePaths lists the .ctx files under the manifest's source directory,
// sorted by filepath.Walk order for deterministic builds.
func (m *Manifest) SourcePaths() ([]string, error) {
	root := filepath.Join(m.Dir, m.Build.SrcDir)
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".ctx" {
			paths = append(paths, path)
		}
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("source directory %s does not exist", root)
	}
	return paths, err
}
