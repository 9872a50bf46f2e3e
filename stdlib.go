// stdlib.go: the standard-library file loader.
//
// The loader recursively enumerates .nepl files under a root directory and
// returns them as (path relative to root, contents) pairs in sorted path
// order. The compiled program does not currently consume these files: they
// ride along in the artifact as inert metadata, and only their count is
// surfaced (by the textual-IR backend). Do not infer any merging or
// namespace behavior from their presence.
package nepl

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// StdlibFile is one standard-library source file.
type StdlibFile struct {
	// Path relative to the stdlib root, slash-separated.
	Path string

	// Contents is the raw source text.
	Contents string
}

// DefaultStdlibRoot locates the bundled stdlib: the "stdlib" directory next
// to the running executable, falling back to ./stdlib.
func DefaultStdlibRoot() string {
	if exe, err := os.Executable(); err == nil {
		root := filepath.Join(filepath.Dir(exe), "stdlib")
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			return root
		}
	}
	return "stdlib"
}

// LoadStdlibFiles scans root for .nepl files. A root that does not exist or
// is not a directory yields *MissingStdlibError.
func LoadStdlibFiles(root string) ([]StdlibFile, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, &MissingStdlibError{Path: root}
	}

	var files []StdlibFile
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".nepl" {
			return nil
		}
		contents, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, StdlibFile{
			Path:     filepath.ToSlash(rel),
			Contents: string(contents),
		})
		return nil
	})
	if walkErr != nil {
		return nil, &SourceError{Err: walkErr}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
