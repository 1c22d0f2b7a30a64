// Package loader resolves and reads downtime definition files.
package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Source is a (path, content) pair handed to the parser.
type Source struct {
	Path    string
	Content string
}

// Resolve returns the ordered list of downtime files to process. When single
// is set, the result is that one file under dir if it exists as a regular
// file, otherwise empty. Without single, all *.tsk files directly under dir
// are returned in lexical order. A missing directory is the empty case, not
// an error.
func Resolve(dir, single string) ([]string, error) {
	dir = strings.TrimRight(dir, string(os.PathSeparator))

	if single != "" {
		path := filepath.Join(dir, single)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, errors.Wrapf(err, "stat %s", path)
		}
		if !info.Mode().IsRegular() {
			return nil, nil
		}
		return []string{path}, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tsk"))
	if err != nil {
		return nil, errors.Wrapf(err, "glob %s", dir)
	}
	sort.Strings(matches)

	var paths []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, m)
	}
	return paths, nil
}

// ReadFiles loads each path into memory.
func ReadFiles(paths []string) ([]Source, error) {
	var out []Source
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", p)
		}
		out = append(out, Source{Path: p, Content: string(b)})
	}
	return out, nil
}
