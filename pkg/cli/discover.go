package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
)

// skipDir reports whether a directory below a walk root is never descended
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "third_party"
}

// DiscoverFiles expands paths into the C files to check, in argument order.
// Directories are walked in lexical order, skipping hidden, vendor and
// third_party directories and anything matching an ignore pattern relative
// to the directory argument. File arguments are kept whenever they are C
// files. A path that cannot be read is an error.
func DiscoverFiles(paths []string, ignore []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", root, err)
		}

		if !info.IsDir() {
			if csource.IsSourcePath(root) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p == root {
				return nil
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				if skipDir(d.Name()) || ignored(ignore, rel) {
					return filepath.SkipDir
				}
				return nil
			}

			if csource.IsSourcePath(p) && !ignored(ignore, rel) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", root, err)
		}
	}

	return files, nil
}

// ignored reports whether rel matches one of patterns. A pattern ending in
// "/**" matches a directory and everything below it; other patterns match
// either the whole relative path or its base name.
func ignored(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			segments := strings.Split(rel, "/")
			for i := range segments {
				if ok, _ := path.Match(prefix, strings.Join(segments[:i+1], "/")); ok {
					return true
				}
			}
			continue
		}
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// readInputs loads every file into memory, recording the directory argument
// each file was found under
func readInputs(paths, args []string) ([]linter.Input, error) {
	var dirs []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			dirs = append(dirs, filepath.Clean(arg))
		}
	}

	inputs := make([]linter.Input, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}
		inputs = append(inputs, linter.Input{
			Path:    filepath.ToSlash(p),
			Content: content,
			BaseDir: baseDirOf(dirs, p),
		})
	}
	return inputs, nil
}

// baseDirOf returns the first of dirs that contains p, or ""
func baseDirOf(dirs []string, p string) string {
	for _, dir := range dirs {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && rel != ".." && !strings.HasPrefix(rel, "../") {
			return filepath.ToSlash(dir)
		}
	}
	return ""
}
