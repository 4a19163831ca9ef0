package driver

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Target is one file the driver converts.
type Target struct {
	Name string // as given, or as matched, relative to the routes directory
	Path string
}

// ResolveTargets turns target entries into files under dir. Entries with
// glob metacharacters are matched against every file below dir, using '/'
// as separator; other entries name a file directly, whether or not it
// exists. Results keep entry order, globs expanding in sorted order, and
// never contain the same file twice. Patterns that match no file are
// returned in unmatched.
func ResolveTargets(dir string, entries []string) (targets []Target, unmatched []string, err error) {
	seen := make(map[string]bool)
	add := func(name string) {
		name = filepath.ToSlash(filepath.Clean(name))
		if seen[name] {
			return
		}
		seen[name] = true
		targets = append(targets, Target{Name: name, Path: filepath.Join(dir, filepath.FromSlash(name))})
	}

	var files []string
	for _, entry := range entries {
		if !isPattern(entry) {
			add(entry)
			continue
		}
		g, err := glob.Compile(entry, '/')
		if err != nil {
			return nil, nil, fmt.Errorf("invalid target pattern %q: %w", entry, err)
		}
		if files == nil {
			if files, err = listFiles(dir); err != nil {
				return nil, nil, err
			}
		}
		matched := false
		for _, name := range files {
			if g.Match(name) {
				matched = true
				add(name)
			}
		}
		if !matched {
			unmatched = append(unmatched, entry)
		}
	}
	return targets, unmatched, nil
}

func isPattern(entry string) bool {
	return strings.ContainsAny(entry, "*?[{")
}

// listFiles returns the regular files below dir as sorted slash paths.
func listFiles(dir string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
