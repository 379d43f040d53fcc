// Package locator expands recursive glob patterns into source files.
//
// Resolution is read-only and holds no shared state, so a Locator can be used
// from several goroutines at once. Results are always deduplicated and sorted
// so that compile order never depends on directory iteration order.
package locator

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/fsops"
)

// SourceFile is a resolved source path and the pattern that produced it.
type SourceFile struct {
	// Path is absolute and cleaned.
	Path string `json:"path"`

	// Pattern is the pattern as the caller supplied it.
	Pattern string `json:"pattern"`
}

// Locator resolves glob patterns against a filesystem.
type Locator struct {
	fs fsops.FS
}

// New creates a Locator reading through fs.
func New(fs fsops.FS) *Locator {
	return &Locator{fs: fs}
}

// Resolve expands pattern under root. "**" matches any number of directories.
// An empty match is not an error; a missing root is a *cfgerr.PathError.
func (l *Locator) Resolve(root, pattern string) ([]SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &cfgerr.PathError{Root: root, Err: err}
	}

	info, err := l.fs.Stat(absRoot)
	if err != nil {
		return nil, &cfgerr.PathError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &cfgerr.PathError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	rel, err := rootRelative(absRoot, pattern)
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.Glob(l.fs.DirFS(absRoot), rel,
		doublestar.WithFilesOnly(),
		doublestar.WithFailOnIOErrors(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to expand pattern %q under %s: %w", pattern, absRoot, err)
	}

	candidates := make([]string, len(matches))
	for i, m := range matches {
		candidates[i] = filepath.Join(absRoot, filepath.FromSlash(m))
	}
	sort.Strings(candidates)

	// A file reachable through a symlinked directory is kept once, under its
	// lexicographically first path.
	seen := make(map[string]struct{}, len(candidates))
	files := make([]SourceFile, 0, len(candidates))
	for _, p := range candidates {
		target, err := l.fs.EvalSymlinks(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		files = append(files, SourceFile{Path: p, Pattern: pattern})
	}

	return files, nil
}

// rootRelative converts pattern to the slash-separated, root-relative form
// fs.FS globbing needs. Absolute patterns must lie under root.
func rootRelative(absRoot, pattern string) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", cfgerr.Configurationf("empty source pattern")
	}

	p := pattern
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return "", cfgerr.Configurationf("pattern %q is not under root %s", pattern, absRoot)
		}
		p = rel
	}

	p = path.Clean(filepath.ToSlash(p))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", cfgerr.Configurationf("pattern %q escapes root %s", pattern, absRoot)
	}
	if !doublestar.ValidatePattern(p) {
		return "", cfgerr.Configurationf("invalid source pattern %q", pattern)
	}

	return p, nil
}
