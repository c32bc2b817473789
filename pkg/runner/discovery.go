package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// Discover expands opts.Paths into a sorted, deduplicated list of files.
// Files named explicitly are always kept; directories are walked for files
// with a Markdown extension, skipping hidden entries and ExcludeGlobs.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	extensions := opts.effectiveExtensions()
	exclude := newMatcher(opts.ExcludeGlobs)
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		found, err := walkDirectory(ctx, abs, extensions, exclude)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	slices.Sort(files)
	return files, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		return os.Getwd()
	}
	return filepath.Abs(workDir)
}

func walkDirectory(ctx context.Context, root string, extensions []string, exclude *matcher) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			rel = p
		}
		hidden := p != root && strings.HasPrefix(entry.Name(), ".")

		if entry.IsDir() {
			if hidden || (p != root && exclude.match(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || exclude.match(rel) || !hasExtension(p, extensions) {
			return nil
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			// Only symlinks to regular files count.
			info, err := os.Stat(p)
			if err != nil || !info.Mode().IsRegular() {
				return nil //nolint:nilerr // Broken or directory symlinks are skipped.
			}
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	return files, nil
}

func hasExtension(p string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return slices.ContainsFunc(extensions, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}

// matcher holds compiled exclude patterns. Patterns that fail to compile
// are left out.
type matcher struct {
	full []glob.Glob
	base []glob.Glob
}

func newMatcher(patterns []string) *matcher {
	m := &matcher{}
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if _, err := glob.Compile(pattern, '/'); err != nil {
			continue
		}
		if !strings.Contains(pattern, "/") && pattern != "**" {
			m.base = append(m.base, glob.MustCompile(pattern, '/'))
		}
		for _, variant := range expandGlob(pattern) {
			if g, err := glob.Compile(variant, '/'); err == nil {
				m.full = append(m.full, g)
			}
		}
	}
	return m
}

func (m *matcher) match(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, g := range m.base {
		if g.Match(base) {
			return true
		}
	}
	for _, g := range m.full {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// expandGlob spells out the zero-directory forms of "**": "a/**/b" also
// yields "a/b" and "a/**" also yields "a".
func expandGlob(pattern string) []string {
	var out []string
	if trimmed, ok := strings.CutSuffix(pattern, "/**"); ok && trimmed != "" {
		out = append(out, expandGlob(trimmed)...)
	}

	i := strings.Index(pattern, "**/")
	if i < 0 {
		return append(out, pattern)
	}
	head := pattern[:i]
	for _, rest := range expandGlob(pattern[i+3:]) {
		out = append(out, head+"**/"+rest, head+rest)
	}
	return out
}

// MatchGlob reports whether the relative path rel matches pattern. A
// pattern without a slash also matches the base name. "**" matches zero or
// more directories. Malformed patterns match nothing.
func MatchGlob(rel, pattern string) bool {
	return newMatcher([]string{pattern}).match(rel)
}
