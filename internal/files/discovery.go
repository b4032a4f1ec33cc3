// Package files discovers the source files a batch run maps.
package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files in the root when pattern starts with **/.
	rootGlob glob.Glob
}

// Discovery finds files under a root directory using include globs and
// ignore rules. Patterns are matched against slash-separated paths relative
// to the root.
type Discovery struct {
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
	skipDirs       []string
}

// File is one discovered file.
type File struct {
	// Path is the path on disk.
	Path string
	// Rel is the slash-separated path relative to the discovery root.
	Rel string
}

// NewDiscovery compiles the include and ignore patterns. skipDirs lists
// extra root-relative directories that are never entered, such as the
// output directory of a previous run.
func NewDiscovery(rootDir string, include, ignore []string, skipDirs ...string) (*Discovery, error) {
	d := &Discovery{
		rootDir: rootDir,
	}

	var err error
	if d.includes, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compilePatterns(ignore); err != nil {
		return nil, err
	}

	for _, dir := range skipDirs {
		if dir == "" {
			continue
		}
		d.skipDirs = append(d.skipDirs, strings.TrimSuffix(filepath.ToSlash(filepath.Clean(dir)), "/"))
	}

	return d, nil
}

// ErrUnbalancedBraces is returned for a pattern whose { and } do not pair up.
// The glob library compiles such patterns without an error.
var ErrUnbalancedBraces = errors.New("unbalanced braces")

// CompilePattern compiles a slash-separated glob pattern.
func CompilePattern(pattern string) (glob.Glob, error) {
	depth := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, ErrUnbalancedBraces
			}
		}
	}
	if depth != 0 {
		return nil, ErrUnbalancedBraces
	}
	return glob.Compile(pattern, '/')
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := CompilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		// "**/*.py" should also match "main.py" in the root.
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Discover walks the root and returns matching files sorted by Rel.
func (d *Discovery) Discover() ([]File, error) {
	var found []File

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && d.shouldSkipDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() || d.shouldIgnore(relPath) {
			return nil
		}

		if matchesAnyPattern(relPath, d.includes) {
			found = append(found, File{Path: path, Rel: relPath})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Rel < found[j].Rel })
	return found, nil
}

func (d *Discovery) shouldSkipDir(relPath string) bool {
	if relPath == ".minimap" || relPath == ".git" {
		return true
	}
	for _, dir := range d.skipDirs {
		if relPath == dir {
			return true
		}
	}
	// "node_modules" should match pattern "node_modules/**"
	return matchesAnyPattern(relPath+"/**", d.ignorePatterns)
}

// shouldIgnore checks if a file path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	return matchesAnyPattern(relPath, d.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	inRoot := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if inRoot && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
