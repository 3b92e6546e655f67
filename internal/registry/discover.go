package registry

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// manifestFilenames are checked, in order, within each candidate
// directory. pubspec.yaml only counts as a manifest when it carries a
// top-level version field (checked by the caller after decode).
var manifestFilenames = []string{"template.yaml", "brick.yaml", "pubspec.yaml"}

// DefaultMaxDepth bounds the directory walk so a malformed or
// pathological tree can't make discovery run unbounded.
const DefaultMaxDepth = 8

// excludedDirs are skipped outright: build output and VCS directories
// never contain a template manifest worth discovering.
var excludedDirs = []string{
	"**/node_modules/**", "**/.git/**", "**/dist/**", "**/build/**",
	"**/target/**", "**/vendor/**", "**/.dart_tool/**",
}

// TemplateLocation is one discovered template: its manifest and the
// directory it lives in (templates/ body files are resolved relative
// to this root by the caller).
type TemplateLocation struct {
	Root     string
	Manifest Manifest
}

// Discover walks root up to maxDepth (0 uses DefaultMaxDepth),
// skipping hidden and well-known build directories, and returns every
// directory carrying a recognized manifest file.
func Discover(root string, maxDepth int) ([]TemplateLocation, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var found []TemplateLocation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			if isHidden(d.Name()) || shouldExclude(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
			if depthOf(rel) > maxDepth {
				return filepath.SkipDir
			}
		}

		for _, name := range manifestFilenames {
			candidate := filepath.Join(path, name)
			if !fileExists(candidate) {
				continue
			}
			m, err := DecodeManifest(candidate)
			if err != nil {
				continue
			}
			if name == "pubspec.yaml" && m.Version == "" {
				continue
			}
			found = append(found, TemplateLocation{Root: path, Manifest: m})
			break
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func isHidden(name string) bool {
	return name != "." && strings.HasPrefix(name, ".")
}

func shouldExclude(relSlashPath string) bool {
	for _, pattern := range excludedDirs {
		if matched, err := doublestar.Match(pattern, relSlashPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, relSlashPath+"/"); err == nil && matched {
			return true
		}
	}
	return false
}

func depthOf(relPath string) int {
	if relPath == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(relPath), "/") + 1
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
