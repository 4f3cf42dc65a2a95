package cli

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
	"github.com/toyz/delegen/internal/utils"
)

// Cleaner removes files generated by delegen
type Cleaner struct {
	logger utils.Logger
}

// NewCleaner creates a new cleaner
func NewCleaner(logger utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean removes every Go file carrying the delegen header from the
// directories matched by patterns, resolved against dir. A pattern ending
// in /... matches the directory and all its subdirectories. Returns the
// removed files, sorted.
func (c *Cleaner) Clean(dir string, patterns []string) ([]string, error) {
	var removed []string
	for _, pattern := range patterns {
		base, recursive := splitPattern(pattern)
		if !filepath.IsAbs(base) {
			base = filepath.Join(dir, base)
		}

		var err error
		if recursive {
			err = c.cleanRecursively(base, &removed)
		} else {
			err = c.cleanDirectory(base, &removed)
		}
		if err != nil {
			return removed, err
		}
	}

	sort.Strings(removed)
	return removed, nil
}

func (c *Cleaner) cleanRecursively(root string, removed *[]string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return nil
			}
			return errors.WrapFileSystemError("walk", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return c.cleanDirectory(path, removed)
	})
}

func (c *Cleaner) cleanDirectory(dir string, removed *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Debug("Skipping missing directory %s", dir)
			return nil
		}
		return errors.WrapFileSystemError("read", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		generated, err := IsGeneratedFile(path)
		if err != nil {
			return err
		}
		if !generated {
			continue
		}
		if err := os.Remove(path); err != nil {
			return errors.WrapFileSystemError("remove", path, err)
		}
		c.logger.Debug("Removed %s", path)
		*removed = append(*removed, path)
	}
	return nil
}

// IsGeneratedFile reports whether the first line of path is the delegen header
func IsGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.WrapFileSystemError("open", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, nil
	}
	return strings.TrimRight(scanner.Text(), "\r") == models.GeneratedHeader, nil
}

// splitPattern turns a package pattern into a directory and whether it recurses
func splitPattern(pattern string) (string, bool) {
	switch {
	case pattern == "...":
		return ".", true
	case strings.HasSuffix(pattern, "/..."):
		base := strings.TrimSuffix(pattern, "/...")
		if base == "" {
			base = "/"
		}
		return filepath.FromSlash(base), true
	default:
		return filepath.FromSlash(pattern), false
	}
}

// skipDir reports whether the go command would ignore the directory
func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
