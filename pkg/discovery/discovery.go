// Package discovery resolves CLI path arguments into the concrete list of
// Python files to process.
package discovery

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/src-d/enry/v2"
)

// pythonLanguage is enry's canonical name for Python.
const pythonLanguage = "Python"

// probeSize is how many leading bytes are read to classify extensionless
// files (enough for a shebang and encoding line).
const probeSize = 512

// Finder walks path arguments and collects Python source files.
type Finder struct {
	// Excludes are base-name patterns (path.Match syntax) skipped during
	// directory walks. Explicitly named files are never filtered.
	Excludes []string

	// MaxFileSize skips files larger than this many bytes during walks.
	// Zero means no limit.
	MaxFileSize int64

	// Logger records skipped entries. Nil uses slog.Default.
	Logger *slog.Logger
}

// NewFinder creates a Finder.
func NewFinder(excludes []string, maxFileSize int64, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Finder{
		Excludes:    excludes,
		MaxFileSize: maxFileSize,
		Logger:      logger,
	}
}

// Resolve expands the given paths into a sorted, de-duplicated file list.
// File arguments are included as-is; directory arguments are walked
// recursively for `.py` files and extensionless Python scripts.
func (f *Finder) Resolve(paths []string) ([]string, error) {
	seen := make(map[string]struct{})

	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("discovery: %w", err)
		}

		if !info.IsDir() {
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				files = append(files, path)
			}

			continue
		}

		walked, err := f.walk(path)
		if err != nil {
			return nil, err
		}

		for _, file := range walked {
			if _, dup := seen[file]; !dup {
				seen[file] = struct{}{}
				files = append(files, file)
			}
		}
	}

	sort.Strings(files)

	return files, nil
}

// walk collects Python files under root.
func (f *Finder) walk(root string) ([]string, error) {
	var files []string

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			f.Logger.Warn("skipping unreadable entry", "path", path, "error", err)

			return nil
		}

		if f.excluded(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}

		if f.tooLarge(path, entry) {
			return nil
		}

		if f.isPython(path) {
			files = append(files, path)
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("discovery: walk %s: %w", root, walkErr)
	}

	return files, nil
}

// excluded matches a base name against the exclude patterns.
func (f *Finder) excluded(name string) bool {
	for _, pattern := range f.Excludes {
		matched, err := filepath.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}

	return false
}

// tooLarge reports whether the entry exceeds the size limit.
func (f *Finder) tooLarge(path string, entry fs.DirEntry) bool {
	if f.MaxFileSize <= 0 {
		return false
	}

	info, err := entry.Info()
	if err != nil {
		return false
	}

	if info.Size() > f.MaxFileSize {
		f.Logger.Debug("skipping oversized file", "path", path, "size", info.Size())

		return true
	}

	return false
}

// isPython classifies a walked file. `.py` wins on extension alone;
// extensionless scripts are probed by content (shebang detection via enry).
func (f *Finder) isPython(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".py") {
		return true
	}

	if filepath.Ext(path) != "" {
		return false
	}

	head, err := readHead(path, probeSize)
	if err != nil {
		return false
	}

	return enry.GetLanguage(filepath.Base(path), head) == pythonLanguage
}

// readHead reads up to n leading bytes of a file.
func readHead(path string, n int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	head, err := io.ReadAll(io.LimitReader(file, n))
	if err != nil {
		return nil, err
	}

	return head, nil
}
