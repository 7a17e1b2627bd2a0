// Package filesystem reads scan files from a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lightway-xas/lightway/internal/core/domain"
	"github.com/lightway-xas/lightway/internal/core/ports/driven"
	"github.com/lightway-xas/lightway/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ScanSource = (*Source)(nil)

// Source yields every file under a root directory whose name ends in the
// configured extension. Files are yielded in lexicographic order of their
// slash-separated path relative to the root. Hidden files and directories
// are skipped.
type Source struct {
	root      string
	extension string
	format    string
}

// New creates a filesystem source. An empty extension means
// domain.DefaultScanExtension.
func New(root, extension string) *Source {
	if extension == "" {
		extension = domain.DefaultScanExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Source{
		root:      root,
		extension: strings.ToLower(extension),
	}
}

// WithFormat sets the format tag stamped on every scan. An empty format
// keeps the default, the matched extension.
func (s *Source) WithFormat(format string) *Source {
	s.format = format
	return s
}

// Type returns the source type identifier.
func (s *Source) Type() string {
	return domain.SourceTypeFilesystem
}

// Root returns the directory the source walks.
func (s *Source) Root() string {
	return s.root
}

// Extension returns the matched file extension.
func (s *Source) Extension() string {
	return s.extension
}

// Validate checks the root exists and is a directory.
func (s *Source) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: root %s does not exist", domain.ErrInvalidInput, s.root)
		}
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root %s is not a directory", domain.ErrInvalidInput, s.root)
	}
	return nil
}

// Scans yields every matching file. A file that cannot be read is yielded
// with its error and the walk continues.
func (s *Source) Scans(ctx context.Context) iter.Seq2[*domain.RawScan, error] {
	return func(yield func(*domain.RawScan, error) bool) {
		paths, err := s.list(ctx)
		if err != nil {
			yield(nil, err)
			return
		}

		for _, rel := range paths {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			path := filepath.Join(s.root, filepath.FromSlash(rel))
			scan := &domain.RawScan{
				URI:    path,
				Format: s.extension,
			}
			if s.format != "" {
				scan.Format = s.format
			}
			content, err := os.ReadFile(path)
			if err != nil {
				if !yield(scan, fmt.Errorf("read %s: %w", path, err)) {
					return
				}
				continue
			}
			scan.Content = content
			if !yield(scan, nil) {
				return
			}
		}
	}
}

// list returns the slash-separated relative paths of every matching file, sorted.
func (s *Source) list(ctx context.Context) ([]string, error) {
	if err := s.Validate(ctx); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == s.root {
			return nil
		}

		if isHidden(d.Name()) {
			logger.Debug("Skipping hidden %s", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.matches(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

func (s *Source) matches(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), s.extension)
}

// isHidden returns true for dot-prefixed names other than "." and "..".
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
