package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Default permissions for created working directories and ledger files.
const (
	DefaultDirMode  fs.FileMode = 0o777
	DefaultFileMode fs.FileMode = 0o666
)

// Store is the file access the installer needs: recursive listing,
// whole-file reads, appends and directory creation.
type Store interface {
	List(dir string, exts []string) ([]string, error)
	Read(path string) ([]byte, error)
	Append(path string, data []byte) error
	EnsureDir(dir string) error
}

// OS is a Store backed by the local filesystem.
type OS struct {
	DirMode  fs.FileMode
	FileMode fs.FileMode
}

// New returns an OS store using the default permissions.
func New() *OS {
	return &OS{DirMode: DefaultDirMode, FileMode: DefaultFileMode}
}

// List walks dir recursively and returns the paths of regular files whose
// extension is in exts (all files when exts is empty), sorted lexically.
// Entries whose name starts with a dot are skipped, directories included.
// A missing or unreadable dir yields an empty result.
func (s *OS) List(dir string, exts []string) ([]string, error) {
	allowed := normalizeExts(exts)

	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fs.SkipAll
			}

			if d != nil && d.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		if path == dir {
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !allowed.match(d.Name()) {
			return nil
		}

		paths = append(paths, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	sort.Strings(paths)

	return paths, nil
}

// Read returns the full contents of path.
func (s *OS) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}

// Append writes data at the end of path, creating the file if needed.
// The file is synced and closed before Append returns.
func (s *OS) Append(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.fileMode())
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", path, err)
	}

	return nil
}

// EnsureDir creates dir and any missing parents.
func (s *OS) EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
		}

		return nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, s.dirMode()); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	return nil
}

func (s *OS) dirMode() fs.FileMode {
	if s.DirMode == 0 {
		return DefaultDirMode
	}

	return s.DirMode
}

func (s *OS) fileMode() fs.FileMode {
	if s.FileMode == 0 {
		return DefaultFileMode
	}

	return s.FileMode
}

// extSet holds lower-cased extensions without their leading dot.
type extSet map[string]struct{}

func normalizeExts(exts []string) extSet {
	set := make(extSet, len(exts))

	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			set[e] = struct{}{}
		}
	}

	return set
}

func (s extSet) match(name string) bool {
	if len(s) == 0 {
		return true
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := s[ext]

	return ok
}
