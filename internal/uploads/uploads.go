// Package uploads provides access to the Open WebUI uploads directory.
// Names are relative to the directory and may never resolve outside it.
package uploads

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/wasilibs/go-re2"
)

// ErrOutsideDir is returned for names that would resolve outside the directory.
var ErrOutsideDir = errors.New("path is outside the uploads directory")

// Dir is the uploads directory.
type Dir struct {
	path    string
	exclude []*re2.Regexp
}

// Listing is the result of listing the directory.
type Listing struct {
	Files    []string // regular files considered for reconciliation, sorted
	Excluded []string // regular files matching an exclude pattern
	Skipped  []string // directories, symlinks and other non-regular entries
}

// New creates a Dir. excludePatterns are RE2 expressions matched against
// on-disk names; matching files are never reported by List.
func New(path string, excludePatterns []string) (*Dir, error) {
	if path == "" {
		return nil, errors.New("uploads directory is required")
	}

	d := &Dir{path: filepath.Clean(path)}
	for _, pattern := range excludePatterns {
		re, err := re2.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		d.exclude = append(d.exclude, re)
	}
	return d, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Join returns the full path of name. Names escaping the directory are rejected.
func (d *Dir) Join(name string) (string, error) {
	if name == "" || !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrOutsideDir, name)
	}
	return filepath.Join(d.path, name), nil
}

// List returns the regular files directly inside the directory.
func (d *Dir) List() (Listing, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return Listing{}, fmt.Errorf("failed to list uploads directory %s: %w", d.path, err)
	}

	var l Listing
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			l.Skipped = append(l.Skipped, name)
			continue
		}
		if d.excluded(name) {
			l.Excluded = append(l.Excluded, name)
			continue
		}
		l.Files = append(l.Files, name)
	}
	sort.Strings(l.Files)

	return l, nil
}

func (d *Dir) excluded(name string) bool {
	for _, re := range d.exclude {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Stat returns file info for name. Missing files yield an error matching
// fs.ErrNotExist.
func (d *Dir) Stat(name string) (fs.FileInfo, error) {
	path, err := d.Join(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return info, nil
}

// Remove deletes the file name. Missing files yield an error matching
// fs.ErrNotExist.
func (d *Dir) Remove(name string) error {
	path, err := d.Join(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
