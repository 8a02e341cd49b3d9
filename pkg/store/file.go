package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/config"
	errs "github.com/matzehuels/skillcat/pkg/errors"
)

// LockName is the lock file created inside the output directory.
const LockName = ".skillcat.lock"

const detailExt = ".json"

// FileStore reads and writes catalogue documents under one directory.
type FileStore struct {
	layout config.OutputConfig
	lock   *flock.Flock
}

// NewFileStore returns a store for the given output layout. Nothing is
// created until the first write or [FileStore.Lock].
func NewFileStore(layout config.OutputConfig) *FileStore {
	return &FileStore{layout: layout}
}

// Dir returns the output directory.
func (s *FileStore) Dir() string { return s.layout.Dir }

// IndexPath returns the path of the index document.
func (s *FileStore) IndexPath() string { return s.layout.IndexPath() }

// DetailPath returns the path of the detail document for slug.
func (s *FileStore) DetailPath(slug string) string {
	return filepath.Join(s.layout.DetailPath(), slug+detailExt)
}

// ReportPath returns the path of the run report.
func (s *FileStore) ReportPath() string {
	return filepath.Join(s.layout.Dir, s.layout.Report)
}

// Lock takes an exclusive lock on the output directory. It fails with
// ErrCodeLocked when another process holds it.
func (s *FileStore) Lock() error {
	if err := os.MkdirAll(s.layout.Dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "create output directory")
	}
	l := flock.New(filepath.Join(s.layout.Dir, LockName))
	ok, err := l.TryLock()
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "lock output directory")
	}
	if !ok {
		return errs.New(errs.ErrCodeLocked, "output directory %s is in use by another run", s.layout.Dir)
	}
	s.lock = l
	return nil
}

// Unlock releases the lock taken by [FileStore.Lock]. It is safe to call
// when no lock is held.
func (s *FileStore) Unlock() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

// WriteIndex replaces the index document.
func (s *FileStore) WriteIndex(snap *catalog.Snapshot) error {
	return writeJSON(s.IndexPath(), snap)
}

// WriteDetail replaces the detail document of d.Slug.
func (s *FileStore) WriteDetail(d *catalog.Detail) error {
	if err := errs.ValidateSlug(d.Slug); err != nil {
		return err
	}
	return writeJSON(s.DetailPath(d.Slug), d)
}

// WriteReport replaces the run report.
func (s *FileStore) WriteReport(r *catalog.RunReport) error {
	return writeJSON(s.ReportPath(), r)
}

// ReadIndex loads the index document. A missing index is ErrCodeNotFound.
func (s *FileStore) ReadIndex() (*catalog.Snapshot, error) {
	var snap catalog.Snapshot
	if err := readJSON(s.IndexPath(), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ReadDetail loads the detail document of slug. A missing document is
// ErrCodeNotFound.
func (s *FileStore) ReadDetail(slug string) (*catalog.Detail, error) {
	if err := errs.ValidateSlug(slug); err != nil {
		return nil, err
	}
	var d catalog.Detail
	if err := readJSON(s.DetailPath(slug), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DetailSlugs lists the slugs that have a detail document, sorted.
func (s *FileStore) DetailSlugs() ([]string, error) {
	entries, err := os.ReadDir(s.layout.DetailPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "list detail documents")
	}
	var slugs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, detailExt) {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, detailExt))
	}
	sort.Strings(slugs)
	return slugs, nil
}

// Prune removes every detail document whose slug is not in keep and
// returns how many were removed.
func (s *FileStore) Prune(keep map[string]bool) (int, error) {
	slugs, err := s.DetailSlugs()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, slug := range slugs {
		if keep[slug] {
			continue
		}
		if err := os.Remove(s.DetailPath(slug)); err != nil && !os.IsNotExist(err) {
			return n, errs.Wrap(errs.ErrCodeInternal, err, "remove stale detail %s", slug)
		}
		n++
	}
	return n, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode %s", filepath.Base(path))
	}
	data = append(data, '\n')
	if err := writeFileAtomic(path, data); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errs.New(errs.ErrCodeNotFound, "%s does not exist", path)
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.Wrap(errs.ErrCodeMalformedData, err, "decode %s", path)
	}
	return nil
}
