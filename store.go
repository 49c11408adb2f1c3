package dge

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"go.uber.org/zap"
)

// Store is the persisted collection of records, kept in insertion order.
//
// Every mutation is written to disk immediately. When the write fails the
// mutation is kept in memory and the error returned, Save can be retried.
// A Store is not safe for concurrent use.
type Store struct {
	path       string
	categories *CategoryTable
	log        *zap.Logger
	records    []*Record
}

// OpenStore loads the records persisted at path.
//
// A missing file is an empty store. If the file cannot be parsed at all the
// returned store is empty but usable, and the error is returned along with it.
// Malformed records are skipped and logged.
func OpenStore(path string, categories *CategoryTable, log *zap.Logger) (*Store, error) {
	if categories == nil {
		categories = DefaultCategories()
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{path: path, categories: categories, log: log}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("no record file, starting empty", zap.String("path", path))
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("could not read record file %q: %w", path, err)
	}

	records, issues, err := DecodeRecords(bytes.NewReader(data), categories)
	if err != nil {
		log.Error("record file is unreadable, starting empty", zap.String("path", path), zap.Error(err))
		return s, fmt.Errorf("could not decode record file %q: %w", path, err)
	}
	for _, issue := range issues {
		log.Warn("record issue",
			zap.Int("index", issue.Index),
			zap.String("id", issue.ID),
			zap.Bool("dropped", issue.Dropped),
			zap.Error(issue.Err))
	}

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			log.Warn("duplicate record skipped", zap.String("id", r.ID))
			continue
		}
		seen[r.ID] = true
		s.records = append(s.records, r)
	}
	log.Info("records loaded", zap.String("path", path), zap.Int("count", len(s.records)))
	return s, nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string { return s.path }

// Categories returns the category table used to value the records.
func (s *Store) Categories() *CategoryTable { return s.categories }

// Records returns the records in insertion order.
func (s *Store) Records() []*Record { return slices.Clone(s.records) }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.records, func(r *Record) bool { return r.ID == id })
}

// Get returns the record with that ID.
func (s *Store) Get(id string) (*Record, error) {
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: record %q", ErrNotFound, id)
	}
	return s.records[i], nil
}

// Ports returns the distinct ports of the records, sorted.
func (s *Store) Ports() []string {
	set := make(map[string]bool)
	for _, r := range s.records {
		set[r.Port] = true
	}
	ports := make([]string, 0, len(set))
	for p := range set {
		ports = append(ports, p)
	}
	sort.Strings(ports)
	return ports
}

// Append adds a record at the end and saves.
func (s *Store) Append(r *Record) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if s.index(r.ID) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateID, r.ID)
	}
	s.records = append(s.records, r)
	s.log.Info("record added", zap.String("id", r.ID), zap.String("item", r.ItemName))
	return s.Save()
}

// Delete removes the record with that ID and saves.
func (s *Store) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: record %q", ErrNotFound, id)
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.log.Info("record deleted", zap.String("id", id))
	return s.Save()
}

// Update applies fn to the record with that ID and saves.
// fn works on a copy: if it fails the stored record is left unchanged.
func (s *Store) Update(id string, fn func(*Record) error) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: record %q", ErrNotFound, id)
	}
	r := s.records[i].clone()
	if err := fn(r); err != nil {
		return err
	}
	if r.ID != id {
		return fmt.Errorf("%w: the ID cannot be changed", ErrInvalidRecord)
	}
	s.records[i] = r
	s.log.Info("record updated", zap.String("id", id))
	return s.Save()
}

// SetStatus changes the status of the record with that ID.
func (s *Store) SetStatus(id string, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return s.Update(id, func(r *Record) error {
		r.Status = status
		return nil
	})
}

// Save writes all records to the store's file.
//
// The file is replaced atomically: records are written to a temporary file in
// the same directory which is then renamed over the previous one.
func (s *Store) Save() error {
	var buf bytes.Buffer
	if err := EncodeRecords(&buf, s.records); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("could not sync %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close %q: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("could not chmod %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		s.log.Error("save failed", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("could not replace %q: %w", s.path, err)
	}
	s.log.Debug("records saved", zap.String("path", s.path), zap.Int("count", len(s.records)))
	return nil
}
