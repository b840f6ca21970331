// Package fixtures keeps compiled binary payloads under short names, with
// the description text they were built from, and mirrors them to a host
// directory as <name>.bin / <name>.bs file pairs.
package fixtures

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"binstream/pkg/binstream"
)

// DefaultQuota bounds the payload bytes a Store holds (1 MiB).
const DefaultQuota = 1 << 20

const (
	payloadExt = ".bin"
	sourceExt  = ".bs"
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_-]{0,63}$`)

var (
	ErrNotFound      = errors.New("fixture not found")
	ErrInvalidName   = errors.New("invalid fixture name")
	ErrQuotaExceeded = errors.New("fixture quota exceeded")
	ErrNoSource      = errors.New("fixture has no description source")
)

type Entry struct {
	Data     []byte
	Source   string
	Created  time.Time
	Modified time.Time
}

// CompileFunc turns description text into a payload.
type CompileFunc func(source string) ([]byte, error)

// Store is an in-memory fixture set. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	dirty   map[string]bool
	used    int
	quota   int
	compile CompileFunc
}

type Option func(*Store)

// WithCompiler replaces binstream.Compile as the compiler used by Put and
// Rebuild.
func WithCompiler(fn CompileFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.compile = fn
		}
	}
}

// NewStore returns an empty store. A quota <= 0 selects DefaultQuota.
func NewStore(quota int, opts ...Option) *Store {
	if quota <= 0 {
		quota = DefaultQuota
	}
	s := &Store{
		entries: make(map[string]*Entry),
		dirty:   make(map[string]bool),
		quota:   quota,
		compile: binstream.Compile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put compiles source and stores the result under name. Nothing is stored
// when compilation fails.
func (s *Store) Put(name, source string) ([]byte, error) {
	if !validName.MatchString(name) {
		return nil, ErrInvalidName
	}
	data, err := s.compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile fixture %q: %w", name, err)
	}
	if err := s.put(name, data, source); err != nil {
		return nil, err
	}
	return data, nil
}

// PutBytes stores a payload that has no description source.
func (s *Store) PutBytes(name string, data []byte) error {
	if !validName.MatchString(name) {
		return ErrInvalidName
	}
	return s.put(name, data, "")
}

func (s *Store) put(name string, data []byte, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldSize := 0
	entry, ok := s.entries[name]
	if ok {
		oldSize = len(entry.Data)
	}
	if s.used-oldSize+len(data) > s.quota {
		return ErrQuotaExceeded
	}

	if entry == nil {
		entry = &Entry{Created: time.Now()}
		s.entries[name] = entry
	}
	entry.Data = append([]byte(nil), data...)
	entry.Source = source
	entry.Modified = time.Now()

	s.used = s.used - oldSize + len(data)
	s.dirty[name] = true
	return nil
}

// Get returns a copy of the payload stored under name.
func (s *Store) Get(name string) ([]byte, error) {
	e, err := s.Stat(name)
	if err != nil {
		return nil, err
	}
	return e.Data, nil
}

// Stat returns a copy of the entry stored under name.
func (s *Store) Stat(name string) (Entry, error) {
	if !validName.MatchString(name) {
		return Entry{}, ErrInvalidName
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[name]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e := *entry
	e.Data = append([]byte(nil), entry.Data...)
	return e, nil
}

// Rebuild recompiles a fixture from its stored source.
func (s *Store) Rebuild(name string) ([]byte, error) {
	e, err := s.Stat(name)
	if err != nil {
		return nil, err
	}
	if e.Source == "" {
		return nil, ErrNoSource
	}
	return s.Put(name, e.Source)
}

func (s *Store) Delete(name string) error {
	if !validName.MatchString(name) {
		return ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[name]
	if !ok {
		return ErrNotFound
	}
	s.used -= len(entry.Data)
	delete(s.entries, name)
	s.dirty[name] = true
	return nil
}

// List returns the sorted fixture names.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

func (s *Store) FreeSpace() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quota - s.used
}

// Load reads <name>.bin files (and matching <name>.bs sources) from dir.
// A missing directory is not an error. Files with invalid names are skipped.
func (s *Store) Load(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != payloadExt {
			continue
		}
		name := strings.TrimSuffix(f.Name(), payloadExt)
		if !validName.MatchString(name) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			continue
		}
		if s.used+len(data) > s.quota {
			return fmt.Errorf("load %s: %w", f.Name(), ErrQuotaExceeded)
		}

		entry := &Entry{Data: data, Created: time.Now(), Modified: time.Now()}
		if info, err := f.Info(); err == nil {
			entry.Created = info.ModTime()
			entry.Modified = info.ModTime()
		}
		if src, err := os.ReadFile(filepath.Join(dir, name+sourceExt)); err == nil {
			entry.Source = string(src)
		}

		if old, ok := s.entries[name]; ok {
			s.used -= len(old.Data)
		}
		s.entries[name] = entry
		s.used += len(data)
	}

	return nil
}

// Persist writes changed fixtures to dir and removes deleted ones. Entries
// that fail to write stay dirty; the first error is returned.
func (s *Store) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := make(map[string]Entry)
	var deleted []string
	for name := range s.dirty {
		if entry, ok := s.entries[name]; ok {
			snapshot[name] = Entry{
				Data:     append([]byte(nil), entry.Data...),
				Source:   entry.Source,
				Modified: entry.Modified,
			}
		} else {
			deleted = append(deleted, name)
		}
		delete(s.dirty, name)
	}
	s.mu.Unlock()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, name := range deleted {
		for _, ext := range []string{payloadExt, sourceExt} {
			if err := os.Remove(filepath.Join(dir, name+ext)); err != nil && !os.IsNotExist(err) {
				keep(err)
			}
		}
	}

	for name, entry := range snapshot {
		if err := writeEntry(dir, name, entry); err != nil {
			s.mu.Lock()
			s.dirty[name] = true
			s.mu.Unlock()
			keep(err)
			continue
		}
		_ = os.Chtimes(filepath.Join(dir, name+payloadExt), time.Now(), entry.Modified)
	}

	return firstErr
}

func writeEntry(dir, name string, entry Entry) error {
	if err := os.WriteFile(filepath.Join(dir, name+payloadExt), entry.Data, 0644); err != nil {
		return err
	}
	src := filepath.Join(dir, name+sourceExt)
	if entry.Source == "" {
		if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return os.WriteFile(src, []byte(entry.Source), 0644)
}
