package index

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/satishbabariya/querykit/query/qerr"
)

// Store is the storage adapter the index serializes against. Keys()
// returns keys in sorted order.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Size() int
	Keys() []string
}

// MemoryStore keeps entries in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FileStore keeps entries in memory and persists them as one JSON
// document. Mutations are buffered; Flush writes the document.
type FileStore struct {
	mu    sync.Mutex
	fs    afero.Fs
	path  string
	data  map[string]string
	dirty bool
}

// NewFileStore opens or creates a JSON-backed store on the OS
// filesystem.
func NewFileStore(path string) (*FileStore, error) {
	return NewFileStoreFs(afero.NewOsFs(), path)
}

// NewFileStoreFs is NewFileStore over an explicit filesystem, which
// tests point at an in-memory one.
func NewFileStoreFs(fsys afero.Fs, path string) (*FileStore, error) {
	s := &FileStore{fs: fsys, path: path, data: make(map[string]string)}

	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, qerr.Wrap(qerr.KindAdapterError, err, "cannot read index file %s", path)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, qerr.Wrap(qerr.KindInvalidSyntax, err, "index file %s is not a JSON document", path)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.dirty = true
}

func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
}

func (s *FileStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *FileStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flush writes the buffered entries to the backing file when they have
// changed since the last flush.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	doc, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return qerr.Wrap(qerr.KindAdapterError, err, "cannot encode index document")
	}
	if err := afero.WriteFile(s.fs, s.path, doc, 0o644); err != nil {
		return qerr.Wrap(qerr.KindAdapterError, err, "cannot write index file %s", s.path)
	}
	s.dirty = false
	return nil
}

// flusher is the optional upgrade a store can implement to persist
// buffered state.
type flusher interface {
	Flush() error
}
