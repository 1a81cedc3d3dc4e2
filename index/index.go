// Package index maintains an inverted index from attribute values to
// entity IDs, with pluggable storage adapters and file watching.
package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/satishbabariya/querykit/query/qerr"
)

// Entity is an identifiable record with free-form attributes.
type Entity struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

// AttributeQuery names one attribute lookup.
type AttributeQuery struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Mode selects how multi-attribute lookups combine.
type Mode string

const (
	// ModeAnd intersects the per-attribute result sets.
	ModeAnd Mode = "AND"
	// ModeOr unions the per-attribute result sets.
	ModeOr Mode = "OR"
)

// Statistics summarizes index contents.
type Statistics struct {
	EntityCount  int
	KeyCount     int
	PostingCount int
}

// AttributeIndex maps attribute name/value pairs to the IDs of entities
// carrying them. Slice-valued attributes are indexed per element. Safe
// for concurrent use.
type AttributeIndex struct {
	mu       sync.RWMutex
	postings map[string]map[string]struct{}
	entities map[string]struct{}
}

// New returns an empty index.
func New() *AttributeIndex {
	return &AttributeIndex{
		postings: make(map[string]map[string]struct{}),
		entities: make(map[string]struct{}),
	}
}

// IndexEntities adds every entity's attributes to the index. An entity
// with an empty ID is skipped.
func (ix *AttributeIndex) IndexEntities(entities []Entity) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, e := range entities {
		if e.ID == "" {
			continue
		}
		ix.entities[e.ID] = struct{}{}
		for name, value := range e.Attributes {
			for _, key := range canonicalKeys(name, value) {
				ids, ok := ix.postings[key]
				if !ok {
					ids = make(map[string]struct{})
					ix.postings[key] = ids
				}
				ids[e.ID] = struct{}{}
			}
		}
	}
}

// FindByAttribute returns the IDs of entities whose attribute name
// carries value, in sorted order.
func (ix *AttributeIndex) FindByAttribute(name string, value any) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return sortedIDs(ix.postings[canonicalKey(name, value)])
}

// FindByAttributes combines several attribute lookups: ModeAnd
// intersects, ModeOr unions. Results are sorted. No queries means no
// results.
func (ix *AttributeIndex) FindByAttributes(queries []AttributeQuery, mode Mode) ([]string, error) {
	if mode != ModeAnd && mode != ModeOr {
		return nil, qerr.New(qerr.KindInvalidValue, "unknown combine mode %q", mode)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(queries) == 0 {
		return []string{}, nil
	}

	acc := make(map[string]struct{})
	for i, q := range queries {
		ids := ix.postings[canonicalKey(q.Name, q.Value)]
		switch {
		case mode == ModeOr:
			for id := range ids {
				acc[id] = struct{}{}
			}
		case i == 0:
			for id := range ids {
				acc[id] = struct{}{}
			}
		default:
			for id := range acc {
				if _, ok := ids[id]; !ok {
					delete(acc, id)
				}
			}
			if len(acc) == 0 {
				return []string{}, nil
			}
		}
	}
	return sortedIDs(acc), nil
}

// Statistics reports entity, key and posting counts.
func (ix *AttributeIndex) Statistics() Statistics {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	s := Statistics{
		EntityCount: len(ix.entities),
		KeyCount:    len(ix.postings),
	}
	for _, ids := range ix.postings {
		s.PostingCount += len(ids)
	}
	return s
}

// Clear drops all index contents.
func (ix *AttributeIndex) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.postings = make(map[string]map[string]struct{})
	ix.entities = make(map[string]struct{})
}

// Save serializes the index into store, one key per attribute value
// with a JSON ID list, replacing the store's previous contents. Stores
// that buffer writes are flushed.
func (ix *AttributeIndex) Save(store Store) error {
	ix.mu.RLock()
	snapshot := make(map[string][]string, len(ix.postings))
	for key, ids := range ix.postings {
		snapshot[key] = sortedIDs(ids)
	}
	ix.mu.RUnlock()

	for _, key := range store.Keys() {
		store.Delete(key)
	}
	for key, ids := range snapshot {
		doc, err := json.Marshal(ids)
		if err != nil {
			return qerr.Wrap(qerr.KindAdapterError, err, "cannot encode postings for %q", key)
		}
		store.Set(key, string(doc))
	}

	if f, ok := store.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Load replaces the index contents with the postings serialized in
// store.
func (ix *AttributeIndex) Load(store Store) error {
	postings := make(map[string]map[string]struct{}, store.Size())
	entities := make(map[string]struct{})

	for _, key := range store.Keys() {
		raw, ok := store.Get(key)
		if !ok {
			continue
		}
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return qerr.Wrap(qerr.KindInvalidSyntax, err, "corrupt postings for %q", key)
		}
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
			entities[id] = struct{}{}
		}
		postings[key] = set
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.postings = postings
	ix.entities = entities
	return nil
}

// canonicalKey renders one attribute name/value pair as the index key.
func canonicalKey(name string, value any) string {
	return name + "=" + canonicalValue(value)
}

// canonicalKeys expands slice values to one key per element.
func canonicalKeys(name string, value any) []string {
	if items, ok := value.([]any); ok {
		keys := make([]string, 0, len(items))
		for _, item := range items {
			keys = append(keys, canonicalKey(name, item))
		}
		return keys
	}
	if items, ok := value.([]string); ok {
		keys := make([]string, 0, len(items))
		for _, item := range items {
			keys = append(keys, canonicalKey(name, item))
		}
		return keys
	}
	return []string{canonicalKey(name, value)}
}

// canonicalValue normalizes a value to its canonical string form, so
// that numerically equal values share a key regardless of Go type.
func canonicalValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	case float32:
		return canonicalValue(float64(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
