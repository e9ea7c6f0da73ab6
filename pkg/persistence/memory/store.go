// Package memory provides an in-memory persistence context used by tests,
// demos and ephemeral environments. Every instance the store holds is
// considered tracked.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/persistence"
)

var (
	_ persistence.Context   = (*Store)(nil)
	_ persistence.Searcher  = (*Store)(nil)
	_ persistence.Persister = (*Store)(nil)
)

// Collection registers an entity type with the store.
type Collection struct {
	Type        entity.Type
	PrimaryKey  string
	KeyStrategy persistence.KeyStrategy
}

type collection struct {
	def  Collection
	rows []entity.Entity
	seq  int64
}

// Store keeps entities per type in insertion order. It is safe for concurrent
// use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	tracked     map[entity.Entity]string
}

// New constructs an empty store with the provided collections registered.
func New(collections ...Collection) (*Store, error) {
	s := &Store{
		collections: make(map[string]*collection),
		tracked:     make(map[entity.Entity]string),
	}
	for _, c := range collections {
		if err := s.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a collection. The primary key defaults to "id" and the key
// strategy to persistence.KeyAutoIncrement.
func (s *Store) Register(c Collection) error {
	if err := c.Type.Validate(); err != nil {
		return fmt.Errorf("memory: register: %w", err)
	}
	if strings.TrimSpace(c.PrimaryKey) == "" {
		c.PrimaryKey = "id"
	}
	if c.KeyStrategy == "" {
		c.KeyStrategy = persistence.KeyAutoIncrement
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.collections[c.Type.Name]; exists {
		return fmt.Errorf("memory: collection %q already registered", c.Type.Name)
	}
	s.collections[c.Type.Name] = &collection{def: c}
	return nil
}

// Seed inserts entities as-is, assigning keys only where missing. Seed does
// not enforce key uniqueness so fixtures can model inconsistent legacy data.
func (s *Store) Seed(typ entity.Type, entities ...entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, err := s.collectionLocked(typ)
	if err != nil {
		return err
	}
	for _, e := range entities {
		if entity.IsNil(e) {
			continue
		}
		key, generated, err := coll.candidateKey(e)
		if err != nil {
			return err
		}
		if err := coll.commitKey(e, key, generated); err != nil {
			return err
		}
		coll.rows = append(coll.rows, e)
		s.tracked[e] = typ.Name
	}
	return nil
}

// Contains reports whether e is one of the instances held by the store.
func (s *Store) Contains(e entity.Entity) bool {
	if entity.IsNil(e) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tracked[e]
	return ok
}

// Detach stops tracking e and removes it from its collection.
func (s *Store) Detach(e entity.Entity) {
	if entity.IsNil(e) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.tracked[e]
	if !ok {
		return
	}
	delete(s.tracked, e)
	coll := s.collections[name]
	for idx, row := range coll.rows {
		if row == e {
			coll.rows = append(coll.rows[:idx], coll.rows[idx+1:]...)
			break
		}
	}
}

// FindOneBy returns the single entity of typ whose property formats to the
// same string as value.
func (s *Store) FindOneBy(ctx context.Context, typ entity.Type, property string, value any) (entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, err := s.collectionLocked(typ)
	if err != nil {
		return nil, err
	}

	want := entity.FormatValue(value)
	var match entity.Entity
	for _, row := range coll.rows {
		got, err := row.Get(property)
		if err != nil {
			return nil, fmt.Errorf("memory: find %s by %s: %w", typ.Name, property, err)
		}
		if entity.FormatValue(got) != want {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("memory: %s.%s = %q: %w", typ.Name, property, want, persistence.ErrNotUnique)
		}
		match = row
	}
	if match == nil {
		return nil, fmt.Errorf("memory: %s.%s = %q: %w", typ.Name, property, want, persistence.ErrNotFound)
	}
	return match, nil
}

// Search returns entities whose property contains query, ordered by the
// property value.
func (s *Store) Search(ctx context.Context, typ entity.Type, property, query string, limit int) ([]entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, err := s.collectionLocked(typ)
	if err != nil {
		return nil, err
	}

	type hit struct {
		label string
		row   entity.Entity
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	hits := make([]hit, 0, len(coll.rows))
	for _, row := range coll.rows {
		value, err := row.Get(property)
		if err != nil {
			return nil, fmt.Errorf("memory: search %s by %s: %w", typ.Name, property, err)
		}
		label := entity.FormatValue(value)
		if needle != "" && !strings.Contains(strings.ToLower(label), needle) {
			continue
		}
		hits = append(hits, hit{label: label, row: row})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return strings.ToLower(hits[i].label) < strings.ToLower(hits[j].label)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]entity.Entity, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.row)
	}
	return out, nil
}

// Persist assigns a key to e according to the collection's strategy and
// starts tracking it. Persisting an already tracked instance is a no-op.
func (s *Store) Persist(ctx context.Context, typ entity.Type, e entity.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entity.IsNil(e) {
		return fmt.Errorf("memory: persist %s: entity is nil", typ.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tracked[e]; ok {
		return nil
	}
	coll, err := s.collectionLocked(typ)
	if err != nil {
		return err
	}
	key, generated, err := coll.candidateKey(e)
	if err != nil {
		return err
	}

	formatted := entity.FormatValue(key)
	for _, row := range coll.rows {
		existing, err := row.Get(coll.def.PrimaryKey)
		if err != nil {
			return fmt.Errorf("memory: persist %s: %w", typ.Name, err)
		}
		if entity.FormatValue(existing) == formatted {
			return fmt.Errorf("memory: persist %s %q: %w", typ.Name, formatted, persistence.ErrDuplicateKey)
		}
	}

	// e is only written once the key is known to be free
	if err := coll.commitKey(e, key, generated); err != nil {
		return fmt.Errorf("memory: persist %s: %w", typ.Name, err)
	}
	coll.rows = append(coll.rows, e)
	s.tracked[e] = typ.Name
	return nil
}

// Len returns the number of entities stored for typ.
func (s *Store) Len(typ entity.Type) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[typ.Name]
	if !ok {
		return 0
	}
	return len(coll.rows)
}

func (s *Store) collectionLocked(typ entity.Type) (*collection, error) {
	coll, ok := s.collections[typ.Name]
	if !ok {
		return nil, fmt.Errorf("memory: %q: %w", typ.Name, persistence.ErrUnknownType)
	}
	return coll, nil
}

// candidateKey returns the key e will be stored under without touching e.
// generated reports whether the key still has to be written onto e.
func (c *collection) candidateKey(e entity.Entity) (any, bool, error) {
	pk := c.def.PrimaryKey
	current, err := e.Get(pk)
	if err != nil {
		return nil, false, fmt.Errorf("memory: read %s.%s: %w", c.def.Type.Name, pk, err)
	}

	switch c.def.KeyStrategy {
	case persistence.KeyAutoIncrement:
		if id, err := entity.ToInt64(current); err == nil && id != 0 {
			return id, false, nil
		}
		return c.seq + 1, true, nil
	case persistence.KeyUUID:
		if entity.FormatValue(current) != "" {
			return current, false, nil
		}
		return uuid.NewString(), true, nil
	default:
		if entity.FormatValue(current) == "" || entity.FormatValue(current) == "0" {
			return nil, false, fmt.Errorf("memory: %s requires a %s before persisting", c.def.Type.Name, pk)
		}
		return current, false, nil
	}
}

// commitKey writes a generated key onto e and advances the sequence.
func (c *collection) commitKey(e entity.Entity, key any, generated bool) error {
	if generated {
		if err := e.Set(c.def.PrimaryKey, key); err != nil {
			return err
		}
	}
	if c.def.KeyStrategy == persistence.KeyAutoIncrement {
		if id, ok := key.(int64); ok && id > c.seq {
			c.seq = id
		}
	}
	return nil
}
