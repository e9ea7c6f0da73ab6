package sqlite

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/persistence"
	"github.com/goliatone/go-entityselect/pkg/testsupport"
)

var testSchema = []string{
	`CREATE TABLE cities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		country TEXT
	)`,
	`CREATE TABLE legacy_cities (
		id INTEGER NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE tags (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL CHECK (label <> '')
	)`,
}

// newTestStore creates an in-memory store with the fixture tables registered.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := testsupport.Context()

	store, err := Open(ctx, ":memory:",
		WithTables(
			Table{Type: testsupport.CityType, Columns: []string{"name", "country"}},
			Table{Type: testsupport.TagType, Columns: []string{"label"}, KeyStrategy: persistence.KeyUUID},
		),
	)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	for _, statement := range testSchema {
		if _, err := store.DB().ExecContext(ctx, statement); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return store
}

func mustExec(t *testing.T, store *Store, query string, args ...any) {
	t.Helper()
	if _, err := store.DB().ExecContext(testsupport.Context(), query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func TestSession_FindOneByHydratesAndTracks(t *testing.T) {
	store := newTestStore(t)
	mustExec(t, store, `INSERT INTO cities (id, name, country) VALUES (7, 'Paris', 'FR'), (8, 'Lyon', NULL)`)

	session := store.Session()
	found, err := session.FindOneBy(testsupport.Context(), testsupport.CityType, "id", "7")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	city := testsupport.MustCity(t, found)
	testsupport.AssertNoDiff(t, testsupport.City{ID: 7, Name: "Paris", Country: "FR"}, *city)

	if !session.Contains(city) {
		t.Fatalf("expected loaded city to be tracked")
	}
	if store.Session().Contains(city) {
		t.Fatalf("expected a fresh session not to track the instance")
	}

	again, err := session.FindOneBy(testsupport.Context(), testsupport.CityType, "name", "Paris")
	if err != nil {
		t.Fatalf("find again: %v", err)
	}
	if again != found {
		t.Fatalf("expected identity map to return the same instance")
	}

	lyon, err := session.FindOneBy(testsupport.Context(), testsupport.CityType, "id", 8)
	if err != nil {
		t.Fatalf("find lyon: %v", err)
	}
	if testsupport.MustCity(t, lyon).Country != "" {
		t.Fatalf("expected NULL country to hydrate as empty string")
	}
}

func TestSession_FindOneByFailures(t *testing.T) {
	store := newTestStore(t)
	if err := store.Register(Table{
		Type:    entity.RecordType("legacy_cities"),
		Columns: []string{"name"},
	}); err != nil {
		t.Fatalf("register legacy table: %v", err)
	}
	mustExec(t, store, `INSERT INTO legacy_cities (id, name) VALUES (1, 'Nice'), (1, 'Nice bis')`)

	session := store.Session()
	ctx := testsupport.Context()

	if _, err := session.FindOneBy(ctx, testsupport.CityType, "id", "404"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := session.FindOneBy(ctx, entity.RecordType("legacy_cities"), "id", "1"); !errors.Is(err, persistence.ErrNotUnique) {
		t.Fatalf("expected ErrNotUnique, got %v", err)
	}
	if _, err := session.FindOneBy(ctx, testsupport.CityType, "population", "1"); err == nil {
		t.Fatalf("expected unmapped column error")
	}
	if _, err := session.FindOneBy(ctx, entity.RecordType("planets"), "id", "1"); !errors.Is(err, persistence.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestSession_Search(t *testing.T) {
	store := newTestStore(t)
	mustExec(t, store, `INSERT INTO cities (name) VALUES ('paris'), ('Lyon'), ('Parma'), ('Berlin'), ('100%_real')`)

	session := store.Session()
	hits, err := session.Search(testsupport.Context(), testsupport.CityType, "name", "PAR", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	names := make([]string, 0, len(hits))
	for _, hit := range hits {
		names = append(names, testsupport.MustCity(t, hit).Name)
	}
	testsupport.AssertNoDiff(t, []string{"paris", "Parma"}, names)

	hits, err = session.Search(testsupport.Context(), testsupport.CityType, "name", "%_", 10)
	if err != nil {
		t.Fatalf("search wildcard: %v", err)
	}
	if len(hits) != 1 || testsupport.MustCity(t, hits[0]).Name != "100%_real" {
		t.Fatalf("expected LIKE wildcards to be escaped, got %d hits", len(hits))
	}

	hits, err = session.Search(testsupport.Context(), testsupport.CityType, "name", "", 2)
	if err != nil {
		t.Fatalf("search limit: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
}

func TestSession_PersistAutoIncrement(t *testing.T) {
	store := newTestStore(t)
	mustExec(t, store, `INSERT INTO cities (id, name) VALUES (7, 'Paris')`)
	ctx := testsupport.Context()
	session := store.Session()

	lyon := &testsupport.City{Name: "Lyon", Country: "FR"}
	if err := session.Persist(ctx, testsupport.CityType, lyon); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if lyon.ID != 8 {
		t.Fatalf("expected id 8, got %d", lyon.ID)
	}
	if !session.Contains(lyon) {
		t.Fatalf("expected persisted entity to be tracked")
	}

	found, err := session.FindOneBy(ctx, testsupport.CityType, "id", "8")
	if err != nil {
		t.Fatalf("find persisted: %v", err)
	}
	if found != lyon {
		t.Fatalf("expected identity map to return the persisted instance")
	}

	clash := &testsupport.City{ID: 7, Name: "Paris again"}
	if err := session.Persist(ctx, testsupport.CityType, clash); !errors.Is(err, persistence.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestSession_PersistUUID(t *testing.T) {
	store := newTestStore(t)
	ctx := testsupport.Context()
	session := store.Session()

	tag := &testsupport.Tag{Label: "urgent"}
	if err := session.Persist(ctx, testsupport.TagType, tag); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if _, err := uuid.Parse(tag.ID); err != nil {
		t.Fatalf("expected uuid key, got %q: %v", tag.ID, err)
	}

	other := store.Session()
	found, err := other.FindOneBy(ctx, testsupport.TagType, "id", tag.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == entity.Entity(tag) {
		t.Fatalf("expected a separate session to hydrate a new instance")
	}
	if found.(*testsupport.Tag).Label != "urgent" {
		t.Fatalf("unexpected label %q", found.(*testsupport.Tag).Label)
	}
}

func TestSession_PersistFailureKeepsEntityKey(t *testing.T) {
	store := newTestStore(t)
	ctx := testsupport.Context()
	session := store.Session()

	blank := &testsupport.Tag{}
	if err := session.Persist(ctx, testsupport.TagType, blank); err == nil {
		t.Fatalf("expected the insert to be rejected")
	}
	if blank.ID != "" {
		t.Fatalf("expected no key on a rejected entity, got %q", blank.ID)
	}
	if session.Contains(blank) {
		t.Fatalf("expected a rejected entity not to be tracked")
	}

	mustExec(t, store, `INSERT INTO tags (id, label) VALUES ('fixed', 'first')`)
	clash := &testsupport.Tag{ID: "fixed", Label: "second"}
	if err := session.Persist(ctx, testsupport.TagType, clash); !errors.Is(err, persistence.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if clash.ID != "fixed" {
		t.Fatalf("expected explicit key to be kept, got %q", clash.ID)
	}
}

func TestSession_DetachAndClear(t *testing.T) {
	store := newTestStore(t)
	mustExec(t, store, `INSERT INTO cities (id, name) VALUES (1, 'Oslo')`)
	ctx := testsupport.Context()
	session := store.Session()

	first, err := session.FindOneBy(ctx, testsupport.CityType, "id", 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	session.Detach(first)
	if session.Contains(first) {
		t.Fatalf("expected detached entity to be untracked")
	}

	second, err := session.FindOneBy(ctx, testsupport.CityType, "id", 1)
	if err != nil {
		t.Fatalf("find after detach: %v", err)
	}
	if second == first {
		t.Fatalf("expected a fresh instance after detach")
	}

	session.Clear()
	if session.Contains(second) {
		t.Fatalf("expected clear to untrack everything")
	}
}

func TestRegister_ValidatesIdentifiers(t *testing.T) {
	store := newTestStore(t)

	err := store.Register(Table{Type: entity.RecordType("bad"), Name: "cities; DROP TABLE cities"})
	if err == nil {
		t.Fatalf("expected invalid identifier error")
	}
	err = store.Register(Table{Type: entity.RecordType("bad_cols"), Columns: []string{"name--"}})
	if err == nil {
		t.Fatalf("expected invalid column error")
	}
	if err := store.Register(Table{Type: testsupport.CityType}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(testsupport.Context(), "  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
