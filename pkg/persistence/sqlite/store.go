// Package sqlite implements the persistence contracts on top of SQLite using
// database/sql and the ncruces driver. A Store owns the connection pool and
// the table registry; request handlers open a Session per request, which acts
// as the unit of work and identity map.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/persistence"
)

const memoryPath = ":memory:"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table maps an entity type onto a SQLite table.
type Table struct {
	Type entity.Type
	// Name defaults to Type.Name.
	Name string
	// PrimaryKey defaults to "id".
	PrimaryKey string
	// Columns lists the non-key columns loaded into and written from entities.
	Columns     []string
	KeyStrategy persistence.KeyStrategy
}

func (t Table) normalise() (Table, error) {
	if err := t.Type.Validate(); err != nil {
		return Table{}, fmt.Errorf("sqlite: table: %w", err)
	}
	if strings.TrimSpace(t.Name) == "" {
		t.Name = t.Type.Name
	}
	if strings.TrimSpace(t.PrimaryKey) == "" {
		t.PrimaryKey = "id"
	}
	if t.KeyStrategy == "" {
		t.KeyStrategy = persistence.KeyAutoIncrement
	}
	if err := validateIdentifier(t.Name); err != nil {
		return Table{}, err
	}
	if err := validateIdentifier(t.PrimaryKey); err != nil {
		return Table{}, err
	}

	columns := make([]string, 0, len(t.Columns))
	seen := map[string]struct{}{t.PrimaryKey: {}}
	for _, column := range t.Columns {
		column = strings.TrimSpace(column)
		if err := validateIdentifier(column); err != nil {
			return Table{}, err
		}
		if _, ok := seen[column]; ok {
			continue
		}
		seen[column] = struct{}{}
		columns = append(columns, column)
	}
	t.Columns = columns
	return t, nil
}

func (t Table) selectColumns() []string {
	return append([]string{t.PrimaryKey}, t.Columns...)
}

func (t Table) hasColumn(name string) bool {
	if name == t.PrimaryKey {
		return true
	}
	for _, column := range t.Columns {
		if column == name {
			return true
		}
	}
	return false
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger used for query diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTables registers tables when the store is constructed.
func WithTables(tables ...Table) Option {
	return func(s *Store) {
		s.pending = append(s.pending, tables...)
	}
}

// Store owns the database handle and table registry. It is safe for
// concurrent use; Sessions are not.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	mu      sync.RWMutex
	tables  map[string]Table
	pending []Table
}

// Open opens (or creates) the SQLite database at path. Use ":memory:" for a
// private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: database path is required")
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if path == memoryPath {
		// each connection to :memory: is a distinct database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	store, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("sqlite: database handle is nil")
	}
	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tables: make(map[string]Table),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	pending := s.pending
	s.pending = nil
	for _, table := range pending {
		if err := s.Register(table); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func dsn(path string) string {
	pragmas := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	if path == memoryPath {
		return "file::memory:?" + pragmas
	}
	return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&" + pragmas
}

// DB exposes the underlying handle, for migrations and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register adds a table mapping. Type names must be unique.
func (s *Store) Register(table Table) error {
	table, err := table.normalise()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tables[table.Type.Name]; exists {
		return fmt.Errorf("sqlite: type %q already registered", table.Type.Name)
	}
	s.tables[table.Type.Name] = table
	return nil
}

// Session opens a new unit of work.
func (s *Store) Session() *Session {
	return &Session{
		store:    s,
		identity: make(map[identityKey]entity.Entity),
		tracked:  make(map[entity.Entity]identityKey),
	}
}

func (s *Store) table(typ entity.Type) (Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tables[typ.Name]
	if !ok {
		return Table{}, fmt.Errorf("sqlite: %q: %w", typ.Name, persistence.ErrUnknownType)
	}
	return table, nil
}

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("sqlite: invalid identifier %q", name)
	}
	return nil
}

func quote(name string) string {
	return `"` + name + `"`
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for idx, name := range names {
		quoted[idx] = quote(name)
	}
	return strings.Join(quoted, ", ")
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY) || errors.Is(err, sqlite3.CONSTRAINT_UNIQUE)
}
