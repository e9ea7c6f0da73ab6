package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/persistence"
)

var (
	_ persistence.Context   = (*Session)(nil)
	_ persistence.Searcher  = (*Session)(nil)
	_ persistence.Persister = (*Session)(nil)
)

type identityKey struct {
	typ string
	key string
}

// Session is a unit of work with its own identity map: loading the same row
// twice returns the same instance, and only instances loaded or persisted
// through the session are reported by Contains. Use one Session per request.
type Session struct {
	store    *Store
	mu       sync.Mutex
	identity map[identityKey]entity.Entity
	tracked  map[entity.Entity]identityKey
}

// Contains reports whether e was loaded or persisted through this session.
func (s *Session) Contains(e entity.Entity) bool {
	if entity.IsNil(e) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tracked[e]
	return ok
}

// Detach stops tracking e. Later lookups hydrate a fresh instance.
func (s *Session) Detach(e entity.Entity) {
	if entity.IsNil(e) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if key, ok := s.tracked[e]; ok {
		delete(s.tracked, e)
		delete(s.identity, key)
	}
}

// Clear detaches every tracked entity.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = make(map[identityKey]entity.Entity)
	s.tracked = make(map[entity.Entity]identityKey)
}

// FindOneBy loads the single row of typ whose column property equals value.
// At most two rows are read to tell a unique match from a duplicate.
func (s *Session) FindOneBy(ctx context.Context, typ entity.Type, property string, value any) (entity.Entity, error) {
	table, err := s.store.table(typ)
	if err != nil {
		return nil, err
	}
	if !table.hasColumn(property) {
		return nil, fmt.Errorf("sqlite: %s has no mapped column %q", table.Name, property)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = ? LIMIT 2",
		quoteAll(table.selectColumns()), quote(table.Name), quote(property),
	)
	s.store.logger.DebugContext(ctx, "sqlite find one",
		slog.String("table", table.Name),
		slog.String("column", property),
		slog.Any("value", value),
	)

	rows, err := s.store.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", table.Name, err)
	}
	defer rows.Close()

	found, err := s.hydrateAll(table, rows)
	if err != nil {
		return nil, err
	}

	formatted := entity.FormatValue(value)
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("sqlite: %s.%s = %q: %w", table.Name, property, formatted, persistence.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("sqlite: %s.%s = %q: %w", table.Name, property, formatted, persistence.ErrNotUnique)
	}
}

// Search lists rows whose property contains query (ASCII case-insensitive),
// ordered by that property.
func (s *Session) Search(ctx context.Context, typ entity.Type, property, query string, limit int) ([]entity.Entity, error) {
	table, err := s.store.table(typ)
	if err != nil {
		return nil, err
	}
	if !table.hasColumn(property) {
		return nil, fmt.Errorf("sqlite: %s has no mapped column %q", table.Name, property)
	}
	if limit <= 0 {
		limit = -1
	}

	statement := fmt.Sprintf(
		`SELECT %s FROM %s WHERE lower(%s) LIKE ? ESCAPE '\' ORDER BY %s COLLATE NOCASE LIMIT ?`,
		quoteAll(table.selectColumns()), quote(table.Name), quote(property), quote(property),
	)
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	rows, err := s.store.db.QueryContext(ctx, statement, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search %s: %w", table.Name, err)
	}
	defer rows.Close()

	return s.hydrateAll(table, rows)
}

// Persist inserts e into its table, assigns the primary key according to the
// table's key strategy and tracks the instance.
func (s *Session) Persist(ctx context.Context, typ entity.Type, e entity.Entity) error {
	if entity.IsNil(e) {
		return fmt.Errorf("sqlite: persist %s: entity is nil", typ.Name)
	}
	if s.Contains(e) {
		return nil
	}
	table, err := s.store.table(typ)
	if err != nil {
		return err
	}

	current, err := e.Get(table.PrimaryKey)
	if err != nil {
		return fmt.Errorf("sqlite: persist %s: %w", table.Name, err)
	}
	key := entity.FormatValue(current)
	includeKey := true
	generated := false

	switch table.KeyStrategy {
	case persistence.KeyAutoIncrement:
		if key == "" || key == "0" {
			includeKey = false
		}
	case persistence.KeyUUID:
		if key == "" {
			key = uuid.NewString()
			generated = true
		}
	default:
		if key == "" || key == "0" {
			return fmt.Errorf("sqlite: %s requires a %s before persisting", table.Name, table.PrimaryKey)
		}
	}

	columns := make([]string, 0, len(table.Columns)+1)
	args := make([]any, 0, len(table.Columns)+1)
	if includeKey {
		columns = append(columns, table.PrimaryKey)
		if generated {
			args = append(args, key)
		} else {
			args = append(args, current)
		}
	}
	for _, column := range table.Columns {
		value, err := e.Get(column)
		if err != nil {
			return fmt.Errorf("sqlite: persist %s: %w", table.Name, err)
		}
		columns = append(columns, column)
		args = append(args, value)
	}

	var statement string
	if len(columns) == 0 {
		statement = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quote(table.Name))
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
		statement = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(table.Name), quoteAll(columns), placeholders)
	}

	result, err := s.store.db.ExecContext(ctx, statement, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("sqlite: persist %s %q: %w", table.Name, key, persistence.ErrDuplicateKey)
		}
		return fmt.Errorf("sqlite: insert %s: %w", table.Name, err)
	}

	// e only receives a generated key once the row exists.
	if generated {
		if err := e.Set(table.PrimaryKey, key); err != nil {
			return fmt.Errorf("sqlite: persist %s: %w", table.Name, err)
		}
	}
	if !includeKey {
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: persist %s: last insert id: %w", table.Name, err)
		}
		if err := e.Set(table.PrimaryKey, id); err != nil {
			return fmt.Errorf("sqlite: persist %s: %w", table.Name, err)
		}
		key = entity.FormatValue(id)
	}

	s.store.logger.DebugContext(ctx, "sqlite persisted entity",
		slog.String("table", table.Name),
		slog.String("key", key),
	)
	s.track(identityKey{typ: typ.Name, key: key}, e)
	return nil
}

func (s *Session) hydrateAll(table Table, rows *sql.Rows) ([]entity.Entity, error) {
	columns := table.selectColumns()
	var out []entity.Entity
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for idx := range values {
			targets[idx] = &values[idx]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", table.Name, err)
		}
		e, err := s.hydrate(table, columns, values)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate %s: %w", table.Name, err)
	}
	return out, nil
}

func (s *Session) hydrate(table Table, columns []string, values []any) (entity.Entity, error) {
	key := identityKey{typ: table.Type.Name, key: entity.FormatValue(values[0])}

	s.mu.Lock()
	existing, ok := s.identity[key]
	s.mu.Unlock()
	if ok {
		return existing, nil
	}

	instance, err := table.Type.Instantiate()
	if err != nil {
		return nil, err
	}
	for idx, column := range columns {
		value := values[idx]
		if raw, ok := value.([]byte); ok {
			value = string(raw)
		}
		if err := instance.Set(column, value); err != nil {
			return nil, fmt.Errorf("sqlite: hydrate %s.%s: %w", table.Name, column, err)
		}
	}
	return s.track(key, instance), nil
}

// track registers e under key unless another instance already holds it, in
// which case the existing instance wins.
func (s *Session) track(key identityKey, e entity.Entity) entity.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.identity[key]; ok {
		return existing
	}
	s.identity[key] = e
	s.tracked[e] = key
	return e
}

func escapeLike(raw string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(raw)
}
