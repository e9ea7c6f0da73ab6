// Package persistence describes the storage capabilities the select binding
// layer relies on. Implementations model a unit of work: they know which
// entity instances they currently track and can look records up by property.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-entityselect/pkg/entity"
)

var (
	// ErrNotFound is returned by FindOneBy when no record matches.
	ErrNotFound = errors.New("persistence: no matching record")
	// ErrNotUnique is returned by FindOneBy when more than one record matches.
	ErrNotUnique = errors.New("persistence: more than one matching record")
	// ErrUnknownType is returned when a type was never registered with a store.
	ErrUnknownType = errors.New("persistence: unknown entity type")
)

// Context is the unit of work used to resolve select values.
type Context interface {
	// Contains reports whether the instance is tracked as persisted.
	Contains(e entity.Entity) bool
	// FindOneBy returns the single record of typ whose property equals value.
	// It fails with ErrNotFound or ErrNotUnique when the match count is not one.
	FindOneBy(ctx context.Context, typ entity.Type, property string, value any) (entity.Entity, error)
}

// Searcher lists records whose property contains query, case-insensitively,
// ordered by that property. A limit of zero or less returns every match.
type Searcher interface {
	Search(ctx context.Context, typ entity.Type, property, query string, limit int) ([]entity.Entity, error)
}

// Persister stores new entities, assigns their primary key and starts
// tracking them.
type Persister interface {
	Persist(ctx context.Context, typ entity.Type, e entity.Entity) error
}

// IsLookupFailure reports whether err means a lookup did not resolve to
// exactly one record.
func IsLookupFailure(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotUnique)
}

// KeyStrategy decides how a Persister assigns primary keys to new entities.
type KeyStrategy string

const (
	// KeyAutoIncrement lets the store assign the next integer key.
	KeyAutoIncrement KeyStrategy = "autoincrement"
	// KeyUUID assigns a random UUID string when the key is empty.
	KeyUUID KeyStrategy = "uuid"
	// KeyManual requires callers to set the key before persisting.
	KeyManual KeyStrategy = "manual"
)

// ErrDuplicateKey is returned by Persist when the primary key is already taken.
var ErrDuplicateKey = errors.New("persistence: duplicate primary key")

// ParseKeyStrategy normalises a configured strategy name. Empty input selects
// KeyAutoIncrement.
func ParseKeyStrategy(raw string) (KeyStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(KeyAutoIncrement), "auto", "increment":
		return KeyAutoIncrement, nil
	case string(KeyUUID):
		return KeyUUID, nil
	case string(KeyManual), "none":
		return KeyManual, nil
	default:
		return "", fmt.Errorf("persistence: unknown key strategy %q", raw)
	}
}
