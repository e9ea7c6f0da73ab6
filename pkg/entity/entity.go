package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrUnknownProperty reports a property name the entity does not expose.
	ErrUnknownProperty = errors.New("entity: unknown property")
	// ErrReadOnlyProperty reports a write against a property without a setter.
	ErrReadOnlyProperty = errors.New("entity: read-only property")
	// ErrInvalidType reports an incomplete Type descriptor.
	ErrInvalidType = errors.New("entity: invalid type")
)

// Accessor reads and writes named properties on an entity instance.
type Accessor interface {
	Get(property string) (any, error)
	Set(property string, value any) error
}

// Entity is an application record handled by the select binding layer.
// Implementations must be pointer types: persistence contexts track entities
// by identity.
type Entity interface {
	Accessor
}

// Type identifies an entity kind and knows how to create blank instances.
type Type struct {
	Name string
	New  func() Entity
}

// Validate reports whether the descriptor can be used to instantiate entities.
func (t Type) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidType)
	}
	if t.New == nil {
		return fmt.Errorf("%w: %q has no factory", ErrInvalidType, t.Name)
	}
	return nil
}

// Instantiate returns a new transient instance of the type.
func (t Type) Instantiate() (Entity, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	instance := t.New()
	if IsNil(instance) {
		return nil, fmt.Errorf("%w: %q factory returned nil", ErrInvalidType, t.Name)
	}
	return instance, nil
}

// PropertyError wraps a failure to read or write a single property.
type PropertyError struct {
	Property string
	Err      error
}

func (e *PropertyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("entity: property %q", e.Property)
	}
	return fmt.Sprintf("entity: property %q: %v", e.Property, e.Err)
}

func (e *PropertyError) Unwrap() error { return e.Err }

// IsNil reports whether e is absent, including typed nil pointers stored in
// the interface.
func IsNil(e Entity) bool {
	if e == nil {
		return true
	}
	value := reflect.ValueOf(e)
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return value.IsNil()
	default:
		return false
	}
}

// DefaultString returns the entity's generic string form: String() when it
// implements fmt.Stringer, fmt.Sprint otherwise.
func DefaultString(e Entity) string {
	if IsNil(e) {
		return ""
	}
	if stringer, ok := e.(fmt.Stringer); ok {
		return stringer.String()
	}
	return fmt.Sprint(e)
}
