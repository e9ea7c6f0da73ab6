package entity

import "sort"

// Property binds a getter and an optional setter for a single named property
// of T. A nil Set makes the property read-only.
type Property[T any] struct {
	Get func(*T) any
	Set func(*T, any) error
}

// Properties maps property names to accessors for T. Tables are built once and
// shared by every instance; they are safe for concurrent reads.
type Properties[T any] map[string]Property[T]

// Get reads the named property from obj.
func (p Properties[T]) Get(obj *T, name string) (any, error) {
	prop, ok := p[name]
	if !ok || prop.Get == nil {
		return nil, &PropertyError{Property: name, Err: ErrUnknownProperty}
	}
	return prop.Get(obj), nil
}

// Set writes value into the named property of obj.
func (p Properties[T]) Set(obj *T, name string, value any) error {
	prop, ok := p[name]
	if !ok {
		return &PropertyError{Property: name, Err: ErrUnknownProperty}
	}
	if prop.Set == nil {
		return &PropertyError{Property: name, Err: ErrReadOnlyProperty}
	}
	if err := prop.Set(obj, value); err != nil {
		return &PropertyError{Property: name, Err: err}
	}
	return nil
}

// Has reports whether name is a known property.
func (p Properties[T]) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Names returns the property names in lexical order.
func (p Properties[T]) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String builds a string property. Values written through Set are coerced
// with ToString.
func String[T any](get func(*T) string, set func(*T, string)) Property[T] {
	prop := Property[T]{
		Get: func(obj *T) any { return get(obj) },
	}
	if set != nil {
		prop.Set = func(obj *T, value any) error {
			coerced, err := ToString(value)
			if err != nil {
				return err
			}
			set(obj, coerced)
			return nil
		}
	}
	return prop
}

// Int64 builds an integer property. Values written through Set are coerced
// with ToInt64, so string keys submitted by forms are accepted.
func Int64[T any](get func(*T) int64, set func(*T, int64)) Property[T] {
	prop := Property[T]{
		Get: func(obj *T) any { return get(obj) },
	}
	if set != nil {
		prop.Set = func(obj *T, value any) error {
			coerced, err := ToInt64(value)
			if err != nil {
				return err
			}
			set(obj, coerced)
			return nil
		}
	}
	return prop
}
