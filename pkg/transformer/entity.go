package transformer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/persistence"
)

// EntityTransformer converts a single entity to and from the key submitted by
// a select input. It holds configuration only and can be reused across calls;
// concurrent use is as safe as the persistence context it was built with.
type EntityTransformer struct {
	store persistence.Context
	opts  Options
}

// New constructs an EntityTransformer bound to store.
func New(store persistence.Context, fns ...OptionFn) (*EntityTransformer, error) {
	if store == nil {
		return nil, errors.New("transformer: persistence context is nil")
	}
	opts := NewOptions(fns...)
	if err := opts.Type.Validate(); err != nil {
		return nil, fmt.Errorf("transformer: %w", err)
	}
	return &EntityTransformer{store: store, opts: opts}, nil
}

// Options returns a copy of the transformer configuration.
func (t *EntityTransformer) Options() Options {
	return t.opts
}

// Transform renders e as a single-entry DisplayValue. A nil entity yields an
// empty DisplayValue.
func (t *EntityTransformer) Transform(ctx context.Context, e entity.Entity) (DisplayValue, error) {
	if entity.IsNil(e) {
		return DisplayValue{}, nil
	}

	text, err := t.text(e)
	if err != nil {
		return nil, err
	}

	if t.store.Contains(e) {
		key, err := e.Get(t.opts.PrimaryKey)
		if err != nil {
			return nil, fmt.Errorf("transformer: read %s.%s: %w", t.opts.Type.Name, t.opts.PrimaryKey, err)
		}
		return NewDisplayValue(entity.FormatValue(key), text), nil
	}

	return NewDisplayValue(t.opts.NewTagPrefix+text, text+t.opts.NewTagText), nil
}

// ReverseTransform resolves a submitted key. Empty input yields nil. Values
// starting with NewTagPrefix produce a new, unsaved entity when AllowNew is
// set; all other values must match exactly one persisted entity by primary
// key.
func (t *EntityTransformer) ReverseTransform(ctx context.Context, value string) (entity.Entity, error) {
	if value == "" {
		return nil, nil
	}

	if t.opts.AllowNew && strings.HasPrefix(value, t.opts.NewTagPrefix) {
		return t.newEntry(ctx, value[len(t.opts.NewTagPrefix):])
	}

	found, err := t.store.FindOneBy(ctx, t.opts.Type, t.opts.PrimaryKey, value)
	if err != nil {
		if persistence.IsLookupFailure(err) {
			t.opts.Logger.DebugContext(ctx, "entity transformer rejected choice",
				slog.String("type", t.opts.Type.Name),
				slog.String("value", value),
				slog.Any("error", err),
			)
			return nil, &TransformationFailedError{Value: value, Err: err}
		}
		return nil, fmt.Errorf("transformer: find %s by %s: %w", t.opts.Type.Name, t.opts.PrimaryKey, err)
	}
	if entity.IsNil(found) {
		return nil, &TransformationFailedError{Value: value, Err: persistence.ErrNotFound}
	}
	return found, nil
}

// AsDataTransformer exposes t through the untyped DataTransformer contract.
func (t *EntityTransformer) AsDataTransformer() DataTransformer {
	return dataTransformer{inner: t}
}

func (t *EntityTransformer) text(e entity.Entity) (string, error) {
	if t.opts.TextProperty == "" {
		return entity.DefaultString(e), nil
	}
	value, err := e.Get(t.opts.TextProperty)
	if err != nil {
		return "", fmt.Errorf("transformer: read %s.%s: %w", t.opts.Type.Name, t.opts.TextProperty, err)
	}
	return entity.FormatValue(value), nil
}

func (t *EntityTransformer) newEntry(ctx context.Context, text string) (entity.Entity, error) {
	if t.opts.TextProperty == "" {
		return nil, ErrLabelPropertyRequired
	}
	if t.opts.Sanitizer != nil {
		text = t.opts.Sanitizer(text)
	}

	instance, err := t.opts.Type.Instantiate()
	if err != nil {
		return nil, fmt.Errorf("transformer: %w", err)
	}
	if err := instance.Set(t.opts.TextProperty, text); err != nil {
		return nil, fmt.Errorf("transformer: write %s.%s: %w", t.opts.Type.Name, t.opts.TextProperty, err)
	}

	t.opts.Logger.DebugContext(ctx, "entity transformer created new entry",
		slog.String("type", t.opts.Type.Name),
		slog.String("label", text),
	)
	return instance, nil
}

type dataTransformer struct {
	inner *EntityTransformer
}

func (d dataTransformer) Transform(ctx context.Context, value any) (any, error) {
	if value == nil {
		return DisplayValue{}, nil
	}
	e, ok := value.(entity.Entity)
	if !ok {
		return nil, fmt.Errorf("%w: expected entity, got %T", ErrUnexpectedType, value)
	}
	return d.inner.Transform(ctx, e)
}

func (d dataTransformer) ReverseTransform(ctx context.Context, value any) (any, error) {
	var raw string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case int, int32, int64, uint, uint32, uint64:
		raw = entity.FormatValue(v)
	default:
		return nil, fmt.Errorf("%w: expected string, got %T", ErrUnexpectedType, value)
	}

	e, err := d.inner.ReverseTransform(ctx, raw)
	if err != nil || e == nil {
		return nil, err
	}
	return e, nil
}
