package entityselect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/model"
	"github.com/goliatone/go-entityselect/pkg/persistence"
	"github.com/goliatone/go-entityselect/pkg/transformer"
)

// ErrPersistUnsupported is returned by Persist when the resolved store cannot
// save new entities.
var ErrPersistUnsupported = errors.New("entityselect: store does not support persisting entities")

// Component bundles the transformer configuration, the store lookup and the
// routing helpers for one entity select.
type Component struct {
	opts   Options
	tOpts  transformer.Options
	stores StoreFunc
}

// New constructs a component. The transformer options must name an entity
// type, and either a text property or WithSearchProperty must be set so the
// options endpoint can search.
func New(stores StoreFunc, fns ...OptionFn) (*Component, error) {
	if stores == nil {
		return nil, errors.New("entityselect: missing store func")
	}
	opts := NewOptions(fns...)
	tOpts := transformer.NewOptions(opts.transformerOptions()...)
	if err := tOpts.Type.Validate(); err != nil {
		return nil, fmt.Errorf("entityselect: %w", err)
	}
	if opts.SearchProperty == "" {
		opts.SearchProperty = tOpts.TextProperty
	}
	if opts.SearchProperty == "" {
		return nil, fmt.Errorf("entityselect: %s: missing search property", tOpts.Type.Name)
	}
	return &Component{opts: opts, tOpts: tOpts, stores: stores}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// TransformerOptions returns the resolved transformer configuration.
func (c *Component) TransformerOptions() transformer.Options {
	return c.tOpts
}

// Transformer resolves the store for ctx and returns a transformer bound to it.
func (c *Component) Transformer(ctx context.Context) (*transformer.EntityTransformer, Store, error) {
	store, err := c.store(ctx)
	if err != nil {
		return nil, nil, err
	}
	tr, err := transformer.New(store, c.opts.transformerOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("entityselect: %w", err)
	}
	return tr, store, nil
}

// Handler returns the JSON options handler.
func (c *Component) Handler() http.Handler {
	return newHandler(c)
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return "", errors.New("entityselect: nil component")
	}
	if mux == nil {
		return "", errors.New("entityselect: missing mux")
	}
	pattern := mountPath(basePath, c.opts.RoutePath)
	mux.Handle(pattern, c.Handler())
	return pattern, nil
}

// Search returns the options matching query, at most limit of them after
// clamping to the configured bounds. Every value is the forward transform of
// a persisted entity.
func (c *Component) Search(ctx context.Context, query string, limit int) ([]model.Option, error) {
	tr, store, err := c.Transformer(ctx)
	if err != nil {
		return nil, err
	}
	found, err := store.Search(ctx, c.tOpts.Type, c.opts.SearchProperty, query, clampLimit(limit, c.opts))
	if err != nil {
		return nil, fmt.Errorf("entityselect: search %s: %w", c.tOpts.Type.Name, err)
	}

	results := make([]model.Option, 0, len(found))
	for _, e := range found {
		display, err := tr.Transform(ctx, e)
		if err != nil {
			return nil, err
		}
		results = append(results, display.Options()...)
	}
	return results, nil
}

// Bind reads fieldName from the submitted form and reverse transforms it.
// Empty submissions yield nil. Unknown or ambiguous keys fail with a
// *transformer.TransformationFailedError.
func (c *Component) Bind(ctx context.Context, r *http.Request, fieldName string) (entity.Entity, error) {
	if r == nil {
		return nil, errors.New("entityselect: nil request")
	}
	if err := r.ParseForm(); err != nil {
		return nil, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("entityselect: parse form: %w", err)}
	}
	tr, _, err := c.Transformer(ctx)
	if err != nil {
		return nil, err
	}
	return tr.ReverseTransform(ctx, r.Form.Get(fieldName))
}

// Selected returns the pre-filled options for e. A nil entity yields no
// options.
func (c *Component) Selected(ctx context.Context, e entity.Entity) ([]model.Option, error) {
	tr, _, err := c.Transformer(ctx)
	if err != nil {
		return nil, err
	}
	display, err := tr.Transform(ctx, e)
	if err != nil {
		return nil, err
	}
	return display.Options(), nil
}

// Persist saves e when the store does not track it yet. Tracked and nil
// entities are left untouched.
func (c *Component) Persist(ctx context.Context, e entity.Entity) error {
	if entity.IsNil(e) {
		return nil
	}
	store, err := c.store(ctx)
	if err != nil {
		return err
	}
	if store.Contains(e) {
		return nil
	}
	persister, ok := store.(persistence.Persister)
	if !ok {
		return ErrPersistUnsupported
	}
	if err := persister.Persist(ctx, c.tOpts.Type, e); err != nil {
		return fmt.Errorf("entityselect: persist %s: %w", c.tOpts.Type.Name, err)
	}
	c.opts.Logger.InfoContext(ctx, "entity select persisted new entry", slog.String("type", c.tOpts.Type.Name))
	return nil
}

// Decorate marks field as a select widget backed by the component endpoint
// mounted under basePath. Existing widget and endpoint metadata is kept, and
// a relationship already described in field.Metadata is read back instead of
// being replaced with the component's default.
func (c *Component) Decorate(field *model.Field, basePath string) {
	if c == nil || field == nil {
		return
	}

	if field.Metadata == nil {
		field.Metadata = make(map[string]string)
	}
	if field.UIHints == nil {
		field.UIHints = make(map[string]string)
	}
	if field.Metadata["widget"] == "" {
		field.Metadata["widget"] = model.WidgetSelect
	}
	if field.UIHints["widget"] == "" {
		field.UIHints["widget"] = model.WidgetSelect
	}

	if field.Relationship == nil {
		if rel, ok := model.RelationshipFromMetadata(field.Metadata); ok {
			field.Relationship = rel
		} else {
			field.Relationship = &model.Relationship{
				Kind:   model.RelationshipBelongsTo,
				Target: c.tOpts.Type.Name,
			}
		}
	}
	if field.Relationship.SourceField == "" {
		field.Relationship.SourceField = field.Name
	}
	field.Metadata = model.SyncRelationshipMetadata(field.Metadata, field.Relationship)

	model.ApplyEndpoint(field, Endpoint(basePath, func(o *Options) { *o = c.opts }))

	field.Metadata = model.MergeMetadata(field.Metadata, model.FlattenTagging(model.TaggingConfig{
		Enabled: c.tOpts.AllowNew && c.tOpts.TextProperty != "",
		Prefix:  c.tOpts.NewTagPrefix,
		Suffix:  c.tOpts.NewTagText,
	}))
}

func (c *Component) store(ctx context.Context) (Store, error) {
	if store, ok := StoreFromContext(ctx); ok {
		return store, nil
	}
	store, err := c.stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("entityselect: resolve store: %w", err)
	}
	if store == nil {
		return nil, errors.New("entityselect: store func returned nil")
	}
	return store, nil
}
