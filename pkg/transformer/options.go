package transformer

import (
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-entityselect/pkg/entity"
)

const (
	DefaultPrimaryKey   = "id"
	DefaultNewTagPrefix = "__"
	DefaultNewTagText   = " (NEW)"
)

// Options configures an EntityTransformer. The configuration is fixed once
// the transformer is constructed.
type Options struct {
	// Type is the entity type resolved and created by the transformer.
	Type entity.Type
	// TextProperty names the label property. When empty, labels fall back to
	// the entity's default string form and new entries cannot be created.
	TextProperty string
	PrimaryKey   string
	// NewTagPrefix marks submitted values as new entries. Primary keys must
	// never start with it.
	NewTagPrefix string
	// NewTagText is appended to the label of untracked entities.
	NewTagText string
	// AllowNew enables the new-entry branch of ReverseTransform. When false,
	// prefixed values are looked up like any other key.
	AllowNew bool
	// Sanitizer, when set, cleans new-entry text before it is written.
	Sanitizer func(string) string
	Logger    *slog.Logger
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// DefaultOptions returns the baseline configuration.
func DefaultOptions() Options {
	return Options{
		PrimaryKey:   DefaultPrimaryKey,
		NewTagPrefix: DefaultNewTagPrefix,
		NewTagText:   DefaultNewTagText,
		AllowNew:     true,
	}
}

// NewOptions applies fns over DefaultOptions and normalises the result.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	opts.TextProperty = strings.TrimSpace(opts.TextProperty)
	opts.PrimaryKey = strings.TrimSpace(opts.PrimaryKey)
	if opts.PrimaryKey == "" {
		opts.PrimaryKey = DefaultPrimaryKey
	}
	if opts.NewTagPrefix == "" {
		opts.NewTagPrefix = DefaultNewTagPrefix
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opts
}

// WithType sets the entity type.
func WithType(typ entity.Type) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Type = typ
	}
}

// WithTextProperty sets the label property name.
func WithTextProperty(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TextProperty = name
	}
}

// WithPrimaryKey sets the primary-key property name.
func WithPrimaryKey(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PrimaryKey = name
	}
}

// WithNewTagPrefix sets the new-entry prefix token.
func WithNewTagPrefix(prefix string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.NewTagPrefix = prefix
	}
}

// WithNewTagText sets the label suffix used for untracked entities.
func WithNewTagText(text string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.NewTagText = text
	}
}

// WithAllowNew toggles creation of new entries from prefixed values.
func WithAllowNew(allow bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.AllowNew = allow
	}
}

// WithSanitizer installs a cleaner for new-entry text. Pass SanitizeLabel to
// strip markup with bluemonday's strict policy.
func WithSanitizer(fn func(string) string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Sanitizer = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
