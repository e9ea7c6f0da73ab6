package entityselect

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-entityselect/pkg/transformer"
)

const (
	DefaultRoutePath   = "/api/entities"
	DefaultSearchParam = "q"
	DefaultLimitParam  = "limit"
	DefaultLimit       = 20
	DefaultMaxLimit    = 100
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath    string
	SearchParam  string
	LimitParam   string
	DefaultLimit int
	MaxLimit     int
	// SearchProperty is matched against the search query. It defaults to the
	// transformer's text property.
	SearchProperty string
	// Sanitize installs transformer.SanitizeLabel on user-typed labels.
	Sanitize bool
	Guard    GuardFunc
	Logger   *slog.Logger

	Transformer []transformer.OptionFn
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    DefaultRoutePath,
		SearchParam:  DefaultSearchParam,
		LimitParam:   DefaultLimitParam,
		DefaultLimit: DefaultLimit,
		MaxLimit:     DefaultMaxLimit,
		Sanitize:     true,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultMaxLimit
	}
	if opts.RoutePath == "" {
		opts.RoutePath = DefaultRoutePath
	}
	if opts.SearchParam == "" {
		opts.SearchParam = DefaultSearchParam
	}
	if opts.LimitParam == "" {
		opts.LimitParam = DefaultLimitParam
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Transformer != nil {
		opts.Transformer = append([]transformer.OptionFn{}, opts.Transformer...)
	}
	return opts
}

// transformerOptions returns the caller's transformer options followed by the
// component logger and, when enabled, the label sanitiser.
func (o Options) transformerOptions() []transformer.OptionFn {
	fns := append([]transformer.OptionFn{}, o.Transformer...)
	fns = append(fns, transformer.WithLogger(o.Logger))
	if o.Sanitize {
		fns = append(fns, transformer.WithSanitizer(transformer.SanitizeLabel))
	}
	return fns
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxLimit = limit
	}
}

func WithSearchProperty(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchProperty = name
	}
}

func WithSanitize(enabled bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Sanitize = enabled
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithTransformer appends transformer options used to build the component's
// EntityTransformer.
func WithTransformer(fns ...transformer.OptionFn) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Transformer = append(o.Transformer, fns...)
	}
}

func clampLimit(limit int, opts Options) int {
	if limit <= 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
