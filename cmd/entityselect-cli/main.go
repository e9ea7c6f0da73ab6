package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/goliatone/go-entityselect/components/entityselect"
	"github.com/goliatone/go-entityselect/pkg/config"
	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/model"
	"github.com/goliatone/go-entityselect/pkg/persistence/sqlite"
	"github.com/goliatone/go-entityselect/pkg/picker"
	"github.com/goliatone/go-entityselect/pkg/render"
)

const usage = `usage: entityselect-cli [flags] <command> [arg]

commands:
  transform <key>   look up a persisted entity and print its select option
  reverse <value>   resolve a submitted value ("__Label" creates a new entry)
  search <query>    list matching options
  serve <addr>      serve the JSON options endpoint
`

func main() {
	dbPath := flag.String("db", "entities.db", "SQLite database path (\":memory:\" for an ephemeral database)")
	configDir := flag.String("config", "config", "directory holding select definitions (*.yaml, *.yml, *.json)")
	selectName := flag.String("select", "", "select definition to use (defaults to the only one defined)")
	interactive := flag.Bool("interactive", false, "pick an entry interactively and print its key")
	save := flag.Bool("save", false, "persist new entries created by reverse or the interactive picker")
	verbose := flag.Bool("v", false, "log queries to stderr")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx := context.Background()
	logger := newLogger(*verbose)

	defs, err := config.LoadFS(os.DirFS(*configDir))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	def, err := pickDefinition(defs, *selectName)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := newApp(ctx, *dbPath, def, logger)
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}
	defer app.Close()

	if *interactive {
		if err := app.pick(ctx, picker.NewSurveyDriver(), os.Stdout, *save); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	arg := strings.Join(args[1:], " ")

	switch args[0] {
	case "transform":
		err = app.transform(ctx, os.Stdout, arg)
	case "reverse":
		err = app.reverse(ctx, os.Stdout, arg, *save)
	case "search":
		err = app.search(ctx, os.Stdout, arg)
	case "serve":
		err = app.serve(arg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

type app struct {
	store     *sqlite.Store
	component *entityselect.Component
	def       config.Definition
	logger    *slog.Logger
}

func newApp(ctx context.Context, dbPath string, def config.Definition, logger *slog.Logger) (*app, error) {
	typ := entity.RecordType(def.Type)
	reg, err := entity.NewRegistry(typ)
	if err != nil {
		return nil, err
	}
	fns, err := def.TransformerOptions(reg)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(ctx, dbPath,
		sqlite.WithLogger(logger),
		sqlite.WithTables(sqlite.Table{
			Type:        typ,
			PrimaryKey:  def.PrimaryKey,
			Columns:     def.Columns,
			KeyStrategy: def.KeyStrategy,
		}),
	)
	if err != nil {
		return nil, err
	}

	sessions := func(context.Context) (entityselect.Store, error) {
		return store.Session(), nil
	}
	optFns := []entityselect.OptionFn{
		entityselect.WithTransformer(fns...),
		entityselect.WithSanitize(def.Sanitize),
		entityselect.WithLogger(logger),
	}
	if def.Endpoint != "" {
		optFns = append(optFns, entityselect.WithRoutePath(def.Endpoint))
	}
	if def.Limit > 0 {
		optFns = append(optFns, entityselect.WithDefaultLimit(def.Limit))
	}
	component, err := entityselect.New(sessions, optFns...)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{store: store, component: component, def: def, logger: logger}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// session pins one unit of work to ctx for the duration of a command.
func (a *app) session(ctx context.Context) context.Context {
	return entityselect.ContextWithStore(ctx, a.store.Session())
}

func (a *app) transform(ctx context.Context, w io.Writer, key string) error {
	ctx = a.session(ctx)
	tr, _, err := a.component.Transformer(ctx)
	if err != nil {
		return err
	}
	found, err := tr.ReverseTransform(ctx, key)
	if err != nil {
		return describe(key, err)
	}
	display, err := tr.Transform(ctx, found)
	if err != nil {
		return err
	}
	for _, opt := range display.Options() {
		fmt.Fprintf(w, "%s\t%s\n", opt.Value, opt.Label)
	}
	return nil
}

func (a *app) reverse(ctx context.Context, w io.Writer, value string, save bool) error {
	ctx = a.session(ctx)
	tr, store, err := a.component.Transformer(ctx)
	if err != nil {
		return err
	}
	found, err := tr.ReverseTransform(ctx, value)
	if err != nil {
		return describe(value, err)
	}
	if found == nil {
		fmt.Fprintln(w, "(no selection)")
		return nil
	}
	if !store.Contains(found) {
		if !save {
			fmt.Fprintf(w, "new %s\n", entity.DefaultString(found))
			return nil
		}
		if err := a.component.Persist(ctx, found); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, entity.DefaultString(found))
	return nil
}

func (a *app) search(ctx context.Context, w io.Writer, query string) error {
	opts, err := a.options(a.session(ctx), query)
	if err != nil {
		return err
	}
	for _, opt := range opts {
		fmt.Fprintf(w, "%s\t%s\n", opt.Value, opt.Label)
	}
	return nil
}

func (a *app) pick(ctx context.Context, driver picker.PromptDriver, w io.Writer, save bool) error {
	ctx = a.session(ctx)
	tOpts := a.component.TransformerOptions()
	p := picker.New(driver, picker.Options{
		Message:      fmt.Sprintf("Select %s", a.def.Name),
		PageSize:     10,
		AllowNew:     tOpts.AllowNew && tOpts.TextProperty != "",
		NewTagPrefix: tOpts.NewTagPrefix,
		NewTagText:   tOpts.NewTagText,
	})

	choice, err := p.Pick(ctx, a.options)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(choice.Value, tOpts.NewTagPrefix) || !save {
		fmt.Fprintln(w, choice.Value)
		return nil
	}

	ok, err := p.Confirm(ctx, fmt.Sprintf("Create %q?", choice.Label))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, choice.Value)
		return nil
	}
	return a.reverse(ctx, w, choice.Value, true)
}

func (a *app) options(ctx context.Context, query string) ([]model.Option, error) {
	return a.component.Search(ctx, query, 0)
}

func (a *app) serve(addr string) error {
	if strings.TrimSpace(addr) == "" {
		addr = ":8080"
	}
	mux := http.NewServeMux()
	pattern, err := a.component.RegisterRoutes(mux, "")
	if err != nil {
		return err
	}
	a.logger.Info("serving entity options", slog.String("addr", addr), slog.String("path", pattern))
	sessions := func(context.Context) (entityselect.Store, error) {
		return a.store.Session(), nil
	}
	return http.ListenAndServe(addr, entityselect.Middleware(sessions)(mux))
}

func pickDefinition(defs *config.Store, name string) (config.Definition, error) {
	if name != "" {
		def, ok := defs.Select(name)
		if !ok {
			return config.Definition{}, fmt.Errorf("unknown select %q (defined: %s)", name, strings.Join(defs.Names(), ", "))
		}
		return def, nil
	}
	names := defs.Names()
	switch len(names) {
	case 0:
		return config.Definition{}, errors.New("no select definitions found")
	case 1:
		def, _ := defs.Select(names[0])
		return def, nil
	default:
		return config.Definition{}, fmt.Errorf("several selects defined, pass -select (one of: %s)", strings.Join(names, ", "))
	}
}

// describe renders a user-facing message for rejected choices.
func describe(value string, err error) error {
	mapping, internal := render.MapBindingErrors(map[string]error{"value": err})
	if internal != nil {
		return internal
	}
	if msgs := mapping.Fields["value"]; len(msgs) > 0 {
		return errors.New(strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%s: %w", value, err)
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
