package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/persistence"
	"github.com/goliatone/go-entityselect/pkg/persistence/memory"
	"github.com/goliatone/go-entityselect/pkg/testsupport"
	"github.com/goliatone/go-entityselect/pkg/transformer"
)

func TestLoadFS_Basic(t *testing.T) {
	store, err := LoadFS(os.DirFS("testdata/basic"))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}

	if diff := cmp.Diff([]string{"city", "country", "tag"}, store.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	city, ok := store.Select("city")
	if !ok {
		t.Fatalf("expected city select")
	}
	suffix := " [new]"
	want := Definition{
		Name:         "city",
		Source:       "selects.yaml",
		Type:         "cities",
		TextProperty: "name",
		PrimaryKey:   "id",
		NewTagPrefix: "__",
		NewTagText:   &suffix,
		AllowNew:     true,
		Sanitize:     true,
		Endpoint:     "/api/cities",
		Limit:        20,
		Columns:      []string{"name", "country"},
		KeyStrategy:  persistence.KeyAutoIncrement,
	}
	if diff := cmp.Diff(want, city); diff != "" {
		t.Fatalf("city definition mismatch (-want +got):\n%s", diff)
	}

	tag, _ := store.Select(" tag ")
	if tag.KeyStrategy != persistence.KeyUUID {
		t.Fatalf("expected uuid key strategy, got %q", tag.KeyStrategy)
	}
	if tag.Sanitize {
		t.Fatalf("expected sanitize disabled for tag")
	}
	if diff := cmp.Diff([]string{"label"}, tag.Columns); diff != "" {
		t.Fatalf("tag columns mismatch (-want +got):\n%s", diff)
	}

	country, _ := store.Select("country")
	if country.AllowNew {
		t.Fatalf("expected allowNew disabled for country")
	}
	if country.PrimaryKey != "code" || country.KeyStrategy != persistence.KeyManual {
		t.Fatalf("unexpected country definition: %+v", country)
	}
	if country.NewTagText != nil {
		t.Fatalf("expected nil NewTagText when unset, got %q", *country.NewTagText)
	}
}

func TestLoadFS_DuplicateSelect(t *testing.T) {
	_, err := LoadFS(os.DirFS("testdata/duplicate"))
	if err == nil {
		t.Fatalf("expected duplicate error")
	}
	if !strings.Contains(err.Error(), `duplicate select "city"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"missing type": {
			body: "selects:\n  city:\n    textProperty: name\n",
			want: "missing a type",
		},
		"bad key strategy": {
			body: "selects:\n  city:\n    type: cities\n    textProperty: name\n    keyStrategy: sequence\n",
			want: "key strategy",
		},
		"allow new without text": {
			body: "selects:\n  city:\n    type: cities\n",
			want: "no textProperty",
		},
		"negative limit": {
			body: "selects:\n  city:\n    type: cities\n    textProperty: name\n    limit: -1\n",
			want: "negative limit",
		},
		"empty column": {
			body: "selects:\n  city:\n    type: cities\n    textProperty: name\n    columns: [name, \" \"]\n",
			want: "empty column at index 1",
		},
		"invalid yaml": {
			body: "selects: [\n",
			want: "config: parse selects.yaml",
		},
		"empty file": {
			body: "   \n",
			want: "is empty",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"selects.yaml": {Data: []byte(tc.body)}}
			_, err := LoadFS(fsys)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFS_JSONRejectsInvalidPayload(t *testing.T) {
	fsys := fstest.MapFS{"selects.json": {Data: []byte(`{"selects": `)}}
	if _, err := LoadFS(fsys); err == nil || !strings.Contains(err.Error(), "config: parse selects.json") {
		t.Fatalf("expected json parse error, got %v", err)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	store, err := LoadFS(nil)
	if err != nil {
		t.Fatalf("load nil fs: %v", err)
	}
	if !store.Empty() {
		t.Fatalf("expected empty store")
	}
	if _, ok := store.Select("city"); ok {
		t.Fatalf("expected no select")
	}

	var missing *Store
	if !missing.Empty() || missing.Names() != nil {
		t.Fatalf("expected nil store to behave as empty")
	}
}

func TestDefinition_TransformerOptions(t *testing.T) {
	store, err := LoadFS(os.DirFS("testdata/basic"))
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	city, _ := store.Select("city")

	reg, err := entity.NewRegistry(testsupport.CityType)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	fns, err := city.TransformerOptions(reg)
	if err != nil {
		t.Fatalf("transformer options: %v", err)
	}

	opts := transformer.NewOptions(fns...)
	if opts.Type.Name != "cities" || opts.TextProperty != "name" || opts.NewTagText != " [new]" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.Sanitizer == nil {
		t.Fatalf("expected sanitizer to be configured")
	}

	mem, err := memory.New(memory.Collection{Type: testsupport.CityType})
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	tr, err := transformer.New(mem, fns...)
	if err != nil {
		t.Fatalf("new transformer: %v", err)
	}
	got, err := tr.ReverseTransform(context.Background(), "__<b>Paris</b>")
	if err != nil {
		t.Fatalf("reverse transform: %v", err)
	}
	if name := testsupport.MustCity(t, got).Name; name != "Paris" {
		t.Fatalf("expected sanitised label Paris, got %q", name)
	}

	tag, _ := store.Select("tag")
	if _, err := tag.TransformerOptions(reg); err == nil || !strings.Contains(err.Error(), `type "tags" is not registered`) {
		t.Fatalf("expected unregistered type error, got %v", err)
	}
}

func TestDefinition_TransformerOptionsUnknownTypeIsNotLookupFailure(t *testing.T) {
	reg := &entity.Registry{}
	def := Definition{Name: "city", Type: "cities"}
	_, err := def.TransformerOptions(reg)
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("registry errors must not look like lookup failures")
	}
}
