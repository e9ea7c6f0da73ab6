package transformer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-entityselect/pkg/model"
	"github.com/goliatone/go-entityselect/pkg/testsupport"
	"github.com/goliatone/go-entityselect/pkg/transformer"
)

func TestDataTransformerAdapter(t *testing.T) {
	paris := &testsupport.City{ID: 7, Name: "Paris"}
	dt := newCityTransformer(t, newCityStore(t, paris)).AsDataTransformer()
	ctx := testsupport.Context()

	forward, err := dt.Transform(ctx, paris)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	testsupport.AssertNoDiff(t, transformer.DisplayValue{"7": "Paris"}, forward)

	empty, err := dt.Transform(ctx, nil)
	if err != nil {
		t.Fatalf("transform nil: %v", err)
	}
	if !empty.(transformer.DisplayValue).Empty() {
		t.Fatalf("expected empty display value, got %#v", empty)
	}

	if _, err := dt.Transform(ctx, "Paris"); !errors.Is(err, transformer.ErrUnexpectedType) {
		t.Fatalf("expected ErrUnexpectedType, got %v", err)
	}

	for _, input := range []any{"7", []byte("7"), 7, int64(7)} {
		back, err := dt.ReverseTransform(ctx, input)
		if err != nil {
			t.Fatalf("reverse %#v: %v", input, err)
		}
		if back != any(paris) {
			t.Fatalf("reverse %#v: expected Paris, got %#v", input, back)
		}
	}

	nothing, err := dt.ReverseTransform(ctx, "")
	if err != nil || nothing != nil {
		t.Fatalf("expected untyped nil for empty input, got %#v, %v", nothing, err)
	}
	if _, err := dt.ReverseTransform(ctx, 3.5); !errors.Is(err, transformer.ErrUnexpectedType) {
		t.Fatalf("expected ErrUnexpectedType, got %v", err)
	}
}

func TestCallbackTransformer(t *testing.T) {
	upper := transformer.CallbackTransformer{
		Forward: func(_ context.Context, value any) (any, error) {
			return value.(string) + "!", nil
		},
	}
	ctx := testsupport.Context()

	got, err := upper.Transform(ctx, "hi")
	if err != nil || got != "hi!" {
		t.Fatalf("forward = %#v, %v", got, err)
	}
	got, err = upper.ReverseTransform(ctx, "hi!")
	if err != nil || got != "hi!" {
		t.Fatalf("nil reverse should pass through, got %#v, %v", got, err)
	}
}

func TestDisplayValueOptions(t *testing.T) {
	value := transformer.NewDisplayValue("__Lyon", "Lyon (NEW)")
	testsupport.AssertNoDiff(t, []model.Option{{Value: "__Lyon", Label: "Lyon (NEW)"}}, value.Options())

	empty := transformer.DisplayValue{}
	if empty.Options() != nil {
		t.Fatalf("expected nil options for empty display value")
	}
	if empty.Key() != "" {
		t.Fatalf("expected empty key for empty display value")
	}
}

func TestNewOptions_Normalises(t *testing.T) {
	opts := transformer.NewOptions(
		transformer.WithPrimaryKey("  "),
		transformer.WithNewTagPrefix(""),
		transformer.WithTextProperty(" name "),
		nil,
	)
	if opts.PrimaryKey != "id" {
		t.Fatalf("expected default primary key, got %q", opts.PrimaryKey)
	}
	if opts.NewTagPrefix != "__" {
		t.Fatalf("expected default prefix, got %q", opts.NewTagPrefix)
	}
	if opts.TextProperty != "name" {
		t.Fatalf("expected trimmed text property, got %q", opts.TextProperty)
	}
	if opts.NewTagText != " (NEW)" || !opts.AllowNew || opts.Logger == nil {
		t.Fatalf("unexpected defaults: %#v", opts)
	}

	blankSuffix := transformer.NewOptions(transformer.WithNewTagText(""))
	if blankSuffix.NewTagText != "" {
		t.Fatalf("expected an explicit empty suffix to be kept")
	}
}

func TestSanitizeLabel(t *testing.T) {
	cases := map[string]string{
		"  Lyon ":                      "Lyon",
		"<i>Fish</i> &amp; Chips":      "Fish & Chips",
		"Fish & Chips":                 "Fish & Chips",
		"<script>x()</script>Bordeaux": "Bordeaux",
		"":                             "",

		"&lt;script&gt;alert(1)&lt;/script&gt;":  "",
		"&lt;img src=x onerror=alert(1)&gt;Nice": "Nice",
		"&amp;lt;b&amp;gt;Pau&amp;lt;/b&amp;gt;": "Pau",
		"a &lt; b":                               "a < b",
	}
	for input, want := range cases {
		if got := transformer.SanitizeLabel(input); got != want {
			t.Fatalf("SanitizeLabel(%q) = %q, want %q", input, got, want)
		}
	}
}
