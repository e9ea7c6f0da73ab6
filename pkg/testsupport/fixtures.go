package testsupport

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityselect/pkg/entity"
)

// City is the struct-backed fixture entity shared by package tests. Its
// primary key is an integer and its label property is "name".
type City struct {
	ID      int64
	Name    string
	Country string
}

var cityProperties = entity.Properties[City]{
	"id":      entity.Int64(func(c *City) int64 { return c.ID }, func(c *City, v int64) { c.ID = v }),
	"name":    entity.String(func(c *City) string { return c.Name }, func(c *City, v string) { c.Name = v }),
	"country": entity.String(func(c *City) string { return c.Country }, func(c *City, v string) { c.Country = v }),
}

func (c *City) Get(property string) (any, error) { return cityProperties.Get(c, property) }

func (c *City) Set(property string, value any) error {
	return cityProperties.Set(c, property, value)
}

func (c *City) String() string { return c.Name }

// CityType describes City for transformers and stores.
var CityType = entity.Type{
	Name: "cities",
	New:  func() entity.Entity { return &City{} },
}

// Tag is a fixture entity keyed by a string identifier, used to exercise
// UUID key strategies. It deliberately has no String method.
type Tag struct {
	ID    string
	Label string
}

var tagProperties = entity.Properties[Tag]{
	"id":    entity.String(func(t *Tag) string { return t.ID }, func(t *Tag, v string) { t.ID = v }),
	"label": entity.String(func(t *Tag) string { return t.Label }, func(t *Tag, v string) { t.Label = v }),
}

func (t *Tag) Get(property string) (any, error) { return tagProperties.Get(t, property) }

func (t *Tag) Set(property string, value any) error {
	return tagProperties.Set(t, property, value)
}

// TagType describes Tag for transformers and stores.
var TagType = entity.Type{
	Name: "tags",
	New:  func() entity.Entity { return &Tag{} },
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustCity asserts e is a *City.
func MustCity(t *testing.T, e entity.Entity) *City {
	t.Helper()
	city, ok := e.(*City)
	if !ok {
		t.Fatalf("expected *City, got %T", e)
	}
	return city
}

// AssertNoDiff fails the test when want and got differ.
func AssertNoDiff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
