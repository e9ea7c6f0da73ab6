package entity_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/testsupport"
)

func TestProperties_GetSet(t *testing.T) {
	city := &testsupport.City{}

	if err := city.Set("id", "7"); err != nil {
		t.Fatalf("set id: %v", err)
	}
	if err := city.Set("name", "Paris"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if city.ID != 7 || city.Name != "Paris" {
		t.Fatalf("unexpected city: %#v", city)
	}

	got, err := city.Get("id")
	if err != nil {
		t.Fatalf("get id: %v", err)
	}
	if got != int64(7) {
		t.Fatalf("expected int64 7, got %#v", got)
	}
}

func TestProperties_UnknownProperty(t *testing.T) {
	city := &testsupport.City{}

	_, err := city.Get("population")
	if !errors.Is(err, entity.ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
	var propErr *entity.PropertyError
	if !errors.As(err, &propErr) || propErr.Property != "population" {
		t.Fatalf("expected PropertyError for population, got %#v", err)
	}

	if err := city.Set("population", 1); !errors.Is(err, entity.ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty on set, got %v", err)
	}
}

func TestProperties_ReadOnlyAndCoercionErrors(t *testing.T) {
	type item struct{ code string }
	props := entity.Properties[item]{
		"code": entity.String(func(i *item) string { return i.code }, nil),
		"qty":  entity.Int64(func(*item) int64 { return 0 }, func(*item, int64) {}),
	}

	obj := &item{code: "x"}
	if err := props.Set(obj, "code", "y"); !errors.Is(err, entity.ErrReadOnlyProperty) {
		t.Fatalf("expected ErrReadOnlyProperty, got %v", err)
	}
	if err := props.Set(obj, "qty", "many"); err == nil {
		t.Fatalf("expected coercion error for non-numeric qty")
	}
	if names := props.Names(); len(names) != 2 || names[0] != "code" || names[1] != "qty" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestType_Instantiate(t *testing.T) {
	instance, err := testsupport.CityType.Instantiate()
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if _, ok := instance.(*testsupport.City); !ok {
		t.Fatalf("expected *City, got %T", instance)
	}

	if _, err := (entity.Type{Name: "ghost"}).Instantiate(); !errors.Is(err, entity.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType for missing factory, got %v", err)
	}

	nilFactory := entity.Type{Name: "nil", New: func() entity.Entity {
		var c *testsupport.City
		return c
	}}
	if _, err := nilFactory.Instantiate(); !errors.Is(err, entity.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType for typed nil instance, got %v", err)
	}
}

func TestIsNilAndDefaultString(t *testing.T) {
	var typedNil *testsupport.City
	if !entity.IsNil(nil) || !entity.IsNil(typedNil) {
		t.Fatalf("expected nil and typed nil to be absent")
	}
	if entity.IsNil(&testsupport.City{}) {
		t.Fatalf("expected non-nil city")
	}

	if got := entity.DefaultString(&testsupport.City{Name: "Lyon"}); got != "Lyon" {
		t.Fatalf("expected Stringer output, got %q", got)
	}
	if got := entity.DefaultString(&testsupport.Tag{ID: "a", Label: "b"}); got != "&{a b}" {
		t.Fatalf("expected fmt.Sprint fallback, got %q", got)
	}
}

func TestRecord(t *testing.T) {
	rec := entity.NewRecord("cities", map[string]any{"id": int64(3), "name": "Rome"})

	if err := rec.Set("country", "IT"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := rec.Get("missing"); got != nil {
		t.Fatalf("expected nil for missing property, got %#v", got)
	}
	if got := rec.String(); got != "cities{country=IT id=3 name=Rome}" {
		t.Fatalf("unexpected string form: %q", got)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["name"] != "Rome" {
		t.Fatalf("unexpected payload: %s", payload)
	}

	typ := entity.RecordType("tags")
	blank, err := typ.Instantiate()
	if err != nil {
		t.Fatalf("instantiate record: %v", err)
	}
	if blank.(*entity.Record).TypeName() != "tags" {
		t.Fatalf("unexpected record type %q", blank.(*entity.Record).TypeName())
	}
}

func TestRegistry(t *testing.T) {
	reg, err := entity.NewRegistry(testsupport.CityType)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := reg.Register(testsupport.CityType); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	reg.MustRegister(testsupport.TagType)

	if _, ok := reg.Lookup(" cities "); !ok {
		t.Fatalf("expected cities lookup to succeed")
	}
	if _, ok := reg.Lookup("countries"); ok {
		t.Fatalf("did not expect countries to resolve")
	}
	if names := reg.Names(); len(names) != 2 || names[0] != "cities" || names[1] != "tags" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestFormatValueAndToInt64(t *testing.T) {
	cases := map[string]any{
		"":      nil,
		"7":     int64(7),
		"12":    uint8(12),
		"1.5":   1.5,
		"true":  true,
		"bytes": []byte("bytes"),
	}
	for want, input := range cases {
		if got := entity.FormatValue(input); got != want {
			t.Fatalf("FormatValue(%#v) = %q, want %q", input, got, want)
		}
	}

	if v, err := entity.ToInt64(" 42 "); err != nil || v != 42 {
		t.Fatalf("ToInt64 string = %d, %v", v, err)
	}
	if v, err := entity.ToInt64(float64(9)); err != nil || v != 9 {
		t.Fatalf("ToInt64 float = %d, %v", v, err)
	}
	if _, err := entity.ToInt64(2.5); err == nil {
		t.Fatalf("expected error for fractional float")
	}
	if _, err := entity.ToInt64(struct{}{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := entity.ToInt64(math.Pow(2, 63)); err == nil {
		t.Fatalf("expected error for 2^63")
	}
	if v, err := entity.ToInt64(-math.Pow(2, 63)); err != nil || v != math.MinInt64 {
		t.Fatalf("ToInt64 -2^63 = %d, %v", v, err)
	}
}
