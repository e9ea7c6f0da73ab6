package transformer

import (
	"sort"

	"github.com/goliatone/go-entityselect/pkg/model"
)

// DisplayValue maps an encoded select key to its label. Transform always
// produces zero or one entries.
type DisplayValue map[string]string

// NewDisplayValue returns a single-entry DisplayValue.
func NewDisplayValue(key, label string) DisplayValue {
	return DisplayValue{key: label}
}

// Empty reports whether no option is selected.
func (d DisplayValue) Empty() bool {
	return len(d) == 0
}

// Key returns the encoded key of the first entry in key order.
func (d DisplayValue) Key() string {
	keys := d.sortedKeys()
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// Label returns the label paired with Key.
func (d DisplayValue) Label() string {
	return d[d.Key()]
}

// Options returns the entries as select options, ordered by key.
func (d DisplayValue) Options() []model.Option {
	keys := d.sortedKeys()
	if len(keys) == 0 {
		return nil
	}
	out := make([]model.Option, 0, len(keys))
	for _, key := range keys {
		out = append(out, model.Option{Value: key, Label: d[key]})
	}
	return out
}

func (d DisplayValue) sortedKeys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
