// Package transformer converts between persisted entities and the scalar
// values an HTML select submits.
//
// EntityTransformer is the single-select transformer. Transform renders an
// entity as a one-entry DisplayValue {key: label}; tracked entities use their
// primary key, untracked (new) entities use NewTagPrefix+label as the key and
// get NewTagText appended to the label. ReverseTransform reads a submitted key
// back: prefixed values produce a new, unsaved entity whose label property is
// the remainder; anything else is looked up by primary key and must match
// exactly one record, otherwise a *TransformationFailedError is returned for
// the form's validation layer to show next to the field.
//
// Persisting entities created from new entries is left to the caller.
package transformer
