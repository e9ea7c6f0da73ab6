// Package entityselect wires an EntityTransformer into an HTTP surface: a
// JSON options endpoint that searches entities for a select input, form
// binding that resolves submitted keys, and field decoration that points a
// select widget at the endpoint.
//
// The options endpoint responds to GET and HEAD requests and returns
// {"data":[{"value":"<key>","label":"<label>"}]} where every value is the
// forward transform of a search hit. Values typed by the user that start with
// the configured prefix are bound as new, unsaved entities.
package entityselect
