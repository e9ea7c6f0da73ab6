// Package model defines the form field model the select component decorates:
// relationship descriptors, option values, and the flattened metadata keys
// (relationship.*, relationship.endpoint.*, relationship.tags.*) that
// renderers read to wire a remote, taggable select widget. Metadata values are
// plain strings so JSON snapshots stay deterministic.
package model
