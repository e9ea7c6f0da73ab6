// Package entity defines the contracts the select binding layer needs from
// application records: named property access (Accessor), instantiation of new
// records (Type) and a small Registry to resolve types by name.
//
// Property access is explicit. Struct-backed entities usually delegate to a
// Properties table built once at package init, so the configurable label and
// primary-key property names are resolved without reflection:
//
//	var cityProperties = entity.Properties[City]{
//		"id":   entity.Int64(func(c *City) int64 { return c.ID }, func(c *City, v int64) { c.ID = v }),
//		"name": entity.String(func(c *City) string { return c.Name }, func(c *City, v string) { c.Name = v }),
//	}
//
//	func (c *City) Get(name string) (any, error)        { return cityProperties.Get(c, name) }
//	func (c *City) Set(name string, value any) error    { return cityProperties.Set(c, name, value) }
//
// Record is a map-backed Entity for schema-less callers such as the CLI.
package entity
