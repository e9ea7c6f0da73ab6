package model

// WidgetSelect is the widget identifier renderers use for select inputs.
const WidgetSelect = "select"

// RelationshipKind enumerates the supported relationship shapes.
type RelationshipKind string

const (
	RelationshipBelongsTo RelationshipKind = "belongsTo"
	RelationshipHasOne    RelationshipKind = "hasOne"
	RelationshipHasMany   RelationshipKind = "hasMany"
)

// Relationship describes the entity a field points at.
type Relationship struct {
	Kind        RelationshipKind `json:"kind"`
	Target      string           `json:"target"`
	Cardinality string           `json:"cardinality"`
	ForeignKey  string           `json:"foreignKey,omitempty"`
	SourceField string           `json:"sourceField,omitempty"`
}

// Option is a single select option.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field models a select input bound to an entity relationship.
type Field struct {
	Name         string            `json:"name"`
	Label        string            `json:"label,omitempty"`
	Required     bool              `json:"required"`
	Relationship *Relationship     `json:"relationship,omitempty"`
	Options      []Option          `json:"options,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	UIHints      map[string]string `json:"uiHints,omitempty"`
}
