package model

import "strings"

const (
	relationshipTypeKey       = "relationship.type"
	relationshipTargetKey     = "relationship.target"
	relationshipCardKey       = "relationship.cardinality"
	relationshipForeignKeyKey = "relationship.foreignKey"
	relationshipSourceKey     = "relationship.sourceField"
)

// RelationshipFromMetadata hydrates a Relationship from flattened metadata.
// It reports false when the type or target is missing or the kind is not
// recognised.
func RelationshipFromMetadata(metadata map[string]string) (*Relationship, bool) {
	if len(metadata) == 0 {
		return nil, false
	}

	kind, ok := normalizeRelationshipKind(metadata[relationshipTypeKey])
	if !ok {
		return nil, false
	}

	target := strings.TrimSpace(metadata[relationshipTargetKey])
	if target == "" {
		return nil, false
	}

	cardinality := strings.TrimSpace(metadata[relationshipCardKey])
	if cardinality == "" {
		cardinality = deriveCardinality(kind)
	}

	return &Relationship{
		Kind:        kind,
		Target:      target,
		Cardinality: strings.ToLower(cardinality),
		ForeignKey:  strings.TrimSpace(metadata[relationshipForeignKeyKey]),
		SourceField: strings.TrimSpace(metadata[relationshipSourceKey]),
	}, true
}

// SyncRelationshipMetadata mirrors rel into metadata, allocating the map when
// needed. Optional keys are removed when rel leaves them empty.
func SyncRelationshipMetadata(metadata map[string]string, rel *Relationship) map[string]string {
	if rel == nil {
		return metadata
	}
	if metadata == nil {
		metadata = make(map[string]string)
	}
	cardinality := rel.Cardinality
	if cardinality == "" {
		cardinality = deriveCardinality(rel.Kind)
	}
	metadata[relationshipTypeKey] = string(rel.Kind)
	metadata[relationshipTargetKey] = rel.Target
	metadata[relationshipCardKey] = cardinality

	if rel.ForeignKey != "" {
		metadata[relationshipForeignKeyKey] = rel.ForeignKey
	} else {
		delete(metadata, relationshipForeignKeyKey)
	}
	if rel.SourceField != "" {
		metadata[relationshipSourceKey] = rel.SourceField
	} else {
		delete(metadata, relationshipSourceKey)
	}
	return metadata
}

func normalizeRelationshipKind(raw string) (RelationshipKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "belongsto":
		return RelationshipBelongsTo, true
	case "hasone":
		return RelationshipHasOne, true
	case "hasmany":
		return RelationshipHasMany, true
	default:
		return "", false
	}
}

func deriveCardinality(kind RelationshipKind) string {
	switch kind {
	case RelationshipHasMany:
		return "many"
	case RelationshipBelongsTo, RelationshipHasOne:
		return "one"
	default:
		return ""
	}
}
