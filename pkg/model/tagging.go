package model

import (
	"strconv"
	"strings"
)

const tagsMetadataPrefix = "relationship.tags."

// TaggingConfig tells the select widget how to submit user-typed entries.
type TaggingConfig struct {
	Enabled bool
	Prefix  string
	Suffix  string
}

// FlattenTagging converts cfg into relationship.tags.* metadata. Disabled
// tagging only records enabled=false.
func FlattenTagging(cfg TaggingConfig) map[string]string {
	meta := map[string]string{
		tagsMetadataPrefix + "enabled": strconv.FormatBool(cfg.Enabled),
	}
	if !cfg.Enabled {
		return meta
	}
	if cfg.Prefix != "" {
		meta[tagsMetadataPrefix+"prefix"] = cfg.Prefix
	}
	if cfg.Suffix != "" {
		meta[tagsMetadataPrefix+"suffix"] = cfg.Suffix
	}
	return meta
}

// TaggingFromMetadata reads relationship.tags.* metadata back.
func TaggingFromMetadata(metadata map[string]string) (TaggingConfig, bool) {
	raw, ok := metadata[tagsMetadataPrefix+"enabled"]
	if !ok {
		return TaggingConfig{}, false
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return TaggingConfig{}, false
	}
	return TaggingConfig{
		Enabled: enabled,
		Prefix:  metadata[tagsMetadataPrefix+"prefix"],
		Suffix:  metadata[tagsMetadataPrefix+"suffix"],
	}, true
}
