package model

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const endpointMetadataPrefix = "relationship.endpoint."

// EndpointConfig describes the remote options endpoint a select queries.
// Zero values are omitted when flattened to metadata.
type EndpointConfig struct {
	URL           string
	Method        string
	LabelField    string
	ValueField    string
	ResultsPath   string
	Params        map[string]string
	DynamicParams map[string]string
	Mapping       EndpointMapping
	SubmitAs      string
}

// EndpointMapping remaps response payload paths onto option value/label.
type EndpointMapping struct {
	Value string
	Label string
}

// EndpointOverride attaches endpoint metadata to the field at FieldPath of
// the form identified by OperationID.
type EndpointOverride struct {
	OperationID string
	FieldPath   string
	Endpoint    EndpointConfig
}

// Validate reports missing identifiers.
func (o EndpointOverride) Validate() error {
	if strings.TrimSpace(o.OperationID) == "" {
		return errors.New("model: endpoint override missing operation id")
	}
	if strings.TrimSpace(o.FieldPath) == "" {
		return fmt.Errorf("model: endpoint override %q missing field path", o.OperationID)
	}
	if strings.TrimSpace(o.Endpoint.URL) == "" {
		return fmt.Errorf("model: endpoint override %q for %s missing endpoint url", o.OperationID, o.FieldPath)
	}
	return nil
}

// FlattenEndpoint converts cfg into relationship.endpoint.* metadata. It
// returns nil when cfg carries no values.
func FlattenEndpoint(cfg EndpointConfig) map[string]string {
	meta := make(map[string]string)

	add := func(key, value string) {
		if value == "" {
			return
		}
		meta[endpointMetadataPrefix+key] = value
	}

	add("url", strings.TrimSpace(cfg.URL))
	add("method", strings.ToUpper(strings.TrimSpace(cfg.Method)))
	add("labelField", strings.TrimSpace(cfg.LabelField))
	add("valueField", strings.TrimSpace(cfg.ValueField))
	add("resultsPath", strings.TrimSpace(cfg.ResultsPath))
	add("submitAs", strings.TrimSpace(cfg.SubmitAs))

	for _, key := range sortedKeys(cfg.Params) {
		add("params."+key, cfg.Params[key])
	}
	for _, key := range sortedKeys(cfg.DynamicParams) {
		add("dynamicParams."+key, cfg.DynamicParams[key])
	}
	if refs := extractFieldReferences(cfg.DynamicParams); len(refs) > 0 {
		add("refreshOn", strings.Join(refs, ","))
	}

	add("mapping.value", cfg.Mapping.Value)
	add("mapping.label", cfg.Mapping.Label)

	if len(meta) == 0 {
		return nil
	}
	return meta
}

// HasEndpointMetadata reports whether any relationship.endpoint.* key is set.
func HasEndpointMetadata(metadata map[string]string) bool {
	for key := range metadata {
		if strings.HasPrefix(key, endpointMetadataPrefix) {
			return true
		}
	}
	return false
}

// ApplyEndpoint merges cfg into the field metadata unless the field already
// declares an endpoint. It reports whether metadata was written.
func ApplyEndpoint(field *Field, cfg EndpointConfig) bool {
	if field == nil || HasEndpointMetadata(field.Metadata) {
		return false
	}
	meta := FlattenEndpoint(cfg)
	if len(meta) == 0 {
		return false
	}
	field.Metadata = MergeMetadata(field.Metadata, meta)
	return true
}

// MergeMetadata copies src into dst, allocating dst when needed.
func MergeMetadata(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var fieldPlaceholderPattern = regexp.MustCompile(`\{\{\s*field:([^\}\s]+)\s*\}\}`)

func extractFieldReferences(params map[string]string) []string {
	if len(params) == 0 {
		return nil
	}
	result := make(map[string]struct{})
	for _, value := range params {
		for _, match := range fieldPlaceholderPattern.FindAllStringSubmatch(value, -1) {
			if len(match) < 2 {
				continue
			}
			if name := strings.TrimSpace(match[1]); name != "" {
				result[name] = struct{}{}
			}
		}
	}
	if len(result) == 0 {
		return nil
	}
	out := make([]string, 0, len(result))
	for name := range result {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
