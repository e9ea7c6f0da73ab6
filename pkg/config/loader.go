// Package config loads named entity select definitions from JSON or YAML
// files. A definition carries everything needed to build a transformer, the
// options endpoint and, for the SQLite store, the table mapping:
//
//	selects:
//	  city:
//	    type: cities
//	    textProperty: name
//	    primaryKey: id
//	    newTagPrefix: "__"
//	    newTagText: " (NEW)"
//	    allowNew: true
//	    sanitize: true
//	    endpoint: /api/cities
//	    limit: 20
//	    columns: [name, country]
//	    keyStrategy: autoincrement
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-entityselect/pkg/entity"
	"github.com/goliatone/go-entityselect/pkg/persistence"
	"github.com/goliatone/go-entityselect/pkg/transformer"
)

// Definition is a normalised select definition.
type Definition struct {
	Name         string
	Source       string
	Type         string
	TextProperty string
	PrimaryKey   string
	NewTagPrefix string
	// NewTagText is nil when the file leaves the transformer default.
	NewTagText  *string
	AllowNew    bool
	Sanitize    bool
	Endpoint    string
	Limit       int
	Columns     []string
	KeyStrategy persistence.KeyStrategy
}

// TransformerOptions resolves the definition's type in reg and returns the
// matching transformer options.
func (d Definition) TransformerOptions(reg *entity.Registry) ([]transformer.OptionFn, error) {
	typ, ok := reg.Lookup(d.Type)
	if !ok {
		return nil, fmt.Errorf("config: select %q (file %s): type %q is not registered", d.Name, d.Source, d.Type)
	}

	fns := []transformer.OptionFn{
		transformer.WithType(typ),
		transformer.WithTextProperty(d.TextProperty),
		transformer.WithPrimaryKey(d.PrimaryKey),
		transformer.WithNewTagPrefix(d.NewTagPrefix),
		transformer.WithAllowNew(d.AllowNew),
	}
	if d.NewTagText != nil {
		fns = append(fns, transformer.WithNewTagText(*d.NewTagText))
	}
	if d.Sanitize {
		fns = append(fns, transformer.WithSanitizer(transformer.SanitizeLabel))
	}
	return fns, nil
}

// Store holds definitions keyed by select name.
type Store struct {
	selects map[string]Definition
}

// Select returns the definition registered under name.
func (s *Store) Select(name string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	def, ok := s.selects[strings.TrimSpace(name)]
	return def, ok
}

// Names returns the select names in lexical order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.selects))
	for name := range s.selects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the store holds any definitions.
func (s *Store) Empty() bool {
	return s == nil || len(s.selects) == 0
}

type documentFile struct {
	Selects map[string]selectFile `json:"selects" yaml:"selects"`
}

type selectFile struct {
	Type         string   `json:"type" yaml:"type"`
	TextProperty string   `json:"textProperty" yaml:"textProperty"`
	PrimaryKey   string   `json:"primaryKey" yaml:"primaryKey"`
	NewTagPrefix string   `json:"newTagPrefix" yaml:"newTagPrefix"`
	NewTagText   *string  `json:"newTagText" yaml:"newTagText"`
	AllowNew     *bool    `json:"allowNew" yaml:"allowNew"`
	Sanitize     *bool    `json:"sanitize" yaml:"sanitize"`
	Endpoint     string   `json:"endpoint" yaml:"endpoint"`
	Limit        int      `json:"limit" yaml:"limit"`
	Columns      []string `json:"columns" yaml:"columns"`
	KeyStrategy  string   `json:"keyStrategy" yaml:"keyStrategy"`
}

// LoadFS walks fsys and parses every .json, .yaml and .yml file. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{selects: make(map[string]Definition)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawName, raw := range doc.Selects {
			name := strings.TrimSpace(rawName)
			if name == "" {
				return fmt.Errorf("config: file %s defines a select with an empty name", path)
			}
			if existing, exists := store.selects[name]; exists {
				return fmt.Errorf("config: duplicate select %q (files %s and %s)", name, existing.Source, path)
			}
			def, err := normaliseSelect(raw, name, path)
			if err != nil {
				return err
			}
			store.selects[name] = def
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("config: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("config: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("config: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseSelect(raw selectFile, name, source string) (Definition, error) {
	def := Definition{
		Name:         name,
		Source:       source,
		Type:         strings.TrimSpace(raw.Type),
		TextProperty: strings.TrimSpace(raw.TextProperty),
		PrimaryKey:   strings.TrimSpace(raw.PrimaryKey),
		NewTagPrefix: raw.NewTagPrefix,
		NewTagText:   raw.NewTagText,
		AllowNew:     true,
		Sanitize:     true,
		Endpoint:     strings.TrimSpace(raw.Endpoint),
		Limit:        raw.Limit,
	}
	if def.Type == "" {
		return Definition{}, fmt.Errorf("config: select %q (file %s) is missing a type", name, source)
	}
	if def.PrimaryKey == "" {
		def.PrimaryKey = transformer.DefaultPrimaryKey
	}
	if def.NewTagPrefix == "" {
		def.NewTagPrefix = transformer.DefaultNewTagPrefix
	}
	if raw.AllowNew != nil {
		def.AllowNew = *raw.AllowNew
	}
	if raw.Sanitize != nil {
		def.Sanitize = *raw.Sanitize
	}
	if def.Limit < 0 {
		return Definition{}, fmt.Errorf("config: select %q (file %s) has a negative limit", name, source)
	}
	if def.AllowNew && def.TextProperty == "" {
		return Definition{}, fmt.Errorf("config: select %q (file %s) allows new entries but has no textProperty", name, source)
	}

	strategy, err := persistence.ParseKeyStrategy(raw.KeyStrategy)
	if err != nil {
		return Definition{}, fmt.Errorf("config: select %q (file %s): %w", name, source, err)
	}
	def.KeyStrategy = strategy

	for idx, column := range raw.Columns {
		trimmed := strings.TrimSpace(column)
		if trimmed == "" {
			return Definition{}, fmt.Errorf("config: select %q (file %s) has an empty column at index %d", name, source, idx)
		}
		def.Columns = append(def.Columns, trimmed)
	}
	if len(def.Columns) == 0 && def.TextProperty != "" {
		def.Columns = []string{def.TextProperty}
	}
	return def, nil
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
