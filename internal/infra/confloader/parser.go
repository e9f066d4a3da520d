package confloader

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/magiconair/properties"
)

// PropertiesParser is a koanf parser for key=value .properties files.
//
// Placeholders are left as written; expansion is the merger's job because
// it needs to see every source first.
type PropertiesParser struct{}

// Unmarshal parses properties text into a flat map of strings.
func (PropertiesParser) Unmarshal(b []byte) (map[string]any, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(b)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}

	out := make(map[string]any, p.Len())
	for k, v := range p.Map() {
		out[k] = v
	}
	return out, nil
}

// Marshal writes a flat map as properties text, keys sorted.
func (PropertiesParser) Marshal(m map[string]any) ([]byte, error) {
	p := properties.NewProperties()
	p.DisableExpansion = true

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, _, err := p.Set(k, Stringify(m[k])); err != nil {
			return nil, fmt.Errorf("set %s: %w", k, err)
		}
	}

	var buf bytes.Buffer
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FlatYAMLParser parses YAML and flattens nested maps into dotted keys, so a
// YAML source merges key-for-key with .properties sources.
type FlatYAMLParser struct{}

// Unmarshal parses YAML and flattens it.
func (FlatYAMLParser) Unmarshal(b []byte) (map[string]any, error) {
	nested, err := yaml.Parser().Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	flat, _ := maps.Flatten(nested, nil, ".")

	out := make(map[string]any, len(flat))
	for k, v := range flat {
		out[k] = Stringify(v)
	}
	return out, nil
}

// Marshal writes a flat map of dotted keys back out as nested YAML.
func (FlatYAMLParser) Marshal(m map[string]any) ([]byte, error) {
	return yaml.Parser().Marshal(maps.Unflatten(m, "."))
}

// Stringify renders a parsed value the way a properties file would hold it.
// Lists are joined with commas.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
