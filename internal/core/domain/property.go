package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spaolacci/murmur3"
)

// SystemProperties are the early-bound values available before any property
// file is opened: process environment and explicit -D definitions.
type SystemProperties map[string]string

// Lookup returns the value for key.
func (s SystemProperties) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Clone returns an independent copy.
func (s SystemProperties) Clone() SystemProperties {
	if s == nil {
		return SystemProperties{}
	}
	return maps.Clone(s)
}

// SourceSpec declares a property source before it is loaded.
type SourceSpec struct {
	// Name identifies the source; unique within one merge.
	Name string `koanf:"name" json:"name"`
	// Location is a file path or "classpath:<name>". It may contain
	// placeholders resolved against system properties.
	Location string `koanf:"location" json:"location"`
	// Rank orders sources; higher ranks override lower ones. Equal ranks
	// keep declaration order.
	Rank int `koanf:"rank" json:"rank"`
	// Optional sources are skipped when missing.
	Optional bool `koanf:"optional" json:"optional"`
}

// Validate checks the declaration is usable.
func (s SourceSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidSource.WithDetails("source name is empty")
	}
	if strings.TrimSpace(s.Location) == "" {
		return ErrInvalidSource.WithDetails(fmt.Sprintf("source %q has no location", s.Name))
	}
	return nil
}

// PropertySource is one loaded, named set of properties. Values hold the
// text as read, before any placeholder expansion.
type PropertySource struct {
	Name     string            `json:"name"`
	Location string            `json:"location"`
	Rank     int               `json:"rank"`
	Values   map[string]string `json:"-"`
}

// MergedConfiguration is the result of one merge. It never changes after
// construction.
type MergedConfiguration struct {
	values     map[string]string
	raw        map[string]string
	sources    map[string]map[string]string
	order      []string
	unresolved []string
}

// NewMergedConfiguration assembles a configuration. sources must already be
// in flatten order. All inputs are copied.
func NewMergedConfiguration(values, raw map[string]string, sources []PropertySource, unresolved []string) *MergedConfiguration {
	cfg := &MergedConfiguration{
		values:     maps.Clone(values),
		raw:        maps.Clone(raw),
		sources:    make(map[string]map[string]string, len(sources)),
		order:      make([]string, 0, len(sources)),
		unresolved: slices.Clone(unresolved),
	}
	if cfg.values == nil {
		cfg.values = map[string]string{}
	}
	if cfg.raw == nil {
		cfg.raw = map[string]string{}
	}
	for _, src := range sources {
		cfg.sources[src.Name] = maps.Clone(src.Values)
		cfg.order = append(cfg.order, src.Name)
	}
	slices.Sort(cfg.unresolved)
	return cfg
}

// EmptyConfiguration returns a configuration with no sources and no values.
func EmptyConfiguration() *MergedConfiguration {
	return NewMergedConfiguration(nil, nil, nil, nil)
}

// Get returns the resolved value of key.
func (c *MergedConfiguration) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString returns the resolved value of key, or def when absent.
func (c *MergedConfiguration) GetString(key, def string) string {
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

// Values returns a copy of the flattened, resolved view.
func (c *MergedConfiguration) Values() map[string]string {
	return maps.Clone(c.values)
}

// Raw returns a copy of the flattened view before placeholder expansion.
func (c *MergedConfiguration) Raw() map[string]string {
	return maps.Clone(c.raw)
}

// Source returns a copy of one source's own values, unexpanded.
func (c *MergedConfiguration) Source(name string) (map[string]string, bool) {
	v, ok := c.sources[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(v), true
}

// Sources returns a copy of every source's own values keyed by source name.
func (c *MergedConfiguration) Sources() map[string]map[string]string {
	out := make(map[string]map[string]string, len(c.sources))
	for name, values := range c.sources {
		out[name] = maps.Clone(values)
	}
	return out
}

// SourceNames returns source names in flatten order, lowest precedence first.
func (c *MergedConfiguration) SourceNames() []string {
	return slices.Clone(c.order)
}

// Unresolved returns the placeholder keys that no source could resolve.
func (c *MergedConfiguration) Unresolved() []string {
	return slices.Clone(c.unresolved)
}

// Keys returns the flattened keys in sorted order.
func (c *MergedConfiguration) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Len returns the number of flattened keys.
func (c *MergedConfiguration) Len() int {
	return len(c.values)
}

// Fingerprint is a stable hash of the resolved view, used to tell two boots
// apart in logs.
func (c *MergedConfiguration) Fingerprint() string {
	h := murmur3.New64()
	for _, k := range c.Keys() {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(c.values[k]))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
