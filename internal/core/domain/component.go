package domain

import (
	"path/filepath"
	"strings"
)

// Layout of a component directory, relative to the component root.
const (
	// DescriptorFile is the bean-source descriptor every component must carry.
	DescriptorFile = "WEB-INF/components.xml"

	// LibDir holds the component's libraries.
	LibDir = "WEB-INF/lib"

	// PropertiesFile is the optional properties file a component contributes
	// to the merge.
	PropertiesFile = "WEB-INF/components.properties"

	// OverrideExt is the extension of override descriptors. An override for
	// component "foo" lives at <overrideDir>/foo.xml.
	OverrideExt = ".xml"

	// ComponentSourcePrefix prefixes the property source name of a component.
	ComponentSourcePrefix = "component:"

	// OverrideSourceName is the bean source name of the override layer.
	OverrideSourceName = "overrides"
)

// BeanSource is anything the host container can derive bean definitions from.
type BeanSource interface {
	// SourceName identifies the bean source in logs and registries.
	SourceName() string
	// Descriptors returns descriptor file paths in registration order.
	Descriptors() []string
}

// ComponentUnit is one discovered component directory.
type ComponentUnit struct {
	Name           string `json:"name"`
	Path           string `json:"path" table:"wide"`
	DescriptorPath string `json:"descriptor"`
	LibPath        string `json:"lib" table:"wide"`
	PropertiesPath string `json:"properties" table:"wide"`
}

// NewComponentUnit builds a unit rooted at dir. It does not touch the
// filesystem; validation belongs to the catalog.
func NewComponentUnit(dir string) ComponentUnit {
	dir = filepath.Clean(dir)
	return ComponentUnit{
		Name:           filepath.Base(dir),
		Path:           dir,
		DescriptorPath: filepath.Join(dir, filepath.FromSlash(DescriptorFile)),
		LibPath:        filepath.Join(dir, filepath.FromSlash(LibDir)),
		PropertiesPath: filepath.Join(dir, filepath.FromSlash(PropertiesFile)),
	}
}

// SourceName implements BeanSource.
func (c ComponentUnit) SourceName() string {
	return c.Name
}

// Descriptors implements BeanSource.
func (c ComponentUnit) Descriptors() []string {
	return []string{c.DescriptorPath}
}

// PropertySourceName is the name under which the unit's properties file is
// merged.
func (c ComponentUnit) PropertySourceName() string {
	return ComponentSourcePrefix + c.Name
}

// OverrideEntry points a component at its override descriptor.
type OverrideEntry struct {
	Component      string `json:"component"`
	DescriptorPath string `json:"descriptor"`
}

// Overrides is the override layer of a catalog. It is either NoOverrides,
// meaning the feature is not configured, or *OverrideLayer, which may still
// hold zero entries.
type Overrides interface {
	isOverrides()
}

// NoOverrides marks an absent override layer.
type NoOverrides struct{}

func (NoOverrides) isOverrides() {}

// OverrideLayer maps component names to override descriptors.
type OverrideLayer struct {
	dir     string
	entries []OverrideEntry
}

// NewOverrideLayer returns a present layer rooted at dir. Entries keep the
// order given, which callers make match catalog order.
func NewOverrideLayer(dir string, entries []OverrideEntry) *OverrideLayer {
	cp := make([]OverrideEntry, len(entries))
	copy(cp, entries)
	return &OverrideLayer{dir: dir, entries: cp}
}

func (*OverrideLayer) isOverrides() {}

// Dir returns the override directory.
func (l *OverrideLayer) Dir() string {
	return l.dir
}

// Len returns the number of matched overrides.
func (l *OverrideLayer) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the entries in catalog order.
func (l *OverrideLayer) Entries() []OverrideEntry {
	cp := make([]OverrideEntry, len(l.entries))
	copy(cp, l.entries)
	return cp
}

// Lookup returns the override for a component, if any.
func (l *OverrideLayer) Lookup(component string) (OverrideEntry, bool) {
	for _, e := range l.entries {
		if e.Component == component {
			return e, true
		}
	}
	return OverrideEntry{}, false
}

// SourceName implements BeanSource.
func (l *OverrideLayer) SourceName() string {
	return OverrideSourceName
}

// Descriptors implements BeanSource.
func (l *OverrideLayer) Descriptors() []string {
	paths := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		paths = append(paths, e.DescriptorPath)
	}
	return paths
}

// LayerOf unwraps o. ok is false when the override feature is absent.
func LayerOf(o Overrides) (layer *OverrideLayer, ok bool) {
	layer, ok = o.(*OverrideLayer)
	if ok && layer == nil {
		return nil, false
	}
	return layer, ok
}

// OverrideName returns the component name an override file refers to, or
// "" if the file is not an override descriptor.
func OverrideName(fileName string) string {
	if !strings.HasSuffix(fileName, OverrideExt) {
		return ""
	}
	return strings.TrimSuffix(fileName, OverrideExt)
}
