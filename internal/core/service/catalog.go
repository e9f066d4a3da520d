package service

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
	"github.com/yndnr/modi-go/internal/telemetry/metric"
)

// BeanRegistry is the host container's side of bean source registration.
type BeanRegistry interface {
	RegisterBeanSource(src domain.BeanSource) error
}

// ============================================================================
// Discovery
// ============================================================================

// ScanComponents lists the direct subdirectories of root that carry a
// component descriptor, sorted by name.
//
// Subdirectories without a descriptor are skipped without a message. If root
// cannot be listed the failure is logged at WARN and the result is empty;
// discovery never fails the boot.
func ScanComponents(fsys afero.Fs, root string, log logger.Logger) []domain.ComponentUnit {
	if log == nil {
		log = logger.Default()
	}

	entries, err := afero.ReadDir(fsys, root)
	if err != nil {
		log.Warn("error locating components",
			"root", root,
			"error", domain.ErrDiscoveryIO.WithCause(err),
		)
		return []domain.ComponentUnit{}
	}

	units := make([]domain.ComponentUnit, 0, len(entries))
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())
		if !isDir(fsys, dir, entry) {
			continue
		}
		unit := domain.NewComponentUnit(dir)
		if !isFile(fsys, unit.DescriptorPath) {
			continue
		}
		units = append(units, unit)
	}

	slices.SortFunc(units, func(a, b domain.ComponentUnit) int {
		return strings.Compare(a.Name, b.Name)
	})
	return units
}

// AttachOverrides matches override descriptors in dir to components.
//
// An empty dir, or one that does not exist, means the override feature is
// absent and NoOverrides is returned. An existing directory always yields an
// *OverrideLayer, even when no file in it matches a component.
func AttachOverrides(fsys afero.Fs, components []domain.ComponentUnit, dir string, log logger.Logger) domain.Overrides {
	if log == nil {
		log = logger.Default()
	}
	if strings.TrimSpace(dir) == "" {
		return domain.NoOverrides{}
	}
	if ok, err := afero.IsDir(fsys, dir); err != nil || !ok {
		return domain.NoOverrides{}
	}

	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		log.Warn("error reading override directory",
			"dir", dir,
			"error", domain.ErrDiscoveryIO.WithCause(err),
		)
		return domain.NewOverrideLayer(dir, nil)
	}

	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name := domain.OverrideName(entry.Name()); name != "" {
			files[name] = filepath.Join(dir, entry.Name())
		}
	}

	overrides := make([]domain.OverrideEntry, 0, len(files))
	for _, c := range components {
		path, ok := files[c.Name]
		if !ok {
			continue
		}
		overrides = append(overrides, domain.OverrideEntry{Component: c.Name, DescriptorPath: path})
		delete(files, c.Name)
	}
	for name, path := range files {
		log.Debug("override has no matching component", "component", name, "path", path)
	}

	return domain.NewOverrideLayer(dir, overrides)
}

func isDir(fsys afero.Fs, path string, entry fs.FileInfo) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Mode()&fs.ModeSymlink == 0 {
		return false
	}
	ok, err := afero.IsDir(fsys, path)
	return err == nil && ok
}

func isFile(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}

// ============================================================================
// Catalog
// ============================================================================

// Catalog is the result of one component scan: the components in name
// order and the override layer, if any.
type Catalog struct {
	root        string
	overrideDir string
	components  []domain.ComponentUnit
	overrides   domain.Overrides

	fs      afero.Fs
	logger  logger.Logger
	metrics *metric.Registry
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogFs sets the filesystem to scan. Defaults to the OS.
func WithCatalogFs(fsys afero.Fs) CatalogOption {
	return func(c *Catalog) {
		c.fs = fsys
	}
}

// WithCatalogLogger sets the logger.
func WithCatalogLogger(l logger.Logger) CatalogOption {
	return func(c *Catalog) {
		c.logger = l
	}
}

// WithCatalogMetrics sets the metrics registry.
func WithCatalogMetrics(m *metric.Registry) CatalogOption {
	return func(c *Catalog) {
		c.metrics = m
	}
}

// NewCatalog scans root for components and overrideDir for overrides. An
// empty overrideDir disables overrides.
func NewCatalog(root, overrideDir string, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		root:        root,
		overrideDir: overrideDir,
		fs:          afero.NewOsFs(),
		logger:      logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.components = ScanComponents(c.fs, root, c.logger)
	c.overrides = AttachOverrides(c.fs, c.components, overrideDir, c.logger)

	c.metrics.SetComponents(len(c.components))
	if layer, ok := domain.LayerOf(c.overrides); ok {
		c.metrics.SetOverrides(layer.Len())
	}
	return c
}

// Root returns the scanned directory.
func (c *Catalog) Root() string {
	return c.root
}

// Components returns the components in name order.
func (c *Catalog) Components() []domain.ComponentUnit {
	return slices.Clone(c.components)
}

// Component returns the component called name.
func (c *Catalog) Component(name string) (domain.ComponentUnit, bool) {
	i := slices.IndexFunc(c.components, func(u domain.ComponentUnit) bool { return u.Name == name })
	if i < 0 {
		return domain.ComponentUnit{}, false
	}
	return c.components[i], true
}

// Overrides returns the override layer or NoOverrides.
func (c *Catalog) Overrides() domain.Overrides {
	return c.overrides
}

// BeanSources returns what Starting registers, in the same order.
func (c *Catalog) BeanSources() []domain.BeanSource {
	sources := make([]domain.BeanSource, 0, len(c.components)+1)
	for _, unit := range c.components {
		sources = append(sources, unit)
	}
	if layer, ok := domain.LayerOf(c.overrides); ok {
		sources = append(sources, layer)
	}
	return sources
}

// Starting hands every component to the registry in catalog order, then the
// override layer so its definitions supersede the components' own. The
// first registration failure stops the sequence.
func (c *Catalog) Starting(registry BeanRegistry) error {
	c.logger.Info("starting component catalog",
		"root", c.root,
		"components", len(c.components),
	)

	for _, src := range c.BeanSources() {
		c.logger.Info("loading component", "name", src.SourceName())
		if err := registry.RegisterBeanSource(src); err != nil {
			return domain.ErrBeanRegistration.
				WithDetails("bean source " + src.SourceName()).
				WithCause(err)
		}
	}
	return nil
}

// Stopping releases nothing; it only records the stop.
func (c *Catalog) Stopping() {
	c.logger.Info("stopping component catalog", "root", c.root)
}
