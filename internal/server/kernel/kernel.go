package kernel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/core/service"
	"github.com/yndnr/modi-go/internal/infra/confloader"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
	"github.com/yndnr/modi-go/internal/telemetry/metric"
)

// Kernel is a booted configuration: the component catalog and the merged,
// finalized properties.
type Kernel struct {
	early   *EarlyContext
	catalog *service.Catalog
	props   *service.PropertiesService
	config  *domain.MergedConfiguration

	logger  logger.Logger
	metrics *metric.Registry
}

// BuildFinalConfiguration runs the second boot phase: scan components,
// declare their property sources, merge everything and finalize the load
// order. An early context can be finalized once; a second call fails with
// ErrPostInitMutation.
func BuildFinalConfiguration(ctx context.Context, early *EarlyContext) (*Kernel, error) {
	if early == nil {
		return nil, errors.New("kernel: nil early context")
	}
	p := early.params
	log := early.logger

	catalog := service.NewCatalog(early.ComponentsDir, early.OverrideDir,
		service.WithCatalogFs(p.Fs),
		service.WithCatalogLogger(log),
		service.WithCatalogMetrics(p.Metrics),
	)

	for _, unit := range catalog.Components() {
		spec := domain.SourceSpec{
			Name:     unit.PropertySourceName(),
			Location: unit.PropertiesPath,
			Rank:     *p.ComponentRank,
			Optional: true,
		}
		if err := early.merger.Register(spec); err != nil {
			return nil, fmt.Errorf("declare component %s: %w", unit.Name, err)
		}
	}

	cfg, err := early.merger.Merge(ctx)
	if err != nil {
		return nil, fmt.Errorf("merge properties: %w", err)
	}
	if err := early.merger.Finalize(); err != nil {
		return nil, err
	}

	props := service.NewPropertiesService(early.merger, cfg,
		service.WithPropertiesLogger(log),
		service.WithPropertiesMetrics(p.Metrics),
	)

	elapsed := time.Since(early.Started)
	p.Metrics.ObserveBoot(elapsed)
	log.Info("configuration finalized",
		"components", len(catalog.Components()),
		"sources", strings.Join(cfg.SourceNames(), ","),
		"keys", cfg.Len(),
		"unresolved", len(cfg.Unresolved()),
		"fingerprint", cfg.Fingerprint(),
		"elapsed", elapsed,
	)

	return &Kernel{
		early:   early,
		catalog: catalog,
		props:   props,
		config:  cfg,
		logger:  log,
		metrics: p.Metrics,
	}, nil
}

// Boot runs both phases.
func Boot(ctx context.Context, p StartupParams) (*Kernel, error) {
	early, err := BuildEarlyContext(p)
	if err != nil {
		return nil, err
	}
	return BuildFinalConfiguration(ctx, early)
}

// BootID identifies this boot.
func (k *Kernel) BootID() ulid.ULID {
	return k.early.BootID
}

// Early returns the first-phase context.
func (k *Kernel) Early() *EarlyContext {
	return k.early
}

// Catalog returns the component catalog.
func (k *Kernel) Catalog() *service.Catalog {
	return k.catalog
}

// Configuration returns the configuration merged at boot.
func (k *Kernel) Configuration() *domain.MergedConfiguration {
	return k.config
}

// Properties returns the host-facing properties accessor.
func (k *Kernel) Properties() *service.PropertiesService {
	return k.props
}

// MergedProperties re-reads the sources and returns the resolved view. A
// failed read yields an empty map and marks the properties degraded.
func (k *Kernel) MergedProperties() map[string]string {
	return k.props.MergedProperties()
}

// NamedSources returns each source's own, unexpanded values.
func (k *Kernel) NamedSources() map[string]map[string]string {
	return k.props.NamedSources()
}

// Resolve expands placeholders in s against the system properties and the
// merged configuration, with ${key:default} defaults.
func (k *Kernel) Resolve(s string) string {
	out, _ := k.ResolveWithKeys(s)
	return out
}

// ResolveWithKeys is Resolve that also returns, sorted and distinct, every
// key the expansion looked up, including keys reached through nested
// placeholders. Callers use it to decide whether the result must be masked.
func (k *Kernel) ResolveWithKeys(s string) (string, []string) {
	base := service.Chain(
		service.MapResolver(k.early.params.System),
		service.MapResolver(k.config.Values()),
	)
	var keys []string
	lookup := service.ResolverFunc(func(key string) (string, bool) {
		keys = append(keys, key)
		return base.Lookup(key)
	})

	out, missing := service.Expander{Defaults: true}.Expand(s, lookup)
	if len(missing) > 0 {
		k.logger.Debug("unresolved placeholders in value", "value", s, "keys", strings.Join(missing, ","))
	}
	slices.Sort(keys)
	return out, slices.Compact(keys)
}

// Specs returns every declared property source in flatten order, with
// locations as declared.
func (k *Kernel) Specs() []domain.SourceSpec {
	return k.early.merger.Specs()
}

// Starting registers the component bean sources with the host.
func (k *Kernel) Starting(registry service.BeanRegistry) error {
	return k.catalog.Starting(registry)
}

// Stopping records the shutdown.
func (k *Kernel) Stopping() {
	k.catalog.Stopping()
}

// SourcePaths returns the filesystem locations of every declared property
// source, loaded or not. Embedded sources are left out.
func (k *Kernel) SourcePaths() []string {
	var paths []string
	for _, spec := range k.early.Sources() {
		if strings.HasPrefix(spec.Location, confloader.ClasspathPrefix) {
			continue
		}
		paths = append(paths, spec.Location)
	}
	for _, unit := range k.catalog.Components() {
		paths = append(paths, unit.PropertiesPath)
	}
	return paths
}

// Watch reports changes to property sources through w. Nothing is
// reloaded: a change is logged as needing a restart. Paths whose directory
// does not exist are skipped. It returns how many paths are watched.
func (k *Kernel) Watch(w *confloader.Watcher) int {
	watched := 0
	for _, path := range k.SourcePaths() {
		if err := w.Watch(path); err != nil {
			k.logger.Debug("not watching property source", "path", path, "error", err)
			continue
		}
		watched++
	}
	w.OnChange(func(path string) {
		k.metrics.IncSourceChanges()
		k.logger.Warn("property source changed, restart required to apply", "path", path)
	})
	return watched
}
