package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/infra/confloader"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
	"github.com/yndnr/modi-go/internal/telemetry/metric"
)

// Merger loads named property sources and folds them into one
// configuration.
//
// Sources are declared with Register and may be re-ranked until Finalize.
// After that the declaration is frozen and every mutating call returns
// ErrPostInitMutation. Merge may be called any number of times; each call
// reads the sources again and builds a new configuration.
type Merger struct {
	reader *confloader.SourceReader
	system domain.SystemProperties
	specs  []domain.SourceSpec

	finalized atomic.Bool

	logger  logger.Logger
	metrics *metric.Registry
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) MergerOption {
	return func(m *Merger) {
		m.logger = l
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metric.Registry) MergerOption {
	return func(m *Merger) {
		m.metrics = r
	}
}

// WithReader sets the source reader. Defaults to one on the OS filesystem
// with no classpath.
func WithReader(r *confloader.SourceReader) MergerOption {
	return func(m *Merger) {
		m.reader = r
	}
}

// NewMerger creates a merger resolving against system.
func NewMerger(system domain.SystemProperties, opts ...MergerOption) *Merger {
	m := &Merger{
		system: system.Clone(),
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.reader == nil {
		m.reader = confloader.NewSourceReader()
	}
	return m
}

// System returns a copy of the system properties.
func (m *Merger) System() domain.SystemProperties {
	return m.system.Clone()
}

// Register declares a source. Names must be unique.
func (m *Merger) Register(spec domain.SourceSpec) error {
	if m.finalized.Load() {
		return domain.ErrPostInitMutation.WithDetails("register source " + spec.Name)
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if m.index(spec.Name) >= 0 {
		return domain.ErrDuplicateSource.WithDetails(spec.Name)
	}
	m.specs = append(m.specs, spec)
	return nil
}

// SetRank changes the rank of a declared source.
func (m *Merger) SetRank(name string, rank int) error {
	if m.finalized.Load() {
		return domain.ErrPostInitMutation.WithDetails("set rank of source " + name)
	}
	i := m.index(name)
	if i < 0 {
		return domain.ErrSourceNotFound.WithDetails(name)
	}
	m.specs[i].Rank = rank
	return nil
}

// Finalize freezes the declaration. It succeeds exactly once.
func (m *Merger) Finalize() error {
	if !m.finalized.CompareAndSwap(false, true) {
		return domain.ErrPostInitMutation.WithDetails("load order already finalized")
	}
	return nil
}

// Finalized reports whether Finalize has been called.
func (m *Merger) Finalized() bool {
	return m.finalized.Load()
}

// Specs returns the declared sources in flatten order: ascending rank, then
// declaration order.
func (m *Merger) Specs() []domain.SourceSpec {
	specs := slices.Clone(m.specs)
	slices.SortStableFunc(specs, func(a, b domain.SourceSpec) int {
		return cmp.Compare(a.Rank, b.Rank)
	})
	return specs
}

// ResolveLocation expands system property placeholders in location. It
// returns the keys that stayed unresolved.
func (m *Merger) ResolveLocation(location string) (string, []string) {
	return Expander{}.Expand(location, MapResolver(m.system))
}

// Merge reads every declared source and builds a configuration.
//
// Locations are resolved against system properties before anything is
// opened. A missing optional source is skipped; a missing required source,
// or any read or parse failure, aborts the merge with ErrMergeRead and
// nothing of the attempt is returned.
func (m *Merger) Merge(ctx context.Context) (*domain.MergedConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	specs := m.Specs()
	loaded := make([]domain.PropertySource, 0, len(specs))
	for _, spec := range specs {
		src, ok, err := m.load(spec)
		if err != nil {
			return nil, err
		}
		if ok {
			loaded = append(loaded, src)
		}
	}

	raw := make(map[string]string)
	for _, src := range loaded {
		maps.Copy(raw, src.Values)
	}

	// Pass one binds system properties only; pass two resolves what is left
	// against the merged view, with system properties still ahead of it.
	early, _ := Expander{}.ExpandAll(raw, MapResolver(m.system))
	values, unresolved := Expander{Defaults: true}.ExpandAll(early, Chain(MapResolver(m.system), MapResolver(early)))

	if len(unresolved) > 0 {
		m.logger.Warn("unresolved placeholders in merged properties",
			"keys", strings.Join(unresolved, ","),
		)
	}
	m.metrics.SetSourcesLoaded(len(loaded))
	m.metrics.SetUnresolved(len(unresolved))

	cfg := domain.NewMergedConfiguration(values, raw, loaded, unresolved)
	m.logger.Debug("merged properties",
		"sources", len(loaded),
		"keys", cfg.Len(),
		"fingerprint", cfg.Fingerprint(),
	)
	return cfg, nil
}

// load reads one source. ok is false when an optional source was skipped.
func (m *Merger) load(spec domain.SourceSpec) (domain.PropertySource, bool, error) {
	location, missing := m.ResolveLocation(spec.Location)
	if len(missing) > 0 {
		if spec.Optional {
			m.skip(spec, location, "unresolved location")
			return domain.PropertySource{}, false, nil
		}
		return domain.PropertySource{}, false, domain.ErrMergeRead.WithDetails(
			fmt.Sprintf("source %s: location %q references undefined system properties %s",
				spec.Name, spec.Location, strings.Join(missing, ",")))
	}

	values, err := m.reader.Read(location)
	switch {
	case err == nil:
	case errors.Is(err, confloader.ErrSourceMissing) && spec.Optional:
		m.skip(spec, location, "not found")
		return domain.PropertySource{}, false, nil
	default:
		return domain.PropertySource{}, false, domain.ErrMergeRead.
			WithDetails(fmt.Sprintf("source %s at %s", spec.Name, location)).
			WithCause(err)
	}

	m.logger.Debug("loaded property source",
		"name", spec.Name,
		"location", location,
		"rank", spec.Rank,
		"keys", len(values),
	)
	return domain.PropertySource{
		Name:     spec.Name,
		Location: location,
		Rank:     spec.Rank,
		Values:   values,
	}, true, nil
}

func (m *Merger) skip(spec domain.SourceSpec, location, reason string) {
	m.logger.Debug("skipping optional property source",
		"name", spec.Name,
		"location", location,
		"reason", reason,
	)
	m.metrics.IncSourcesSkipped()
}

func (m *Merger) index(name string) int {
	return slices.IndexFunc(m.specs, func(s domain.SourceSpec) bool { return s.Name == name })
}
