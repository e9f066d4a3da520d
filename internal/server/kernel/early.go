package kernel

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/core/service"
	"github.com/yndnr/modi-go/internal/infra/confloader"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
)

// EarlyContext is the first boot phase: the install root is known and every
// location has been resolved against system properties, but no property
// file has been opened yet.
type EarlyContext struct {
	// BootID identifies this boot in logs.
	BootID ulid.ULID
	// Started is when the early phase began.
	Started time.Time

	// Home is the install root.
	Home string
	// ComponentsDir is the resolved components directory.
	ComponentsDir string
	// OverrideDir is the resolved override directory, or "" when overrides
	// are disabled.
	OverrideDir string

	params  StartupParams
	merger  *service.Merger
	sources []domain.SourceSpec
	logger  logger.Logger
}

// BuildEarlyContext runs the first boot phase.
//
// The install-root precondition is checked before anything else; when it
// fails nothing has touched the filesystem.
func BuildEarlyContext(p StartupParams) (*EarlyContext, error) {
	started := time.Now()
	p.applyDefaults()

	if err := service.CheckPrecondition(p.System, p.HomeProperty); err != nil {
		return nil, err
	}

	bootID := ulid.Make()
	ctx := logger.WithBootID(logger.WithLogger(context.Background(), p.Logger), bootID.String())
	log := logger.L(logger.WithComponent(ctx, "kernel"))
	home, _ := p.System.Lookup(p.HomeProperty)

	reader := confloader.NewSourceReader(
		confloader.WithFs(p.Fs),
		confloader.WithClasspath(p.Classpath),
	)
	merger := service.NewMerger(p.System,
		service.WithReader(reader),
		service.WithLogger(log),
		service.WithMetrics(p.Metrics),
	)

	componentsDir, missing := merger.ResolveLocation(p.ComponentsDir)
	if len(missing) > 0 {
		return nil, domain.ErrMissingPrecondition.WithDetails(fmt.Sprintf(
			"components directory %q references undefined system properties %s",
			p.ComponentsDir, strings.Join(missing, ",")))
	}

	overrideDir := ""
	if p.OverrideDir != NoOverrideDir {
		dir, missing := merger.ResolveLocation(p.OverrideDir)
		if len(missing) > 0 {
			log.Warn("override directory references undefined system properties, overrides disabled",
				"dir", p.OverrideDir,
				"keys", strings.Join(missing, ","),
			)
		} else {
			overrideDir = dir
		}
	}

	sources := make([]domain.SourceSpec, 0, len(p.Sources))
	for _, spec := range p.Sources {
		if err := merger.Register(spec); err != nil {
			return nil, fmt.Errorf("declare source %s: %w", spec.Name, err)
		}
		resolved := spec
		resolved.Location, _ = merger.ResolveLocation(spec.Location)
		sources = append(sources, resolved)
	}

	log.Info("early context ready",
		"home", home,
		"components_dir", componentsDir,
		"override_dir", overrideDir,
		"sources", len(sources),
	)

	return &EarlyContext{
		BootID:        bootID,
		Started:       started,
		Home:          home,
		ComponentsDir: componentsDir,
		OverrideDir:   overrideDir,
		params:        p,
		merger:        merger,
		sources:       sources,
		logger:        log,
	}, nil
}

// Sources returns the declared sources with their locations resolved.
func (e *EarlyContext) Sources() []domain.SourceSpec {
	return slices.Clone(e.sources)
}

// System returns a copy of the system properties the boot runs with.
func (e *EarlyContext) System() domain.SystemProperties {
	return e.params.System.Clone()
}

// Resolve expands system property placeholders in s. Other placeholders
// are left for the final configuration.
func (e *EarlyContext) Resolve(s string) string {
	out, _ := e.merger.ResolveLocation(s)
	return out
}
