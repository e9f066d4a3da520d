package kernel

import (
	"embed"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
	"github.com/yndnr/modi-go/internal/telemetry/metric"
)

// Defaults for StartupParams.
const (
	// DefaultHomeProperty is the system property naming the install root.
	DefaultHomeProperty = "modi.home"

	// Ranks of the default layers. Sources of equal rank keep declaration
	// order.
	KernelRank    = 0
	ComponentRank = 10
	InstallRank   = 20
)

//go:embed kernel.properties
var classpath embed.FS

// Classpath returns the embedded resources served under "classpath:".
func Classpath() fs.FS {
	return classpath
}

// DefaultSources returns the declared property sources relative to the
// install root named by homeProperty, lowest precedence first. Component
// sources are added at boot.
func DefaultSources(homeProperty string) []domain.SourceSpec {
	home := homeRef(homeProperty)
	return []domain.SourceSpec{
		{Name: "kernel", Location: "classpath:kernel.properties", Rank: KernelRank},
		{Name: "install", Location: home + "/modi.properties", Rank: InstallRank, Optional: true},
		{Name: "local", Location: home + "/local.properties", Rank: InstallRank, Optional: true},
		{Name: "security", Location: home + "/security.properties", Rank: InstallRank, Optional: true},
	}
}

func homeRef(homeProperty string) string {
	return "${" + homeProperty + "}"
}

// StartupParams is everything the kernel needs to boot. Nothing is read
// from process globals; the host fills this in.
type StartupParams struct {
	// System holds the early-bound properties, including the install root.
	System domain.SystemProperties

	// HomeProperty names the install-root marker in System.
	HomeProperty string

	// ComponentsDir and OverrideDir may reference system properties. They
	// default to components/ and override/ under the install root. An
	// OverrideDir of "-" disables overrides.
	ComponentsDir string
	OverrideDir   string

	// Sources are the declared property sources. Nil means DefaultSources.
	Sources []domain.SourceSpec

	// ComponentRank is the rank of every component property source. Nil
	// means the default, ComponentRank; zero is a valid rank.
	ComponentRank *int

	Fs        afero.Fs
	Classpath fs.FS
	Logger    logger.Logger
	Metrics   *metric.Registry
}

// DefaultStartupParams returns params for system with every other field at
// its default.
func DefaultStartupParams(system domain.SystemProperties) StartupParams {
	p := StartupParams{System: system}
	p.applyDefaults()
	return p
}

// NoOverrideDir disables the override layer when used as OverrideDir.
const NoOverrideDir = "-"

func (p *StartupParams) applyDefaults() {
	if p.HomeProperty == "" {
		p.HomeProperty = DefaultHomeProperty
	}
	if p.ComponentsDir == "" {
		p.ComponentsDir = homeRef(p.HomeProperty) + "/components"
	}
	if p.OverrideDir == "" {
		p.OverrideDir = homeRef(p.HomeProperty) + "/override"
	}
	if p.Sources == nil {
		p.Sources = DefaultSources(p.HomeProperty)
	}
	if p.ComponentRank == nil {
		rank := ComponentRank
		p.ComponentRank = &rank
	}
	if p.Fs == nil {
		p.Fs = afero.NewOsFs()
	}
	if p.Classpath == nil {
		p.Classpath = Classpath()
	}
	if p.Logger == nil {
		p.Logger = logger.Default()
	}
}
