package config

import (
	"slices"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/infra/confloader"
	"github.com/yndnr/modi-go/internal/server/kernel"
)

// SystemProperties builds the boot's system properties: the environment
// under SystemPrefix, then defines, then Home if the home property is still
// unset.
func (k KernelSection) SystemProperties(defines []string) (domain.SystemProperties, error) {
	system, err := confloader.SystemProperties(k.SystemPrefix, defines)
	if err != nil {
		return nil, err
	}
	if _, ok := system[k.HomeProperty]; !ok && k.Home != "" {
		system[k.HomeProperty] = k.Home
	}
	return system, nil
}

// StartupParams maps the section onto kernel startup parameters. The
// caller fills in logger, metrics and filesystem.
func (k KernelSection) StartupParams(system domain.SystemProperties) kernel.StartupParams {
	p := kernel.StartupParams{
		System:        system,
		HomeProperty:  k.HomeProperty,
		ComponentsDir: k.ComponentsDir,
		OverrideDir:   k.OverrideDir,
	}
	rank := k.ComponentRank
	p.ComponentRank = &rank
	if len(k.Sources) > 0 {
		p.Sources = slices.Clone(k.Sources)
	}
	return p
}
