package config

import (
	"time"

	"github.com/yndnr/modi-go/internal/core/domain"
)

// ServerConfig is the root configuration for modi-server.
type ServerConfig struct {
	Kernel KernelSection `koanf:"kernel"`
	HTTP   HTTPSection   `koanf:"http"`
	Watch  WatchSection  `koanf:"watch"`
	Log    LogSection    `koanf:"log"`
}

// KernelSection configures discovery and merging.
type KernelSection struct {
	// Home is the install root. It is used only when the home property is
	// not already set by the environment or a -D flag.
	Home string `koanf:"home"`

	// HomeProperty names the system property holding the install root.
	HomeProperty string `koanf:"home_property"`

	// SystemPrefix selects the environment variables read as system
	// properties. Empty disables the environment.
	SystemPrefix string `koanf:"system_prefix"`

	// ComponentsDir and OverrideDir may reference system properties. Empty
	// means the kernel defaults under the install root; an OverrideDir of
	// "-" disables overrides.
	ComponentsDir string `koanf:"components_dir"`
	OverrideDir   string `koanf:"override_dir"`

	// ComponentRank is the rank of component property sources.
	ComponentRank int `koanf:"component_rank"`

	// Sources replaces the default property source declarations.
	Sources []domain.SourceSpec `koanf:"sources"`
}

// HTTPSection configures the admin listener: health, metrics and the
// read-only configuration API.
type HTTPSection struct {
	// Addr is the listen address. Empty disables the listener.
	Addr        string `koanf:"addr"`
	MetricsPath string `koanf:"metrics_path"`

	// AdminAllowList restricts /admin/ to these IPs or CIDRs. Empty allows
	// every client.
	AdminAllowList []string `koanf:"admin_allow_list"`

	// RateLimit is requests per second per client IP. Zero disables it.
	RateLimit int `koanf:"rate_limit"`
}

// WatchSection configures change notification on property files.
type WatchSection struct {
	Enabled bool `koanf:"enabled"`

	// Debounce is how long a file must stay quiet before its change is
	// logged, e.g. "250ms".
	Debounce time.Duration `koanf:"debounce"`
}

// LogSection configures logging.
type LogSection struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	AddSource bool   `koanf:"add_source"`
}
