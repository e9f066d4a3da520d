package config

import (
	"github.com/yndnr/modi-go/internal/infra/confloader"
	"github.com/yndnr/modi-go/internal/server/kernel"
)

// Default configuration values.
const (
	DefaultMetricsPath = "/metrics"
	DefaultRateLimit   = 50

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Kernel: KernelSection{
			HomeProperty:  kernel.DefaultHomeProperty,
			SystemPrefix:  confloader.DefaultSystemPrefix,
			ComponentRank: kernel.ComponentRank,
		},
		HTTP: HTTPSection{
			MetricsPath: DefaultMetricsPath,
			RateLimit:   DefaultRateLimit,
		},
		Watch: WatchSection{
			Debounce: confloader.DefaultDebounce,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
