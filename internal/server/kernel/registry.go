package kernel

import (
	"fmt"
	"slices"

	"github.com/spf13/afero"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
)

// LoggingRegistry is the bean registry of a standalone kernel with no host
// container. It checks each descriptor is readable, logs the source and
// keeps it in registration order.
type LoggingRegistry struct {
	fs      afero.Fs
	logger  logger.Logger
	sources []domain.BeanSource
}

// NewLoggingRegistry creates a registry reading descriptors from fsys.
func NewLoggingRegistry(fsys afero.Fs, log logger.Logger) *LoggingRegistry {
	if log == nil {
		log = logger.Default()
	}
	return &LoggingRegistry{fs: fsys, logger: log}
}

// RegisterBeanSource implements service.BeanRegistry.
func (r *LoggingRegistry) RegisterBeanSource(src domain.BeanSource) error {
	for _, path := range src.Descriptors() {
		info, err := r.fs.Stat(path)
		if err != nil {
			return fmt.Errorf("descriptor %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("descriptor %s is a directory", path)
		}
	}
	r.sources = append(r.sources, src)
	r.logger.Info("registered bean source",
		"name", src.SourceName(),
		"descriptors", len(src.Descriptors()),
	)
	return nil
}

// Sources returns the registered sources in order.
func (r *LoggingRegistry) Sources() []domain.BeanSource {
	return slices.Clone(r.sources)
}

// Names returns the registered source names in order.
func (r *LoggingRegistry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for _, src := range r.sources {
		names = append(names, src.SourceName())
	}
	return names
}
