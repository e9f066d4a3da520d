package service

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
	"github.com/yndnr/modi-go/internal/telemetry/metric"
)

// PropertiesService is what the host sees of the merged configuration.
//
// It keeps the configuration built at boot for the per-source and raw views
// and goes back to the merger for MergedProperties, which never fails: a
// failed read is logged and yields an empty map.
type PropertiesService struct {
	merger *Merger
	boot   *domain.MergedConfiguration

	order    atomic.Int64
	degraded atomic.Bool

	logger  logger.Logger
	metrics *metric.Registry
}

// PropertiesOption configures a PropertiesService.
type PropertiesOption func(*PropertiesService)

// WithPropertiesLogger sets the logger.
func WithPropertiesLogger(l logger.Logger) PropertiesOption {
	return func(s *PropertiesService) {
		s.logger = l
	}
}

// WithPropertiesMetrics sets the metrics registry.
func WithPropertiesMetrics(r *metric.Registry) PropertiesOption {
	return func(s *PropertiesService) {
		s.metrics = r
	}
}

// NewPropertiesService wraps a merger and the configuration it produced at
// boot. A nil boot configuration is treated as empty.
func NewPropertiesService(merger *Merger, boot *domain.MergedConfiguration, opts ...PropertiesOption) *PropertiesService {
	if boot == nil {
		boot = domain.EmptyConfiguration()
	}
	s := &PropertiesService{
		merger: merger,
		boot:   boot,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configuration returns the configuration built at boot.
func (s *PropertiesService) Configuration() *domain.MergedConfiguration {
	return s.boot
}

// MergedProperties merges the sources again and returns the resolved view.
func (s *PropertiesService) MergedProperties() map[string]string {
	cfg, err := s.merger.Merge(context.Background())
	if err != nil {
		var de *domain.DomainError
		transient := errors.As(err, &de) && de.Transient()
		s.logger.Error("error loading merged properties",
			"code", domain.GetErrorCode(err),
			"transient", transient,
			"error", err,
		)
		s.degraded.Store(true)
		s.metrics.IncDegradedReads()
		return map[string]string{}
	}
	s.degraded.Store(false)
	return cfg.Values()
}

// NamedSources returns each source's own values, unexpanded.
func (s *PropertiesService) NamedSources() map[string]map[string]string {
	return s.boot.Sources()
}

// RawProperties returns the flattened view before placeholder expansion.
func (s *PropertiesService) RawProperties() map[string]string {
	return s.boot.Raw()
}

// Degraded reports whether the last MergedProperties call failed.
func (s *PropertiesService) Degraded() bool {
	return s.degraded.Load()
}

// Order returns the host ordering rank of the properties bean.
func (s *PropertiesService) Order() int {
	return int(s.order.Load())
}

// SetOrder changes the host ordering rank. It is rejected once the load
// order is finalized.
func (s *PropertiesService) SetOrder(order int) error {
	if s.merger.Finalized() {
		return domain.ErrPostInitMutation
	}
	s.order.Store(int64(order))
	return nil
}

// Snapshot reports the boot configuration for metric collection.
func (s *PropertiesService) Snapshot() metric.Snapshot {
	return metric.Snapshot{
		Keys:       s.boot.Len(),
		Sources:    len(s.boot.SourceNames()),
		Unresolved: len(s.boot.Unresolved()),
		Degraded:   s.Degraded(),
	}
}
