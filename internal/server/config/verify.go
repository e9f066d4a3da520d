package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/modi-go/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyKernel(&cfg.Kernel); err != nil {
		return err
	}
	if err := verifyHTTP(&cfg.HTTP); err != nil {
		return err
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	return verifyLog(&cfg.Log)
}

func verifyKernel(cfg *KernelSection) error {
	if strings.TrimSpace(cfg.HomeProperty) == "" {
		return errors.New("kernel.home_property is required")
	}

	seen := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if err := src.Validate(); err != nil {
			return fmt.Errorf("kernel.sources[%d]: %w", i, err)
		}
		if seen[src.Name] {
			return fmt.Errorf("kernel.sources[%d]: duplicate source name %q", i, src.Name)
		}
		seen[src.Name] = true
	}
	return nil
}

func verifyHTTP(cfg *HTTPSection) error {
	if cfg.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("http.addr: %w", err)
	}
	if !strings.HasPrefix(cfg.MetricsPath, "/") {
		return errors.New("http.metrics_path must start with /")
	}
	if strings.HasPrefix(cfg.MetricsPath, "/admin/") || cfg.MetricsPath == "/health" || cfg.MetricsPath == "/ready" {
		return fmt.Errorf("http.metrics_path %q collides with a built-in route", cfg.MetricsPath)
	}
	if cfg.RateLimit < 0 {
		return errors.New("http.rate_limit must not be negative")
	}
	for _, entry := range cfg.AdminAllowList {
		if strings.Contains(entry, "/") {
			if _, _, err := net.ParseCIDR(entry); err != nil {
				return fmt.Errorf("http.admin_allow_list: %w", err)
			}
			continue
		}
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("http.admin_allow_list: invalid IP %q", entry)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logger.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	return nil
}
