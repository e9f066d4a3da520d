package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/modi-go/internal/server/httpserver/handler"
	"github.com/yndnr/modi-go/internal/server/kernel"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Kernel is the booted configuration the admin API reads.
	Kernel *kernel.Kernel

	// Metrics serves the Prometheus exposition. Nil leaves MetricsPath
	// unrouted.
	Metrics     http.Handler
	MetricsPath string

	// Logger for request logging.
	Logger *slog.Logger

	// AdminAllowList is the IP/CIDR allowlist for /admin/ (empty = no restriction).
	AdminAllowList []string

	// RateLimit is the admin rate limit per IP (requests/second). Zero
	// disables it.
	RateLimit int
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		MetricsPath: "/metrics",
		Logger:      slog.Default(),
		RateLimit:   50,
	}
}

// NewRouter builds the admin mux. It also returns the handler so the caller
// can flip readiness once the host has started.
func NewRouter(cfg *RouterConfig) (http.Handler, *handler.Handler) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.Kernel, log)
	mux := http.NewServeMux()

	base := []Middleware{RequestID(), Recover(log)}

	mux.Handle("GET /health", Chain(h, base...))
	mux.Handle("GET /ready", Chain(h, base...))

	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, Chain(cfg.Metrics, base...))
	}

	admin := append([]Middleware{}, base...)
	if len(cfg.AdminAllowList) > 0 {
		admin = append(admin, NetworkACL(&NetworkACLConfig{
			AllowList: cfg.AdminAllowList,
			Logger:    log,
		}))
	}
	if cfg.RateLimit > 0 {
		admin = append(admin, RateLimit(cfg.RateLimit))
	}
	admin = append(admin, AccessLog(log))
	mux.Handle("/admin/", Chain(h, admin...))

	return mux, h
}
