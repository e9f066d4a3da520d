package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/server/kernel"
)

// Handler serves the probes and the read-only admin API over a booted
// kernel.
type Handler struct {
	kernel *kernel.Kernel
	logger *slog.Logger
	mux    *http.ServeMux
	ready  atomic.Bool
}

// New creates a Handler reading k.
func New(k *kernel.Kernel, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{kernel: k, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	const v1 = "/admin/v1"
	h.mux.HandleFunc("GET "+v1+"/status", h.handleStatus)
	h.mux.HandleFunc("GET "+v1+"/config", h.handleConfig)
	h.mux.HandleFunc("GET "+v1+"/config/keys/{key}", h.handleConfigKey)
	h.mux.HandleFunc("GET "+v1+"/config/sources", h.handleSources)
	h.mux.HandleFunc("GET "+v1+"/config/sources/{name}", h.handleSource)
	h.mux.HandleFunc("GET "+v1+"/components", h.handleComponents)
	h.mux.HandleFunc("GET "+v1+"/components/{name}", h.handleComponent)
	h.mux.HandleFunc("GET "+v1+"/resolve", h.handleResolve)
	return h
}

// SetReady flips the readiness probe.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.respond(w, r, status, NewResponse(requestID(r), data))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	w.Header().Set("X-Error-Code", code)
	h.respond(w, r, status, NewErrorResponse(requestID(r), code, message, details))
}

// writeDomainError maps a coded error onto its status. Anything else is
// logged and reported as a bare 500 so internals stay out of the body.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if code := domain.GetErrorCode(err); code != "" {
		h.writeError(w, r, errorCodeToHTTPStatus(code), code, err.Error(), nil)
		return
	}
	h.logger.ErrorContext(r.Context(), "admin request failed",
		"path", r.URL.Path,
		"error", err,
	)
	h.writeError(w, r, http.StatusInternalServerError, "MODI-SYS-5000", "internal server error", nil)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		h.logger.WarnContext(r.Context(), "write admin response", "error", err)
	}
}

// requestID is the ID the RequestID middleware stored on the request
// header.
func requestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

// errorCodeToHTTPStatus reads the numeric tail of a MODI-<AREA>-<NNNN> code.
// 404x and 409x keep their HTTP meaning, other 4xxx are client errors, and
// everything else is a server error.
func errorCodeToHTTPStatus(code string) int {
	n, err := strconv.Atoi(code[strings.LastIndexByte(code, '-')+1:])
	if err != nil {
		return http.StatusInternalServerError
	}
	switch {
	case n/10 == 404:
		return http.StatusNotFound
	case n/10 == 409:
		return http.StatusConflict
	case n/1000 == 4:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
