package handler

import (
	"net/http"
	"slices"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/server/config"
	"github.com/yndnr/modi-go/internal/telemetry/logger"
)

// ErrComponentNotFound is returned for an unknown component name.
var ErrComponentNotFound = domain.NewDomainError("MODI-HTTP-4040", "component not found")

// handleStatus handles GET /admin/v1/status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	k := h.kernel
	cfg := k.Configuration()
	early := k.Early()

	resp := StatusResponse{
		BootID:        k.BootID().String(),
		Started:       early.Started,
		Home:          early.Home,
		ComponentsDir: early.ComponentsDir,
		OverrideDir:   early.OverrideDir,
		Components:    len(k.Catalog().Components()),
		Sources:       cfg.SourceNames(),
		Keys:          cfg.Len(),
		Unresolved:    cfg.Unresolved(),
		Fingerprint:   cfg.Fingerprint(),
		Degraded:      k.Properties().Degraded(),
		Order:         k.Properties().Order(),
	}
	if layer, ok := domain.LayerOf(k.Catalog().Overrides()); ok {
		resp.Overrides = layer.Len()
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleConfig handles GET /admin/v1/config. The sources are read again;
// ?raw=true returns the boot-time values before expansion instead.
func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	var props map[string]string
	if r.URL.Query().Get("raw") == "true" {
		props = h.kernel.Properties().RawProperties()
	} else {
		props = h.kernel.MergedProperties()
	}
	h.writeJSON(w, r, http.StatusOK, h.mask(r, props))
}

// handleConfigKey handles GET /admin/v1/config/keys/{key}.
func (h *Handler) handleConfigKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	cfg := h.kernel.Configuration()

	value, ok := cfg.Get(key)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "MODI-HTTP-4041", "property not defined", map[string]string{"key": key})
		return
	}

	resp := PropertyResponse{Key: key, Value: value, Raw: cfg.Raw()[key]}
	for _, name := range slices.Backward(cfg.SourceNames()) {
		values, _ := cfg.Source(name)
		if _, ok := values[key]; ok {
			resp.Source = name
			break
		}
	}
	if !reveal(r) && logger.IsSensitiveKey(key) {
		resp.Value = logger.RedactString(resp.Value)
		resp.Raw = logger.RedactString(resp.Raw)
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleSources handles GET /admin/v1/config/sources.
func (h *Handler) handleSources(w http.ResponseWriter, r *http.Request) {
	cfg := h.kernel.Configuration()
	specs := h.kernel.Specs()

	sources := make([]SourceInfo, 0, len(specs))
	for _, spec := range specs {
		info := SourceInfo{
			Name:     spec.Name,
			Location: h.kernel.Early().Resolve(spec.Location),
			Rank:     spec.Rank,
			Optional: spec.Optional,
		}
		if values, ok := cfg.Source(spec.Name); ok {
			info.Loaded = true
			info.Keys = len(values)
		}
		sources = append(sources, info)
	}
	h.writeJSON(w, r, http.StatusOK, sources)
}

// handleSource handles GET /admin/v1/config/sources/{name}.
func (h *Handler) handleSource(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	values, ok := h.kernel.Configuration().Source(name)
	if !ok {
		h.writeDomainError(w, r, domain.ErrSourceNotFound.WithDetails(name))
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.mask(r, values))
}

// handleComponents handles GET /admin/v1/components.
func (h *Handler) handleComponents(w http.ResponseWriter, r *http.Request) {
	units := h.kernel.Catalog().Components()
	out := make([]ComponentInfo, 0, len(units))
	for _, unit := range units {
		out = append(out, h.componentInfo(unit))
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

// handleComponent handles GET /admin/v1/components/{name}.
func (h *Handler) handleComponent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	unit, ok := h.kernel.Catalog().Component(name)
	if !ok {
		h.writeDomainError(w, r, ErrComponentNotFound.WithDetails(name))
		return
	}

	info := h.componentInfo(unit)
	if values, ok := h.kernel.Configuration().Source(unit.PropertySourceName()); ok {
		info.Properties = h.mask(r, values)
	}
	h.writeJSON(w, r, http.StatusOK, info)
}

// handleResolve handles GET /admin/v1/resolve?value=...[&reveal=true]. A
// result built from a sensitive key is masked unless revealed.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("value") {
		h.writeError(w, r, http.StatusBadRequest, "MODI-ARG-4001", "query parameter value is required", nil)
		return
	}
	value := r.URL.Query().Get("value")
	resolved, keys := h.kernel.ResolveWithKeys(value)
	resp := ResolveResponse{Value: value, Resolved: resolved}
	if !reveal(r) && slices.ContainsFunc(keys, logger.IsSensitiveKey) {
		resp.Resolved = logger.RedactString(resolved)
		resp.Masked = true
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) componentInfo(unit domain.ComponentUnit) ComponentInfo {
	info := ComponentInfo{
		Name:           unit.Name,
		Path:           unit.Path,
		Descriptor:     unit.DescriptorPath,
		PropertySource: unit.PropertySourceName(),
	}
	if layer, ok := domain.LayerOf(h.kernel.Catalog().Overrides()); ok {
		if entry, ok := layer.Lookup(unit.Name); ok {
			info.Override = entry.DescriptorPath
		}
	}
	return info
}

func (h *Handler) mask(r *http.Request, props map[string]string) map[string]string {
	if reveal(r) {
		return props
	}
	return config.SanitizeProperties(props)
}

func reveal(r *http.Request) bool {
	return r.URL.Query().Get("reveal") == "true"
}
