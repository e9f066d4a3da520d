package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/yndnr/modi-go/internal/core/domain"
)

// DefaultSystemPrefix selects the environment variables that become system
// properties. MODI_HOME becomes modi.home.
const DefaultSystemPrefix = "MODI_"

// SystemProperties builds the early-bound property set. Environment variables
// with prefix are read first; defines ("key=value") override them.
func SystemProperties(prefix string, defines []string) (domain.SystemProperties, error) {
	k := koanf.New(KeyDelim)

	if prefix != "" {
		transform := func(s string) string {
			return strings.ReplaceAll(strings.ToLower(s), "_", ".")
		}
		if err := k.Load(env.Provider(prefix, KeyDelim, transform), nil); err != nil {
			return nil, fmt.Errorf("load env: %w", err)
		}
	}

	parsed, err := ParseDefines(defines)
	if err != nil {
		return nil, err
	}
	if err := k.Load(mapProvider(parsed), nil); err != nil {
		return nil, fmt.Errorf("load defines: %w", err)
	}

	all := k.All()
	props := make(domain.SystemProperties, len(all))
	for key, v := range all {
		props[key] = Stringify(v)
	}
	return props, nil
}

// ParseDefines turns "key=value" pairs into a map. A bare "key" means an
// empty value.
func ParseDefines(defines []string) (map[string]any, error) {
	out := make(map[string]any, len(defines))
	for _, d := range defines {
		key, value, _ := strings.Cut(d, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid definition %q: empty key", d)
		}
		out[key] = value
	}
	return out, nil
}
