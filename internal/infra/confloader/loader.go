package confloader

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment prefix for the server's own settings.
const DefaultEnvPrefix = "MODI_CONF_"

// Loader layers the server's settings over the defaults already held by the
// target: YAML file, then environment, then command line flags.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	file      string
	flags     map[string]any
	applied   []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the YAML file. Empty means no file layer.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.file = path }
}

// WithFlags sets the top layer. Keys are dotted paths such as
// "http.addr".
func WithFlags(flags map[string]any) Option {
	return func(l *Loader) { l.flags = flags }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{k: koanf.New("."), envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load applies every layer and decodes the result into target, whose
// existing field values act as defaults.
func (l *Loader) Load(target any) error {
	if l.file != "" {
		if err := l.k.Load(file.Provider(l.file), yaml.Parser()); err != nil {
			return fmt.Errorf("read %s: %w", l.file, err)
		}
		l.applied = append(l.applied, "file:"+l.file)
	}

	if l.hasEnv() {
		// A double underscore separates sections so single underscores can
		// stay inside key names: MODI_CONF_KERNEL__COMPONENTS_DIR is
		// kernel.components_dir.
		rename := func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, l.envPrefix)), "__", ".")
		}
		if err := l.k.Load(env.Provider(l.envPrefix, ".", rename), nil); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		l.applied = append(l.applied, "env:"+l.envPrefix)
	}

	if len(l.flags) > 0 {
		if err := l.k.Load(mapProvider(maps.Unflatten(l.flags, ".")), nil); err != nil {
			return fmt.Errorf("apply flags: %w", err)
		}
		l.applied = append(l.applied, "flags")
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	return nil
}

// Applied names the layers the last Load used, lowest first.
func (l *Loader) Applied() []string {
	return l.applied
}

func (l *Loader) hasEnv() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, l.envPrefix) {
			return true
		}
	}
	return false
}
