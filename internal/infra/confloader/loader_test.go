package confloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverSettings struct {
	Kernel struct {
		HomeProperty  string `koanf:"home_property"`
		ComponentsDir string `koanf:"components_dir"`
	} `koanf:"kernel"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
	Watch bool `koanf:"watch"`
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoader_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modi.yaml")
	writeFile(t, path, "kernel:\n  components_dir: /from/file\nlog:\n  level: warn\nwatch: true\n")
	t.Setenv("MODI_CONF_KERNEL__COMPONENTS_DIR", "/from/env")
	t.Setenv("MODI_CONF_LOG__LEVEL", "error")

	var got serverSettings
	got.Kernel.HomeProperty = "modi.home"

	l := NewLoader(
		WithConfigFile(path),
		WithFlags(map[string]any{"log.level": "debug"}),
	)
	require.NoError(t, l.Load(&got))

	assert.Equal(t, "/from/env", got.Kernel.ComponentsDir, "env beats file")
	assert.Equal(t, "debug", got.Log.Level, "flags beat env")
	assert.True(t, got.Watch)
	assert.Equal(t, "modi.home", got.Kernel.HomeProperty, "defaults survive")
	assert.Equal(t, []string{"file:" + path, "env:MODI_CONF_", "flags"}, l.Applied())
}

func TestLoader_DefaultsOnly(t *testing.T) {
	var got serverSettings
	got.Log.Level = "info"

	l := NewLoader(WithEnvPrefix("MODI_LOADER_TEST_UNSET_"))
	require.NoError(t, l.Load(&got))

	assert.Equal(t, "info", got.Log.Level)
	assert.Empty(t, l.Applied())
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml")))
	err := l.Load(&serverSettings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestLoader_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modi.yaml")
	writeFile(t, path, "kernel: [unclosed\n")

	assert.Error(t, NewLoader(WithConfigFile(path)).Load(&serverSettings{}))
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("ACME_KERNEL__HOME_PROPERTY", "acme.home")

	var got serverSettings
	l := NewLoader(WithEnvPrefix("ACME_"))
	require.NoError(t, l.Load(&got))

	assert.Equal(t, "acme.home", got.Kernel.HomeProperty)
	assert.Equal(t, []string{"env:ACME_"}, l.Applied())
}
